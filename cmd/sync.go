package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/reconcile"
	"togglassistant/storage"
)

var (
	syncDryRun  bool
	syncTimeout time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending local changes to Toggl",
	Long: `Push every pending change of the local store to Toggl:
- new entries are created and receive their Toggl id
- modified entries are updated
- deleted entries are removed (never-synced ones are dropped locally)

Creates run first, then updates, then deletes. A failing entry keeps its state and is
retried by the next sync; the other entries are still pushed. The store is saved once
at the end.

In --dry-run mode the pending changes are listed and nothing is sent.`,
	Example: `
  # Show what would be pushed
  togglassistant sync --dry-run

  # Push pending changes
  togglassistant sync
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		logger := commandLogger()
		store, closeStore, err := openStore(cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		if syncDryRun {
			engine := reconcile.NewEngine(store, nil, logger)
			printSyncPlan(cmd.OutOrStdout(), engine.Plan())
			return nil
		}

		client, err := newTogglClient(cfg, logger)
		if err != nil {
			return err
		}
		ctx, cancel := timeoutContext(syncTimeout)
		defer cancel()
		return runSync(ctx, cmd.OutOrStdout(), reconcile.NewEngine(store, client, logger))
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "List pending changes without contacting Toggl")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute, "Timeout for the whole sync run")
}

func runSync(ctx context.Context, w io.Writer, engine *reconcile.Engine) error {
	report, err := engine.Run(ctx)
	if report != nil {
		printSyncReport(w, report)
	}
	if err != nil {
		return fmt.Errorf("sync finished but saving the store failed: %w", err)
	}
	if report.HasFailures() {
		return fmt.Errorf("sync finished with %d failed entries; they keep their state and are retried by the next sync", len(report.Failures))
	}
	return nil
}

func printSyncPlan(w io.Writer, plan reconcile.Plan) {
	if plan.IsEmpty() {
		fmt.Fprintln(w, dimStyle.Render("Nothing to sync."))
		return
	}
	printPlanSection(w, "create", plan.ToCreate)
	printPlanSection(w, "update", plan.ToUpdate)
	printPlanSection(w, "delete", plan.ToDelete)
	fmt.Fprintf(w, "Dry-run: %d create, %d update, %d delete. Nothing was sent.\n",
		len(plan.ToCreate), len(plan.ToUpdate), len(plan.ToDelete))
}

func printPlanSection(w io.Writer, op string, items []storage.Item) {
	for _, item := range items {
		action := op
		if op == "delete" && item.Entry.IsPlaceholder() {
			action = "discard"
		}
		fmt.Fprintf(w, "%-8s %s\n", action, describeEntry(item.Entry))
	}
}

func printSyncReport(w io.Writer, report *reconcile.Report) {
	placeholders := make([]int64, 0, len(report.CreatedIDs))
	for placeholder := range report.CreatedIDs {
		placeholders = append(placeholders, placeholder)
	}
	sort.Slice(placeholders, func(i, j int) bool { return placeholders[i] > placeholders[j] })
	for _, placeholder := range placeholders {
		fmt.Fprintf(w, "Created entry %d -> %d\n", placeholder, report.CreatedIDs[placeholder])
	}
	for _, failure := range report.Failures {
		fmt.Fprintln(w, errorStyle.Render("Failed: "+failure.Error()))
	}
	fmt.Fprintf(w, "Sync completed. Created: %d, Updated: %d, Deleted: %d, Discarded: %d, Failed: %d\n",
		report.Created, report.Updated, report.Deleted, report.Discarded, len(report.Failures))
}
