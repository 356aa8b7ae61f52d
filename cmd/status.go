package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/internal/timeutil"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

var statusTimeout time.Duration

type runningEntryGetter interface {
	GetRunningEntry(ctx context.Context) (*timeentry.Record, error)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer and pending local changes",
	Long: `Show the entry currently running on Toggl, entries running in the local store, and
the number of local changes waiting for "sync".

Without a configured API token only the local part is shown.`,
	Example: `
  togglassistant status
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

		var remote runningEntryGetter
		if cfg.RequireToken() == nil {
			client, err := newTogglClient(cfg, logger)
			if err != nil {
				return err
			}
			remote = client
		}

		ctx, cancel := timeoutContext(statusTimeout)
		defer cancel()
		return runStatus(ctx, cmd.OutOrStdout(), store, remote, projectNames(cfg), time.Now())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 30*time.Second, "Timeout for the remote request")
}

func runStatus(ctx context.Context, w io.Writer, store *storage.Store, remote runningEntryGetter, projects map[int64]string, now time.Time) error {
	fmt.Fprintln(w, headerStyle.Render("Toggl"))
	switch {
	case remote == nil:
		fmt.Fprintln(w, dimStyle.Render("  API token not configured"))
	default:
		record, err := remote.GetRunningEntry(ctx)
		if err != nil {
			return fmt.Errorf("get running entry: %w", err)
		}
		if record == nil {
			fmt.Fprintln(w, "  No running entry")
		} else {
			entry, err := timeentry.FromRecord(*record)
			if err != nil {
				return fmt.Errorf("running entry %d: %w", record.ID, err)
			}
			fmt.Fprintf(w, "  %s %s\n", runningStyle.Render("Running:"), runningLine(entry, projects, now))
		}
	}

	fmt.Fprintln(w, headerStyle.Render("Local store")+" "+dimStyle.Render(store.Location()))
	running := 0
	for _, item := range store.Query() {
		if item.Entry.IsRunning() {
			running++
			fmt.Fprintf(w, "  %s %s\n", runningStyle.Render("Running:"), runningLine(item.Entry, projects, now))
		}
	}
	if running == 0 {
		fmt.Fprintln(w, "  No running entry")
	}

	counts := make(map[storage.State]int, len(storage.States))
	for _, item := range store.Query(storage.States...) {
		counts[item.State]++
	}
	pending := counts[storage.StateNew] + counts[storage.StateModified] + counts[storage.StateDeleted]
	fmt.Fprintf(w, "  Entries: %d unchanged, %d new, %d modified, %d deleted\n",
		counts[storage.StateUnchanged], counts[storage.StateNew], counts[storage.StateModified], counts[storage.StateDeleted])
	if pending > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("  %d change(s) waiting for \"togglassistant sync\"", pending)))
	} else {
		fmt.Fprintln(w, successStyle.Render("  In sync"))
	}
	return nil
}

func runningLine(entry timeentry.Entry, projects map[int64]string, now time.Time) string {
	elapsed := int64(now.Sub(entry.Start) / time.Second)
	line := fmt.Sprintf("%s since %s (%s)", describeEntry(entry), entry.Start.Format("15:04"), timeutil.FormatSeconds(elapsed))
	if entry.ProjectID != nil {
		if name, ok := projects[*entry.ProjectID]; ok {
			line += " [" + name + "]"
		}
	}
	return line
}
