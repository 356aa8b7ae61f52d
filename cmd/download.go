package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/internal/timeutil"
	"togglassistant/storage"
)

var (
	downloadFrom    string
	downloadTo      string
	downloadTZ      string
	downloadTimeout time.Duration
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Pull time entries of a date range from Toggl into the local store",
	Long: `Fetch remote entries whose start lies in the given days (inclusive) and merge
them into the local store as "unchanged".

Local pending changes always win: entries that are new, modified, or deleted locally
are not overwritten. Unchanged local entries in the range that Toggl no longer
returns are removed. Without --from the last 7 days are downloaded.`,
	Example: `
  # Last 7 days
  togglassistant download

  # One month
  togglassistant download --from 2025-01-01 --to 2025-01-31
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		loc, err := resolveLocation(downloadTZ)
		if err != nil {
			return err
		}
		from, to, err := resolveDownloadRange(downloadFrom, downloadTo, time.Now().In(loc))
		if err != nil {
			return err
		}

		logger := commandLogger()
		client, err := newTogglClient(cfg, logger)
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := timeoutContext(downloadTimeout)
		defer cancel()
		return runDownload(ctx, cmd.OutOrStdout(), store, client, from, to)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadFrom, "from", "", "First day (YYYY-MM-DD, default: 6 days ago)")
	downloadCmd.Flags().StringVar(&downloadTo, "to", "", "Last day (YYYY-MM-DD, default: --from, or today when --from is omitted)")
	downloadCmd.Flags().StringVar(&downloadTZ, "tz", "", "IANA timezone for day boundaries (default: local)")
	downloadCmd.Flags().DurationVar(&downloadTimeout, "timeout", 60*time.Second, "Timeout for the remote request")
}

// resolveDownloadRange defaults to the 7 days ending today in the location
// of now.
func resolveDownloadRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	if strings.TrimSpace(from) == "" {
		if strings.TrimSpace(to) != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--to requires --from")
		}
		today := timeutil.StartOfDay(now)
		return today.AddDate(0, 0, -6), today.AddDate(0, 0, 1), nil
	}
	return timeutil.ParseDayRange(from, to, now.Location())
}

func runDownload(ctx context.Context, w io.Writer, store *storage.Store, fetcher storage.Fetcher, from, to time.Time) error {
	result, err := store.DownloadRange(ctx, from, to, fetcher)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Download completed for %s to %s. Fetched: %d, Inserted: %d, Replaced: %d, Kept local changes: %d, Removed: %d\n",
		from.Format(timeutil.DayLayout),
		to.AddDate(0, 0, -1).Format(timeutil.DayLayout),
		result.Fetched,
		result.Inserted,
		result.Replaced,
		result.SkippedPending,
		result.Pruned,
	)
	if result.Invalid > 0 || result.OutOfRange > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("Skipped remote entries: %d invalid, %d outside the range", result.Invalid, result.OutOfRange)))
	}
	return nil
}
