package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/storage"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Mark local time entries as deleted",
	Long: `Mark one or more time entries as deleted in the local store.

Deleted entries disappear from "list" immediately. The removal is pushed to Toggl by
the next "sync". Entries that were never synced (negative ids) are dropped locally
without a remote call.`,
	Example: `
  # Delete one synced entry
  togglassistant delete 4711

  # Delete several entries, including an unsynced one
  togglassistant delete 4711 4712 -- -2
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseEntryIDs(args)
		if err != nil {
			return err
		}
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, commandLogger(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		return runDelete(cmd.OutOrStdout(), store, ids)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

// runDelete marks every id it can and reports the ones it could not.
func runDelete(w io.Writer, store *storage.Store, ids []int64) error {
	var errs []error
	deleted := 0
	for _, id := range ids {
		if err := store.Delete(id); err != nil {
			var notFound *storage.NotFoundError
			if errors.As(err, &notFound) {
				errs = append(errs, err)
				continue
			}
			return err
		}
		deleted++
		fmt.Fprintf(w, "Marked entry %d as deleted.\n", id)
	}
	if deleted > 0 {
		fmt.Fprintf(w, "Run \"togglassistant sync\" to push %d deletion(s) to Toggl.\n", deleted)
	}
	return errors.Join(errs...)
}
