package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

// editOptions holds edit flags. Nil pointers are flags that were not given.
type editOptions struct {
	Description      *string
	ClearDescription bool
	Start            *string
	Stop             *string
	Duration         *time.Duration
	Project          *string
	ProjectID        *int64
	ClearProject     bool
	Tags             *[]string
	ClearTags        bool
	Billable         *bool
	WorkspaceID      *int64
}

var (
	editDescription      string
	editClearDescription bool
	editStart            string
	editStop             string
	editDuration         time.Duration
	editProject          string
	editProjectID        int64
	editClearProject     bool
	editTags             []string
	editClearTags        bool
	editBillable         bool
	editWorkspaceID      int64
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a local time entry",
	Long: `Apply a partial update to a local time entry. Only the given flags change.

A synced entry becomes "modified"; an entry that is still "new" stays new.
--tag replaces the full tag list. --stop recomputes the duration from the start.`,
	Example: `
  # Fix the description of a synced entry
  togglassistant edit 4711 --description "Code review (PR 12)"

  # Stop a running entry
  togglassistant edit -3 --stop now

  # Move an entry to another project and replace its tags
  togglassistant edit 4711 --project "Internal" --tag meeting --tag planning
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
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

		item, ok := store.Get(id)
		if !ok || item.State == storage.StateDeleted {
			return &storage.NotFoundError{ID: id}
		}

		patch, err := buildEditPatch(editOptionsFromFlags(cmd), cfg, item.Entry, time.Now())
		if err != nil {
			return err
		}
		return runEdit(cmd.OutOrStdout(), store, id, patch)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().BoolVar(&editClearDescription, "clear-description", false, "Remove the description")
	editCmd.Flags().StringVarP(&editStart, "start", "s", "", "New start time (RFC 3339 or natural expression)")
	editCmd.Flags().StringVar(&editStop, "stop", "", "New stop time; the duration is recomputed")
	editCmd.Flags().DurationVar(&editDuration, "duration", 0, "New duration, e.g. 45m")
	editCmd.Flags().StringVarP(&editProject, "project", "p", "", "New project name from the configured projects map")
	editCmd.Flags().Int64Var(&editProjectID, "project-id", 0, "New project id")
	editCmd.Flags().BoolVar(&editClearProject, "clear-project", false, "Remove the project")
	editCmd.Flags().StringArrayVarP(&editTags, "tag", "t", nil, "Tag (repeatable, replaces all tags)")
	editCmd.Flags().BoolVar(&editClearTags, "clear-tags", false, "Remove all tags")
	editCmd.Flags().BoolVarP(&editBillable, "billable", "b", false, "Billable flag (use --billable=false to unset)")
	editCmd.Flags().Int64Var(&editWorkspaceID, "workspace", 0, "New workspace id")
}

func editOptionsFromFlags(cmd *cobra.Command) editOptions {
	flags := cmd.Flags()
	opts := editOptions{
		ClearDescription: editClearDescription,
		ClearProject:     editClearProject,
		ClearTags:        editClearTags,
	}
	if flags.Changed("description") {
		opts.Description = &editDescription
	}
	if flags.Changed("start") {
		opts.Start = &editStart
	}
	if flags.Changed("stop") {
		opts.Stop = &editStop
	}
	if flags.Changed("duration") {
		opts.Duration = &editDuration
	}
	if flags.Changed("project") {
		opts.Project = &editProject
	}
	if flags.Changed("project-id") {
		opts.ProjectID = &editProjectID
	}
	if flags.Changed("tag") {
		opts.Tags = &editTags
	}
	if flags.Changed("billable") {
		opts.Billable = &editBillable
	}
	if flags.Changed("workspace") {
		opts.WorkspaceID = &editWorkspaceID
	}
	return opts
}

func buildEditPatch(opts editOptions, cfg *config.Config, current timeentry.Entry, now time.Time) (timeentry.Patch, error) {
	var patch timeentry.Patch

	if opts.Description != nil && opts.ClearDescription {
		return patch, fmt.Errorf("use either --description or --clear-description, not both")
	}
	if opts.ClearDescription {
		patch.ClearDescription = true
	}
	if opts.Description != nil {
		patch.Description = timeentry.StringPtr(*opts.Description)
		patch.ClearDescription = patch.Description == nil
	}

	if opts.Start != nil {
		start, err := parseMoment(*opts.Start, now)
		if err != nil {
			return patch, fmt.Errorf("--start: %w", err)
		}
		patch.Start = &start
	}

	if opts.Stop != nil && opts.Duration != nil {
		return patch, fmt.Errorf("use either --duration or --stop, not both")
	}
	if opts.Duration != nil {
		if *opts.Duration < 0 {
			return patch, fmt.Errorf("--duration must not be negative")
		}
		seconds := int64(*opts.Duration / time.Second)
		patch.Duration = &seconds
	}
	if opts.Stop != nil {
		stop, err := parseMoment(*opts.Stop, now)
		if err != nil {
			return patch, fmt.Errorf("--stop: %w", err)
		}
		patch.Stop = &stop
	}

	if opts.ClearProject && (opts.Project != nil || opts.ProjectID != nil) {
		return patch, fmt.Errorf("use either --clear-project or a project flag, not both")
	}
	if opts.ClearProject {
		patch.ClearProject = true
	}
	if opts.Project != nil || opts.ProjectID != nil {
		name, id := "", int64(0)
		if opts.Project != nil {
			name = *opts.Project
		}
		if opts.ProjectID != nil {
			id = *opts.ProjectID
		}
		projectID, err := resolveProjectFlag(cfg, name, id)
		if err != nil {
			return patch, err
		}
		if projectID == nil {
			patch.ClearProject = true
		} else {
			patch.ProjectID = projectID
		}
	}

	if opts.Tags != nil && opts.ClearTags {
		return patch, fmt.Errorf("use either --tag or --clear-tags, not both")
	}
	if opts.ClearTags {
		patch.Tags = &[]string{}
	}
	if opts.Tags != nil {
		tags := cleanTags(*opts.Tags)
		patch.Tags = &tags
	}

	patch.Billable = opts.Billable
	patch.WorkspaceID = opts.WorkspaceID

	if patch.IsEmpty() {
		return patch, fmt.Errorf("nothing to change for entry %d: pass at least one field flag", current.ID)
	}
	if _, err := current.Apply(patch); err != nil {
		return patch, err
	}
	return patch, nil
}

func runEdit(w io.Writer, store *storage.Store, id int64, patch timeentry.Patch) error {
	if err := store.Update(id, patch); err != nil {
		return err
	}
	item, _ := store.Get(id)
	fmt.Fprintf(w, "Updated entry %d (state: %s).\n", id, item.State)
	return nil
}

// describeEntry renders a short single-line description for confirmations.
func describeEntry(entry timeentry.Entry) string {
	description := strings.TrimSpace(entry.DescriptionOrEmpty())
	if description == "" {
		description = "(no description)"
	}
	return fmt.Sprintf("%d %s %s", entry.ID, entry.Start.Format(time.RFC3339), description)
}
