package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/internal/timeutil"
	"togglassistant/storage"
)

var (
	listStates []string
	listAll    bool
	listFrom   string
	listTo     string
	listTZ     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local time entries with their lifecycle state",
	Long: `List entries of the local store sorted by start time.

By default deleted entries are hidden. --all includes them, --state restricts the
output to the given states. --from/--to restrict by start day (inclusive).`,
	Example: `
  # All current entries
  togglassistant list

  # Only pending changes
  togglassistant list --state new --state modified --state deleted

  # Entries of one week
  togglassistant list --from 2025-01-06 --to 2025-01-12
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		states, err := parseStates(listStates, listAll)
		if err != nil {
			return err
		}
		loc, err := resolveLocation(listTZ)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, commandLogger(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		items := store.Query(states...)
		if strings.TrimSpace(listFrom) != "" {
			from, to, err := timeutil.ParseDayRange(listFrom, listTo, loc)
			if err != nil {
				return err
			}
			items = filterItemsByRange(items, from, to)
		}

		return renderItems(cmd.OutOrStdout(), items, projectNames(cfg), loc)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringArrayVar(&listStates, "state", nil, "Only entries in this state: unchanged|new|modified|deleted (repeatable)")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include deleted entries")
	listCmd.Flags().StringVar(&listFrom, "from", "", "First start day (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Last start day (YYYY-MM-DD, default: --from)")
	listCmd.Flags().StringVar(&listTZ, "tz", "", "IANA timezone for display and day boundaries (default: local)")
}

// parseStates converts --state values. Without values the result is nil
// (current view), or every state when all is set.
func parseStates(values []string, all bool) ([]storage.State, error) {
	if len(values) == 0 {
		if all {
			return storage.States, nil
		}
		return nil, nil
	}
	states := make([]storage.State, 0, len(values))
	for _, value := range values {
		state, err := storage.ParseState(value)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

func filterItemsByRange(items []storage.Item, from, to time.Time) []storage.Item {
	out := make([]storage.Item, 0, len(items))
	for _, item := range items {
		start := item.Entry.Start
		if start.Before(from) || !start.Before(to) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func renderItems(w io.Writer, items []storage.Item, projects map[int64]string, loc *time.Location) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No entries."))
		return err
	}

	sorted := append([]storage.Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entry.Start.Before(sorted[j].Entry.Start)
	})

	type line struct {
		id, start, duration, project, tags, description string
		state                                           storage.State
		running                                         bool
	}
	lines := make([]line, 0, len(sorted))
	idWidth, projectWidth, tagsWidth := len("ID"), len("PROJECT"), len("TAGS")
	var total int64
	for _, item := range sorted {
		entry := item.Entry
		l := line{
			id:          strconv.FormatInt(entry.ID, 10),
			start:       entry.Start.In(loc).Format("2006-01-02 15:04"),
			duration:    timeutil.FormatSeconds(entry.Duration),
			tags:        strings.Join(entry.Tags, ","),
			description: entry.DescriptionOrEmpty(),
			state:       item.State,
			running:     entry.IsRunning(),
		}
		if l.running {
			l.duration = "running"
		} else {
			total += entry.Duration
		}
		if entry.Billable {
			l.duration += " $"
		}
		if entry.ProjectID != nil {
			l.project = projects[*entry.ProjectID]
			if l.project == "" {
				l.project = fmt.Sprintf("#%d", *entry.ProjectID)
			}
		}
		idWidth = max(idWidth, len(l.id))
		projectWidth = max(projectWidth, len(l.project))
		tagsWidth = max(tagsWidth, len(l.tags))
		lines = append(lines, l)
	}

	header := fmt.Sprintf("%-*s  %-9s  %-16s  %-9s  %-*s  %-*s  %s",
		idWidth, "ID", "STATE", "START", "DURATION", projectWidth, "PROJECT", tagsWidth, "TAGS", "DESCRIPTION")
	if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
		return fmt.Errorf("write entry list: %w", err)
	}
	for _, l := range lines {
		duration := fmt.Sprintf("%-9s", l.duration)
		if l.running {
			duration = runningStyle.Render(duration)
		}
		_, err := fmt.Fprintf(w, "%-*s  %s  %-16s  %s  %-*s  %-*s  %s\n",
			idWidth, l.id, stateLabel(l.state), l.start, duration, projectWidth, l.project, tagsWidth, l.tags, l.description)
		if err != nil {
			return fmt.Errorf("write entry list: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "%d entries, %s tracked\n", len(sorted), timeutil.FormatSeconds(total))
	return err
}
