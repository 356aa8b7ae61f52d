package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"togglassistant/config"
	"togglassistant/toggl"
)

var (
	configInitWorkspace       int64
	configInitIncludeArchived bool
	configInitTimeout         time.Duration
)

// workspaceLister is the part of the Toggl client used to initialize the
// configuration.
type workspaceLister interface {
	ListWorkspaces(ctx context.Context) ([]toggl.Workspace, error)
	ListProjects(ctx context.Context, workspaceID int64) ([]toggl.Project, error)
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Fetch workspace and projects from Toggl into the configuration.",
	Long: `Look up your Toggl workspaces and projects and store them in the config file:
- workspace_id: the selected workspace (prompted when there are several)
- projects: project name -> id map used by --project flags and import rules

Archived projects are skipped unless --include-archived is given. Existing values of
workspace_id and projects are replaced; all other settings are kept.
The config file is created from the example template when missing.`,
	Example: `
  # Initialize with the token from the environment
  TOGGL_API_TOKEN=... togglassistant config init

  # Select a workspace explicitly
  togglassistant config init --workspace 123456
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		if _, err := ensureConfigFileWithTemplate(configPath, config.ExampleYAML()); err != nil {
			return err
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		cfg, err := config.ValidateYAMLContent(content)
		if err != nil {
			return fmt.Errorf("config validation failed in %s: %w", configPath, err)
		}
		client, err := newTogglClient(cfg, commandLogger())
		if err != nil {
			return err
		}

		wanted := configInitWorkspace
		if wanted <= 0 {
			wanted = cfg.WorkspaceID
		}
		ctx, cancel := timeoutContext(configInitTimeout)
		defer cancel()
		workspace, projects, err := fetchWorkspaceSetup(ctx, client, bufio.NewReader(promptInput), promptOutput, wanted, configInitIncludeArchived)
		if err != nil {
			return err
		}

		updated, err := setWorkspaceInConfigYAML(content, workspace.ID, projects)
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, updated, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successStyle.Render("Configuration initialized."))
		fmt.Fprintf(out, "Config:    %s\n", configPath)
		fmt.Fprintf(out, "Workspace: %s (id=%d)\n", workspace.Name, workspace.ID)
		fmt.Fprintf(out, "Projects:  %d\n", len(projects))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Int64Var(&configInitWorkspace, "workspace", 0, "Workspace id to use (default: configured workspace, or prompt)")
	configInitCmd.Flags().BoolVar(&configInitIncludeArchived, "include-archived", false, "Also store archived projects")
	configInitCmd.Flags().DurationVar(&configInitTimeout, "timeout", 30*time.Second, "Timeout for the Toggl lookups")
}

// fetchWorkspaceSetup selects a workspace and returns its project map. A
// wanted id must exist; without one a single workspace is taken and several
// are offered in a prompt.
func fetchWorkspaceSetup(ctx context.Context, client workspaceLister, reader *bufio.Reader, out io.Writer, wanted int64, includeArchived bool) (toggl.Workspace, map[string]int64, error) {
	workspaces, err := client.ListWorkspaces(ctx)
	if err != nil {
		return toggl.Workspace{}, nil, fmt.Errorf("fetch workspaces: %w", err)
	}
	if len(workspaces) == 0 {
		return toggl.Workspace{}, nil, fmt.Errorf("no workspaces found for this API token")
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })

	var selected toggl.Workspace
	switch {
	case wanted > 0:
		found := false
		for _, workspace := range workspaces {
			if workspace.ID == wanted {
				selected, found = workspace, true
				break
			}
		}
		if !found {
			return toggl.Workspace{}, nil, fmt.Errorf("workspace %d not found for this API token", wanted)
		}
	case len(workspaces) == 1:
		selected = workspaces[0]
	default:
		options := make([]string, 0, len(workspaces))
		for _, workspace := range workspaces {
			options = append(options, fmt.Sprintf("%s (id=%d)", workspace.Name, workspace.ID))
		}
		idx, err := promptSelectIndex(reader, out, "Select workspace:", options)
		if err != nil {
			return toggl.Workspace{}, nil, err
		}
		selected = workspaces[idx]
	}

	projects, err := client.ListProjects(ctx, selected.ID)
	if err != nil {
		return toggl.Workspace{}, nil, fmt.Errorf("fetch projects of workspace %d: %w", selected.ID, err)
	}
	return selected, buildProjectMap(projects, includeArchived), nil
}

// buildProjectMap keys projects by name. Dots are dropped from names since
// the config loader treats them as key separators. Names that occur more
// than once (ignoring case) get their id appended so every key stays unique.
func buildProjectMap(projects []toggl.Project, includeArchived bool) map[string]int64 {
	counts := make(map[string]int, len(projects))
	selected := make([]toggl.Project, 0, len(projects))
	for _, project := range projects {
		if !project.Active && !includeArchived {
			continue
		}
		name := strings.Join(strings.Fields(strings.ReplaceAll(project.Name, ".", "")), " ")
		if name == "" || project.ID <= 0 {
			continue
		}
		project.Name = name
		counts[strings.ToLower(name)]++
		selected = append(selected, project)
	}

	out := make(map[string]int64, len(selected))
	for _, project := range selected {
		name := project.Name
		if counts[strings.ToLower(name)] > 1 {
			name = fmt.Sprintf("%s (%d)", name, project.ID)
		}
		out[name] = project.ID
	}
	return out
}

func promptSelectIndex(reader *bufio.Reader, out io.Writer, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options available for %q", title)
	}

	for {
		fmt.Fprintln(out, title)
		for i, option := range options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option)
		}
		fmt.Fprintf(out, "Choose [1-%d]: ", len(options))

		input, err := reader.ReadString('\n')
		if err != nil {
			return -1, fmt.Errorf("read selection input: %w", err)
		}
		var choice int
		if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &choice); err != nil || choice < 1 || choice > len(options) {
			fmt.Fprintln(out, "Invalid selection. Please enter a valid number.")
			continue
		}
		return choice - 1, nil
	}
}

// setWorkspaceInConfigYAML replaces workspace_id and projects in a config
// document and validates the result.
func setWorkspaceInConfigYAML(content []byte, workspaceID int64, projects map[string]int64) ([]byte, error) {
	if workspaceID <= 0 {
		return nil, fmt.Errorf("workspace id must be > 0")
	}

	doc := map[string]any{}
	if strings.TrimSpace(string(content)) != "" {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	doc[config.KeyWorkspaceID] = workspaceID
	doc[config.KeyProjects] = projects

	updated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}
