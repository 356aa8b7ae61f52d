package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"togglassistant/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The API token is masked.`,
	Example: `
  # Show active configuration
  togglassistant config show
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			configPath = "(none, defaults and environment only)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Config file loaded from:", configPath)
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "toggl.api_url: %s\n", cfg.Toggl.APIURL)
	fmt.Fprintf(w, "toggl.api_token: %s\n", maskToken(cfg.Toggl.APIToken))
	fmt.Fprintf(w, "workspace_id: %d\n", cfg.WorkspaceID)

	names := make([]string, 0, len(cfg.Projects))
	for name := range cfg.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "projects: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "projects[%s]: %d\n", name, cfg.Projects[name])
	}

	fmt.Fprintf(w, "store.backend: %s\n", cfg.Store.Backend)
	fmt.Fprintf(w, "store.path: %s\n", cfg.Store.Path)
	fmt.Fprintf(w, "import.sync_after_import: %t\n", cfg.Import.SyncAfterImport)
	fmt.Fprintf(w, "import.rules: %d\n", len(cfg.Import.Rules))
	for i, rule := range cfg.Import.Rules {
		fmt.Fprintf(w, "import.rules[%d].name: %s\n", i, rule.Name)
		fmt.Fprintf(w, "import.rules[%d].file_template: %s\n", i, rule.FileTemplate)
		fmt.Fprintf(w, "import.rules[%d].project: %s\n", i, rule.Project)
		fmt.Fprintf(w, "import.rules[%d].tags: %s\n", i, strings.Join(rule.Tags, ", "))
		billableStr := "(row value)"
		if rule.Billable != nil {
			billableStr = fmt.Sprintf("%t", *rule.Billable)
		}
		fmt.Fprintf(w, "import.rules[%d].billable: %s\n", i, billableStr)
	}
}

// maskToken keeps the last four characters of a token visible.
func maskToken(token string) string {
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 4:
		return "****"
	default:
		return strings.Repeat("*", 8) + token[len(token)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
