package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage togglassistant configuration file values.",
	Long: `Create, initialize, edit, display, and delete the togglassistant configuration file.

The configuration stores application-wide values:
- toggl.api_url / toggl.api_token (or TOGGL_API_TOKEN)
- workspace_id and projects (name -> id), filled by "config init"
- store.backend (json|sqlite) / store.path
- import.sync_after_import / import.rules[].file_template + project/tags/billable`,
	Example: `
  # Create default config in $HOME/.togglassistant.yaml
  togglassistant config create

  # Fetch workspace and projects from Toggl into the config
  TOGGL_API_TOKEN=... togglassistant config init

  # Show active config and source file
  togglassistant config show

  # Open active config in editor (creates example if missing)
  togglassistant config edit

  # Delete active config file
  togglassistant config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
