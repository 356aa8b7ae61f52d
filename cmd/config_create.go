package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"togglassistant/config"
)

var (
	configCreateBackend   string
	configCreateStorePath string
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

--backend selects the local store format (json or sqlite); --store-path overrides the
store file location. If a configuration file is already in use, no new file is written.
Run "config init" afterwards to fetch workspace and projects from Toggl.`,
	Example: `
  # Create default config at $HOME/.togglassistant.yaml
  togglassistant config create

  # Keep the local store in SQLite
  togglassistant config create --backend sqlite --store-path ~/toggl/entries.db
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(cmd.OutOrStdout(), configCreateBackend, configCreateStorePath)
	},
}

func saveDefaultConfig(w io.Writer, backend, storePath string) error {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != config.BackendJSON && backend != config.BackendSQLite {
		return fmt.Errorf("unsupported store backend: %s (supported: json, sqlite)", backend)
	}

	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath, config.ExampleYAMLFor(backend, storePath))
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(w, "New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Fprintf(w, "Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&configCreateBackend, "backend", config.BackendJSON, "Local store backend: json|sqlite")
	configCreateCmd.Flags().StringVar(&configCreateStorePath, "store-path", "", "Local store file (default: ./repository.json or ./repository.db)")
}
