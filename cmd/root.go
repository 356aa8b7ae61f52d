/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"togglassistant/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "togglassistant",
	Short: "Track, edit, and sync Toggl time entries from a local store.",
	Long: `
**********************************************
*              TOGGL ASSISTANT               *
**********************************************

This CLI keeps a local copy of your Toggl Track time entries. Entries are added,
edited, and deleted locally (offline), tagged with a lifecycle state, and pushed to
Toggl with "sync". Remote entries are pulled with "download".

Lifecycle states:
- unchanged: identical to the last known remote version
- new: created locally, not yet on Toggl (negative placeholder id)
- modified: changed locally since the last sync
- deleted: removed locally, removal not yet pushed
`,
	Example: `
  # Create configuration file and fetch workspace/projects from Toggl
  togglassistant config create
  togglassistant config init

  # Pull this month's entries
  togglassistant download --from 2025-01-01 --to 2025-01-31

  # Add an entry locally
  togglassistant add --description "Code review" --start 2025-01-10T09:00:00+01:00 --duration 1h30m --project "Client Work"

  # Show local entries and pending changes
  togglassistant list
  togglassistant sync --dry-run

  # Push pending changes to Toggl
  togglassistant sync

  # Export daily summary
  togglassistant export --mode daily --output ./daily-summary.xlsx
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.togglassistant.yaml, then ./.togglassistant.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output (remote requests, store operations) to stderr")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory, then the working directory, with name ".togglassistant".
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".togglassistant")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: togglassistant config create")
	}
}
