package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"togglassistant/config"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active togglassistant config file in $VISUAL, $EDITOR or vi (first one set wins).

A missing config file is created from the example template before the editor starts.
When the editor exits, the file is validated; missing API token or workspace settings are
reported as hints.`,
	Example: `
  # Edit active config
  togglassistant config edit

  # Edit a specific file with nano
  EDITOR=nano togglassistant config edit --configFile ./team.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(configPath, config.ExampleYAML())
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "Created example config at %s\n", configPath)
		}
		before, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		editorCommand, err := buildEditorCommand(resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR")), configPath)
		if err != nil {
			return err
		}
		editorCommand.Stdin = cmd.InOrStdin()
		editorCommand.Stdout = out
		editorCommand.Stderr = cmd.ErrOrStderr()
		if err := editorCommand.Run(); err != nil {
			return fmt.Errorf("run editor %q: %w", editorCommand.Path, err)
		}

		after, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read edited config: %w", err)
		}
		cfg, err := config.ValidateYAMLContent(after)
		if err != nil {
			return fmt.Errorf("%s is not a valid config (run \"togglassistant config edit\" again to fix it): %w", configPath, err)
		}

		if !created && bytes.Equal(before, after) {
			fmt.Fprintln(out, dimStyle.Render("No changes to "+configPath))
		} else {
			fmt.Fprintln(out, successStyle.Render("Saved "+configPath))
		}
		printConfigHints(out, cfg)
		return nil
	},
}

// printConfigHints points at settings that still block remote commands.
func printConfigHints(w io.Writer, cfg *config.Config) {
	if err := cfg.RequireToken(); err != nil {
		fmt.Fprintln(w, warningStyle.Render("Hint: "+err.Error()))
	}
	if err := cfg.RequireWorkspace(); err != nil {
		fmt.Fprintln(w, warningStyle.Render("Hint: "+err.Error()))
	}
}

func resolveConfigEditPath(configFileFlag, configFileUsed string) (string, error) {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag, nil
	}
	if strings.TrimSpace(configFileUsed) != "" {
		return configFileUsed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".togglassistant.yaml"), nil
}

func ensureConfigFileWithTemplate(path, template string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(template), 0o600); err != nil {
		return false, fmt.Errorf("write example config: %w", err)
	}

	return true, nil
}

func resolveEditorValue(candidates ...string) string {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

func buildEditorCommand(editorValue, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(editorValue)
	if len(fields) == 0 {
		return nil, errors.New("editor command is empty")
	}
	// "code --wait" style values carry their own arguments.
	args := append(fields[1:len(fields):len(fields)], configPath)
	return exec.Command(fields[0], args...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
