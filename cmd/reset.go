package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"togglassistant/config"
)

var (
	promptInput  io.Reader = os.Stdin
	promptOutput io.Writer = os.Stdout
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the complete local store file",
	Long: `Destructive cleanup command.

This command deletes the configured store file (store.path), including pending
changes that were never synced. Before deletion, an interactive security prompt
requires typing exactly "Y". Use "download" afterwards to pull entries again.`,
	Example: `
  # Delete the local store (requires interactive confirmation)
  togglassistant reset
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		path := cfg.Store.Path

		question := fmt.Sprintf("Delete store file %q with all unsynced changes?", path)
		confirmed, err := confirmPrompt(promptInput, promptOutput, question)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("reset aborted: confirmation was not 'Y'")
		}

		if err := removeStoreFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted store file: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

// confirmPrompt asks question and accepts only an exact "Y".
func confirmPrompt(input io.Reader, output io.Writer, question string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "%s Type Y to confirm: ", question); err != nil {
		return false, fmt.Errorf("write confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeStoreFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store file not found: %s", path)
		}
		return fmt.Errorf("stat store file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("store path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete store file: %w", err)
	}
	return nil
}
