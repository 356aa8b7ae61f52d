package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"togglassistant/config"
)

func TestSaveDefaultConfigCreatesExampleTemplate(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "create-template.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	var out bytes.Buffer
	if err := saveDefaultConfig(&out, "json", ""); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}
	if !strings.Contains(out.String(), "New config file created") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# togglassistant configuration") {
		t.Fatalf("expected example header in config file, got:\n%s", text)
	}
	if !strings.Contains(text, "api_url: \"https://api.track.toggl.com/api/v9\"") {
		t.Fatalf("expected Toggl API URL in config file, got:\n%s", text)
	}
}

func TestSaveDefaultConfigWithSQLiteBackend(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "sqlite.yaml")
	viper.Reset()

	storePath := filepath.Join(dir, "entries.db")
	if err := saveDefaultConfig(&bytes.Buffer{}, "sqlite", storePath); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(cfgFile)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("created config does not validate: %v", err)
	}
	if cfg.Store.Backend != config.BackendSQLite || cfg.Store.Path != storePath {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
}

func TestSaveDefaultConfigRejectsUnknownBackend(t *testing.T) {
	if err := saveDefaultConfig(&bytes.Buffer{}, "postgres", ""); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestSaveDefaultConfigDoesNotOverwriteExistingFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "existing.yaml")
	original := "toggl:\n  api_token: \"secret\"\nworkspace_id: 7\n"
	if err := os.WriteFile(tmpConfig, []byte(original), 0o644); err != nil {
		t.Fatalf("failed writing initial config: %v", err)
	}

	cfgFile = tmpConfig
	viper.Reset()

	var out bytes.Buffer
	if err := saveDefaultConfig(&out, "json", ""); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("failed reading existing config after create: %v", err)
	}
	if string(content) != original {
		t.Fatalf("expected existing config to remain unchanged")
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
