package config

import (
	"strings"
	"testing"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Store.Backend != BackendJSON || cfg.Store.Path != "./repository.json" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Toggl.APIURL != "https://api.track.toggl.com/api/v9" {
		t.Fatalf("unexpected api url: %q", cfg.Toggl.APIURL)
	}
}

func TestExampleYAMLFor_SQLiteBackend(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAMLFor("SQLite", "")))
	if err != nil {
		t.Fatalf("expected sqlite example to validate: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "./repository.db" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}

	cfg, err = ValidateYAMLContent([]byte(ExampleYAMLFor(BackendJSON, "/data/entries.json")))
	if err != nil {
		t.Fatalf("expected json example to validate: %v", err)
	}
	if cfg.Store.Path != "/data/entries.json" {
		t.Fatalf("expected custom path, got %q", cfg.Store.Path)
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("workspace_id: 7\n"))
	if err != nil {
		t.Fatalf("expected minimal config to validate: %v", err)
	}
	if cfg.WorkspaceID != 7 || cfg.Store.Backend != BackendJSON {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidateYAMLContent_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unsupported backend",
			content: "store:\n  backend: \"postgres\"\n  path: \"x\"\n",
			want:    "validation failed",
		},
		{
			name:    "invalid api url",
			content: "toggl:\n  api_url: \"not a url\"\n",
			want:    "validation failed",
		},
		{
			name:    "non-positive project id",
			content: "projects:\n  Internal: 0\n",
			want:    "requires an id > 0",
		},
		{
			name:    "import rule without template",
			content: "import:\n  rules:\n    - name: \"a\"\n",
			want:    "file_template is required",
		},
		{
			name:    "duplicate import rule",
			content: "import:\n  rules:\n    - name: \"a\"\n      file_template: \"*.csv\"\n    - name: \"A\"\n      file_template: \"*.xlsx\"\n",
			want:    "duplicate import rule",
		},
		{
			name:    "colliding project names",
			content: "projects:\n  \"Client  Work\": 1\n  \"client work\": 2\n",
			want:    "collide",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateYAMLContent([]byte(tc.content))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateYAMLContent_BackendIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("store:\n  backend: \"SQLite\"\n  path: \"./repository.db\"\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Fatalf("expected normalized backend, got %q", cfg.Store.Backend)
	}
}

func TestConfig_ResolveProject(t *testing.T) {
	t.Parallel()

	cfg := &Config{Projects: map[string]int64{"Client Work": 11, "Internal": 12}}

	id, err := cfg.ResolveProject("  client   work ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected 11, got %d", id)
	}

	_, err = cfg.ResolveProject("Holiday")
	if err == nil || !strings.Contains(err.Error(), "Client Work, Internal") {
		t.Fatalf("expected not found error listing known projects, got %v", err)
	}

	if _, err := (&Config{}).ResolveProject("Internal"); err == nil || !strings.Contains(err.Error(), "config init") {
		t.Fatalf("expected hint to run config init, got %v", err)
	}
}

func TestConfig_RequireTokenAndWorkspace(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if err := cfg.RequireToken(); err == nil || !strings.Contains(err.Error(), EnvAPIToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if err := cfg.RequireWorkspace(); err == nil {
		t.Fatalf("expected missing workspace error")
	}

	cfg.Toggl.APIToken = "token"
	cfg.WorkspaceID = 7
	if err := cfg.RequireToken(); err != nil {
		t.Fatalf("unexpected token error: %v", err)
	}
	if err := cfg.RequireWorkspace(); err != nil {
		t.Fatalf("unexpected workspace error: %v", err)
	}
}

func TestValidateYAMLContent_ImportRules(t *testing.T) {
	t.Parallel()

	content := []byte(`projects:
  Client Work: 11
import:
  rules:
    - name: "client"
      file_template: "client-*.csv"
      project: "Client Work"
      tags: ["imported"]
      billable: true
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if len(cfg.Import.Rules) != 1 {
		t.Fatalf("expected one rule, got %+v", cfg.Import.Rules)
	}
	rule := cfg.Import.Rules[0]
	if rule.Project != "Client Work" || len(rule.Tags) != 1 || rule.Billable == nil || !*rule.Billable {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}
