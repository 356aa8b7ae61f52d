package config

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyTogglAPIURL   = "toggl.api_url"
	KeyTogglAPIToken = "toggl.api_token"
	KeyWorkspaceID   = "workspace_id"
	KeyProjects      = "projects"
	KeyStoreBackend  = "store.backend"
	KeyStorePath     = "store.path"
	KeyImportRules   = "import.rules"
	KeyImportSync    = "import.sync_after_import"

	EnvAPIToken = "TOGGL_API_TOKEN"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	Toggl       TogglConfig      `mapstructure:"toggl" validate:"required"`
	WorkspaceID int64            `mapstructure:"workspace_id" validate:"gte=0"`
	Projects    map[string]int64 `mapstructure:"projects"`
	Store       StoreConfig      `mapstructure:"store" validate:"required"`
	Import      ImportConfig     `mapstructure:"import"`
}

type TogglConfig struct {
	APIURL   string `mapstructure:"api_url" validate:"required,url"`
	APIToken string `mapstructure:"api_token"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=json sqlite"`
	Path    string `mapstructure:"path" validate:"required"`
}

type ImportConfig struct {
	SyncAfterImport bool         `mapstructure:"sync_after_import"`
	Rules           []ImportRule `mapstructure:"rules"`
}

// ImportRule supplies values for imported files whose name matches
// FileTemplate. Row columns win over rule values.
type ImportRule struct {
	Name         string   `mapstructure:"name"`
	FileTemplate string   `mapstructure:"file_template"`
	Project      string   `mapstructure:"project"`
	Tags         []string `mapstructure:"tags"`
	Billable     *bool    `mapstructure:"billable"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return ExampleYAMLFor(BackendJSON, "")
}

// ExampleYAMLFor returns the configuration template for a store backend. An
// empty path selects the backend's default file name.
func ExampleYAMLFor(backend, path string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendJSON
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultStorePath(backend)
	}
	return fmt.Sprintf(exampleTemplate, backend, path)
}

// DefaultStorePath is the store file used when store.path is not configured.
func DefaultStorePath(backend string) string {
	if backend == BackendSQLite {
		return "./repository.db"
	}
	return "./repository.json"
}

const exampleTemplate = `# togglassistant configuration
toggl:
  api_url: "https://api.track.toggl.com/api/v9"
  # API token from your Toggl profile page; TOGGL_API_TOKEN overrides it.
  api_token: ""

# Filled by "togglassistant config init".
workspace_id: 0
projects: {}

store:
  backend: %q # json | sqlite
  path: %q

import:
  sync_after_import: false
  # Values applied to imported files whose name matches file_template.
  # rules:
  #   - name: "client"
  #     file_template: "client-*.csv"
  #     project: "Client Work"
  #     tags: ["imported"]
  #     billable: true
  rules: []
`

// ResolveProject maps a configured project name to its identifier. Names are
// matched case-insensitively with collapsed whitespace.
func (c *Config) ResolveProject(name string) (int64, error) {
	wanted := normalizeName(name)
	if wanted == "" {
		return 0, errors.New("project name must not be empty")
	}
	for configured, id := range c.Projects {
		if strings.EqualFold(normalizeName(configured), wanted) {
			return id, nil
		}
	}

	known := make([]string, 0, len(c.Projects))
	for configured := range c.Projects {
		known = append(known, configured)
	}
	sort.Strings(known)
	if len(known) == 0 {
		return 0, fmt.Errorf("project %q not found: no projects configured (run \"togglassistant config init\")", name)
	}
	return 0, fmt.Errorf("project %q not found (known: %s)", name, strings.Join(known, ", "))
}

// RequireToken fails when no API token is configured.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Toggl.APIToken) == "" {
		return fmt.Errorf("toggl API token is not configured: set %s or %s", KeyTogglAPIToken, EnvAPIToken)
	}
	return nil
}

// RequireWorkspace fails when no default workspace is configured.
func (c *Config) RequireWorkspace() error {
	if c.WorkspaceID <= 0 {
		return fmt.Errorf("%s is not configured (run \"togglassistant config init\")", KeyWorkspaceID)
	}
	return nil
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateProjects(cfg.Projects); err != nil {
		return nil, err
	}
	if err := validateImportRules(cfg.Import.Rules); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTogglAPIURL, "https://api.track.toggl.com/api/v9")
	v.SetDefault(KeyTogglAPIToken, "")
	v.SetDefault(KeyWorkspaceID, 0)
	v.SetDefault(KeyProjects, map[string]int64{})
	v.SetDefault(KeyStoreBackend, BackendJSON)
	v.SetDefault(KeyStorePath, "./repository.json")
	v.SetDefault(KeyImportSync, false)
	v.SetDefault(KeyImportRules, []map[string]any{})
	_ = v.BindEnv(KeyTogglAPIToken, EnvAPIToken)
}

func validateProjects(projects map[string]int64) error {
	seen := make(map[string]string, len(projects))
	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.ToLower(normalizeName(name))
		if key == "" {
			return errors.New("validation failed: projects contains an empty name")
		}
		if other, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: project names %q and %q collide", other, name)
		}
		seen[key] = name
		if projects[name] <= 0 {
			return fmt.Errorf("validation failed: projects[%q] requires an id > 0", name)
		}
	}
	return nil
}

func validateImportRules(rules []ImportRule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return fmt.Errorf("validation failed: import.rules[%d].name is required", i)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate import rule name %q", name)
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(rule.FileTemplate) == "" {
			return fmt.Errorf("validation failed: import.rules[%d].file_template is required", i)
		}
		for j, tag := range rule.Tags {
			if strings.TrimSpace(tag) == "" {
				return fmt.Errorf("validation failed: import.rules[%d].tags[%d] must not be empty", i, j)
			}
		}
	}
	return nil
}

func normalizeName(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
