package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"togglassistant/config"
	"togglassistant/storage"
	"togglassistant/timeentry"
	"togglassistant/toggl"
)

func TestParseEntryID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "4711", want: 4711},
		{value: " -2 ", want: -2},
		{value: "0", wantErr: true},
		{value: "abc", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseEntryID(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.value)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%q: expected %d, got %d (%v)", tt.value, tt.want, got, err)
		}
	}
}

func TestOpenStoreBackends(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t, backend)
			store, closeStore, err := openStore(cfg, nil, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("open store: %v", err)
			}
			if _, err := store.Add(testFields(t, "first")); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := closeStore(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened, closeAgain, err := openStore(cfg, nil, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("reopen store: %v", err)
			}
			defer closeAgain()
			items := reopened.Query()
			if len(items) != 1 || items[0].State != storage.StateUnchanged || items[0].Entry.Description == nil || *items[0].Entry.Description != "first" {
				t.Fatalf("expected the entry to reload unchanged, got %+v", items)
			}
		})
	}
}

func TestOpenStoreWarnsOnCorruptSnapshot(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.BackendJSON)
	if err := os.WriteFile(cfg.Store.Path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	var warn bytes.Buffer
	store, closeStore, err := openStore(cfg, nil, &warn)
	if err != nil {
		t.Fatalf("expected corrupt snapshot to be recoverable, got %v", err)
	}
	defer closeStore()
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
	if !strings.Contains(warn.String(), "Warning") {
		t.Fatalf("expected warning, got %q", warn.String())
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.BackendJSON)
	cfg.Store.Backend = "postgres"
	if _, _, err := openStore(cfg, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewTogglClientRequiresToken(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.BackendJSON)
	cfg.Toggl.APIToken = ""
	if _, err := newTogglClient(cfg, nil); err == nil {
		t.Fatalf("expected error without token")
	}

	cfg.Toggl.APIToken = "secret"
	if _, err := newTogglClient(cfg, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveLocation(t *testing.T) {
	t.Parallel()

	loc, err := resolveLocation("")
	if err != nil || loc != time.Local {
		t.Fatalf("expected local zone, got %v (%v)", loc, err)
	}
	loc, err = resolveLocation("Europe/Berlin")
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %v (%v)", loc, err)
	}
	if _, err := resolveLocation("Mars/Olympus"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}

// fakeToggl records remote calls and hands out increasing ids.
type fakeToggl struct {
	calls     []string
	nextID    int64
	entries   []timeentry.Record
	running   *timeentry.Record
	failOn    map[string]error
	workspace []toggl.Workspace
	projects  map[int64][]toggl.Project
}

func (f *fakeToggl) fail(op string) error {
	f.calls = append(f.calls, op)
	if f.failOn == nil {
		return nil
	}
	return f.failOn[op]
}

func (f *fakeToggl) ListEntries(ctx context.Context, start, end time.Time) ([]timeentry.Record, error) {
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	return f.entries, nil
}

func (f *fakeToggl) CreateEntry(ctx context.Context, record timeentry.Record) (int64, error) {
	if err := f.fail("create"); err != nil {
		return 0, err
	}
	f.nextID++
	return 1000 + f.nextID, nil
}

func (f *fakeToggl) UpdateEntry(ctx context.Context, id int64, record timeentry.Record) (timeentry.Record, error) {
	if err := f.fail("update"); err != nil {
		return timeentry.Record{}, err
	}
	return record, nil
}

func (f *fakeToggl) DeleteEntry(ctx context.Context, workspaceID, id int64) error {
	return f.fail("delete")
}

func (f *fakeToggl) GetRunningEntry(ctx context.Context) (*timeentry.Record, error) {
	if err := f.fail("running"); err != nil {
		return nil, err
	}
	return f.running, nil
}

func (f *fakeToggl) ListWorkspaces(ctx context.Context) ([]toggl.Workspace, error) {
	if err := f.fail("workspaces"); err != nil {
		return nil, err
	}
	return f.workspace, nil
}

func (f *fakeToggl) ListProjects(ctx context.Context, workspaceID int64) ([]toggl.Project, error) {
	if err := f.fail("projects"); err != nil {
		return nil, err
	}
	return f.projects[workspaceID], nil
}

var _ toggl.Client = (*fakeToggl)(nil)

var errRemote = errors.New("remote unavailable")

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		Toggl:       config.TogglConfig{APIURL: toggl.DefaultBaseURL, APIToken: "secret"},
		WorkspaceID: 7,
		Projects:    map[string]int64{"Client Work": 11, "Internal": 12},
		Store: config.StoreConfig{
			Backend: backend,
			Path:    filepath.Join(t.TempDir(), "repository."+backend),
		},
	}
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewStore(storage.NewJSONFile(filepath.Join(t.TempDir(), "repository.json")), nil)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func testFields(t *testing.T, description string) timeentry.Fields {
	t.Helper()
	return timeentry.Fields{
		WorkspaceID: 7,
		Start:       mustTime(t, "2025-01-10T09:00:00+01:00"),
		Duration:    3600,
		Description: timeentry.StringPtr(description),
		Tags:        []string{},
	}
}

// seedSynced stores records as if they had been downloaded.
func seedSynced(t *testing.T, store *storage.Store, records ...timeentry.Record) {
	t.Helper()
	start, end := mustTime(t, "2000-01-01T00:00:00Z"), mustTime(t, "2100-01-01T00:00:00Z")
	if _, err := store.DownloadRange(context.Background(), start, end, &fakeToggl{entries: records}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func syncedRecord(t *testing.T, id int64, start string, duration int64) timeentry.Record {
	t.Helper()
	entry, err := timeentry.New(id, timeentry.Fields{
		WorkspaceID: 7,
		Start:       mustTime(t, start),
		Duration:    duration,
		Description: timeentry.StringPtr("synced"),
		Tags:        []string{},
	})
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	return entry.Record()
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}
