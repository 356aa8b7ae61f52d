package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"togglassistant/config"
	"togglassistant/storage"
	"togglassistant/toggl"
)

const userAgent = "togglassistant/1.0"

// newLogger writes structured logs to w. Only warnings and errors are shown
// unless debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func commandLogger() *slog.Logger {
	return newLogger(os.Stderr, verbose)
}

// openStore opens the configured snapshot backend and loads the store. A
// corrupt snapshot is reported on warn and the store starts empty. The
// returned close function releases the backend.
func openStore(cfg *config.Config, logger *slog.Logger, warn io.Writer) (*storage.Store, func() error, error) {
	var (
		snapshot storage.Snapshot
		closer   = func() error { return nil }
	)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := storage.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		snapshot = db
		closer = db.Close
	case config.BackendJSON, "":
		snapshot = storage.NewJSONFile(cfg.Store.Path)
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s (supported: json, sqlite)", cfg.Store.Backend)
	}

	store := storage.NewStore(snapshot, logger)
	if err := store.Load(); err != nil {
		var persistErr *storage.PersistenceError
		if !errors.As(err, &persistErr) {
			_ = closer()
			return nil, nil, err
		}
		fmt.Fprintf(warn, "Warning: %v (starting with an empty store)\n", err)
	}
	return store, closer, nil
}

func newTogglClient(cfg *config.Config, logger *slog.Logger) (*toggl.HTTPClient, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	return toggl.NewClient(toggl.ClientConfig{
		BaseURL:   cfg.Toggl.APIURL,
		APIToken:  cfg.Toggl.APIToken,
		UserAgent: userAgent,
		Logger:    logger,
	})
}

func parseEntryID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid time entry id %q", value)
	}
	return id, nil
}

func parseEntryIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		id, err := parseEntryID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func timeoutContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// resolveLocation returns the named IANA zone, or the local zone when name
// is empty.
func resolveLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// projectNames inverts the configured project map for display.
func projectNames(cfg *config.Config) map[int64]string {
	names := make(map[int64]string, len(cfg.Projects))
	for name, id := range cfg.Projects {
		names[id] = name
	}
	return names
}
