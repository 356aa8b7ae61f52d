package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"togglassistant/timeentry"
)

// Snapshot is a durable home for the canonical records of a Store. Read must
// report a missing snapshot with an error matching fs.ErrNotExist. Write must
// replace the previous snapshot atomically.
type Snapshot interface {
	Read() ([]timeentry.Record, error)
	Write(records []timeentry.Record) error
	Location() string
}

// JSONFile stores the snapshot as an indented JSON array.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Location() string {
	return f.Path
}

func (f *JSONFile) Read() ([]timeentry.Record, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var records []timeentry.Record
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return records, nil
}

// Write encodes into a temporary file next to the target and renames it into
// place, so readers see either the old or the new snapshot.
func (f *JSONFile) Write(records []timeentry.Record) error {
	if records == nil {
		records = []timeentry.Record{}
	}
	payload, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temporary snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temporary snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temporary snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
