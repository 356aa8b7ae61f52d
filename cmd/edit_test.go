package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"togglassistant/config"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

func TestBuildEditPatch(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.BackendJSON)
	now := mustTime(t, "2025-01-10T12:00:00+01:00")
	current, err := timeentry.New(42, testFields(t, "old"))
	if err != nil {
		t.Fatalf("build entry: %v", err)
	}
	text := func(v string) *string { return &v }

	t.Run("description and project by name", func(t *testing.T) {
		patch, err := buildEditPatch(editOptions{Description: text("new"), Project: text("internal")}, cfg, current, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if patch.Description == nil || *patch.Description != "new" || patch.ProjectID == nil || *patch.ProjectID != 12 {
			t.Fatalf("unexpected patch: %+v", patch)
		}
	})

	t.Run("blank description clears it", func(t *testing.T) {
		patch, err := buildEditPatch(editOptions{Description: text("  ")}, cfg, current, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !patch.ClearDescription || patch.Description != nil {
			t.Fatalf("expected description to be cleared, got %+v", patch)
		}
	})

	t.Run("stop and tag replacement", func(t *testing.T) {
		tags := []string{"a", "b"}
		patch, err := buildEditPatch(editOptions{Stop: text("2025-01-10T09:30:00+01:00"), Tags: &tags}, cfg, current, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		updated, err := current.Apply(patch)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if updated.Duration != 1800 || strings.Join(updated.Tags, ",") != "a,b" {
			t.Fatalf("unexpected entry: %+v", updated)
		}
	})

	t.Run("clear tags and project", func(t *testing.T) {
		patch, err := buildEditPatch(editOptions{ClearTags: true, ClearProject: true}, cfg, current, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if patch.Tags == nil || len(*patch.Tags) != 0 || !patch.ClearProject {
			t.Fatalf("unexpected patch: %+v", patch)
		}
	})

	duration := time.Hour
	failures := []struct {
		name string
		opts editOptions
	}{
		{name: "nothing to change", opts: editOptions{}},
		{name: "description and clear", opts: editOptions{Description: text("x"), ClearDescription: true}},
		{name: "duration and stop", opts: editOptions{Duration: &duration, Stop: text("now")}},
		{name: "stop before start", opts: editOptions{Stop: text("2025-01-10T08:00:00+01:00")}},
		{name: "clear project and project", opts: editOptions{ClearProject: true, Project: text("Internal")}},
		{name: "unknown project", opts: editOptions{Project: text("Nope")}},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildEditPatch(tt.opts, cfg, current, now); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRunEditMarksSyncedEntryModified(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	seedSynced(t, store, syncedRecord(t, 42, "2025-01-10T09:00:00+01:00", 3600))

	billable := true
	var out bytes.Buffer
	if err := runEdit(&out, store, 42, timeentry.Patch{Billable: &billable}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	item, _ := store.Get(42)
	if item.State != storage.StateModified || !item.Entry.Billable {
		t.Fatalf("expected modified billable entry, got %+v", item)
	}
	if !strings.Contains(out.String(), "state: modified") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
