package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"togglassistant/timeentry"
)

func TestRunStatusShowsRemoteAndLocalState(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	seedSynced(t, store, syncedRecord(t, 42, "2025-01-10T08:00:00Z", 3600))
	running := testFields(t, "local timer")
	running.Start = mustTime(t, "2025-01-10T11:00:00Z")
	running.Duration = timeentry.RunningDuration
	if _, err := store.Add(running); err != nil {
		t.Fatalf("add: %v", err)
	}

	remoteRunning := syncedRecord(t, 77, "2025-01-10T10:00:00Z", timeentry.RunningDuration)
	remoteRunning.ProjectID = timeentry.Int64Ptr(11)
	remote := &fakeToggl{running: &remoteRunning}

	var out bytes.Buffer
	now := mustTime(t, "2025-01-10T12:15:00Z")
	if err := runStatus(context.Background(), &out, store, remote, map[int64]string{11: "Client Work"}, now); err != nil {
		t.Fatalf("status: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"77 2025-01-10T10:00:00Z synced since 10:00 (2:15) [Client Work]",
		"-1 2025-01-10T11:00:00Z local timer since 11:00 (1:15)",
		"1 unchanged, 1 new, 0 modified, 0 deleted",
		"1 change(s) waiting",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in status:\n%s", want, text)
		}
	}
}

func TestRunStatusWithoutRemote(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	var out bytes.Buffer
	if err := runStatus(context.Background(), &out, store, nil, nil, mustTime(t, "2025-01-10T12:00:00Z")); err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"API token not configured", "No running entry", "In sync"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in status:\n%s", want, out.String())
		}
	}
}

func TestRunStatusRemoteError(t *testing.T) {
	t.Parallel()

	remote := &fakeToggl{failOn: map[string]error{"running": errRemote}}
	if err := runStatus(context.Background(), &bytes.Buffer{}, testStore(t), remote, nil, mustTime(t, "2025-01-10T12:00:00Z")); err == nil {
		t.Fatalf("expected remote error")
	}
}
