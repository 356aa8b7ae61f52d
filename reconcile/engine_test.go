package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"togglassistant/storage"
	"togglassistant/timeentry"
)

type fakeRemote struct {
	nextID    int64
	failIDs   map[int64]error
	calls     []string
	created   []timeentry.Record
	updated   []int64
	deleted   []int64
	createErr error
}

func (f *fakeRemote) CreateEntry(_ context.Context, record timeentry.Record) (int64, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, record)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeRemote) UpdateEntry(_ context.Context, id int64, record timeentry.Record) (timeentry.Record, error) {
	f.calls = append(f.calls, "update")
	if err := f.failIDs[id]; err != nil {
		return timeentry.Record{}, err
	}
	f.updated = append(f.updated, id)
	return record, nil
}

func (f *fakeRemote) DeleteEntry(_ context.Context, _ int64, id int64) error {
	f.calls = append(f.calls, "delete")
	if err := f.failIDs[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestEngine_CreateAssignsRemoteID(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	placeholder, err := store.Add(fields(t, "Write report", 3600))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	items := store.Query()
	if len(items) != 1 || items[0].State != storage.StateNew {
		t.Fatalf("expected one new entry, got %+v", items)
	}

	remote := &fakeRemote{nextID: 41}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(remote.calls) != 1 || remote.calls[0] != "create" {
		t.Fatalf("expected a single create call, got %v", remote.calls)
	}
	if report.Created != 1 || report.CreatedIDs[placeholder] != 42 || report.HasFailures() {
		t.Fatalf("unexpected report: %+v", report)
	}

	items = store.Query()
	if len(items) != 1 || items[0].Entry.ID != 42 || items[0].State != storage.StateUnchanged {
		t.Fatalf("expected entry 42 unchanged, got %+v", items)
	}

	reloaded := storage.NewStore(storage.NewJSONFile(store.Location()), nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.Get(42); !ok {
		t.Fatalf("expected remote id to be persisted")
	}
}

func TestEngine_SecondRunIssuesNoCalls(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	if _, err := store.Add(fields(t, "Write report", 3600)); err != nil {
		t.Fatalf("add: %v", err)
	}
	remote := &fakeRemote{nextID: 41}
	engine := NewEngine(store, remote, nil)

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := len(remote.calls)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(remote.calls) != callsAfterFirst {
		t.Fatalf("expected no remote calls on second run, got %v", remote.calls[callsAfterFirst:])
	}
	if report.Created+report.Updated+report.Deleted != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestEngine_UpdateFailureIsIsolated(t *testing.T) {
	t.Parallel()

	store := seededStore(t, 42, 43)
	for _, id := range []int64{42, 43} {
		description := "edited"
		if err := store.Update(id, timeentry.Patch{Description: &description}); err != nil {
			t.Fatalf("update %d: %v", id, err)
		}
	}

	remoteErr := errors.New("entry locked")
	remote := &fakeRemote{failIDs: map[int64]error{42: remoteErr}}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Updated != 1 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	failure := report.Failures[0]
	if failure.Op != OpUpdate || failure.EntryID != 42 || !errors.Is(failure, remoteErr) {
		t.Fatalf("unexpected failure: %v", failure)
	}

	failed, _ := store.Get(42)
	if failed.State != storage.StateModified {
		t.Fatalf("expected failed entry to stay modified, got %s", failed.State)
	}
	synced, _ := store.Get(43)
	if synced.State != storage.StateUnchanged {
		t.Fatalf("expected other entry to be unchanged, got %s", synced.State)
	}
}

func TestEngine_DeleteRemovesEntry(t *testing.T) {
	t.Parallel()

	store := seededStore(t, 42)
	if err := store.Delete(42); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.Query()) != 0 {
		t.Fatalf("expected deleted entry to be hidden")
	}

	remote := &fakeRemote{}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != 42 || report.Deleted != 1 {
		t.Fatalf("expected one delete call for 42, got %v (report %+v)", remote.deleted, report)
	}
	if _, ok := store.Get(42); ok || store.Len() != 0 {
		t.Fatalf("expected entry to be removed entirely")
	}
}

func TestEngine_DeleteOfUnsyncedEntrySkipsRemote(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	id, err := store.Add(fields(t, "typo", 60))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remote := &fakeRemote{}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(remote.calls) != 0 {
		t.Fatalf("expected no remote calls, got %v", remote.calls)
	}
	if report.Discarded != 1 || store.Len() != 0 {
		t.Fatalf("expected entry to be discarded locally, report %+v", report)
	}
}

func TestEngine_DeleteFailureIsIsolated(t *testing.T) {
	t.Parallel()

	store := seededStore(t, 42, 43)
	for _, id := range []int64{42, 43} {
		if err := store.Delete(id); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}

	remoteErr := errors.New("entry locked")
	remote := &fakeRemote{failIDs: map[int64]error{42: remoteErr}}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Deleted != 1 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	failure := report.Failures[0]
	if failure.Op != OpDelete || failure.EntryID != 42 || !errors.Is(failure, remoteErr) {
		t.Fatalf("unexpected failure: %v", failure)
	}

	failed, ok := store.Get(42)
	if !ok || failed.State != storage.StateDeleted {
		t.Fatalf("expected failed entry to stay deleted, got %+v (found %v)", failed, ok)
	}
	if _, ok := store.Get(43); ok {
		t.Fatalf("expected entry 43 to be removed")
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the failed entry to remain, got %d", store.Len())
	}
}

func TestEngine_DeletedUnsyncedEntryStaysLocalAfterReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "repository.json")
	store := storage.NewStore(storage.NewJSONFile(path), nil)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	id, err := store.Add(fields(t, "typo", 60))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reloaded := storage.NewStore(storage.NewJSONFile(path), nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	item, ok := reloaded.Get(id)
	if !ok || item.State != storage.StateUnchanged {
		t.Fatalf("expected entry to reload unchanged, got %+v (found %v)", item, ok)
	}

	remote := &fakeRemote{nextID: 100}
	report, err := NewEngine(reloaded, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(remote.calls) != 0 || report.Created != 0 {
		t.Fatalf("expected no remote calls, got %v (report %+v)", remote.calls, report)
	}
}

func TestEngine_OrderIsCreateUpdateDelete(t *testing.T) {
	t.Parallel()

	store := seededStore(t, 42, 43)
	if err := store.Delete(43); err != nil {
		t.Fatalf("delete: %v", err)
	}
	billable := true
	if err := store.Update(42, timeentry.Patch{Billable: &billable}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.Add(fields(t, "new", 60)); err != nil {
		t.Fatalf("add: %v", err)
	}

	remote := &fakeRemote{nextID: 100}
	if _, err := NewEngine(store, remote, nil).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"create", "update", "delete"}
	if len(remote.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, remote.calls)
	}
	for i := range want {
		if remote.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, remote.calls)
		}
	}
}

func TestEngine_CreateFailureKeepsEntryNew(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	id, err := store.Add(fields(t, "offline", 60))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	remote := &fakeRemote{createErr: errors.New("service unavailable")}
	report, err := NewEngine(store, remote, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Failures) != 1 || report.Failures[0].Op != OpCreate || report.Failures[0].EntryID != id {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}
	item, _ := store.Get(id)
	if item.State != storage.StateNew {
		t.Fatalf("expected entry to stay new, got %s", item.State)
	}

	plan := NewEngine(store, remote, nil).Plan()
	if len(plan.ToCreate) != 1 {
		t.Fatalf("expected entry to be retried by the next run, plan %+v", plan)
	}
}

func TestEngine_PersistFailureIsReturnedWithReport(t *testing.T) {
	t.Parallel()

	snapshot := &flakySnapshot{}
	store := storage.NewStore(snapshot, nil)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := store.Add(fields(t, "Write report", 3600)); err != nil {
		t.Fatalf("add: %v", err)
	}
	snapshot.failWrites = true

	report, err := NewEngine(store, &fakeRemote{nextID: 41}, nil).Run(context.Background())
	var persistenceErr *storage.PersistenceError
	if !errors.As(err, &persistenceErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if report == nil || report.Created != 1 {
		t.Fatalf("expected report to be returned, got %+v", report)
	}
	if _, ok := store.Get(42); !ok {
		t.Fatalf("expected in-memory state to keep the remote id")
	}
}

type flakySnapshot struct {
	failWrites bool
}

func (f *flakySnapshot) Read() ([]timeentry.Record, error) { return nil, fs.ErrNotExist }

func (f *flakySnapshot) Write([]timeentry.Record) error {
	if f.failWrites {
		return errors.New("read-only file system")
	}
	return nil
}

func (f *flakySnapshot) Location() string { return "flaky" }

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewStore(storage.NewJSONFile(filepath.Join(t.TempDir(), "repository.json")), nil)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func seededStore(t *testing.T, ids ...int64) *storage.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repository.json")
	records := make([]timeentry.Record, 0, len(ids))
	for _, id := range ids {
		entry, err := timeentry.New(id, fields(t, "synced", 1800))
		if err != nil {
			t.Fatalf("new entry: %v", err)
		}
		records = append(records, entry.Record())
	}
	if err := storage.NewJSONFile(path).Write(records); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	store := storage.NewStore(storage.NewJSONFile(path), nil)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func fields(t *testing.T, description string, duration int64) timeentry.Fields {
	t.Helper()
	return timeentry.Fields{
		WorkspaceID: 7,
		Start:       time.Date(2025, 1, 10, 9, 0, 0, 0, time.FixedZone("CET", 3600)),
		Duration:    duration,
		Description: timeentry.StringPtr(description),
	}
}
