package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"togglassistant/storage"
	"togglassistant/timeentry"
)

// Remote is the part of the Toggl client the engine pushes changes through.
type Remote interface {
	CreateEntry(ctx context.Context, record timeentry.Record) (int64, error)
	UpdateEntry(ctx context.Context, id int64, record timeentry.Record) (timeentry.Record, error)
	DeleteEntry(ctx context.Context, workspaceID, id int64) error
}

// Op names the remote operation of a sync step.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RemoteError is a failed remote call for a single entry. The entry keeps its
// lifecycle state and is retried by the next run.
type RemoteError struct {
	Op      Op
	EntryID int64
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s time entry %d: %v", e.Op, e.EntryID, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Plan is the set of pending changes a run would push.
type Plan struct {
	ToCreate []storage.Item
	ToUpdate []storage.Item
	ToDelete []storage.Item
}

func (p Plan) IsEmpty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

type Report struct {
	Created   int
	Updated   int
	Deleted   int
	Discarded int
	// CreatedIDs maps placeholder identifiers to the remote identifiers
	// issued for them.
	CreatedIDs map[int64]int64
	Failures   []*RemoteError
}

func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

type Engine struct {
	store  *storage.Store
	remote Remote
	logger *slog.Logger
}

func NewEngine(store *storage.Store, remote Remote, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{store: store, remote: remote, logger: logger}
}

func (e *Engine) Plan() Plan {
	return Plan{
		ToCreate: e.store.Query(storage.StateNew),
		ToUpdate: e.store.Query(storage.StateModified),
		ToDelete: e.store.Query(storage.StateDeleted),
	}
}

// Run pushes all pending changes: creates first, then updates, then deletes.
// Each entry gets at most one remote call and failures do not stop the run.
// The store is persisted once at the end, also after partial failure. The
// returned error is only set when that final persist fails; the report is
// returned in any case.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	plan := e.Plan()
	report := &Report{CreatedIDs: make(map[int64]int64, len(plan.ToCreate))}

	if plan.IsEmpty() {
		e.logger.Info("nothing to sync")
		return report, nil
	}

	for _, item := range plan.ToCreate {
		e.create(ctx, item, report)
	}
	for _, item := range plan.ToUpdate {
		e.update(ctx, item, report)
	}
	for _, item := range plan.ToDelete {
		e.delete(ctx, item, report)
	}

	e.logger.Info(
		"sync finished",
		"created", report.Created,
		"updated", report.Updated,
		"deleted", report.Deleted,
		"discarded", report.Discarded,
		"failed", len(report.Failures),
	)

	if err := e.store.Persist(); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Engine) create(ctx context.Context, item storage.Item, report *Report) {
	placeholder := item.Entry.ID
	remoteID, err := e.remote.CreateEntry(ctx, item.Entry.Record())
	if err != nil {
		e.fail(report, OpCreate, placeholder, err)
		return
	}
	if err := e.store.ConfirmCreated(placeholder, remoteID); err != nil {
		e.fail(report, OpCreate, placeholder, err)
		return
	}
	report.Created++
	report.CreatedIDs[placeholder] = remoteID
	e.logger.Debug("time entry created", "placeholder", placeholder, "id", remoteID)
}

func (e *Engine) update(ctx context.Context, item storage.Item, report *Report) {
	id := item.Entry.ID
	if _, err := e.remote.UpdateEntry(ctx, id, item.Entry.Record()); err != nil {
		e.fail(report, OpUpdate, id, err)
		return
	}
	if err := e.store.ConfirmUpdated(id); err != nil {
		e.fail(report, OpUpdate, id, err)
		return
	}
	report.Updated++
	e.logger.Debug("time entry updated", "id", id)
}

func (e *Engine) delete(ctx context.Context, item storage.Item, report *Report) {
	id := item.Entry.ID

	// Never synced, so there is nothing to delete remotely.
	if item.Entry.IsPlaceholder() {
		if err := e.store.ConfirmDeleted(id); err != nil {
			e.fail(report, OpDelete, id, err)
			return
		}
		report.Discarded++
		e.logger.Debug("unsynced time entry discarded", "id", id)
		return
	}

	if err := e.remote.DeleteEntry(ctx, item.Entry.WorkspaceID, id); err != nil {
		e.fail(report, OpDelete, id, err)
		return
	}
	if err := e.store.ConfirmDeleted(id); err != nil {
		e.fail(report, OpDelete, id, err)
		return
	}
	report.Deleted++
	e.logger.Debug("time entry deleted", "id", id)
}

func (e *Engine) fail(report *Report, op Op, id int64, err error) {
	remoteErr := &RemoteError{Op: op, EntryID: id, Err: err}
	report.Failures = append(report.Failures, remoteErr)
	e.logger.Warn("sync step failed", "op", op, "id", id, "error", err)
}
