package storage

import "fmt"

// NotFoundError is returned when an operation references an identifier that
// is not in the current view of the store.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("time entry %d not found", e.ID)
}

// PersistenceError reports an unreadable or unwritable snapshot. It is never
// fatal: the in-memory state stays authoritative.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s snapshot %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
