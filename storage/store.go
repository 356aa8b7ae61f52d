package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"togglassistant/timeentry"
)

// Item is a stored entry together with its lifecycle state.
type Item struct {
	Entry timeentry.Entry
	State State
}

// Store is the in-memory, snapshot-persisted collection of entries. It owns
// lifecycle tagging and writes a snapshot after every mutating operation.
// A Store is not safe for concurrent use.
type Store struct {
	snapshot        Snapshot
	logger          *slog.Logger
	items           []Item
	nextPlaceholder int64
}

func NewStore(snapshot Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		snapshot:        snapshot,
		logger:          logger,
		nextPlaceholder: -1,
	}
}

// Load replaces the in-memory collection with the persisted snapshot. The
// snapshot carries no lifecycle state, so every entry comes back unchanged,
// placeholders included. A missing snapshot yields an empty store. A corrupt snapshot also yields an
// empty store and is reported as a *PersistenceError.
func (s *Store) Load() error {
	s.items = nil
	s.nextPlaceholder = -1
	location := s.snapshot.Location()

	records, err := s.snapshot.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("snapshot not found, starting with an empty store", "path", location)
			return nil
		}
		s.logger.Warn("snapshot unreadable, starting with an empty store", "path", location, "error", err)
		return &PersistenceError{Op: "read", Path: location, Err: err}
	}

	items := make([]Item, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, record := range records {
		entry, err := timeentry.FromRecord(record)
		if err == nil && entry.ID == 0 {
			err = errors.New("id must not be 0")
		}
		if err == nil {
			if _, duplicate := seen[entry.ID]; duplicate {
				err = fmt.Errorf("duplicate id %d", entry.ID)
			}
		}
		if err != nil {
			s.logger.Warn("snapshot contains an invalid record, starting with an empty store", "path", location, "index", i, "error", err)
			return &PersistenceError{Op: "read", Path: location, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		seen[entry.ID] = struct{}{}
		items = append(items, Item{Entry: entry, State: StateUnchanged})
		if entry.ID <= s.nextPlaceholder {
			s.nextPlaceholder = entry.ID - 1
		}
	}

	s.items = items
	s.logger.Debug("snapshot loaded", "path", location, "entries", len(items))
	return nil
}

// Add validates fields, stores them as a new entry and persists. It returns
// the placeholder identifier of the entry. A persistence failure is returned
// together with the identifier; the entry stays in memory.
func (s *Store) Add(fields timeentry.Fields) (int64, error) {
	entry, err := timeentry.New(s.nextPlaceholder, fields)
	if err != nil {
		return 0, err
	}
	s.nextPlaceholder--

	s.items = append(s.items, Item{Entry: entry, State: StateNew})
	s.logger.Debug("entry added", "id", entry.ID)
	return entry.ID, s.Persist()
}

// AddAll adds several entries with a single persist. Either every entry is
// valid and added, or none is. The placeholder identifiers are returned in
// input order.
func (s *Store) AddAll(batch []timeentry.Fields) ([]int64, error) {
	entries := make([]timeentry.Entry, 0, len(batch))
	next := s.nextPlaceholder
	for i, fields := range batch {
		entry, err := timeentry.New(next, fields)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		entries = append(entries, entry)
		next--
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		s.items = append(s.items, Item{Entry: entry, State: StateNew})
		ids = append(ids, entry.ID)
	}
	s.nextPlaceholder = next
	s.logger.Debug("entries added", "count", len(ids))
	return ids, s.Persist()
}

// Update applies a partial update to the entry with the given identifier.
// Entries that are still new stay new; everything else becomes modified.
// An empty patch changes nothing.
func (s *Store) Update(id int64, patch timeentry.Patch) error {
	idx := s.indexOf(id, false)
	if idx < 0 {
		return &NotFoundError{ID: id}
	}
	if patch.IsEmpty() {
		return nil
	}

	current := s.items[idx]
	updated, err := current.Entry.Apply(patch)
	if err != nil {
		return err
	}

	state := StateModified
	if current.State == StateNew {
		state = StateNew
	}
	s.items[idx] = Item{Entry: updated, State: state}
	s.logger.Debug("entry updated", "id", id, "state", state)
	return s.Persist()
}

// Delete marks the entry as deleted. It stays in the store, hidden from the
// current view, until a sync confirms the remote deletion.
func (s *Store) Delete(id int64) error {
	idx := s.indexOf(id, false)
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	s.items[idx].State = StateDeleted
	s.logger.Debug("entry marked deleted", "id", id)
	return s.Persist()
}

// Query returns copies of the stored items. Without states it returns the
// current view, which excludes deleted entries; with states it returns
// exactly the items in one of them.
func (s *Store) Query(states ...State) []Item {
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if !matchesStates(item.State, states) {
			continue
		}
		out = append(out, copyItem(item))
	}
	return out
}

// Get returns the item with the given identifier, including deleted ones.
func (s *Store) Get(id int64) (Item, bool) {
	idx := s.indexOf(id, true)
	if idx < 0 {
		return Item{}, false
	}
	return copyItem(s.items[idx]), true
}

// Location describes where the store persists its snapshot.
func (s *Store) Location() string {
	return s.snapshot.Location()
}

func (s *Store) Len() int {
	return len(s.items)
}

// Persist writes all entries, canonical records only, through the snapshot.
func (s *Store) Persist() error {
	records := make([]timeentry.Record, 0, len(s.items))
	for _, item := range s.items {
		records = append(records, item.Entry.Record())
	}

	if err := s.snapshot.Write(records); err != nil {
		s.logger.Error("persist snapshot failed", "path", s.snapshot.Location(), "error", err)
		return &PersistenceError{Op: "write", Path: s.snapshot.Location(), Err: err}
	}
	s.logger.Debug("snapshot persisted", "path", s.snapshot.Location(), "entries", len(records))
	return nil
}

// ConfirmCreated replaces the placeholder identifier of a new entry with the
// remote identifier and marks it unchanged. It does not persist.
func (s *Store) ConfirmCreated(placeholderID, remoteID int64) error {
	if remoteID <= 0 {
		return fmt.Errorf("remote id must be > 0, got %d", remoteID)
	}
	idx, err := s.indexInState(placeholderID, StateNew)
	if err != nil {
		return err
	}
	if other := s.indexOf(remoteID, true); other >= 0 && other != idx {
		return fmt.Errorf("remote id %d is already used by another local entry", remoteID)
	}

	s.items[idx] = Item{Entry: s.items[idx].Entry.WithID(remoteID), State: StateUnchanged}
	return nil
}

// ConfirmUpdated marks a modified entry unchanged. It does not persist.
func (s *Store) ConfirmUpdated(id int64) error {
	idx, err := s.indexInState(id, StateModified)
	if err != nil {
		return err
	}
	s.items[idx].State = StateUnchanged
	return nil
}

// ConfirmDeleted physically removes a deleted entry. It does not persist.
func (s *Store) ConfirmDeleted(id int64) error {
	idx, err := s.indexInState(id, StateDeleted)
	if err != nil {
		return err
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return nil
}

func (s *Store) indexInState(id int64, state State) (int, error) {
	idx := s.indexOf(id, true)
	if idx < 0 {
		return -1, &NotFoundError{ID: id}
	}
	if s.items[idx].State != state {
		return -1, fmt.Errorf("time entry %d is %s, expected %s", id, s.items[idx].State, state)
	}
	return idx, nil
}

func (s *Store) indexOf(id int64, includeDeleted bool) int {
	for i, item := range s.items {
		if item.Entry.ID != id {
			continue
		}
		if item.State == StateDeleted && !includeDeleted {
			return -1
		}
		return i
	}
	return -1
}

func matchesStates(state State, filter []State) bool {
	if len(filter) == 0 {
		return state != StateDeleted
	}
	for _, candidate := range filter {
		if candidate == state {
			return true
		}
	}
	return false
}

func copyItem(item Item) Item {
	return Item{Entry: item.Entry.WithID(item.Entry.ID), State: item.State}
}
