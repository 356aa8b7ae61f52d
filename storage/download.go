package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"togglassistant/timeentry"
)

// Fetcher lists remote entries whose start lies in [start, end).
type Fetcher interface {
	ListEntries(ctx context.Context, start, end time.Time) ([]timeentry.Record, error)
}

type DownloadResult struct {
	Fetched        int
	Inserted       int
	Replaced       int
	SkippedPending int
	OutOfRange     int
	Invalid        int
	Pruned         int
}

// DownloadRange merges remote entries for [start, end) into the store as
// unchanged entries. Entries with a pending local change are never
// overwritten. Unchanged local entries in the range that the remote no longer
// returns are removed. The store is left untouched when the fetch fails.
func (s *Store) DownloadRange(ctx context.Context, start, end time.Time, fetcher Fetcher) (DownloadResult, error) {
	var result DownloadResult
	if !end.After(start) {
		return result, errors.New("invalid range: end must be after start")
	}

	records, err := fetcher.ListEntries(ctx, start, end)
	if err != nil {
		return result, fmt.Errorf("list remote entries: %w", err)
	}
	result.Fetched = len(records)

	inRange := func(t time.Time) bool {
		return !t.Before(start) && t.Before(end)
	}

	seen := make(map[int64]struct{}, len(records))
	for _, record := range records {
		if !inRange(record.Start) {
			result.OutOfRange++
			continue
		}
		if record.ID > 0 {
			seen[record.ID] = struct{}{}
		}

		entry, err := timeentry.FromRecord(record)
		if err == nil && entry.ID <= 0 {
			err = fmt.Errorf("remote id must be > 0, got %d", entry.ID)
		}
		if err != nil {
			result.Invalid++
			s.logger.Warn("skipping invalid remote entry", "id", record.ID, "error", err)
			continue
		}

		idx := s.indexOf(entry.ID, true)
		if idx < 0 {
			s.items = append(s.items, Item{Entry: entry, State: StateUnchanged})
			result.Inserted++
			continue
		}
		if s.items[idx].State.Pending() {
			result.SkippedPending++
			s.logger.Info("keeping local pending change over remote entry", "id", entry.ID, "state", s.items[idx].State)
			continue
		}
		s.items[idx].Entry = entry
		result.Replaced++
	}

	kept := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		_, stillRemote := seen[item.Entry.ID]
		if item.State == StateUnchanged && !item.Entry.IsPlaceholder() && inRange(item.Entry.Start) && !stillRemote {
			result.Pruned++
			s.logger.Debug("removing entry no longer present remotely", "id", item.Entry.ID)
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept

	s.logger.Info(
		"download merged",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"replaced", result.Replaced,
		"skipped_pending", result.SkippedPending,
		"invalid", result.Invalid,
		"pruned", result.Pruned,
	)
	return result, s.Persist()
}
