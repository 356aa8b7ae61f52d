package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"togglassistant/timeentry"

	_ "modernc.org/sqlite"
)

// SQLiteSnapshot keeps the snapshot in a SQLite database. Write replaces all
// rows inside a single transaction, which gives the same all-or-nothing
// visibility as the JSON file's rename.
type SQLiteSnapshot struct {
	db   *sql.DB
	path string
}

func OpenSQLite(path string) (*SQLiteSnapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	snapshot := &SQLiteSnapshot{db: db, path: path}
	if err := snapshot.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return snapshot, nil
}

func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}

func (s *SQLiteSnapshot) Location() string {
	return s.path
}

func (s *SQLiteSnapshot) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS entries (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL UNIQUE,
	workspace_id INTEGER NOT NULL,
	start_datetime TEXT NOT NULL,
	stop_datetime TEXT,
	duration INTEGER NOT NULL CHECK(duration >= -1),
	description TEXT,
	project_id INTEGER,
	tags TEXT NOT NULL DEFAULT '[]',
	billable INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshot) Read() ([]timeentry.Record, error) {
	const query = `
SELECT
	id,
	workspace_id,
	start_datetime,
	stop_datetime,
	duration,
	description,
	project_id,
	tags,
	billable
FROM entries
ORDER BY position;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	records := make([]timeentry.Record, 0, 256)
	for rows.Next() {
		var (
			record      timeentry.Record
			startRaw    string
			stopRaw     sql.NullString
			description sql.NullString
			projectID   sql.NullInt64
			tagsRaw     string
		)

		if err := rows.Scan(
			&record.ID,
			&record.WorkspaceID,
			&startRaw,
			&stopRaw,
			&record.Duration,
			&description,
			&projectID,
			&tagsRaw,
			&record.Billable,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		record.Start, err = time.Parse(time.RFC3339Nano, startRaw)
		if err != nil {
			return nil, fmt.Errorf("parse start datetime %q: %w", startRaw, err)
		}
		if stopRaw.Valid {
			stop, err := time.Parse(time.RFC3339Nano, stopRaw.String)
			if err != nil {
				return nil, fmt.Errorf("parse stop datetime %q: %w", stopRaw.String, err)
			}
			record.Stop = &stop
		}
		if description.Valid {
			record.Description = &description.String
		}
		if projectID.Valid {
			record.ProjectID = &projectID.Int64
		}
		if err := json.Unmarshal([]byte(tagsRaw), &record.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of entry %d: %w", record.ID, err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return records, nil
}

func (s *SQLiteSnapshot) Write(records []timeentry.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entries;`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear entries: %w", err)
	}

	const insertStmt = `
INSERT INTO entries (
	position,
	id,
	workspace_id,
	start_datetime,
	stop_datetime,
	duration,
	description,
	project_id,
	tags,
	billable
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for position, record := range records {
		tags := record.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsRaw, err := json.Marshal(tags)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode tags of entry %d: %w", record.ID, err)
		}

		var stop sql.NullString
		if record.Stop != nil {
			stop = sql.NullString{String: record.Stop.Format(time.RFC3339Nano), Valid: true}
		}
		var description sql.NullString
		if record.Description != nil {
			description = sql.NullString{String: *record.Description, Valid: true}
		}
		var projectID sql.NullInt64
		if record.ProjectID != nil {
			projectID = sql.NullInt64{Int64: *record.ProjectID, Valid: true}
		}

		if _, err := stmt.Exec(
			position,
			record.ID,
			record.WorkspaceID,
			record.Start.Format(time.RFC3339Nano),
			stop,
			record.Duration,
			description,
			projectID,
			string(tagsRaw),
			record.Billable,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert entry %d: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
