package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	arborerrors "arbor.dev/arbor/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (events, cursor_state, merge_base_cache)
const currentSchemaVersion = 1

// Store provides durable storage for the event log.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the event log database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, arborerrors.NewStorageError("open", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, arborerrors.NewStorageError("connect", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, arborerrors.NewStorageError("configure", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, arborerrors.NewStorageError("migrate", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// Append records a single event and returns its assigned cursor.
// The cursor is computed inside the insert so that concurrent openers of the
// same database can never produce gaps or duplicates.
func (s *Store) Append(ctx context.Context, ev Event) (Cursor, error) {
	last, err := s.AppendBatch(ctx, []Event{ev})
	if err != nil {
		return 0, err
	}
	return last, nil
}

// AppendBatch records a group of events that form one logical mutation,
// in a single transaction. Cursors are consecutive; the last one is returned.
// An empty batch is a no-op and returns the current cursor.
//
// Unless the batch's op metadata marks it as compensating (undo/redo), the
// persisted undo position is cleared in the same transaction: new organic
// history invalidates the redo window.
func (s *Store) AppendBatch(ctx context.Context, events []Event) (Cursor, error) {
	if len(events) == 0 {
		return s.CurrentCursor(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, arborerrors.NewStorageError("begin append", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var last Cursor
	for _, ev := range events {
		if !ev.Kind.Valid() {
			return 0, arborerrors.NewStorageError("append", fmt.Errorf("unknown event kind %q", ev.Kind))
		}
		ts := ev.Timestamp
		if ts.IsZero() {
			ts = now
		}
		metadata, err := marshalMetadata(ev.Metadata)
		if err != nil {
			return 0, arborerrors.NewStorageError("append", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO events (cursor, timestamp, kind, ref_name, old_oid, new_oid, metadata)
			SELECT COALESCE(MAX(cursor), 0) + 1, ?, ?, ?, ?, ?, ? FROM events
		`,
			ts.UnixMilli(),
			string(ev.Kind),
			ev.RefName,
			string(ev.OldOID),
			string(ev.NewOID),
			metadata,
		)
		if err != nil {
			return 0, arborerrors.NewStorageError("append", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, arborerrors.NewStorageError("append", err)
		}
		last = Cursor(id)
	}

	if !CompensatingOp(events[0].Metadata[MetaOp]) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cursor_state WHERE id = 1`); err != nil {
			return 0, arborerrors.NewStorageError("append", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, arborerrors.NewStorageError("commit append", err)
	}
	return last, nil
}

// CurrentCursor returns the cursor of the latest event, or zero for an empty log.
func (s *Store) CurrentCursor(ctx context.Context) (Cursor, error) {
	var cursor int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(cursor), 0) FROM events`).Scan(&cursor)
	if err != nil {
		return 0, arborerrors.NewStorageError("read cursor", err)
	}
	return Cursor(cursor), nil
}

// ReadSince returns an iterator over events with cursor > from, ordered by
// cursor ascending. The iterator must be closed; it is restartable by calling
// ReadSince again with any cursor.
func (s *Store) ReadSince(ctx context.Context, from Cursor) (*EventIter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cursor, timestamp, kind, ref_name, old_oid, new_oid, metadata
		FROM events
		WHERE cursor > ?
		ORDER BY cursor ASC
	`, int64(from))
	if err != nil {
		return nil, arborerrors.NewStorageError("read events", err)
	}
	return &EventIter{rows: rows}, nil
}

// All reads every event in the log, ordered by cursor ascending.
func (s *Store) All(ctx context.Context) ([]Event, error) {
	iter, err := s.ReadSince(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var events []Event
	err = iter.ForEach(func(ev *Event) error {
		events = append(events, *ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UndoCursor returns the persisted undo position, if any.
func (s *Store) UndoCursor(ctx context.Context) (Cursor, bool, error) {
	var cursor int64
	err := s.db.QueryRowContext(ctx, `SELECT undo_cursor FROM cursor_state WHERE id = 1`).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, arborerrors.NewStorageError("read undo cursor", err)
	}
	return Cursor(cursor), true, nil
}

// SetUndoCursor persists the undo position.
func (s *Store) SetUndoCursor(ctx context.Context, cursor Cursor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cursor_state (id, undo_cursor) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET undo_cursor = excluded.undo_cursor
	`, int64(cursor))
	if err != nil {
		return arborerrors.NewStorageError("set undo cursor", err)
	}
	return nil
}

// ClearUndoCursor removes the persisted undo position. New organic events
// reset the redo window, so writers call this after any non-compensating append.
func (s *Store) ClearUndoCursor(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cursor_state WHERE id = 1`)
	if err != nil {
		return arborerrors.NewStorageError("clear undo cursor", err)
	}
	return nil
}

// MergeBase looks up a cached merge-base for the pair. Callers pass the pair
// with lhs <= rhs.
func (s *Store) MergeBase(ctx context.Context, lhs, rhs OID) (OID, bool, error) {
	var mb string
	err := s.db.QueryRowContext(ctx, `
		SELECT merge_base_oid FROM merge_base_cache WHERE lhs_oid = ? AND rhs_oid = ?
	`, string(lhs), string(rhs)).Scan(&mb)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, arborerrors.NewStorageError("read merge-base cache", err)
	}
	return OID(mb), true, nil
}

// PutMergeBase caches a merge-base computation. Duplicate writes are silently
// ignored; merge-bases for a fixed pair of commits never change.
func (s *Store) PutMergeBase(ctx context.Context, lhs, rhs, mergeBase OID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merge_base_cache (lhs_oid, rhs_oid, merge_base_oid) VALUES (?, ?, ?)
		ON CONFLICT(lhs_oid, rhs_oid) DO NOTHING
	`, string(lhs), string(rhs), string(mergeBase))
	if err != nil {
		return arborerrors.NewStorageError("write merge-base cache", err)
	}
	return nil
}

func marshalMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return m, nil
}
