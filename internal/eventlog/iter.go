package eventlog

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	arborerrors "arbor.dev/arbor/internal/errors"
)

// ErrStop may be returned from a ForEach callback to halt iteration early
// without reporting an error.
var ErrStop = errors.New("stop iteration")

// EventIter iterates events in cursor order without materializing the whole
// log. Next returns io.EOF after the last event.
type EventIter struct {
	rows *sql.Rows
}

// Next returns the next event, or io.EOF when the iterator is exhausted.
func (it *EventIter) Next() (*Event, error) {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, arborerrors.NewStorageError("iterate events", err)
		}
		return nil, io.EOF
	}
	return scanEvent(it.rows)
}

// ForEach calls fn for every remaining event, in order. Returning ErrStop
// from fn halts iteration and returns nil.
func (it *EventIter) ForEach(fn func(*Event) error) error {
	defer it.Close()
	for {
		ev, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

// Close releases the iterator's database resources.
func (it *EventIter) Close() {
	_ = it.rows.Close()
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		cursor   int64
		ts       int64
		kind     string
		refName  string
		oldOID   string
		newOID   string
		metadata string
	)
	if err := rows.Scan(&cursor, &ts, &kind, &refName, &oldOID, &newOID, &metadata); err != nil {
		return nil, arborerrors.NewStorageError("scan event", err)
	}

	k := Kind(kind)
	if !k.Valid() {
		return nil, arborerrors.NewStorageError("scan event", errUnknownKind(cursor, kind))
	}

	meta, err := unmarshalMetadata(metadata)
	if err != nil {
		return nil, arborerrors.NewStorageError("scan event", err)
	}

	return &Event{
		Cursor:    Cursor(cursor),
		Timestamp: timeFromMilli(ts),
		Kind:      k,
		RefName:   refName,
		OldOID:    OID(oldOID),
		NewOID:    OID(newOID),
		Metadata:  meta,
	}, nil
}

func errUnknownKind(cursor int64, kind string) error {
	return fmt.Errorf("cursor %d: unknown event kind %q", cursor, kind)
}

func timeFromMilli(ms int64) time.Time {
	return time.UnixMilli(ms)
}
