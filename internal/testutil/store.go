package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/eventlog"
)

// OpenStore opens a fresh event log store in a temp directory and closes
// it when the test finishes.
func OpenStore(t *testing.T) *eventlog.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "events.sqlite3")
	store, err := eventlog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

// AppendAll appends the events one batch per event and returns the cursor
// after the last append.
func AppendAll(t *testing.T, store *eventlog.Store, events ...eventlog.Event) eventlog.Cursor {
	t.Helper()

	var cursor eventlog.Cursor
	for _, event := range events {
		var err error
		cursor, err = store.Append(context.Background(), event)
		require.NoError(t, err)
	}
	return cursor
}
