package actions_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/runtime"
	"arbor.dev/arbor/internal/testutil"
)

// newTestContext initializes arbor state in the fixture and opens a runtime
// context over it, closed when the test finishes.
func newTestContext(t *testing.T, fixture *testutil.Repo) *runtime.Context {
	t.Helper()

	fixture.InitState("master")
	rctx, err := runtime.Open(fixture.Dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, rctx.Close())
	})
	return rctx
}

// readEvents returns everything in the fixture's event log over its own
// connection, so it also works when no runtime context is open.
func readEvents(t *testing.T, fixture *testutil.Repo) []eventlog.Event {
	t.Helper()

	store, err := eventlog.Open(filepath.Join(fixture.Dir, ".git", "arbor", "events.sqlite3"))
	require.NoError(t, err)
	defer store.Close()
	events, err := store.All(context.Background())
	require.NoError(t, err)
	return events
}
