package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/config"
	"arbor.dev/arbor/internal/eventlog"
)

// InitState writes the state 'arbor init' would have created for the fixture
// repository: the state directory, an empty event log database, and the main
// branch config. Hooks and aliases are not installed.
func (r *Repo) InitState(mainBranch string) string {
	r.T.Helper()

	stateDir := filepath.Join(r.Dir, ".git", "arbor")
	require.NoError(r.T, os.MkdirAll(stateDir, 0o755))
	store, err := eventlog.Open(filepath.Join(stateDir, "events.sqlite3"))
	require.NoError(r.T, err)
	require.NoError(r.T, store.Close())
	require.NoError(r.T, config.SetMainBranch(stateDir, mainBranch))
	return stateDir
}

// NoPrompts disables interactive prompts for the duration of the test so an
// action that unexpectedly reaches one fails instead of hanging.
func NoPrompts(t *testing.T) {
	t.Setenv("ARBOR_TEST_NO_INTERACTIVE", "1")
}
