package undo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/testutil"
)

const masterRef = "refs/heads/master"

// seedTwoCommits builds a repository with two commits on master and a log
// that records them, so the replayed state matches the live state.
func seedTwoCommits(t *testing.T) (*testutil.Repo, *git.Repository, *eventlog.Store, eventlog.OID, eventlog.OID) {
	t.Helper()

	fixture := testutil.InitRepo(t)
	repo, err := git.Open(fixture.Dir)
	require.NoError(t, err)
	store := testutil.OpenStore(t)

	m1 := fixture.CommitFile("a.txt", "one\n", "first")
	m2 := fixture.CommitFile("b.txt", "two\n", "second")

	testutil.AppendAll(t, store,
		eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: masterRef, NewOID: m1},
		eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: eventlog.HeadRef, NewOID: m1},
		eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: masterRef, OldOID: m1, NewOID: m2},
		eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: eventlog.HeadRef, OldOID: m1, NewOID: m2},
	)

	return fixture, repo, store, m1, m2
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("undo restores branch positions and records compensating events", func(t *testing.T) {
		fixture, repo, store, m1, _ := seedTwoCommits(t)
		engine := NewEngine(store, repo)

		plan, err := engine.Plan(ctx, 2)
		require.NoError(t, err)
		require.False(t, plan.Empty())
		require.NoError(t, engine.Apply(ctx, plan))

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, m1, snapshot.Refs[masterRef])
		require.Equal(t, m1, snapshot.Refs[eventlog.HeadRef])
		require.Equal(t, masterRef, snapshot.HeadRef)

		// Checking out the first commit removes the second commit's file.
		_, err = os.Stat(filepath.Join(fixture.Dir, "b.txt"))
		require.True(t, os.IsNotExist(err))

		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, events, 6)
		for _, ev := range events[4:] {
			require.Equal(t, eventlog.OpUndo, ev.Metadata[eventlog.MetaOp])
		}

		cursor, ok, err := store.UndoCursor(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, eventlog.Cursor(2), cursor)
	})

	t.Run("redo returns to the later state", func(t *testing.T) {
		fixture, repo, store, _, m2 := seedTwoCommits(t)
		engine := NewEngine(store, repo)

		undoPlan, err := engine.Plan(ctx, 2)
		require.NoError(t, err)
		require.NoError(t, engine.Apply(ctx, undoPlan))

		redoPlan, err := engine.Plan(ctx, -2)
		require.NoError(t, err)
		require.Equal(t, DirectionRedo, redoPlan.Direction)
		require.NoError(t, engine.Apply(ctx, redoPlan))

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, m2, snapshot.Refs[masterRef])
		require.Equal(t, m2, snapshot.Refs[eventlog.HeadRef])

		content, err := os.ReadFile(filepath.Join(fixture.Dir, "b.txt"))
		require.NoError(t, err)
		require.Equal(t, "two\n", string(content))

		cursor, ok, err := store.UndoCursor(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, eventlog.Cursor(4), cursor)
	})

	t.Run("refuses to run over a dirty worktree", func(t *testing.T) {
		fixture, repo, store, _, m2 := seedTwoCommits(t)
		engine := NewEngine(store, repo)

		plan, err := engine.Plan(ctx, 2)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(fixture.Dir, "a.txt"), []byte("edited\n"), 0o644))

		err = engine.Apply(ctx, plan)
		require.Error(t, err)
		var dirty *arborerrors.DirtyWorktreeError
		require.ErrorAs(t, err, &dirty)

		// Nothing moved and nothing was recorded.
		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, m2, snapshot.Refs[masterRef])

		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, events, 4)
	})

	t.Run("empty plans change nothing", func(t *testing.T) {
		store := testutil.OpenStore(t)
		engine := NewEngine(store, nil)

		require.NoError(t, engine.Apply(ctx, &Plan{}))

		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Empty(t, events)
	})
}
