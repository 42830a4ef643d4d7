package move

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/testutil"
)

const workRef = "refs/heads/work"

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("replays a stack onto a new base and moves its refs", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		base := fixture.CommitFile("f.txt", "base\n", "base commit")
		fixture.Branch("work", base)
		fixture.CheckoutBranch("work")
		a := fixture.CommitFile("a.txt", "a\n", "add a")
		b := fixture.CommitFile("b.txt", "b\n", "add b")
		fixture.CheckoutBranch("master")
		m2 := fixture.CommitFile("m.txt", "m\n", "advance master")

		repo, err := git.Open(fixture.Dir)
		require.NoError(t, err)
		store := testutil.OpenStore(t)
		engine := NewEngine(store, repo)

		plan := &Plan{
			Op:     eventlog.OpMove,
			Source: a,
			Dest:   m2,
			Steps: []Step{
				{CommitOID: a, ParentStep: -1, NewParent: m2},
				{CommitOID: b, ParentStep: 0, Refs: []string{workRef}},
			},
		}
		require.NoError(t, engine.Execute(ctx, plan))

		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, events, 3)

		require.Equal(t, eventlog.KindCommitRewritten, events[0].Kind)
		require.Equal(t, a, events[0].OldOID)
		a2 := events[0].NewOID
		require.Equal(t, eventlog.KindCommitRewritten, events[1].Kind)
		require.Equal(t, b, events[1].OldOID)
		b2 := events[1].NewOID
		require.Equal(t, eventlog.KindRefUpdated, events[2].Kind)
		require.Equal(t, workRef, events[2].RefName)
		require.Equal(t, b, events[2].OldOID)
		require.Equal(t, b2, events[2].NewOID)

		// The replayed commits sit on the new base.
		a2commit, err := repo.ReadCommit(ctx, a2)
		require.NoError(t, err)
		require.Equal(t, []eventlog.OID{m2}, a2commit.Parents)
		b2commit, err := repo.ReadCommit(ctx, b2)
		require.NoError(t, err)
		require.Equal(t, []eventlog.OID{a2}, b2commit.Parents)

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, b2, snapshot.Refs[workRef])
		require.Equal(t, "refs/heads/master", snapshot.HeadRef)

		// One transaction covers the whole move.
		for _, ev := range events {
			require.Equal(t, eventlog.OpMove, ev.Metadata[eventlog.MetaOp])
			require.Equal(t, events[0].Metadata[eventlog.MetaTx], ev.Metadata[eventlog.MetaTx])
		}
	})

	t.Run("pauses on conflict and resumes after resolution", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		base := fixture.CommitFile("f.txt", "base\n", "base commit")
		fixture.Branch("work", base)
		fixture.CheckoutBranch("work")
		a := fixture.CommitFile("f.txt", "from work\n", "work change")
		b := fixture.CommitFile("b.txt", "b\n", "add b")
		fixture.CheckoutBranch("master")
		m2 := fixture.CommitFile("f.txt", "from master\n", "master change")

		repo, err := git.Open(fixture.Dir)
		require.NoError(t, err)
		store := testutil.OpenStore(t)
		engine := NewEngine(store, repo)

		plan := &Plan{
			Op:     eventlog.OpMove,
			Source: a,
			Dest:   m2,
			Steps: []Step{
				{CommitOID: a, ParentStep: -1, NewParent: m2},
				{CommitOID: b, ParentStep: 0, Refs: []string{workRef}},
			},
		}

		err = engine.Execute(ctx, plan)
		require.Error(t, err)
		var conflict *arborerrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, 0, conflict.StepIndex)
		require.Equal(t, string(a), conflict.CommitOID)
		require.True(t, repo.CherryPickInProgress())
		require.True(t, config.HasContinuation(repo.StateDir()))

		// The halted step recorded nothing.
		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Empty(t, events)

		// Resolve the conflict and continue.
		require.NoError(t, os.WriteFile(filepath.Join(fixture.Dir, "f.txt"), []byte("resolved\n"), 0o644))
		_, err = repo.Runner().Run(ctx, "add", "f.txt")
		require.NoError(t, err)
		require.NoError(t, engine.Resume(ctx))

		require.False(t, config.HasContinuation(repo.StateDir()))
		require.False(t, repo.CherryPickInProgress())

		events, err = store.All(ctx)
		require.NoError(t, err)
		require.Len(t, events, 3)
		a2 := events[0].NewOID
		b2 := events[1].NewOID

		b2commit, err := repo.ReadCommit(ctx, b2)
		require.NoError(t, err)
		require.Equal(t, []eventlog.OID{a2}, b2commit.Parents)

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, b2, snapshot.Refs[workRef])
		require.Equal(t, "refs/heads/master", snapshot.HeadRef)
	})

	t.Run("abort keeps the applied prefix and restores the checkout", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		base := fixture.CommitFile("f.txt", "base\n", "base commit")
		fixture.Branch("work", base)
		fixture.CheckoutBranch("work")
		a := fixture.CommitFile("a.txt", "a\n", "add a")
		b := fixture.CommitFile("f.txt", "from work\n", "work f change")
		fixture.CheckoutBranch("master")
		m2 := fixture.CommitFile("f.txt", "from master\n", "master change")

		repo, err := git.Open(fixture.Dir)
		require.NoError(t, err)
		store := testutil.OpenStore(t)
		engine := NewEngine(store, repo)

		plan := &Plan{
			Op:     eventlog.OpMove,
			Source: a,
			Dest:   m2,
			Steps: []Step{
				{CommitOID: a, ParentStep: -1, NewParent: m2},
				{CommitOID: b, ParentStep: 0, Refs: []string{workRef}},
			},
		}

		err = engine.Execute(ctx, plan)
		require.Error(t, err)
		var conflict *arborerrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, 1, conflict.StepIndex)

		require.NoError(t, engine.Abort(ctx))

		require.False(t, config.HasContinuation(repo.StateDir()))
		require.False(t, repo.CherryPickInProgress())

		// The first step stays applied; the halted one never happened.
		events, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, a, events[0].OldOID)

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, b, snapshot.Refs[workRef])
		require.Equal(t, "refs/heads/master", snapshot.HeadRef)

		clean, err := repo.IsClean(ctx)
		require.NoError(t, err)
		require.True(t, clean)
	})

	t.Run("resume without a pause reports no continuation", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		fixture.CommitFile("f.txt", "base\n", "base commit")

		repo, err := git.Open(fixture.Dir)
		require.NoError(t, err)
		engine := NewEngine(testutil.OpenStore(t), repo)

		err = engine.Resume(ctx)
		require.Error(t, err)
		require.ErrorIs(t, err, arborerrors.ErrNoContinuation)
	})

	t.Run("refuses a new plan while another is paused", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		fixture.CommitFile("f.txt", "base\n", "base commit")

		repo, err := git.Open(fixture.Dir)
		require.NoError(t, err)
		engine := NewEngine(testutil.OpenStore(t), repo)

		require.NoError(t, config.PersistContinuationState(repo.StateDir(), &config.ContinuationState{
			Op:   eventlog.OpMove,
			TxID: eventlog.NewTxID(),
		}))

		plan := &Plan{Op: eventlog.OpMove, Steps: []Step{{CommitOID: "a", ParentStep: -1, NewParent: "b"}}}
		err = engine.Execute(ctx, plan)
		require.Error(t, err)
		require.ErrorContains(t, err, "paused")
	})
}
