package actions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/testutil"
)

func TestMoveAction(t *testing.T) {
	fixture := testutil.InitRepo(t)
	base := fixture.CommitFile("f.txt", "base\n", "base commit")
	m2 := fixture.CommitFile("m.txt", "m\n", "advance master")
	fixture.Detach(base)
	fixture.CommitFile("s1.txt", "s1\n", "stack one")
	s2 := fixture.CommitFile("s2.txt", "s2\n", "stack two")
	fixture.Branch("stack", s2)
	fixture.CheckoutBranch("stack")
	rctx := newTestContext(t, fixture)

	t.Run("dry run plans without touching anything", func(t *testing.T) {
		require.NoError(t, actions.MoveAction(rctx, actions.MoveOptions{DryRun: true}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Empty(t, events)
		require.Equal(t, s2, fixture.Head())
	})

	t.Run("moves the whole stack and carries its branch", func(t *testing.T) {
		// Source defaults to the bottom of the checked-out stack, destination
		// to the main branch head.
		require.NoError(t, actions.MoveAction(rctx, actions.MoveOptions{}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 4)
		require.Equal(t, eventlog.KindCommitRewritten, events[0].Kind)
		require.Equal(t, eventlog.KindCommitRewritten, events[1].Kind)
		require.Equal(t, eventlog.KindRefUpdated, events[2].Kind)
		require.Equal(t, "refs/heads/stack", events[2].RefName)
		// The checkout rode along with its branch, a HEAD movement in its
		// own right.
		require.Equal(t, eventlog.KindRefUpdated, events[3].Kind)
		require.Equal(t, eventlog.HeadRef, events[3].RefName)
		require.Equal(t, s2, events[3].OldOID)
		for _, ev := range events {
			require.Equal(t, eventlog.OpMove, ev.Metadata[eventlog.MetaOp])
		}

		s1n, s2n := events[0].NewOID, events[1].NewOID
		require.Equal(t, s2n, events[3].NewOID)
		s1commit, err := rctx.Repo.ReadCommit(rctx.Context, s1n)
		require.NoError(t, err)
		require.Equal(t, []eventlog.OID{m2}, s1commit.Parents)
		s2commit, err := rctx.Repo.ReadCommit(rctx.Context, s2n)
		require.NoError(t, err)
		require.Equal(t, []eventlog.OID{s1n}, s2commit.Parents)

		// The branch checkout survives the move.
		require.Equal(t, s2n, fixture.Head())
		require.Equal(t, "refs/heads/stack", rctx.Repo.CurrentBranch())
	})

	t.Run("refuses to move the main branch", func(t *testing.T) {
		err := actions.MoveAction(rctx, actions.MoveOptions{
			Source: string(base),
		})
		require.ErrorContains(t, err, "main branch")
	})

	t.Run("refuses a destination inside the moved subtree", func(t *testing.T) {
		err := actions.MoveAction(rctx, actions.MoveOptions{
			Source: "stack",
			Dest:   string(fixture.Head()),
		})
		require.ErrorContains(t, err, "descendant")
	})

	t.Run("moving again reports nothing to do", func(t *testing.T) {
		require.NoError(t, actions.MoveAction(rctx, actions.MoveOptions{}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 4)
	})
}
