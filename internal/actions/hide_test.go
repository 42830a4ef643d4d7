package actions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/testutil"
)

func TestHideUnhide(t *testing.T) {
	fixture := testutil.InitRepo(t)
	m1 := fixture.CommitFile("f.txt", "one\n", "first commit")
	f1 := fixture.CommitFile("g.txt", "draft\n", "draft work")
	rctx := newTestContext(t, fixture)

	t.Run("hide appends a visibility event", func(t *testing.T) {
		require.NoError(t, actions.HideAction(rctx, []string{string(f1)}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, eventlog.KindCommitHidden, events[0].Kind)
		require.Equal(t, f1, events[0].NewOID)
		require.Equal(t, eventlog.OpHide, events[0].Metadata[eventlog.MetaOp])

		rp := eventlog.NewReplayer(events)
		vis, known := rp.VisibilityAt(rp.LatestCursor(), f1)
		require.True(t, known)
		require.Equal(t, eventlog.VisibilityHidden, vis)
	})

	t.Run("unhide restores visibility", func(t *testing.T) {
		require.NoError(t, actions.UnhideAction(rctx, []string{string(f1)}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, eventlog.KindCommitUnhidden, events[1].Kind)

		rp := eventlog.NewReplayer(events)
		vis, known := rp.VisibilityAt(rp.LatestCursor(), f1)
		require.True(t, known)
		require.Equal(t, eventlog.VisibilityVisible, vis)
	})

	t.Run("several revisions land in one transaction", func(t *testing.T) {
		require.NoError(t, actions.HideAction(rctx, []string{string(m1), string(f1)}))

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 4)
		require.Equal(t, m1, events[2].NewOID)
		require.Equal(t, f1, events[3].NewOID)
		require.Equal(t, events[2].Metadata[eventlog.MetaTx], events[3].Metadata[eventlog.MetaTx])
	})

	t.Run("an unknown revision fails before anything is recorded", func(t *testing.T) {
		err := actions.HideAction(rctx, []string{string(m1), "no-such-rev"})
		require.ErrorContains(t, err, `unknown revision "no-such-rev"`)

		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Len(t, events, 4)
	})

	t.Run("refuses an empty revision list", func(t *testing.T) {
		require.ErrorContains(t, actions.HideAction(rctx, nil), "no commits given")
	})
}
