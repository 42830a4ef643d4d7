package eventlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// numbered builds an event sequence with cursors assigned 1..n in order.
func numbered(events ...Event) []Event {
	for i := range events {
		events[i].Cursor = Cursor(i + 1)
	}
	return events
}

func TestReplayerRefs(t *testing.T) {
	t.Run("reconstructs ref positions at a cursor", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", NewOID: "aaa"},
			Event{Kind: KindCommitCreated, NewOID: "bbb"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", OldOID: "aaa", NewOID: "bbb"},
		))

		at2 := rp.RefsAt(2)
		require.Equal(t, OID("aaa"), at2["refs/heads/main"])
		require.Equal(t, OID("aaa"), at2[HeadRef])

		at4 := rp.RefsAt(4)
		require.Equal(t, OID("bbb"), at4["refs/heads/main"])
		require.Equal(t, OID("bbb"), at4[HeadRef])
	})

	t.Run("backfills refs first mentioned after the cursor", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "bbb"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", OldOID: "aaa", NewOID: "bbb"},
		))

		// main existed at "aaa" before the log first touched it.
		at1 := rp.RefsAt(1)
		require.Equal(t, OID("aaa"), at1["refs/heads/main"])
	})

	t.Run("omits refs created after the cursor", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/feature", NewOID: "aaa"},
		))

		at1 := rp.RefsAt(1)
		_, ok := at1["refs/heads/feature"]
		require.False(t, ok)
	})

	t.Run("replays ref deletion", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindRefUpdated, RefName: "refs/heads/feature", NewOID: "aaa"},
			Event{Kind: KindRefDeleted, RefName: "refs/heads/feature", OldOID: "aaa"},
		))

		at1 := rp.RefsAt(1)
		require.Equal(t, OID("aaa"), at1["refs/heads/feature"])

		at2 := rp.RefsAt(2)
		_, ok := at2["refs/heads/feature"]
		require.False(t, ok)
	})

	t.Run("is deterministic for the same prefix", func(t *testing.T) {
		events := numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", NewOID: "aaa"},
			Event{Kind: KindCommitCreated, NewOID: "bbb"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
		)
		a := NewReplayer(events)
		b := NewReplayer(events)

		for cursor := Cursor(0); cursor <= 4; cursor++ {
			require.Equal(t, a.RefsAt(cursor), b.RefsAt(cursor))
			require.Equal(t, a.ActiveOIDs(cursor), b.ActiveOIDs(cursor))
			require.Equal(t, a.EverRefTargets(cursor), b.EverRefTargets(cursor))
		}
	})
}

func TestReplayerVisibility(t *testing.T) {
	t.Run("replays visibility through rewrites and manual marks", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
			Event{Kind: KindCommitHidden, NewOID: "bbb"},
			Event{Kind: KindCommitUnhidden, NewOID: "bbb"},
		))

		vis, ok := rp.VisibilityAt(1, "aaa")
		require.True(t, ok)
		require.Equal(t, VisibilityVisible, vis)

		vis, ok = rp.VisibilityAt(2, "aaa")
		require.True(t, ok)
		require.Equal(t, VisibilityHidden, vis)

		vis, ok = rp.VisibilityAt(2, "aa2")
		require.True(t, ok)
		require.Equal(t, VisibilityVisible, vis)

		vis, ok = rp.VisibilityAt(3, "bbb")
		require.True(t, ok)
		require.Equal(t, VisibilityHidden, vis)

		vis, ok = rp.VisibilityAt(4, "bbb")
		require.True(t, ok)
		require.Equal(t, VisibilityVisible, vis)

		_, ok = rp.VisibilityAt(4, "zzz")
		require.False(t, ok)
	})

	t.Run("reports the last visibility-changing event", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitHidden, NewOID: "aaa"},
			Event{Kind: KindCommitUnhidden, NewOID: "aaa"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
		))

		kind, ok := rp.LastVisibilityEventAt(2, "aaa")
		require.True(t, ok)
		require.Equal(t, KindCommitUnhidden, kind)

		kind, ok = rp.LastVisibilityEventAt(3, "aaa")
		require.True(t, ok)
		require.Equal(t, KindCommitRewritten, kind)
	})
}

func TestReplayerRewrites(t *testing.T) {
	t.Run("follows rewrite chains to the final target", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
			Event{Kind: KindCommitRewritten, OldOID: "aa2", NewOID: "aa3"},
		))

		target, ok := rp.FinalRewriteTargetAt(2, "aaa")
		require.True(t, ok)
		require.Equal(t, OID("aa3"), target)

		target, ok = rp.FinalRewriteTargetAt(1, "aaa")
		require.True(t, ok)
		require.Equal(t, OID("aa2"), target)

		_, ok = rp.FinalRewriteTargetAt(2, "zzz")
		require.False(t, ok)
	})

	t.Run("terminates on rewrite cycles", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "bbb"},
			Event{Kind: KindCommitRewritten, OldOID: "bbb", NewOID: "aaa"},
		))

		target, ok := rp.FinalRewriteTargetAt(2, "aaa")
		require.True(t, ok)
		require.Equal(t, OID("bbb"), target)
	})

	t.Run("uses the latest rewrite for an oid", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa9"},
		))

		target, ok := rp.RewriteTargetAt(2, "aaa")
		require.True(t, ok)
		require.Equal(t, OID("aa9"), target)
	})
}

func TestReplayerActivity(t *testing.T) {
	t.Run("tracks commits that were ever ref heads", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", NewOID: "bbb"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
		))

		heads := rp.EverRefTargets(3)
		require.Equal(t, []OID{"aaa", "bbb"}, heads)
	})

	t.Run("collects every mentioned oid once", func(t *testing.T) {
		rp := NewReplayer(numbered(
			Event{Kind: KindCommitCreated, NewOID: "aaa"},
			Event{Kind: KindRefUpdated, RefName: "refs/heads/main", NewOID: "aaa"},
			Event{Kind: KindCommitRewritten, OldOID: "aaa", NewOID: "aa2"},
		))

		require.Equal(t, []OID{"aa2", "aaa"}, rp.ActiveOIDs(3))
		require.Equal(t, []OID{"aaa"}, rp.ActiveOIDs(2))
	})
}
