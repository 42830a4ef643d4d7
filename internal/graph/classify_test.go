package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/eventlog"
)

// numbered assigns cursors 1..n, matching what the store would do.
func numbered(events ...eventlog.Event) []eventlog.Event {
	for i := range events {
		events[i].Cursor = eventlog.Cursor(i + 1)
	}
	return events
}

func buildForEvents(t *testing.T, reader *fakeReader, refs map[string]eventlog.OID, mainRef string, events []eventlog.Event) (*Graph, *eventlog.Replayer) {
	t.Helper()
	rp := eventlog.NewReplayer(events)
	g, err := Build(context.Background(), BuildInput{
		Refs:    refs,
		HeadOID: refs[eventlog.HeadRef],
		MainRef: mainRef,
		Seeds:   rp.ActiveOIDs(rp.LatestCursor()),
		Reader:  reader,
	})
	require.NoError(t, err)
	return g, rp
}

func TestClassify(t *testing.T) {
	t.Run("keeps reachable commits visible", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("aaa", "first", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "aaa"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", NewOID: "aaa"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "aaa", eventlog.HeadRef: "aaa"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassVisible, classes["aaa"])
		require.Equal(t, ClassVisible, classes["root"])
	})

	t.Run("abandons commits left behind by a rewrite", func(t *testing.T) {
		// create A, point main at A, create B on top, point main at B,
		// rewrite A to A2, point main at A2.
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "change one", "root")
		reader.add("B", "change two", "A")
		reader.add("A2", "change one amended", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "root", NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "B"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "A", NewOID: "B"},
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "A", NewOID: "A2"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "B", NewOID: "A2"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "A2", eventlog.HeadRef: "A2"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassVisible, classes["A2"])
		require.Equal(t, ClassAbandoned, classes["B"])
		require.Equal(t, ClassAbandoned, classes["A"])
	})

	t.Run("keeps rewritten commits visible while a branch points at them", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "change", "root")
		reader.add("A2", "change amended", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/keep", NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "A", NewOID: "A2"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "root", NewOID: "A2"},
		)
		refs := map[string]eventlog.OID{
			"refs/heads/main": "A2",
			"refs/heads/keep": "A",
			eventlog.HeadRef:  "A2",
		}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassVisible, classes["A"])
		require.Equal(t, ClassVisible, classes["A2"])
	})

	t.Run("follows rewrite chains to the final target", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "v1", "root")
		reader.add("A2", "v2", "root")
		reader.add("A3", "v3", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "root", NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "A", NewOID: "A2"},
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "A2", NewOID: "A3"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "A", NewOID: "A3"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "A3", eventlog.HeadRef: "A3"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassVisible, classes["A3"])
		require.Equal(t, ClassAbandoned, classes["A2"], "intermediate link of the chain")
		require.Equal(t, ClassAbandoned, classes["A"], "start of the chain")
	})

	t.Run("manual hide is an override, not abandonment", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "experiment", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: eventlog.HeadRef, OldOID: "A", NewOID: "root"},
			eventlog.Event{Kind: eventlog.KindCommitHidden, NewOID: "A"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "root", eventlog.HeadRef: "root"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassHidden, classes["A"])
	})

	t.Run("manual unhide protects from abandonment", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "kept around", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: eventlog.HeadRef, OldOID: "A", NewOID: "root"},
			eventlog.Event{Kind: eventlog.KindCommitHidden, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindCommitUnhidden, NewOID: "A"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "root", eventlog.HeadRef: "root"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassHidden, classes["A"])
	})

	t.Run("never-adopted rewrite sources stay hidden", func(t *testing.T) {
		// X only ever appears as the old side of a rewrite whose target is
		// not visible either; it was never a ref head.
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("X", "imported", "root")
		reader.add("X2", "imported again", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "X", NewOID: "X2"},
			eventlog.Event{Kind: eventlog.KindCommitHidden, NewOID: "X2"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "root", eventlog.HeadRef: "root"}
		g, rp := buildForEvents(t, reader, refs, "refs/heads/main", events)

		classes := Classify(g, rp, rp.LatestCursor())
		require.Equal(t, ClassHidden, classes["X"])
		require.Equal(t, ClassHidden, classes["X2"])
	})

	t.Run("classification is deterministic", func(t *testing.T) {
		reader := newFakeReader()
		reader.add("root", "initial")
		reader.add("A", "one", "root")
		reader.add("B", "two", "A")
		reader.add("A2", "one amended", "root")

		events := numbered(
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "root", NewOID: "A"},
			eventlog.Event{Kind: eventlog.KindCommitCreated, NewOID: "B"},
			eventlog.Event{Kind: eventlog.KindCommitRewritten, OldOID: "A", NewOID: "A2"},
			eventlog.Event{Kind: eventlog.KindRefUpdated, RefName: "refs/heads/main", OldOID: "A", NewOID: "A2"},
		)
		refs := map[string]eventlog.OID{"refs/heads/main": "A2", eventlog.HeadRef: "A2"}

		g1, rp1 := buildForEvents(t, reader, refs, "refs/heads/main", events)
		g2, rp2 := buildForEvents(t, reader, refs, "refs/heads/main", events)

		require.Equal(t, Classify(g1, rp1, rp1.LatestCursor()), Classify(g2, rp2, rp2.LatestCursor()))
	})
}
