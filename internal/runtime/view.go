package runtime

import (
	"context"
	"fmt"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/graph"
)

// View is a consistent read of the repository state: the commit graph built
// from the refs and the event log, the replayed log itself, and the
// visibility class of every commit in the graph.
type View struct {
	Graph    *graph.Graph
	Replayer *eventlog.Replayer
	Classes  graph.Classes
	Cursor   eventlog.Cursor
}

// LoadView reads the current refs and the full event log and builds the
// commit graph. The graph is seeded with every oid the log still considers
// active, so hidden and abandoned commits keep their structure until git
// garbage-collects them.
func (c *Context) LoadView(ctx context.Context) (*View, error) {
	snapshot, err := c.Repo.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read refs: %w", err)
	}

	events, err := c.Store.All(ctx)
	if err != nil {
		return nil, err
	}
	rp := eventlog.NewReplayer(events)
	cursor := rp.LatestCursor()

	mainRef, err := c.MainRef()
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(ctx, graph.BuildInput{
		Refs:    snapshot.Refs,
		HeadOID: snapshot.Refs[eventlog.HeadRef],
		HeadRef: snapshot.HeadRef,
		MainRef: mainRef,
		Seeds:   rp.ActiveOIDs(cursor),
		Reader:  c.Repo,
	})
	if err != nil {
		return nil, err
	}

	return &View{
		Graph:    g,
		Replayer: rp,
		Classes:  graph.Classify(g, rp, cursor),
		Cursor:   cursor,
	}, nil
}

// LoadViewAt builds the commit graph as the repository looked at a past
// cursor, using the ref positions the event log recorded instead of the
// current refs. Recorded refs whose targets git has since garbage-collected
// are dropped rather than failing the build.
func (c *Context) LoadViewAt(ctx context.Context, cursor eventlog.Cursor) (*View, error) {
	events, err := c.Store.All(ctx)
	if err != nil {
		return nil, err
	}
	rp := eventlog.NewReplayer(events)

	refs := make(map[string]eventlog.OID)
	for name, oid := range rp.RefsAt(cursor) {
		if c.Repo.HasCommit(oid) {
			refs[name] = oid
		}
	}

	mainRef, err := c.MainRef()
	if err != nil {
		return nil, err
	}

	// The symbolic name HEAD pointed at is not recorded in the log, only
	// the commit it resolved to.
	g, err := graph.Build(ctx, graph.BuildInput{
		Refs:    refs,
		HeadOID: refs[eventlog.HeadRef],
		HeadRef: "",
		MainRef: mainRef,
		Seeds:   rp.ActiveOIDs(cursor),
		Reader:  c.Repo,
	})
	if err != nil {
		return nil, err
	}

	return &View{
		Graph:    g,
		Replayer: rp,
		Classes:  graph.Classify(g, rp, cursor),
		Cursor:   cursor,
	}, nil
}
