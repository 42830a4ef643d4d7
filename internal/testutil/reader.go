package testutil

import (
	"context"
	"fmt"
	"time"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/graph"
)

// Reader is an in-memory graph.CommitReader for tests that build commit
// graphs without a repository.
type Reader struct {
	commits map[eventlog.OID]*graph.Commit
}

// NewReader returns an empty Reader
func NewReader() *Reader {
	return &Reader{commits: make(map[eventlog.OID]*graph.Commit)}
}

// Add registers a commit; call order determines commit timestamps
func (r *Reader) Add(oid eventlog.OID, summary string, parents ...eventlog.OID) {
	when := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(len(r.commits)) * time.Minute)
	r.commits[oid] = &graph.Commit{
		OID:        oid,
		Parents:    parents,
		Summary:    summary,
		AuthorTime: when,
		CommitTime: when,
	}
}

// ReadCommit implements graph.CommitReader
func (r *Reader) ReadCommit(_ context.Context, oid eventlog.OID) (*graph.Commit, error) {
	commit, ok := r.commits[oid]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", oid)
	}
	return commit, nil
}
