package git

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/graph"
)

// ReadCommit loads a commit from the object store. It implements
// graph.CommitReader.
func (r *Repository) ReadCommit(ctx context.Context, oid eventlog.OID) (*graph.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	commit, err := r.repo.CommitObject(plumbing.NewHash(string(oid)))
	if err != nil {
		return nil, arborerrors.NewGraphError(string(oid), err)
	}

	parents := make([]eventlog.OID, 0, len(commit.ParentHashes))
	for _, hash := range commit.ParentHashes {
		parents = append(parents, oidFromHash(hash))
	}

	return &graph.Commit{
		OID:        oid,
		Parents:    parents,
		Summary:    summaryOf(commit.Message),
		AuthorTime: commit.Author.When,
		CommitTime: commit.Committer.When,
	}, nil
}

// HasCommit reports whether the oid resolves to a commit object
func (r *Repository) HasCommit(oid eventlog.OID) bool {
	_, err := r.repo.CommitObject(plumbing.NewHash(string(oid)))
	return err == nil
}

// ResolveRevision resolves a revision expression (a branch name, short oid,
// HEAD, ...) to a commit oid.
func (r *Repository) ResolveRevision(rev string) (eventlog.OID, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", arborerrors.NewGraphError(rev, err)
	}
	return oidFromHash(*hash), nil
}

// ShortOID returns the abbreviated form of an oid used in output
func ShortOID(oid eventlog.OID) string {
	const short = 8
	if len(oid) <= short {
		return string(oid)
	}
	return string(oid[:short])
}

// summaryOf returns the first line of a commit message
func summaryOf(message string) string {
	summary, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(summary)
}

// oidFromHash converts a go-git hash, mapping the zero hash to the empty oid
func oidFromHash(hash plumbing.Hash) eventlog.OID {
	if hash.IsZero() {
		return ""
	}
	return eventlog.OID(hash.String())
}
