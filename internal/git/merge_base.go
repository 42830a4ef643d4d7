package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"arbor.dev/arbor/internal/eventlog"
)

// MergeBase returns the best common ancestor of two commits, or an empty
// oid when the commits share no history.
func (r *Repository) MergeBase(lhs, rhs eventlog.OID) (eventlog.OID, error) {
	lhsCommit, err := r.repo.CommitObject(plumbing.NewHash(string(lhs)))
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", ShortOID(lhs), err)
	}
	rhsCommit, err := r.repo.CommitObject(plumbing.NewHash(string(rhs)))
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", ShortOID(rhs), err)
	}

	mergeBases, err := lhsCommit.MergeBase(rhsCommit)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(mergeBases) == 0 {
		return "", nil
	}
	return oidFromHash(mergeBases[0].Hash), nil
}

// IsAncestor checks if the first commit is an ancestor of the second
func (r *Repository) IsAncestor(ancestor, descendant eventlog.OID) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}

	ancestorCommit, err := r.repo.CommitObject(plumbing.NewHash(string(ancestor)))
	if err != nil {
		return false, fmt.Errorf("failed to get ancestor commit: %w", err)
	}
	descendantCommit, err := r.repo.CommitObject(plumbing.NewHash(string(descendant)))
	if err != nil {
		return false, fmt.Errorf("failed to get descendant commit: %w", err)
	}

	return ancestorCommit.IsAncestor(descendantCommit)
}
