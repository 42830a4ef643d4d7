package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"arbor.dev/arbor/internal/eventlog"
)

// RefSnapshot is the current state of the ref namespace: every local branch
// head plus HEAD, and the symbolic name HEAD points at (empty when detached).
type RefSnapshot struct {
	Refs    map[string]eventlog.OID
	HeadRef string
}

// Snapshot reads the current ref positions. Branch refs are keyed by their
// full name (refs/heads/...); HEAD appears under eventlog.HeadRef.
func (r *Repository) Snapshot() (*RefSnapshot, error) {
	snapshot := &RefSnapshot{Refs: make(map[string]eventlog.OID)}

	iter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() && ref.Type() == plumbing.HashReference {
			snapshot.Refs[ref.Name().String()] = oidFromHash(ref.Hash())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err == nil && head.Type() == plumbing.SymbolicReference {
		snapshot.HeadRef = head.Target().String()
	}
	resolved, err := r.repo.Head()
	if err == nil {
		snapshot.Refs[eventlog.HeadRef] = oidFromHash(resolved.Hash())
	}

	return snapshot, nil
}

// CurrentBranch returns the full ref name of the checked-out branch, or an
// empty string when HEAD is detached.
func (r *Repository) CurrentBranch() string {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil || head.Type() != plumbing.SymbolicReference {
		return ""
	}
	if !head.Target().IsBranch() {
		return ""
	}
	return head.Target().String()
}

// BranchShortName strips the refs/heads/ prefix for display
func BranchShortName(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

// RefUpdate is one operation of a ref transaction. An empty NewOID deletes
// the ref; an empty OldOID asserts the ref did not exist.
type RefUpdate struct {
	Name   string
	OldOID eventlog.OID
	NewOID eventlog.OID
}

// UpdateRefs applies all updates as a single git update-ref transaction
// with old-value verification: if any ref moved since the old values were
// read, nothing is applied.
func (r *Repository) UpdateRefs(ctx context.Context, updates []RefUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	_, err := r.runner.RunWithInput(ctx, refTransactionInput(updates), "update-ref", "--stdin")
	if err != nil {
		return fmt.Errorf("ref transaction failed: %w", err)
	}
	return nil
}

// refTransactionInput renders updates in the update-ref --stdin format.
// All commands in one stdin batch are applied atomically by git.
func refTransactionInput(updates []RefUpdate) string {
	var b strings.Builder
	for _, u := range updates {
		switch {
		case u.NewOID == "" && u.OldOID == "":
			// Nothing to do; git rejects a zero old value on delete.
		case u.NewOID == "":
			fmt.Fprintf(&b, "delete %s %s\n", u.Name, u.OldOID)
		case u.OldOID == "":
			fmt.Fprintf(&b, "create %s %s\n", u.Name, u.NewOID)
		default:
			fmt.Fprintf(&b, "update %s %s %s\n", u.Name, u.NewOID, u.OldOID)
		}
	}
	return b.String()
}
