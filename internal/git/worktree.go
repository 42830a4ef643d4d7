package git

import (
	"context"
	"fmt"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
)

// IsClean reports whether the working tree has no uncommitted changes.
// Untracked files do not count as dirty; replaying commits does not
// touch them.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	output, err := r.runner.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("failed to check worktree status: %w", err)
	}
	return output == "", nil
}

// RequireClean fails with a dirty-worktree error when there are
// uncommitted changes, so multi-step mutations never run over work the
// user could lose.
func (r *Repository) RequireClean(ctx context.Context) error {
	clean, err := r.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return arborerrors.NewDirtyWorktreeError("commit or stash your changes first")
	}
	return nil
}

// CheckoutBranch checks out a branch by full or short ref name
func (r *Repository) CheckoutBranch(ctx context.Context, ref string) error {
	_, err := r.runner.Run(ctx, "checkout", BranchShortName(ref))
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", BranchShortName(ref), err)
	}
	return nil
}

// CheckoutDetached checks out a commit, detaching HEAD
func (r *Repository) CheckoutDetached(ctx context.Context, oid eventlog.OID) error {
	_, err := r.runner.Run(ctx, "checkout", "--detach", string(oid))
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", ShortOID(oid), err)
	}
	return nil
}

// DetachHead detaches HEAD at its current commit without moving it.
// Updating a checked-out branch underneath HEAD leaves the worktree stale,
// so ref transactions detach first and check out again after.
func (r *Repository) DetachHead(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "checkout", "--detach")
	if err != nil {
		return fmt.Errorf("failed to detach HEAD: %w", err)
	}
	return nil
}
