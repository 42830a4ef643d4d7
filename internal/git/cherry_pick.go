package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
)

// Replay reapplies a commit on top of another commit and returns the oid of
// the replayed commit. HEAD is left detached at the new commit. A conflict
// leaves the cherry-pick in progress for the user to resolve and surfaces
// as *errors.ConflictError.
func (r *Repository) Replay(ctx context.Context, commit, onto eventlog.OID) (eventlog.OID, error) {
	if err := r.CheckoutDetached(ctx, onto); err != nil {
		return "", err
	}

	_, err := r.runner.Run(ctx, "cherry-pick", "--allow-empty", string(commit))
	if err != nil {
		if r.CherryPickInProgress() {
			return "", arborerrors.NewConflictError(string(commit), 0, conflictSummary(err))
		}
		return "", fmt.Errorf("failed to replay %s: %w", ShortOID(commit), err)
	}

	newOID, err := r.ResolveRevision("HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read replayed commit: %w", err)
	}
	return newOID, nil
}

// CherryPickInProgress checks if a cherry-pick is waiting for resolution
func (r *Repository) CherryPickInProgress() bool {
	return fileExists(filepath.Join(r.gitDir, "CHERRY_PICK_HEAD"))
}

// CherryPickContinue finishes a resolved cherry-pick and returns the oid of
// the resulting commit. If conflicts remain it reports ErrConflict again.
func (r *Repository) CherryPickContinue(ctx context.Context) (eventlog.OID, error) {
	_, err := r.runner.Run(ctx, "-c", "core.editor=true", "cherry-pick", "--continue")
	if err != nil {
		if r.CherryPickInProgress() {
			return "", arborerrors.NewConflictError("", 0, conflictSummary(err))
		}
		return "", fmt.Errorf("cherry-pick continue failed: %w", err)
	}

	newOID, err := r.ResolveRevision("HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read replayed commit: %w", err)
	}
	return newOID, nil
}

// CherryPickAbort abandons an in-progress cherry-pick
func (r *Repository) CherryPickAbort(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "cherry-pick", "--abort")
	if err != nil {
		return fmt.Errorf("cherry-pick abort failed: %w", err)
	}
	return nil
}

// UnmergedFiles returns the paths currently in conflict
func (r *Repository) UnmergedFiles(ctx context.Context) ([]string, error) {
	lines, err := r.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	return lines, nil
}

// conflictSummary extracts the git message worth showing for a conflict
func conflictSummary(err error) string {
	var cmdErr *arborerrors.GitCommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		line, _, _ := strings.Cut(strings.TrimSpace(cmdErr.Stderr), "\n")
		return line
	}
	return err.Error()
}
