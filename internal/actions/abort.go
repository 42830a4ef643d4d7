package actions

import (
	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/move"
	"arbor.dev/arbor/internal/runtime"
)

// AbortAction abandons the plan that paused on a conflict: the in-progress
// cherry-pick is aborted and the worktree returns to where the command
// started. Steps replayed before the conflict stay applied; 'arbor undo'
// rolls them back.
func AbortAction(ctx *runtime.Context) error {
	stateDir := ctx.Repo.StateDir()
	state, err := config.GetContinuationState(stateDir)
	if err != nil {
		return arborerrors.ErrNoContinuation
	}

	if err := move.NewEngine(ctx.Store, ctx.Repo).Abort(ctx.Context); err != nil {
		return err
	}

	ctx.Splog.Info("Aborted the paused %s.", state.Op)
	ctx.Splog.Info("Commits replayed before the conflict were kept; run 'arbor undo' to roll them back.")
	return nil
}
