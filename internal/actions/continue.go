package actions

import (
	"errors"

	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/move"
	"arbor.dev/arbor/internal/runtime"
)

// ContinueAction resumes the plan that paused on a conflict. The resolved
// cherry-pick becomes the halted step's result; the remaining steps run and
// may pause again. A resumed restack finishes its fixpoint afterwards.
func ContinueAction(ctx *runtime.Context) error {
	stateDir := ctx.Repo.StateDir()
	state, err := config.GetContinuationState(stateDir)
	if err != nil {
		return arborerrors.ErrNoContinuation
	}

	ctx.Splog.Info("Resuming the paused %s...", state.Op)

	if err := move.NewEngine(ctx.Store, ctx.Repo).Resume(ctx.Context); err != nil {
		var conflict *arborerrors.ConflictError
		if errors.As(err, &conflict) {
			printConflictPause(ctx, conflict)
		}
		return err
	}

	if state.Op == eventlog.OpRestack {
		return RestackAction(ctx, RestackOptions{})
	}

	ctx.Splog.Info("Resumed and completed the paused %s.", state.Op)
	return nil
}
