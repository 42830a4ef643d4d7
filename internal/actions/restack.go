package actions

import (
	"errors"
	"fmt"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/move"
	"arbor.dev/arbor/internal/runtime"
)

// RestackOptions contains options for the restack command
type RestackOptions struct {
	DryRun bool
}

// RestackAction reattaches abandoned commits onto the replacements of their
// rewritten parents. Replaying a subtree produces new rewrites, so planning
// and executing repeat until a plan comes back empty.
func RestackAction(ctx *runtime.Context, opts RestackOptions) error {
	moved := 0
	for {
		view, err := ctx.LoadView(ctx.Context)
		if err != nil {
			return err
		}
		plan, err := move.PlanRestack(view.Graph, view.Classes, view.Replayer, view.Cursor)
		if err != nil {
			return err
		}
		if len(plan.Steps) == 0 {
			break
		}

		if opts.DryRun {
			printPlan(ctx, plan, fmt.Sprintf("Would restack %d commit(s):", len(plan.Steps)))
			return nil
		}

		if err := move.NewEngine(ctx.Store, ctx.Repo).Execute(ctx.Context, plan); err != nil {
			var conflict *arborerrors.ConflictError
			if errors.As(err, &conflict) {
				printConflictPause(ctx, conflict)
			}
			return err
		}
		moved += len(plan.Steps)
	}

	if moved == 0 {
		ctx.Splog.Info("All commits are already in place.")
	} else {
		ctx.Splog.Info("Restacked %d commit(s).", moved)
	}
	return nil
}
