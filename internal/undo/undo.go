// Package undo moves the repository backward and forward through its own
// recorded history. A plan is computed by diffing the replayed ref state at
// two cursors; applying it updates the branch refs in one atomic transaction,
// checks out the target HEAD, and appends compensating events so that the
// movement itself becomes part of history and can be undone in turn.
package undo

import (
	"context"
	"time"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
)

// Engine plans and applies undo and redo movements for one repository.
type Engine struct {
	store *eventlog.Store
	repo  *git.Repository
}

// NewEngine returns an engine over the given store and repository.
func NewEngine(store *eventlog.Store, repo *git.Repository) *Engine {
	return &Engine{store: store, repo: repo}
}

// Plan computes the movement for the given number of steps back through
// history. Negative steps move forward again (redo). The target cursor is
// clamped to the bounds of the log. Movement starts from the persisted undo
// position when one exists, so consecutive undos walk further back.
func (e *Engine) Plan(ctx context.Context, steps int) (*Plan, error) {
	events, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}
	rp := eventlog.NewReplayer(events)
	latest := rp.LatestCursor()

	from := latest
	if cursor, ok, err := e.store.UndoCursor(ctx); err != nil {
		return nil, err
	} else if ok {
		from = cursor
	}

	target := from - eventlog.Cursor(steps)
	if target < 0 {
		target = 0
	}
	if target > latest {
		target = latest
	}

	direction := DirectionUndo
	if steps < 0 {
		direction = DirectionRedo
	}

	return planBetween(rp, from, target, direction), nil
}

// Apply performs the plan. Branch refs move in a single transaction with
// old-value verification, HEAD is checked out at the target, and the
// compensating events are appended. The undo position is saved afterward so
// a following undo or redo continues from the target.
func (e *Engine) Apply(ctx context.Context, plan *Plan) error {
	if plan.Empty() {
		return nil
	}

	lock, err := git.AcquireLock(e.repo.StateDir())
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := e.repo.RequireClean(ctx); err != nil {
		return err
	}

	currentBranch := e.repo.CurrentBranch()
	detached := false
	if currentBranch != "" && touchesRef(plan.RefChanges, currentBranch) {
		if err := e.repo.DetachHead(ctx); err != nil {
			return err
		}
		detached = true
	}

	if err := e.repo.UpdateRefs(ctx, plan.RefChanges); err != nil {
		return err
	}

	if err := e.restoreHead(ctx, plan, currentBranch, detached); err != nil {
		return err
	}

	batch := stamp(plan.Compensating, eventlog.NewTxID(), plan.Direction.op())
	if _, err := e.store.AppendBatch(ctx, batch); err != nil {
		return err
	}
	return e.store.SetUndoCursor(ctx, plan.ToCursor)
}

// restoreHead checks out the plan's target HEAD. When HEAD itself did not
// move but the checked-out branch was detached to let the ref transaction
// update it, the same branch is checked out again at its new position.
func (e *Engine) restoreHead(ctx context.Context, plan *Plan, previousBranch string, detached bool) error {
	if plan.HeadTo != "" && plan.HeadTo != plan.HeadFrom {
		if plan.CheckoutRef != "" {
			return e.repo.CheckoutBranch(ctx, plan.CheckoutRef)
		}
		return e.repo.CheckoutDetached(ctx, plan.HeadTo)
	}
	if detached {
		for _, change := range plan.RefChanges {
			if change.Name == previousBranch && change.NewOID == "" {
				// The branch is gone; stay detached where it last stood.
				return nil
			}
		}
		return e.repo.CheckoutBranch(ctx, previousBranch)
	}
	return nil
}

func touchesRef(changes []git.RefUpdate, name string) bool {
	for _, change := range changes {
		if change.Name == name {
			return true
		}
	}
	return false
}

// stamp returns copies of the events carrying fresh transaction metadata.
// Cursors and timestamps are cleared so the store assigns new ones.
func stamp(events []eventlog.Event, txID, op string) []eventlog.Event {
	stamped := make([]eventlog.Event, len(events))
	for i, ev := range events {
		ev.Cursor = 0
		ev.Timestamp = time.Time{}
		ev.Metadata = eventlog.TxMetadata(txID, op)
		stamped[i] = ev
	}
	return stamped
}
