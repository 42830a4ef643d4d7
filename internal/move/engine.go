// Package move plans and executes commit replays: moving a subtree onto a
// new parent, and restacking commits left behind by rewrites. Execution is
// lazy and durable step by step; a conflict pauses the plan with a persisted
// continuation instead of rolling anything back.
package move

import (
	"context"
	"errors"
	"fmt"

	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
)

// Engine executes plans against one repository and its event log.
type Engine struct {
	store *eventlog.Store
	repo  *git.Repository
}

// NewEngine returns an engine over the given store and repository.
func NewEngine(store *eventlog.Store, repo *git.Repository) *Engine {
	return &Engine{store: store, repo: repo}
}

// Execute replays the plan step by step. Each completed step is committed
// durably before the next starts: the branch refs that pointed at the old
// commit move in one transaction and the rewrite is appended to the log.
// A conflict persists a continuation and surfaces as *errors.ConflictError;
// steps already applied stay applied.
func (e *Engine) Execute(ctx context.Context, plan *Plan) error {
	if len(plan.Steps) == 0 {
		return nil
	}
	if config.HasContinuation(e.repo.StateDir()) {
		return fmt.Errorf("an operation is already paused on a conflict; run 'arbor continue' or 'arbor abort' first")
	}

	lock, err := git.AcquireLock(e.repo.StateDir())
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := e.repo.RequireClean(ctx); err != nil {
		return err
	}

	headRef := e.repo.CurrentBranch()
	headOID, err := e.repo.ResolveRevision("HEAD")
	if err != nil {
		return err
	}

	return e.run(ctx, plan, eventlog.NewTxID(), make(map[string]string), 0, headRef, headOID)
}

// Resume picks up the paused plan after the user resolved the conflict. The
// halted step adopts the resolution commit; the remaining steps run as
// usual and may pause again.
func (e *Engine) Resume(ctx context.Context) error {
	state, err := config.GetContinuationState(e.repo.StateDir())
	if err != nil {
		return err
	}
	plan := planFromContinuation(state)
	if state.HaltedStep < 0 || state.HaltedStep >= len(plan.Steps) {
		return arborerrors.NewStorageError("continue", fmt.Errorf("halted step %d out of range", state.HaltedStep))
	}

	lock, err := git.AcquireLock(e.repo.StateDir())
	if err != nil {
		return err
	}
	defer lock.Release()

	var newOID eventlog.OID
	if e.repo.CherryPickInProgress() {
		newOID, err = e.repo.CherryPickContinue(ctx)
		if err != nil {
			return err
		}
	} else {
		// The user finished the cherry-pick on their own; adopt HEAD.
		newOID, err = e.repo.ResolveRevision("HEAD")
		if err != nil {
			return err
		}
	}

	step := plan.Steps[state.HaltedStep]
	if err := e.commitStep(ctx, step, newOID, state.TxID, plan.Op); err != nil {
		return err
	}

	replayed := state.Replayed
	if replayed == nil {
		replayed = make(map[string]string)
	}
	replayed[string(step.CommitOID)] = string(newOID)

	if err := config.ClearContinuationState(e.repo.StateDir()); err != nil {
		return err
	}

	return e.run(ctx, plan, state.TxID, replayed, state.HaltedStep+1, state.OriginalHeadRef, eventlog.OID(state.OriginalHeadOID))
}

// Abort abandons the paused plan. The in-progress cherry-pick is aborted
// and the worktree returns to where the user started; steps already applied
// stay applied.
func (e *Engine) Abort(ctx context.Context) error {
	state, err := config.GetContinuationState(e.repo.StateDir())
	if err != nil {
		return err
	}

	lock, err := git.AcquireLock(e.repo.StateDir())
	if err != nil {
		return err
	}
	defer lock.Release()

	if e.repo.CherryPickInProgress() {
		if err := e.repo.CherryPickAbort(ctx); err != nil {
			return err
		}
	}
	if err := config.ClearContinuationState(e.repo.StateDir()); err != nil {
		return err
	}

	replayed := state.Replayed
	if replayed == nil {
		replayed = make(map[string]string)
	}
	return e.finish(ctx, eventlog.OpAbort, state.TxID, replayed, state.OriginalHeadRef, eventlog.OID(state.OriginalHeadOID))
}

// run replays steps from index start onward, then restores the checkout.
func (e *Engine) run(ctx context.Context, plan *Plan, txID string, replayed map[string]string, start int, headRef string, headOID eventlog.OID) error {
	for k := start; k < len(plan.Steps); k++ {
		step := plan.Steps[k]
		onto := step.NewParent
		if step.ParentStep >= 0 {
			onto = eventlog.OID(replayed[string(plan.Steps[step.ParentStep].CommitOID)])
		}

		newOID, err := e.repo.Replay(ctx, step.CommitOID, onto)
		if err != nil {
			var conflict *arborerrors.ConflictError
			if errors.As(err, &conflict) {
				conflict.StepIndex = k
				state := continuationFromPlan(plan, txID, replayed, k, headRef, headOID)
				if persistErr := config.PersistContinuationState(e.repo.StateDir(), state); persistErr != nil {
					return persistErr
				}
			}
			return err
		}

		if err := e.commitStep(ctx, step, newOID, txID, plan.Op); err != nil {
			return err
		}
		replayed[string(step.CommitOID)] = string(newOID)
	}

	return e.finish(ctx, plan.Op, txID, replayed, headRef, headOID)
}

// commitStep records one replayed commit: the branch refs that pointed at
// the old commit move to the new one in a single transaction and the
// rewrite lands in the log.
func (e *Engine) commitStep(ctx context.Context, step Step, newOID eventlog.OID, txID, op string) error {
	meta := eventlog.TxMetadata(txID, op)
	events := []eventlog.Event{{
		Kind:     eventlog.KindCommitRewritten,
		OldOID:   step.CommitOID,
		NewOID:   newOID,
		Metadata: meta,
	}}
	var updates []git.RefUpdate
	for _, ref := range step.Refs {
		updates = append(updates, git.RefUpdate{Name: ref, OldOID: step.CommitOID, NewOID: newOID})
		events = append(events, eventlog.Event{
			Kind:     eventlog.KindRefUpdated,
			RefName:  ref,
			OldOID:   step.CommitOID,
			NewOID:   newOID,
			Metadata: meta,
		})
	}

	if err := e.repo.UpdateRefs(ctx, updates); err != nil {
		return err
	}
	_, err := e.store.AppendBatch(ctx, events)
	return err
}

// finish returns the worktree to where the user started, following the
// replays: a branch checkout lands on the branch wherever it moved to, a
// detached HEAD follows its commit's replacement. The HEAD movement is
// recorded when there is one.
func (e *Engine) finish(ctx context.Context, op, txID string, replayed map[string]string, headRef string, headOID eventlog.OID) error {
	if headRef != "" {
		if err := e.repo.CheckoutBranch(ctx, headRef); err != nil {
			return err
		}
	} else {
		target := headOID
		if moved, ok := replayed[string(headOID)]; ok {
			target = eventlog.OID(moved)
		}
		if err := e.repo.CheckoutDetached(ctx, target); err != nil {
			return err
		}
	}

	final, err := e.repo.ResolveRevision("HEAD")
	if err != nil {
		return err
	}
	if final == headOID {
		return nil
	}
	_, err = e.store.AppendBatch(ctx, []eventlog.Event{{
		Kind:     eventlog.KindRefUpdated,
		RefName:  eventlog.HeadRef,
		OldOID:   headOID,
		NewOID:   final,
		Metadata: eventlog.TxMetadata(txID, op),
	}})
	return err
}
