package move

import (
	"errors"
	"fmt"

	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/graph"
)

// Step is one commit replay within a plan. The commit is applied onto the
// result of the step named by ParentStep, or onto NewParent for subtree
// roots. Refs are the branch refs to carry along to the replayed commit.
type Step struct {
	CommitOID  eventlog.OID
	ParentStep int
	NewParent  eventlog.OID
	Refs       []string
}

// Plan is an ordered list of replays, parents before children. Plans are
// computed from the built graph without touching the repository.
type Plan struct {
	Op     string
	Source eventlog.OID
	Dest   eventlog.OID
	Steps  []Step
}

// PlanMove plans replaying the subtree rooted at source onto dest: the
// source commit, its visible descendants, and the branch refs pointing at
// them. Commits on the main branch are never replayed. Moving onto the
// commit's current parent yields an empty plan.
func PlanMove(g *graph.Graph, classes graph.Classes, source, dest eventlog.OID) (*Plan, error) {
	node, ok := g.Node(source)
	if !ok {
		return nil, arborerrors.NewGraphError(string(source), errors.New("not found in the commit graph"))
	}
	if node.IsMain {
		return nil, fmt.Errorf("cannot move %s: it is on the main branch", git.ShortOID(source))
	}
	if g.IsAncestor(source, dest) {
		return nil, fmt.Errorf("cannot move %s onto %s: the destination is a descendant of the source", git.ShortOID(source), git.ShortOID(dest))
	}

	plan := &Plan{Op: eventlog.OpMove, Source: source, Dest: dest}
	if len(node.Parents) == 1 && node.Parents[0] == dest {
		// Already on the destination.
		return plan, nil
	}

	visible := func(oid eventlog.OID) bool { return classes[oid] == graph.ClassVisible }
	claimed := make(map[eventlog.OID]bool)
	if err := appendSubtree(plan, g, source, -1, dest, claimed, visible); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanRestack plans moving every commit stranded by a rewrite onto its
// parent's final replacement, together with the stack above it. A commit is
// stranded when its parent has a visible replacement while the commit
// itself has none: typically classified abandoned, or still visible because
// a branch kept it reachable. Commits whose parents are intact plan
// nothing, and the main branch is never replayed.
func PlanRestack(g *graph.Graph, classes graph.Classes, rp *eventlog.Replayer, cursor eventlog.Cursor) (*Plan, error) {
	plan := &Plan{Op: eventlog.OpRestack}
	claimed := make(map[eventlog.OID]bool)

	// Hidden commits stay where they are, and a commit with a replacement
	// of its own is represented by that replacement, not replayed again.
	restackable := func(oid eventlog.OID) bool {
		if classes[oid] == graph.ClassHidden {
			return false
		}
		_, rewritten := rp.FinalRewriteTargetAt(cursor, oid)
		return !rewritten
	}

	for _, oid := range g.SortedOIDs() {
		if claimed[oid] || !restackable(oid) {
			continue
		}
		node, _ := g.Node(oid)
		if node.IsMain || len(node.Parents) != 1 {
			continue
		}
		target, ok := rp.FinalRewriteTargetAt(cursor, node.Parents[0])
		if !ok || target == node.Parents[0] || target == "" {
			continue
		}
		if classes[target] != graph.ClassVisible {
			continue
		}
		if err := appendSubtree(plan, g, oid, -1, target, claimed, restackable); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// appendSubtree adds oid and the descendants carry admits to the plan in
// depth-first order, so every step's parent is planned before it.
func appendSubtree(plan *Plan, g *graph.Graph, oid eventlog.OID, parentStep int, newParent eventlog.OID, claimed map[eventlog.OID]bool, carry func(eventlog.OID) bool) error {
	node, _ := g.Node(oid)
	if len(node.Parents) > 1 {
		return fmt.Errorf("cannot replay merge commit %s", git.ShortOID(oid))
	}

	idx := len(plan.Steps)
	plan.Steps = append(plan.Steps, Step{
		CommitOID:  oid,
		ParentStep: parentStep,
		NewParent:  newParent,
		Refs:       g.RefsPointingAt(oid),
	})
	claimed[oid] = true

	for _, child := range g.ChildrenOf(oid) {
		if claimed[child] || !carry(child) {
			continue
		}
		if err := appendSubtree(plan, g, child, idx, "", claimed, carry); err != nil {
			return err
		}
	}
	return nil
}

// continuationFromPlan captures everything needed to resume the plan after
// a conflict pause.
func continuationFromPlan(plan *Plan, txID string, replayed map[string]string, halted int, headRef string, headOID eventlog.OID) *config.ContinuationState {
	steps := make([]config.ContinuationStep, len(plan.Steps))
	for i, s := range plan.Steps {
		steps[i] = config.ContinuationStep{
			CommitOID:  string(s.CommitOID),
			ParentStep: s.ParentStep,
			NewParent:  string(s.NewParent),
			Refs:       append([]string(nil), s.Refs...),
		}
	}
	return &config.ContinuationState{
		Op:              plan.Op,
		TxID:            txID,
		Source:          string(plan.Source),
		Dest:            string(plan.Dest),
		Steps:           steps,
		Replayed:        replayed,
		HaltedStep:      halted,
		OriginalHeadRef: headRef,
		OriginalHeadOID: string(headOID),
	}
}

func planFromContinuation(state *config.ContinuationState) *Plan {
	plan := &Plan{
		Op:     state.Op,
		Source: eventlog.OID(state.Source),
		Dest:   eventlog.OID(state.Dest),
	}
	for _, s := range state.Steps {
		plan.Steps = append(plan.Steps, Step{
			CommitOID:  eventlog.OID(s.CommitOID),
			ParentStep: s.ParentStep,
			NewParent:  eventlog.OID(s.NewParent),
			Refs:       append([]string(nil), s.Refs...),
		})
	}
	return plan
}
