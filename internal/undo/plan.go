package undo

import (
	"sort"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
)

// Direction says which way through history a plan moves.
type Direction int

const (
	// DirectionUndo moves the repository to an earlier cursor.
	DirectionUndo Direction = iota
	// DirectionRedo moves it forward again after an undo.
	DirectionRedo
)

func (d Direction) String() string {
	if d == DirectionRedo {
		return "redo"
	}
	return "undo"
}

func (d Direction) op() string {
	if d == DirectionRedo {
		return eventlog.OpRedo
	}
	return eventlog.OpUndo
}

// Plan describes how to move the repository from its current position in
// history to another cursor. Plans are computed without touching the
// repository; Apply performs them.
type Plan struct {
	Direction  Direction
	FromCursor eventlog.Cursor
	ToCursor   eventlog.Cursor

	// RefChanges are the branch updates needed to reach the target state,
	// sorted by name. HEAD is moved by checkout, not listed here.
	RefChanges []git.RefUpdate

	// HeadFrom and HeadTo are the HEAD positions on either side of the
	// movement. CheckoutRef names a branch at HeadTo to check out, or is
	// empty for a detached checkout.
	HeadFrom    eventlog.OID
	HeadTo      eventlog.OID
	CheckoutRef string

	// Events are the log entries the plan traverses, oldest first.
	Events []eventlog.Event

	// Compensating are the events Apply appends to record the movement:
	// inverses in reverse order for an undo, copies in order for a redo.
	Compensating []eventlog.Event
}

// Empty reports whether applying the plan would change nothing.
func (p *Plan) Empty() bool {
	return len(p.RefChanges) == 0 && p.HeadFrom == p.HeadTo && len(p.Compensating) == 0
}

// planBetween computes the movement from one cursor to another by diffing
// the replayed ref state on both sides.
func planBetween(rp *eventlog.Replayer, from, target eventlog.Cursor, direction Direction) *Plan {
	plan := &Plan{
		Direction:  direction,
		FromCursor: from,
		ToCursor:   target,
	}

	current := rp.RefsAt(from)
	want := rp.RefsAt(target)

	names := make(map[string]struct{})
	for name := range current {
		names[name] = struct{}{}
	}
	for name := range want {
		names[name] = struct{}{}
	}
	for name := range names {
		if name == eventlog.HeadRef {
			continue
		}
		if current[name] != want[name] {
			plan.RefChanges = append(plan.RefChanges, git.RefUpdate{
				Name:   name,
				OldOID: current[name],
				NewOID: want[name],
			})
		}
	}
	sort.Slice(plan.RefChanges, func(i, j int) bool {
		return plan.RefChanges[i].Name < plan.RefChanges[j].Name
	})

	plan.HeadFrom = current[eventlog.HeadRef]
	plan.HeadTo = want[eventlog.HeadRef]
	plan.CheckoutRef = branchAt(want, plan.HeadTo)

	lo, hi := target, from
	if direction == DirectionRedo {
		lo, hi = from, target
	}
	for _, ev := range rp.Events() {
		if ev.Cursor > lo && ev.Cursor <= hi {
			plan.Events = append(plan.Events, ev)
		}
	}

	if direction == DirectionRedo {
		plan.Compensating = append(plan.Compensating, plan.Events...)
	} else {
		for i := len(plan.Events) - 1; i >= 0; i-- {
			plan.Compensating = append(plan.Compensating, invert(rp, plan.Events[i])...)
		}
	}

	return plan
}

// invert returns the compensating events that cancel ev. Most kinds invert
// to a single event; commit-created also restores HEAD to where it stood
// before the commit, since creating a commit checks it out.
func invert(rp *eventlog.Replayer, ev eventlog.Event) []eventlog.Event {
	switch ev.Kind {
	case eventlog.KindRefUpdated:
		return []eventlog.Event{{
			Kind:    eventlog.KindRefUpdated,
			RefName: ev.RefName,
			OldOID:  ev.NewOID,
			NewOID:  ev.OldOID,
		}}
	case eventlog.KindRefDeleted:
		return []eventlog.Event{{
			Kind:    eventlog.KindRefUpdated,
			RefName: ev.RefName,
			NewOID:  ev.OldOID,
		}}
	case eventlog.KindCommitCreated:
		inverse := []eventlog.Event{{Kind: eventlog.KindCommitHidden, NewOID: ev.NewOID}}
		if prev := rp.RefsAt(ev.Cursor - 1)[eventlog.HeadRef]; prev != "" {
			inverse = append(inverse, eventlog.Event{
				Kind:    eventlog.KindRefUpdated,
				RefName: eventlog.HeadRef,
				OldOID:  ev.NewOID,
				NewOID:  prev,
			})
		}
		return inverse
	case eventlog.KindCommitRewritten:
		return []eventlog.Event{{
			Kind:   eventlog.KindCommitRewritten,
			OldOID: ev.NewOID,
			NewOID: ev.OldOID,
		}}
	case eventlog.KindCommitHidden:
		return []eventlog.Event{{Kind: eventlog.KindCommitUnhidden, NewOID: ev.NewOID}}
	case eventlog.KindCommitUnhidden:
		return []eventlog.Event{{Kind: eventlog.KindCommitHidden, NewOID: ev.NewOID}}
	}
	return nil
}

// branchAt picks the first branch pointing at the oid in the replayed
// state, in name order, or an empty string when none does.
func branchAt(refs map[string]eventlog.OID, oid eventlog.OID) string {
	if oid == "" {
		return ""
	}
	var names []string
	for name, at := range refs {
		if name != eventlog.HeadRef && at == oid {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}
