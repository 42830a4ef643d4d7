package eventlog

import (
	"sort"
)

// HeadRef is the ref name under which checkout movements are recorded.
const HeadRef = "HEAD"

// Visibility is a commit's replayed visibility state.
type Visibility int

const (
	// VisibilityVisible means the commit's latest event marks it visible.
	VisibilityVisible Visibility = iota
	// VisibilityHidden means the commit's latest event marks it hidden.
	VisibilityHidden
)

// Replayer answers questions about historical state by replaying an event
// sequence up to a cursor. It is a pure view over the events passed in: the
// same events produce the same answers, and nothing is written.
//
// Events must be in ascending cursor order, as returned by the store. The
// replayer keeps a reference to the slice; callers must not mutate it.
type Replayer struct {
	events []Event
	byOID  map[OID][]int
}

// NewReplayer builds a replayer over the given events.
func NewReplayer(events []Event) *Replayer {
	byOID := make(map[OID][]int)
	for i, ev := range events {
		for _, oid := range ev.OIDs() {
			byOID[oid] = append(byOID[oid], i)
		}
	}
	return &Replayer{events: events, byOID: byOID}
}

// Events returns the underlying event sequence.
func (r *Replayer) Events() []Event {
	return r.events
}

// LatestCursor returns the cursor of the last event, or zero when empty.
func (r *Replayer) LatestCursor() Cursor {
	if len(r.events) == 0 {
		return 0
	}
	return r.events[len(r.events)-1].Cursor
}

// RefsAt reconstructs ref positions as of the given cursor.
//
// Refs first mentioned after the cursor are back-filled from the old side of
// their first later event: that is where the ref stood before the log touched
// it. A ref whose first later mention has no old side was created after the
// cursor and is absent from the result. Refs the log never mentions are
// outside the replayer's knowledge entirely.
func (r *Replayer) RefsAt(cursor Cursor) map[string]OID {
	refs := make(map[string]OID)
	seen := make(map[string]bool)
	backfilled := make(map[string]bool)

	for _, ev := range r.events {
		if ev.Cursor <= cursor {
			switch ev.Kind {
			case KindRefUpdated:
				if ev.NewOID == "" {
					delete(refs, ev.RefName)
				} else {
					refs[ev.RefName] = ev.NewOID
				}
				seen[ev.RefName] = true
			case KindRefDeleted:
				delete(refs, ev.RefName)
				seen[ev.RefName] = true
			case KindCommitCreated:
				// A new commit is checked out when it is created.
				refs[HeadRef] = ev.NewOID
				seen[HeadRef] = true
			case KindCommitRewritten, KindCommitHidden, KindCommitUnhidden:
			}
			continue
		}

		if ev.Kind != KindRefUpdated && ev.Kind != KindRefDeleted {
			continue
		}
		if seen[ev.RefName] || backfilled[ev.RefName] {
			continue
		}
		backfilled[ev.RefName] = true
		if ev.OldOID != "" {
			refs[ev.RefName] = ev.OldOID
		}
	}

	return refs
}

// ActiveOIDs returns every commit id mentioned by any event at or before the
// cursor, sorted and deduplicated.
func (r *Replayer) ActiveOIDs(cursor Cursor) []OID {
	set := make(map[OID]struct{})
	for _, ev := range r.events {
		if ev.Cursor > cursor {
			break
		}
		for _, oid := range ev.OIDs() {
			set[oid] = struct{}{}
		}
	}
	return sortedOIDs(set)
}

// VisibilityAt replays the visibility of a single commit up to the cursor.
// The second return is false when no event up to the cursor affects it.
func (r *Replayer) VisibilityAt(cursor Cursor, oid OID) (Visibility, bool) {
	vis := VisibilityVisible
	found := false
	for _, i := range r.byOID[oid] {
		ev := r.events[i]
		if ev.Cursor > cursor {
			break
		}
		switch ev.Kind {
		case KindCommitCreated:
			if ev.NewOID == oid {
				vis, found = VisibilityVisible, true
			}
		case KindCommitRewritten:
			if ev.OldOID == oid {
				vis, found = VisibilityHidden, true
			}
			if ev.NewOID == oid {
				vis, found = VisibilityVisible, true
			}
		case KindCommitHidden:
			if ev.NewOID == oid {
				vis, found = VisibilityHidden, true
			}
		case KindCommitUnhidden:
			if ev.NewOID == oid {
				vis, found = VisibilityVisible, true
			}
		case KindRefUpdated, KindRefDeleted:
		}
	}
	return vis, found
}

// LastVisibilityEventAt returns the kind of the latest event up to the cursor
// that changes the commit's visibility away from or back toward visible:
// commit-hidden, commit-unhidden, or commit-rewritten (old side). The second
// return is false when none exists.
func (r *Replayer) LastVisibilityEventAt(cursor Cursor, oid OID) (Kind, bool) {
	var last Kind
	found := false
	for _, i := range r.byOID[oid] {
		ev := r.events[i]
		if ev.Cursor > cursor {
			break
		}
		switch ev.Kind {
		case KindCommitHidden, KindCommitUnhidden:
			if ev.NewOID == oid {
				last, found = ev.Kind, true
			}
		case KindCommitRewritten:
			if ev.OldOID == oid {
				last, found = ev.Kind, true
			}
		case KindCommitCreated, KindRefUpdated, KindRefDeleted:
		}
	}
	return last, found
}

// RewriteTargetAt returns the latest rewrite target recorded for the commit
// at or before the cursor.
func (r *Replayer) RewriteTargetAt(cursor Cursor, oid OID) (OID, bool) {
	var target OID
	found := false
	for _, i := range r.byOID[oid] {
		ev := r.events[i]
		if ev.Cursor > cursor {
			break
		}
		if ev.Kind == KindCommitRewritten && ev.OldOID == oid && ev.NewOID != "" {
			target, found = ev.NewOID, true
		}
	}
	return target, found
}

// FinalRewriteTargetAt follows rewrite chains (A -> A' -> A'') to their end.
// Cycles terminate at the last commit before the repeat.
func (r *Replayer) FinalRewriteTargetAt(cursor Cursor, oid OID) (OID, bool) {
	visited := map[OID]bool{oid: true}
	current := oid
	hopped := false
	for {
		next, ok := r.RewriteTargetAt(cursor, current)
		if !ok || visited[next] {
			break
		}
		visited[next] = true
		current = next
		hopped = true
	}
	if !hopped {
		return "", false
	}
	return current, true
}

// EverRefTargets returns every commit that was a ref head at some cursor at
// or before the given one: both sides of ref updates (the old side was the
// head before the event) plus created commits, which are checked out at
// creation. Sorted and deduplicated.
func (r *Replayer) EverRefTargets(cursor Cursor) []OID {
	set := make(map[OID]struct{})
	for _, ev := range r.events {
		if ev.Cursor > cursor {
			break
		}
		switch ev.Kind {
		case KindRefUpdated, KindRefDeleted:
			if ev.OldOID != "" {
				set[ev.OldOID] = struct{}{}
			}
			if ev.NewOID != "" {
				set[ev.NewOID] = struct{}{}
			}
		case KindCommitCreated:
			if ev.NewOID != "" {
				set[ev.NewOID] = struct{}{}
			}
		case KindCommitRewritten, KindCommitHidden, KindCommitUnhidden:
		}
	}
	return sortedOIDs(set)
}

func sortedOIDs(set map[OID]struct{}) []OID {
	oids := make([]OID, 0, len(set))
	for oid := range set {
		oids = append(oids, oid)
	}
	sort.Slice(oids, func(i, j int) bool { return oids[i] < oids[j] })
	return oids
}
