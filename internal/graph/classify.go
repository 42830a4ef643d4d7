package graph

import (
	"sort"

	"arbor.dev/arbor/internal/eventlog"
)

// Class is a commit's classification in the current graph.
type Class int

const (
	// ClassVisible marks commits reachable from a current ref head.
	ClassVisible Class = iota
	// ClassHidden marks known commits that are neither reachable nor abandoned.
	ClassHidden
	// ClassAbandoned marks commits the user deliberately discarded: rewritten
	// away, or once reachable with no visible descendant left.
	ClassAbandoned
)

func (c Class) String() string {
	switch c {
	case ClassVisible:
		return "visible"
	case ClassHidden:
		return "hidden"
	case ClassAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Classes maps every known commit to its classification.
type Classes map[eventlog.OID]Class

// Classify labels every commit the system knows about: graph nodes plus every
// oid the event log mentions up to the cursor. Reachability always wins; a
// reachable commit is visible no matter what the log says about it.
//
// For non-visible commits, in order:
//
//  1. A manual hide or unhide is an override: whichever came last, the commit
//     is plain hidden, protected from abandonment until the next rewrite.
//  2. A rewritten commit is classified against the visibility of its final
//     rewrite target: target visible means the old commit is abandoned, and
//     every intermediate link of a rewrite chain falls under the same rule.
//  3. Otherwise a commit is abandoned iff it was reachable from a then-current
//     ref head at some earlier cursor and no commit in its descendant set is
//     visible now. Rewrite successors are not descendants; only recorded
//     topology counts.
//  4. Anything else stays hidden: speculative work that was never adopted is
//     not "abandoned".
//
// The graph must have been built with the replayer's active oids as seeds so
// that historical ancestry is present; Build and the actions layer arrange
// this.
func Classify(g *Graph, rp *eventlog.Replayer, cursor eventlog.Cursor) Classes {
	classes := make(Classes, len(g.Nodes))

	for oid, node := range g.Nodes {
		if node.Reachable {
			classes[oid] = ClassVisible
		}
	}

	everReachable := ancestorsWithin(g, rp.EverRefTargets(cursor))

	for _, oid := range classificationDomain(g, rp, cursor) {
		if _, ok := classes[oid]; ok {
			continue
		}

		if kind, ok := rp.LastVisibilityEventAt(cursor, oid); ok && kind != eventlog.KindCommitRewritten {
			classes[oid] = ClassHidden
			continue
		}

		if target, ok := rp.FinalRewriteTargetAt(cursor, oid); ok {
			if node, inGraph := g.Nodes[target]; inGraph && node.Reachable {
				classes[oid] = ClassAbandoned
				continue
			}
		}

		if everReachable[oid] && !hasVisibleDescendant(g, oid) {
			classes[oid] = ClassAbandoned
			continue
		}

		classes[oid] = ClassHidden
	}

	return classes
}

// classificationDomain returns the union of graph oids and event-mentioned
// oids, sorted for deterministic iteration.
func classificationDomain(g *Graph, rp *eventlog.Replayer, cursor eventlog.Cursor) []eventlog.OID {
	set := make(map[eventlog.OID]struct{}, len(g.Nodes))
	for oid := range g.Nodes {
		set[oid] = struct{}{}
	}
	for _, oid := range rp.ActiveOIDs(cursor) {
		set[oid] = struct{}{}
	}
	oids := make([]eventlog.OID, 0, len(set))
	for oid := range set {
		oids = append(oids, oid)
	}
	sort.Slice(oids, func(i, j int) bool { return oids[i] < oids[j] })
	return oids
}

// ancestorsWithin computes the ancestor closure of the given heads using the
// graph's recorded topology. Heads whose objects were garbage-collected are
// simply absent from the graph and contribute nothing.
func ancestorsWithin(g *Graph, heads []eventlog.OID) map[eventlog.OID]bool {
	closure := make(map[eventlog.OID]bool)
	stack := make([]eventlog.OID, 0, len(heads))
	for _, head := range heads {
		if !closure[head] {
			closure[head] = true
			stack = append(stack, head)
		}
	}
	for len(stack) > 0 {
		oid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := g.Nodes[oid]
		if !ok {
			continue
		}
		for _, p := range node.Parents {
			if !closure[p] {
				closure[p] = true
				stack = append(stack, p)
			}
		}
	}
	return closure
}

// hasVisibleDescendant walks children links looking for a reachable commit.
func hasVisibleDescendant(g *Graph, oid eventlog.OID) bool {
	node, ok := g.Nodes[oid]
	if !ok {
		return false
	}
	stack := append([]eventlog.OID(nil), node.Children...)
	seen := make(map[eventlog.OID]bool)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[current] {
			continue
		}
		seen[current] = true
		child, ok := g.Nodes[current]
		if !ok {
			continue
		}
		if child.Reachable {
			return true
		}
		stack = append(stack, child.Children...)
	}
	return false
}
