// Package graph builds an immutable commit graph from a ref snapshot and
// classifies each commit as visible, hidden, or abandoned. Building and
// classification are pure: the same inputs always produce the same graph,
// and nothing here mutates the repository.
package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
)

// Commit is the resolved form of a single commit object.
type Commit struct {
	OID        eventlog.OID
	Parents    []eventlog.OID
	Summary    string
	AuthorTime time.Time
	CommitTime time.Time
}

// CommitReader resolves commit objects from the repository's object store.
// Implementations must be safe for concurrent use.
type CommitReader interface {
	ReadCommit(ctx context.Context, oid eventlog.OID) (*Commit, error)
}

// Node is a commit plus its position in the built graph.
type Node struct {
	Commit   *Commit
	Parents  []eventlog.OID
	Children []eventlog.OID
	// Reachable marks ancestors of current ref heads.
	Reachable bool
	// IsMain marks ancestors of the main branch head.
	IsMain bool
	IsHead bool
}

// Graph is an immutable snapshot of the commit DAG. Children are sorted by
// commit time then oid, so walks over the graph are deterministic.
type Graph struct {
	Nodes   map[eventlog.OID]*Node
	Refs    map[string]eventlog.OID
	HeadOID eventlog.OID
	// HeadRef is the checked-out branch ref, or empty when HEAD is detached.
	HeadRef string
	MainRef string
	MainOID eventlog.OID
}

// BuildInput carries everything Build needs. Refs maps full ref names to
// their targets and includes HEAD. Seeds are additional commit ids that must
// appear in the graph even when unreachable; callers pass the event log's
// active oids so hidden and abandoned commits keep their structure.
type BuildInput struct {
	Refs    map[string]eventlog.OID
	HeadOID eventlog.OID
	HeadRef string
	MainRef string
	Seeds   []eventlog.OID
	Reader  CommitReader
}

// Build walks backward from every ref head to the roots and assembles the
// graph. Ref roots are walked concurrently; the result is a set union, so
// scheduling cannot change it. An oid reachable from a current ref that
// cannot be resolved fails the build; a seed that cannot be resolved was
// garbage-collected and is skipped.
func Build(ctx context.Context, in BuildInput) (*Graph, error) {
	b := &builder{
		reader:  in.Reader,
		commits: make(map[eventlog.OID]*Commit),
	}

	roots := refRoots(in)

	reachableSets := make([]map[eventlog.OID]struct{}, len(roots))
	eg, egctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		eg.Go(func() error {
			set, err := b.walkStrict(egctx, root)
			if err != nil {
				return err
			}
			reachableSets[i] = set
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	reachable := make(map[eventlog.OID]struct{})
	for _, set := range reachableSets {
		for oid := range set {
			reachable[oid] = struct{}{}
		}
	}

	seeds := append([]eventlog.OID(nil), in.Seeds...)
	sort.Slice(seeds, func(i, j int) bool { return seeds[i] < seeds[j] })
	for _, seed := range seeds {
		if _, ok := reachable[seed]; ok {
			continue
		}
		b.walkTolerant(ctx, seed)
	}

	g := &Graph{
		Nodes:   make(map[eventlog.OID]*Node, len(b.commits)),
		Refs:    in.Refs,
		HeadOID: in.HeadOID,
		HeadRef: in.HeadRef,
		MainRef: in.MainRef,
		MainOID: in.Refs[in.MainRef],
	}
	for oid, c := range b.commits {
		_, isReachable := reachable[oid]
		g.Nodes[oid] = &Node{
			Commit:    c,
			Parents:   c.Parents,
			Reachable: isReachable,
			IsHead:    oid == in.HeadOID && oid != "",
		}
	}

	linkChildren(g)
	markMain(g)

	return g, nil
}

// SortedOIDs returns every oid in the graph in ascending order.
func (g *Graph) SortedOIDs() []eventlog.OID {
	oids := make([]eventlog.OID, 0, len(g.Nodes))
	for oid := range g.Nodes {
		oids = append(oids, oid)
	}
	sort.Slice(oids, func(i, j int) bool { return oids[i] < oids[j] })
	return oids
}

// Node returns the node for an oid, if present.
func (g *Graph) Node(oid eventlog.OID) (*Node, bool) {
	n, ok := g.Nodes[oid]
	return n, ok
}

// ChildrenOf returns the children of an oid, empty when unknown.
func (g *Graph) ChildrenOf(oid eventlog.OID) []eventlog.OID {
	if n, ok := g.Nodes[oid]; ok {
		return n.Children
	}
	return nil
}

// RefsPointingAt returns the branch refs whose target is the oid, sorted.
// HEAD is not included.
func (g *Graph) RefsPointingAt(oid eventlog.OID) []string {
	var names []string
	for name, target := range g.Refs {
		if name == eventlog.HeadRef {
			continue
		}
		if target == oid {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsAncestor reports whether anc is an ancestor of desc within the graph.
// A commit is considered its own ancestor.
func (g *Graph) IsAncestor(anc, desc eventlog.OID) bool {
	if anc == desc {
		return true
	}
	stack := []eventlog.OID{desc}
	seen := map[eventlog.OID]bool{desc: true}
	for len(stack) > 0 {
		oid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := g.Nodes[oid]
		if !ok {
			continue
		}
		for _, p := range node.Parents {
			if p == anc {
				return true
			}
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return false
}

type builder struct {
	reader CommitReader

	mu      sync.Mutex
	commits map[eventlog.OID]*Commit
}

func (b *builder) read(ctx context.Context, oid eventlog.OID) (*Commit, error) {
	b.mu.Lock()
	if c, ok := b.commits[oid]; ok {
		b.mu.Unlock()
		return c, nil
	}
	b.mu.Unlock()

	c, err := b.reader.ReadCommit(ctx, oid)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.commits[oid] = c
	b.mu.Unlock()
	return c, nil
}

// walkStrict walks ancestors of root, failing on any unresolvable oid.
func (b *builder) walkStrict(ctx context.Context, root eventlog.OID) (map[eventlog.OID]struct{}, error) {
	resolved := make(map[eventlog.OID]struct{})
	seen := map[eventlog.OID]bool{root: true}
	stack := []eventlog.OID{root}
	for len(stack) > 0 {
		oid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := b.read(ctx, oid)
		if err != nil {
			return nil, arborerrors.NewGraphError(string(oid), err)
		}
		resolved[oid] = struct{}{}

		for _, p := range c.Parents {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return resolved, nil
}

// walkTolerant walks ancestors of a seed, dropping paths whose objects are
// gone. Garbage-collected history is normal, not an error.
func (b *builder) walkTolerant(ctx context.Context, seed eventlog.OID) {
	seen := map[eventlog.OID]bool{seed: true}
	stack := []eventlog.OID{seed}
	for len(stack) > 0 {
		oid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := b.read(ctx, oid)
		if err != nil {
			continue
		}

		for _, p := range c.Parents {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
}

func refRoots(in BuildInput) []eventlog.OID {
	set := make(map[eventlog.OID]struct{})
	for _, oid := range in.Refs {
		if oid != "" {
			set[oid] = struct{}{}
		}
	}
	if in.HeadOID != "" {
		set[in.HeadOID] = struct{}{}
	}
	roots := make([]eventlog.OID, 0, len(set))
	for oid := range set {
		roots = append(roots, oid)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

func linkChildren(g *Graph) {
	for oid, node := range g.Nodes {
		for _, p := range node.Parents {
			if parent, ok := g.Nodes[p]; ok {
				parent.Children = append(parent.Children, oid)
			}
		}
	}
	for _, node := range g.Nodes {
		children := node.Children
		sort.Slice(children, func(i, j int) bool {
			ci, cj := g.Nodes[children[i]], g.Nodes[children[j]]
			if !ci.Commit.CommitTime.Equal(cj.Commit.CommitTime) {
				return ci.Commit.CommitTime.Before(cj.Commit.CommitTime)
			}
			return children[i] < children[j]
		})
	}
}

func markMain(g *Graph) {
	if g.MainOID == "" {
		return
	}
	stack := []eventlog.OID{g.MainOID}
	seen := map[eventlog.OID]bool{g.MainOID: true}
	for len(stack) > 0 {
		oid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := g.Nodes[oid]
		if !ok {
			continue
		}
		node.IsMain = true
		for _, p := range node.Parents {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
}
