package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/graph"
)

// SmartlogData is the immutable input for one render: the built graph, the
// classification of every commit, and the replayer the classes came from.
// The replayer must be non-nil; it supplies rewrite annotations.
type SmartlogData struct {
	Graph    *graph.Graph
	Classes  graph.Classes
	Replayer *eventlog.Replayer
	Cursor   eventlog.Cursor
}

// SmartlogStyles holds the lipgloss styles for each piece of a rendered line.
type SmartlogStyles struct {
	Head       lipgloss.Style
	Main       lipgloss.Style
	Visible    lipgloss.Style
	Hidden     lipgloss.Style
	Edge       lipgloss.Style
	OID        lipgloss.Style
	Branches   lipgloss.Style
	Annotation lipgloss.Style
}

// DefaultSmartlogStyles returns the colored style set.
func DefaultSmartlogStyles() SmartlogStyles {
	return SmartlogStyles{
		Head:       lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		Main:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Visible:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Hidden:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Edge:       lipgloss.NewStyle(),
		OID:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Branches:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Annotation: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainSmartlogStyles returns styles that render text unchanged.
func PlainSmartlogStyles() SmartlogStyles {
	return SmartlogStyles{
		Head:       lipgloss.NewStyle(),
		Main:       lipgloss.NewStyle(),
		Visible:    lipgloss.NewStyle(),
		Hidden:     lipgloss.NewStyle(),
		Edge:       lipgloss.NewStyle(),
		OID:        lipgloss.NewStyle(),
		Branches:   lipgloss.NewStyle(),
		Annotation: lipgloss.NewStyle(),
	}
}

// SmartlogRenderer draws the commit graph as text, oldest at the top.
//
// Glyphs: @ the checked-out commit, O a main-branch commit, o a visible
// commit off main, X a hidden commit that still matters. A ":" column elides
// main-branch spans with nothing to show; "|" continues a lineage and `|\`
// splits sibling subtrees.
//
// Rendering is pure: the same data produces the same lines, and nothing
// here touches the repository.
type SmartlogRenderer struct {
	data   SmartlogData
	styles SmartlogStyles

	unhideable map[eventlog.OID]bool
	memo       map[eventlog.OID]bool
}

// NewSmartlogRenderer creates a renderer with the default styles.
func NewSmartlogRenderer(data SmartlogData) *SmartlogRenderer {
	return &SmartlogRenderer{
		data:   data,
		styles: DefaultSmartlogStyles(),
	}
}

// SetStyles replaces the style set, for plain output or custom palettes.
func (r *SmartlogRenderer) SetStyles(styles SmartlogStyles) {
	r.styles = styles
}

// Render returns the smartlog lines, without trailing newline.
func (r *SmartlogRenderer) Render() []string {
	g := r.data.Graph
	if g == nil || len(g.Nodes) == 0 {
		return nil
	}

	r.unhideable = make(map[eventlog.OID]bool)
	for _, oid := range g.Refs {
		if oid != "" {
			r.unhideable[oid] = true
		}
	}
	if g.HeadOID != "" {
		r.unhideable[g.HeadOID] = true
	}
	r.memo = make(map[eventlog.OID]bool)

	childrenOf := make(map[eventlog.OID][]eventlog.OID)
	elided := make(map[eventlog.OID]bool)
	var roots []eventlog.OID

	for _, oid := range g.SortedOIDs() {
		if !r.renders(oid) {
			continue
		}
		parent, direct, ok := r.renderedParent(oid)
		if !ok {
			roots = append(roots, oid)
			continue
		}
		childrenOf[parent] = append(childrenOf[parent], oid)
		elided[oid] = !direct
	}
	for _, children := range childrenOf {
		r.orderSiblings(children)
	}
	r.orderSiblings(roots)

	var lines []string
	for _, root := range roots {
		if node, ok := g.Node(root); ok && len(node.Parents) > 0 {
			lines = append(lines, r.styles.Edge.Render(":"))
		}
		lines = append(lines, r.renderSubtree(root, "", childrenOf, elided)...)
	}
	return lines
}

// renderSubtree lays out a commit and everything below it. All but the last
// sibling are drawn as indented blocks introduced by `|\`; the last sibling
// continues in the parent's own column.
func (r *SmartlogRenderer) renderSubtree(oid eventlog.OID, prefix string, childrenOf map[eventlog.OID][]eventlog.OID, elided map[eventlog.OID]bool) []string {
	lines := []string{prefix + r.commitLine(oid)}

	children := childrenOf[oid]
	if len(children) == 0 {
		return lines
	}

	last := children[len(children)-1]
	connector := "|"
	if elided[last] {
		connector = ":"
	}

	for _, child := range children[:len(children)-1] {
		lines = append(lines, prefix+r.styles.Edge.Render(`|\`))
		childPrefix := prefix + r.styles.Edge.Render(connector) + " "
		lines = append(lines, r.renderSubtree(child, childPrefix, childrenOf, elided)...)
	}

	lines = append(lines, prefix+r.styles.Edge.Render(connector))
	lines = append(lines, r.renderSubtree(last, prefix, childrenOf, elided)...)
	return lines
}

// commitLine formats one commit: glyph, short oid, annotation, branch names,
// summary.
func (r *SmartlogRenderer) commitLine(oid eventlog.OID) string {
	node, ok := r.data.Graph.Node(oid)
	if !ok {
		return r.styles.OID.Render(shortOID(oid))
	}

	parts := []string{r.glyph(node), r.styles.OID.Render(shortOID(oid))}
	if annotation := r.annotation(oid); annotation != "" {
		parts = append(parts, r.styles.Annotation.Render(annotation))
	}
	if branches := r.branchList(oid); branches != "" {
		parts = append(parts, r.styles.Branches.Render(branches))
	}
	if node.Commit.Summary != "" {
		parts = append(parts, node.Commit.Summary)
	}
	return strings.Join(parts, " ")
}

func (r *SmartlogRenderer) glyph(node *graph.Node) string {
	switch {
	case node.IsHead:
		return r.styles.Head.Render("@")
	case r.hiddenish(node.Commit.OID):
		return r.styles.Hidden.Render("X")
	case node.IsMain:
		return r.styles.Main.Render("O")
	default:
		return r.styles.Visible.Render("o")
	}
}

// annotation explains why a hidden commit is still on screen.
func (r *SmartlogRenderer) annotation(oid eventlog.OID) string {
	if !r.hiddenish(oid) {
		return ""
	}
	kind, ok := r.data.Replayer.LastVisibilityEventAt(r.data.Cursor, oid)
	if !ok {
		return ""
	}
	switch kind {
	case eventlog.KindCommitRewritten:
		if target, ok := r.data.Replayer.FinalRewriteTargetAt(r.data.Cursor, oid); ok {
			return fmt.Sprintf("(rewritten as %s)", shortOID(target))
		}
	case eventlog.KindCommitHidden:
		return "(manually hidden)"
	}
	return ""
}

func (r *SmartlogRenderer) branchList(oid eventlog.OID) string {
	names := r.data.Graph.RefsPointingAt(oid)
	if len(names) == 0 {
		return ""
	}
	display := make([]string, len(names))
	for i, name := range names {
		display[i] = strings.TrimPrefix(name, "refs/heads/")
	}
	return "(" + strings.Join(display, ", ") + ")"
}

// hiddenish reports whether the commit draws as X: its latest activity event
// marks it hidden, or classification found it hidden or abandoned.
func (r *SmartlogRenderer) hiddenish(oid eventlog.OID) bool {
	if vis, ok := r.data.Replayer.VisibilityAt(r.data.Cursor, oid); ok && vis == eventlog.VisibilityHidden {
		return true
	}
	if class, ok := r.data.Classes[oid]; ok && class != graph.ClassVisible {
		return true
	}
	return false
}

// renders decides whether a commit appears at all. Commits under a ref or
// HEAD always render. A main commit renders when it is hidden (an anomaly
// worth surfacing) or carries a rendered subtree off main; uneventful main
// history is elided. A commit off main renders when visible, or when a
// rendered descendant needs it for context.
func (r *SmartlogRenderer) renders(oid eventlog.OID) bool {
	if v, ok := r.memo[oid]; ok {
		return v
	}
	node, ok := r.data.Graph.Node(oid)
	if !ok {
		return false
	}
	r.memo[oid] = false

	result := false
	switch {
	case r.unhideable[oid]:
		result = true
	case node.IsMain:
		if r.hiddenish(oid) {
			result = true
		} else {
			for _, child := range node.Children {
				if childNode, ok := r.data.Graph.Node(child); ok && !childNode.IsMain && r.renders(child) {
					result = true
					break
				}
			}
		}
	default:
		if !r.hiddenish(oid) {
			result = true
		} else {
			for _, child := range node.Children {
				if r.renders(child) {
					result = true
					break
				}
			}
		}
	}

	r.memo[oid] = result
	return result
}

// renderedParent finds the nearest rendered ancestor. direct is true when it
// is an immediate parent; false marks an elided span.
func (r *SmartlogRenderer) renderedParent(oid eventlog.OID) (parent eventlog.OID, direct bool, ok bool) {
	node, found := r.data.Graph.Node(oid)
	if !found {
		return "", false, false
	}

	immediate := make(map[eventlog.OID]bool, len(node.Parents))
	for _, p := range node.Parents {
		immediate[p] = true
	}

	queue := append([]eventlog.OID(nil), node.Parents...)
	seen := make(map[eventlog.OID]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true

		currentNode, inGraph := r.data.Graph.Node(current)
		if !inGraph {
			continue
		}
		if r.renders(current) {
			return current, immediate[current], true
		}
		queue = append(queue, currentNode.Parents...)
	}
	return "", false, false
}

// orderSiblings sorts commits that share a column split: subtrees off main
// come before the main spine continuation, older commits before newer.
func (r *SmartlogRenderer) orderSiblings(oids []eventlog.OID) {
	g := r.data.Graph
	sort.SliceStable(oids, func(i, j int) bool {
		ni, okI := g.Node(oids[i])
		nj, okJ := g.Node(oids[j])
		if !okI || !okJ {
			return oids[i] < oids[j]
		}
		if ni.IsMain != nj.IsMain {
			return !ni.IsMain
		}
		if !ni.Commit.CommitTime.Equal(nj.Commit.CommitTime) {
			return ni.Commit.CommitTime.Before(nj.Commit.CommitTime)
		}
		return oids[i] < oids[j]
	})
}

func shortOID(oid eventlog.OID) string {
	s := string(oid)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
