package actions

import (
	"errors"
	"fmt"
	"strings"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/graph"
	"arbor.dev/arbor/internal/runtime"
)

// PrevAction checks out the commit n generations below the current one,
// following first parents.
func PrevAction(ctx *runtime.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	view, err := ctx.LoadView(ctx.Context)
	if err != nil {
		return err
	}
	head := view.Graph.HeadOID
	if head == "" {
		return fmt.Errorf("no commit is checked out")
	}

	target := head
	for i := 0; i < n; i++ {
		node, ok := view.Graph.Node(target)
		if !ok || len(node.Parents) == 0 {
			return fmt.Errorf("cannot move %d commit(s) back: the root is %d step(s) away", n, i)
		}
		target = node.Parents[0]
	}
	return checkoutCommit(ctx, view, head, target)
}

// NextAction checks out the commit n generations above the current one. At
// each step there must be exactly one visible child; anything else is an
// error naming the candidates.
func NextAction(ctx *runtime.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	view, err := ctx.LoadView(ctx.Context)
	if err != nil {
		return err
	}
	head := view.Graph.HeadOID
	if head == "" {
		return fmt.Errorf("no commit is checked out")
	}

	target := head
	for i := 0; i < n; i++ {
		children := visibleChildren(view, target)
		switch {
		case len(children) == 0:
			return fmt.Errorf("cannot move %d commit(s) forward: no visible child after %d step(s)", n, i)
		case len(children) > 1:
			return ambiguousChildError(ctx, children)
		}
		target = children[0]
	}
	return checkoutCommit(ctx, view, head, target)
}

func visibleChildren(view *runtime.View, oid eventlog.OID) []eventlog.OID {
	var out []eventlog.OID
	for _, child := range view.Graph.ChildrenOf(oid) {
		if view.Classes[child] == graph.ClassVisible {
			out = append(out, child)
		}
	}
	return out
}

func ambiguousChildError(ctx *runtime.Context, children []eventlog.OID) error {
	var b strings.Builder
	b.WriteString("multiple visible children; check out one of them explicitly:")
	for _, child := range children {
		fmt.Fprintf(&b, "\n  %s %s", git.ShortOID(child), readSummary(ctx, child))
	}
	return errors.New(b.String())
}

// checkoutCommit moves HEAD to the target, preferring a branch checkout
// when one points there, records the movement, and shows the graph.
func checkoutCommit(ctx *runtime.Context, view *runtime.View, from, target eventlog.OID) error {
	if target == from {
		return nil
	}

	if branches := view.Graph.RefsPointingAt(target); len(branches) > 0 {
		if err := ctx.Repo.CheckoutBranch(ctx.Context, branches[0]); err != nil {
			return err
		}
	} else if err := ctx.Repo.CheckoutDetached(ctx.Context, target); err != nil {
		return err
	}

	_, err := ctx.Store.Append(ctx.Context, eventlog.Event{
		Kind:     eventlog.KindRefUpdated,
		RefName:  eventlog.HeadRef,
		OldOID:   from,
		NewOID:   target,
		Metadata: eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpCheckout),
	})
	if err != nil {
		return err
	}

	line := fmt.Sprintf("Checked out %s", git.ShortOID(target))
	if summary := readSummary(ctx, target); summary != "" {
		line += " " + summary
	}
	ctx.Splog.Info("%s", line)
	return SmartlogAction(ctx)
}
