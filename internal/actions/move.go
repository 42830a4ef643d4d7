package actions

import (
	"errors"
	"fmt"
	"strings"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/graph"
	"arbor.dev/arbor/internal/move"
	"arbor.dev/arbor/internal/runtime"
)

// MoveOptions contains options for the move command
type MoveOptions struct {
	// Source is the root of the subtree to move. Empty means the current
	// commit's subtree root above the main branch.
	Source string
	// Dest is the new parent. Empty means the main branch head.
	Dest string
	// DryRun prints the plan without mutating anything.
	DryRun bool
}

// MoveAction replays a commit subtree onto a new parent.
func MoveAction(ctx *runtime.Context, opts MoveOptions) error {
	view, err := ctx.LoadView(ctx.Context)
	if err != nil {
		return err
	}

	dest := view.Graph.MainOID
	if opts.Dest != "" {
		if dest, err = resolveRev(ctx, opts.Dest); err != nil {
			return err
		}
	}
	if dest == "" {
		return fmt.Errorf("no destination: the main branch has no commits and -d was not given")
	}

	var source eventlog.OID
	if opts.Source != "" {
		if source, err = resolveRev(ctx, opts.Source); err != nil {
			return err
		}
	} else {
		head := view.Graph.HeadOID
		if head == "" {
			return fmt.Errorf("no commit is checked out; specify a source with -s")
		}
		source = subtreeRoot(view.Graph, head)
	}

	plan, err := move.PlanMove(view.Graph, view.Classes, source, dest)
	if err != nil {
		return err
	}
	if len(plan.Steps) == 0 {
		ctx.Splog.Info("Nothing to move: %s is already on %s.", git.ShortOID(source), git.ShortOID(dest))
		return nil
	}

	if opts.DryRun {
		printPlan(ctx, plan, fmt.Sprintf("Would replay %d commit(s) onto %s:", len(plan.Steps), git.ShortOID(dest)))
		return nil
	}

	if err := move.NewEngine(ctx.Store, ctx.Repo).Execute(ctx.Context, plan); err != nil {
		var conflict *arborerrors.ConflictError
		if errors.As(err, &conflict) {
			printConflictPause(ctx, conflict)
		}
		return err
	}

	ctx.Splog.Info("Moved %d commit(s) onto %s.", len(plan.Steps), git.ShortOID(dest))
	return nil
}

// subtreeRoot walks up from the commit while the parent is a non-main
// commit, landing on the bottom of the stack the commit belongs to. Merge
// commits and commits outside the graph stop the walk.
func subtreeRoot(g *graph.Graph, oid eventlog.OID) eventlog.OID {
	for {
		node, ok := g.Node(oid)
		if !ok || len(node.Parents) != 1 {
			return oid
		}
		parent := node.Parents[0]
		parentNode, ok := g.Node(parent)
		if !ok || parentNode.IsMain {
			return oid
		}
		oid = parent
	}
}

// printPlan lists the plan's steps with their targets: a concrete oid for
// subtree roots, "the result of step k" for commits stacked on an earlier
// step.
func printPlan(ctx *runtime.Context, plan *move.Plan, header string) {
	ctx.Splog.Info("%s", header)
	for i, step := range plan.Steps {
		onto := fmt.Sprintf("the result of step %d", step.ParentStep+1)
		if step.ParentStep < 0 {
			onto = git.ShortOID(step.NewParent)
		}
		line := fmt.Sprintf("  %d. replay %s onto %s", i+1, git.ShortOID(step.CommitOID), onto)
		if len(step.Refs) > 0 {
			names := make([]string, len(step.Refs))
			for j, ref := range step.Refs {
				names[j] = git.BranchShortName(ref)
			}
			line += fmt.Sprintf(" (carrying %s)", strings.Join(names, ", "))
		}
		ctx.Splog.Info("%s", line)
	}
}
