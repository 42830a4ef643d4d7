package actions

import (
	"strings"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/runtime"
	"arbor.dev/arbor/internal/tui"
	"arbor.dev/arbor/internal/undo"
)

// UndoOptions contains options for the undo command
type UndoOptions struct {
	// Steps is how many repo states to move back. Zero means one.
	Steps int
	// Interactive browses the recorded states instead of stepping blindly.
	Interactive bool
	// Yes skips the confirmation prompt.
	Yes bool
}

// RedoOptions contains options for the redo command
type RedoOptions struct {
	Steps int
	Yes   bool
}

// UndoAction moves the repository back through its recorded history.
func UndoAction(ctx *runtime.Context, opts UndoOptions) error {
	if opts.Interactive {
		return undoInteractive(ctx)
	}
	steps := opts.Steps
	if steps <= 0 {
		steps = 1
	}
	return moveThroughHistory(ctx, steps, opts.Yes)
}

// RedoAction moves forward again after an undo.
func RedoAction(ctx *runtime.Context, opts RedoOptions) error {
	steps := opts.Steps
	if steps <= 0 {
		steps = 1
	}
	return moveThroughHistory(ctx, -steps, opts.Yes)
}

func moveThroughHistory(ctx *runtime.Context, steps int, yes bool) error {
	eng := undo.NewEngine(ctx.Store, ctx.Repo)
	plan, err := eng.Plan(ctx.Context, steps)
	if err != nil {
		return err
	}
	if plan.Empty() {
		ctx.Splog.Info("Nothing to %s.", plan.Direction)
		return nil
	}

	describePlan(ctx, plan)

	if !yes {
		confirmed, err := tui.PromptConfirm("Apply these changes?", false)
		if err != nil || !confirmed {
			ctx.Splog.Info("%s canceled.", directionTitle(plan.Direction))
			return arborerrors.ErrUserAbort
		}
	}

	if err := eng.Apply(ctx.Context, plan); err != nil {
		return err
	}
	ctx.Splog.Info("Restored repo state %d.", plan.ToCursor)
	return nil
}

// describePlan lists the events the movement traverses and shows the
// smartlog of the state it would restore.
func describePlan(ctx *runtime.Context, plan *undo.Plan) {
	verb := "undoing"
	if plan.Direction == undo.DirectionRedo {
		verb = "replaying"
	}
	ctx.Splog.Info("Will move from repo state %d to state %d, %s:", plan.FromCursor, plan.ToCursor, verb)
	for _, ev := range plan.Events {
		ctx.Splog.Info("  %s", describeEvent(ev))
	}

	view, err := ctx.LoadViewAt(ctx.Context, plan.ToCursor)
	if err != nil {
		return
	}
	lines := tui.NewSmartlogRenderer(tui.SmartlogData{
		Graph:    view.Graph,
		Classes:  view.Classes,
		Replayer: view.Replayer,
		Cursor:   view.Cursor,
	}).Render()
	if len(lines) == 0 {
		return
	}
	ctx.Splog.Newline()
	ctx.Splog.Page(strings.Join(lines, "\n") + "\n")
	ctx.Splog.Newline()
}

// undoInteractive steps through every recorded repo state in the browser;
// confirming a state undoes (or redoes) to its cursor.
func undoInteractive(ctx *runtime.Context) error {
	events, err := ctx.Store.All(ctx.Context)
	if err != nil {
		return err
	}
	rp := eventlog.NewReplayer(events)
	latest := rp.LatestCursor()

	entries := make([]tui.BrowserEntry, 0, int(latest)+1)
	for c := eventlog.Cursor(0); c <= latest; c++ {
		view, err := ctx.LoadViewAt(ctx.Context, c)
		if err != nil {
			return err
		}
		summary := "empty repository"
		if c > 0 {
			summary = describeEvent(rp.Events()[c-1])
		}
		entries = append(entries, tui.BrowserEntry{
			Cursor:  c,
			Summary: summary,
			View: tui.NewSmartlogRenderer(tui.SmartlogData{
				Graph:    view.Graph,
				Classes:  view.Classes,
				Replayer: view.Replayer,
				Cursor:   view.Cursor,
			}).Render(),
		})
	}

	start := latest
	if cursor, ok, err := ctx.Store.UndoCursor(ctx.Context); err != nil {
		return err
	} else if ok {
		start = cursor
	}

	idx, accepted, err := tui.RunUndoBrowser(entries, int(start))
	if err != nil {
		return err
	}
	if !accepted {
		ctx.Splog.Info("Undo canceled.")
		return arborerrors.ErrUserAbort
	}

	target := entries[idx].Cursor
	if target == start {
		ctx.Splog.Info("Already at repo state %d.", target)
		return nil
	}

	eng := undo.NewEngine(ctx.Store, ctx.Repo)
	plan, err := eng.Plan(ctx.Context, int(start-target))
	if err != nil {
		return err
	}
	if plan.Empty() {
		ctx.Splog.Info("Nothing to %s.", plan.Direction)
		return nil
	}
	if err := eng.Apply(ctx.Context, plan); err != nil {
		return err
	}
	ctx.Splog.Info("Restored repo state %d.", plan.ToCursor)
	return nil
}

func directionTitle(d undo.Direction) string {
	if d == undo.DirectionRedo {
		return "Redo"
	}
	return "Undo"
}
