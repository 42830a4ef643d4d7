package actions

import (
	"strings"

	"arbor.dev/arbor/internal/runtime"
	"arbor.dev/arbor/internal/tui"
)

// SmartlogAction renders the commit graph.
func SmartlogAction(ctx *runtime.Context) error {
	view, err := ctx.LoadView(ctx.Context)
	if err != nil {
		return err
	}

	renderer := tui.NewSmartlogRenderer(tui.SmartlogData{
		Graph:    view.Graph,
		Classes:  view.Classes,
		Replayer: view.Replayer,
		Cursor:   view.Cursor,
	})
	lines := renderer.Render()
	if len(lines) == 0 {
		ctx.Splog.Info("No commits to show.")
		return nil
	}

	ctx.Splog.Page(strings.Join(lines, "\n") + "\n")
	return nil
}
