package actions

import (
	"fmt"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/runtime"
	"arbor.dev/arbor/internal/tui"
)

// printConflictPause tells the user where a replay stopped and how to get
// out of it. The plan stays paused; nothing here mutates state.
func printConflictPause(ctx *runtime.Context, conflict *arborerrors.ConflictError) {
	splog := ctx.Splog

	short := git.ShortOID(eventlog.OID(conflict.CommitOID))
	splog.Info("%s", tui.ColorRed(fmt.Sprintf("Conflict replaying commit %s", short)))
	splog.Newline()

	unmerged, err := ctx.Repo.UnmergedFiles(ctx.Context)
	if err == nil && len(unmerged) > 0 {
		splog.Info("%s", tui.ColorYellow("Unmerged files:"))
		for _, file := range unmerged {
			splog.Info("%s", tui.ColorRed(file))
		}
		splog.Newline()
	}

	splog.Info("%s", tui.ColorYellow("To fix and continue:"))
	splog.Info("(1) resolve the listed conflicts")
	splog.Info("(2) mark them as resolved with %s", tui.ColorCyan("git add ."))
	splog.Info("(3) run %s to finish the replay", tui.ColorCyan("arbor continue"))
	splog.Info("To give up instead, run %s.", tui.ColorCyan("arbor abort"))
}
