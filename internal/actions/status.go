package actions

import (
	"context"

	"arbor.dev/arbor/internal/config"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/tui"
)

// StatusAction summarizes arbor's state in the repository: initialization,
// the size of the event log, the undo position, and any paused plan. It
// works before init has run, so it never opens a runtime context.
func StatusAction(ctx context.Context, dir string) error {
	repo, err := git.Open(dir)
	if err != nil {
		return err
	}
	splog := tui.NewSplog()

	if err := repo.RequireInitialized(); err != nil {
		splog.Info("arbor is not initialized in this repository.")
		splog.Tip("Run 'arbor init' to get started.")
		return nil
	}

	stateDir := repo.StateDir()
	mainBranch, err := config.GetMainBranch(stateDir)
	if err != nil {
		return err
	}
	splog.Info("arbor is initialized (main branch: %s).", mainBranch)

	store, err := eventlog.Open(repo.EventLogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	latest, err := store.CurrentCursor(ctx)
	if err != nil {
		return err
	}
	splog.Info("Event log: %d event(s) recorded.", latest)

	if cursor, ok, err := store.UndoCursor(ctx); err != nil {
		return err
	} else if ok && cursor != latest {
		splog.Info("Undo position: repo state %d. Run 'arbor redo' to move forward again.", cursor)
	}

	if state, err := config.GetContinuationState(stateDir); err == nil {
		splog.Warn("A %s is paused on a conflict.", state.Op)
		splog.Info("Run %s after resolving, or %s to give up.",
			tui.ColorCyan("arbor continue"), tui.ColorCyan("arbor abort"))
	} else {
		splog.Info("No operation in progress.")
	}
	return nil
}
