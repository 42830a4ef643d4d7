package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"arbor.dev/arbor/internal/cli"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitOK
	}

	// Conflict pauses and declined prompts already narrated themselves;
	// anything else gets one error line.
	if !errors.Is(err, arborerrors.ErrConflict) && !errors.Is(err, arborerrors.ErrUserAbort) {
		tui.NewSplog().Error("%s", err)
	}
	return cli.ExitCode(err)
}
