// Package helpers provides shared helper functions for CLI commands.
package helpers

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/runtime"
)

// Run opens a runtime context for the current directory, hands it to the
// command's execution function, and closes it afterwards. The cobra command's
// context carries cancellation from signals into the action.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	rctx, err := runtime.Open(".")
	if err != nil {
		return err
	}
	defer rctx.Close()
	rctx.Context = cmd.Context()
	return fn(rctx)
}
