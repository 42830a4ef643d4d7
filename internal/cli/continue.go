package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "Resume the arbor operation that paused on a conflict",
		Long: `Resume the move or restack that paused on a conflict. Stage the resolved
files with 'git add' first; the resolution becomes the replayed commit and
the remaining steps run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ContinueAction(ctx)
			})
		},
	}
}

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Abandon the arbor operation that paused on a conflict",
		Long: `Abandon the paused move or restack. Commits replayed before the conflict
are kept; 'arbor undo' rolls them back too.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.AbortAction(ctx)
			})
		},
	}
}
