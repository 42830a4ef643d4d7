package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newUndoCmd creates the undo command
func newUndoCmd() *cobra.Command {
	var opts actions.UndoOptions

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Move the repository back to an earlier recorded state",
		Long: `Move the repository back to an earlier recorded state. Every arbor and git
operation appends to the event log; undo walks that log backward, shows what
would change, and applies the inverse after confirmation.

With --interactive, browse the recorded states and pick one directly.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.UndoAction(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 1, "How many repo states to move back")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Browse the recorded states instead of stepping")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// newRedoCmd creates the redo command
func newRedoCmd() *cobra.Command {
	var opts actions.RedoOptions

	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Move forward again after an undo",
		Long: `Replay states that an undo stepped back over. Redo is only possible until
the next organic change; committing, moving, or hiding anything starts a new
history from where you stand.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.RedoAction(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 1, "How many repo states to move forward")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
