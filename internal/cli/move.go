package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newMoveCmd creates the move command
func newMoveCmd() *cobra.Command {
	var opts actions.MoveOptions

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Replay a subtree of commits onto a new parent",
		Long: `Replay a subtree of commits onto a new parent, carrying its branches along.

Without -s, the subtree starts at the bottom of the stack the checked-out
commit belongs to. Without -d, the destination is the main branch head. On a
conflict the move pauses; resolve it and run 'arbor continue', or give up
with 'arbor abort'.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.MoveAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Root of the subtree to move (default: bottom of the current stack)")
	cmd.Flags().StringVarP(&opts.Dest, "dest", "d", "", "New parent commit (default: the main branch head)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the plan without replaying anything")
	_ = cmd.RegisterFlagCompletionFunc("source", helpers.CompleteBranches)
	_ = cmd.RegisterFlagCompletionFunc("dest", helpers.CompleteBranches)

	return cmd
}
