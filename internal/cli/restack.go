package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newRestackCmd creates the restack command
func newRestackCmd() *cobra.Command {
	var opts actions.RestackOptions

	cmd := &cobra.Command{
		Use:   "restack",
		Short: "Reattach stranded commits onto the replacements of their rewritten parents",
		Long: `Reattach stranded commits after a rewrite. When a commit is amended or
rebased, its descendants still sit on the old version; restack replays each
stranded subtree onto the rewritten parent's replacement, repeating until
everything is in place.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.RestackAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the plan without replaying anything")

	return cmd
}
