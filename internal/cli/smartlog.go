package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newSmartlogCmd creates the smartlog command
func newSmartlogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "smartlog",
		Aliases: []string{"sl"},
		Short:   "Show the commit graph with your drafts alongside the main branch",
		Long: `Show the commit graph: the main branch spine, every visible draft commit,
and the branches pointing at them. The checked-out commit is marked with @.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SmartlogAction(ctx)
			})
		},
	}
}
