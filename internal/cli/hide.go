package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newHideCmd creates the hide command
func newHideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <revision>...",
		Short: "Hide commits from the smartlog",
		Long: `Hide the given commits from the smartlog. The commits stay in the
repository and can be unhidden at any time; hiding only records that you are
done with them.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.HideAction(ctx, args)
			})
		},
	}
}

// newUnhideCmd creates the unhide command
func newUnhideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unhide <revision>...",
		Short: "Unhide previously hidden commits",
		Long: `Bring previously hidden commits back into the smartlog. Unhiding is an
event like any other; the log remembers both.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.UnhideAction(ctx, args)
			})
		},
	}
}
