package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
)

// newHookCmd creates the hidden hook command that git invokes. It must never
// break the user's git: anything short of a storage failure exits 0.
func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "hook <name> [args...]",
		Short:        "Handle a git hook invocation (internal)",
		Hidden:       true,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return actions.HookAction(cmd.Context(), ".", args[0], args[1:], cmd.InOrStdin())
		},
	}
}
