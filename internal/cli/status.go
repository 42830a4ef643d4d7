package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize arbor's state in this repository",
		Long: `Summarize arbor's state: whether init has run, the size of the event log,
the undo position, and any operation paused on a conflict.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return actions.StatusAction(cmd.Context(), ".")
		},
	}
}
