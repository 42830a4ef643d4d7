package cli

import (
	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var opts actions.InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set arbor up in the current repository",
		Long: `Set arbor up in the current repository: create the event log, record the
current branch positions as its first entries, install the git hooks that keep
it up to date, and remember the main branch.

Running init again refreshes the hooks and config without touching the log.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return actions.InitAction(cmd.Context(), ".", opts)
		},
	}

	cmd.Flags().StringVar(&opts.MainBranch, "main-branch", "", "Name the main branch instead of detecting it")
	cmd.Flags().BoolVar(&opts.Aliases, "aliases", false, "Install git aliases (git sl, git hide, ...) pointing at arbor")
	cmd.Flags().BoolVar(&opts.Uninstall, "uninstall", false, "Remove the hooks, aliases, and config arbor installed")

	return cmd
}
