package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/config"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var (
		directory string
		noColor   bool
	)

	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor is a branchless workflow for git: work in commits, keep every draft visible, undo anything",
		Long: `Arbor is a branchless workflow layered on top of git. It records every
change to your repository in an event log, draws the commit graph with your
drafts alongside the main branch, and lets you move, hide, and undo commits
without juggling branch names.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if directory != "" {
				if err := os.Chdir(directory); err != nil {
					return fmt.Errorf("failed to change directory: %w", err)
				}
			}
			tui.SetupColors(colorMode(noColor))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSmartlogCmd())
	rootCmd.AddCommand(newHideCmd())
	rootCmd.AddCommand(newUnhideCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newRedoCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newRestackCmd())
	rootCmd.AddCommand(newContinueCmd())
	rootCmd.AddCommand(newAbortCmd())
	rootCmd.AddCommand(newPrevCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// colorMode resolves the color mode for this invocation: the --no-color flag
// wins, then the repo config, then auto-detection.
func colorMode(noColor bool) string {
	if noColor {
		return "never"
	}
	repo, err := git.Open(".")
	if err != nil {
		return "auto"
	}
	mode, err := config.GetColorMode(repo.StateDir())
	if err != nil || mode == "" {
		return "auto"
	}
	return mode
}
