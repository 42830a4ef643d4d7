package helpers

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/git"
)

// CompleteBranches is a helper for cobra.ValidArgsFunction and
// RegisterFlagCompletionFunc that returns all branch names in the repository.
func CompleteBranches(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	repo, err := git.Open(".")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	snapshot, err := repo.Snapshot()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for name := range snapshot.Refs {
		if strings.HasPrefix(name, "refs/heads/") {
			names = append(names, git.BranchShortName(name))
		}
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}
