package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// MainBranchConfigKey is the local git config key naming the main branch
const MainBranchConfigKey = "arbor.mainBranch"

// mainBranchCandidates are tried in order when no branch is configured
var mainBranchCandidates = []string{
	"master",
	"main",
	"mainline",
	"devel",
	"develop",
	"development",
	"trunk",
}

// LocalConfig reads a key from the repository-local git config
func (r *Repository) LocalConfig(ctx context.Context, key string) (string, error) {
	value, err := r.runner.Run(ctx, "config", "--local", "--get", key)
	if err != nil {
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return value, nil
}

// SetLocalConfig writes a key to the repository-local git config
func (r *Repository) SetLocalConfig(ctx context.Context, key, value string) error {
	_, err := r.runner.Run(ctx, "config", "--local", key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// UnsetLocalConfig removes a key from the repository-local git config
func (r *Repository) UnsetLocalConfig(ctx context.Context, key string) error {
	_, err := r.runner.Run(ctx, "config", "--local", "--unset", key)
	if err != nil {
		return fmt.Errorf("failed to unset config %s: %w", key, err)
	}
	return nil
}

// DetectMainBranch returns the configured main branch, or the first
// existing branch from the conventional candidates, or an empty string
// when nothing matches and the caller has to ask the user.
func (r *Repository) DetectMainBranch(ctx context.Context) string {
	if configured, err := r.LocalConfig(ctx, MainBranchConfigKey); err == nil && configured != "" {
		return configured
	}
	for _, name := range mainBranchCandidates {
		if r.BranchExists(name) {
			return name
		}
	}
	return ""
}

// BranchExists checks whether a local branch with the short name exists
func (r *Repository) BranchExists(name string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	return err == nil
}
