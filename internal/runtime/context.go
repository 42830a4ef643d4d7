package runtime

import (
	"context"
	"fmt"

	"arbor.dev/arbor/internal/config"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/tui"
)

// Context provides access to the repository, event log, and output for commands
type Context struct {
	// Context is the command context; the CLI layer replaces it with the
	// cobra command's context so cancellation reaches git subprocesses.
	Context context.Context

	Repo   *git.Repository
	Store  *eventlog.Store
	Config *config.RepoConfig
	Splog  *tui.Splog
}

// Open resolves the git repository containing dir and opens arbor's state
// inside it. It fails with ErrNotInitialized when 'arbor init' has not been
// run in this repository.
func Open(dir string) (*Context, error) {
	repo, err := git.Open(dir)
	if err != nil {
		return nil, err
	}
	if err := repo.RequireInitialized(); err != nil {
		return nil, fmt.Errorf("%w. Run 'arbor init' first", err)
	}

	store, err := eventlog.Open(repo.EventLogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	cfg, err := config.GetRepoConfig(repo.StateDir())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	splog, err := tui.NewSplogWithFile(tui.LogFilePath(repo.StateDir()))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Context{
		Context: context.Background(),
		Repo:    repo,
		Store:   store,
		Config:  cfg,
		Splog:   splog,
	}, nil
}

// Close releases the event log and the log file. Safe to call once.
func (c *Context) Close() error {
	var firstErr error
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if c.Splog != nil {
		if err := c.Splog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MainRef returns the full ref name of the configured main branch.
func (c *Context) MainRef() (string, error) {
	branch, err := config.GetMainBranch(c.Repo.StateDir())
	if err != nil {
		return "", err
	}
	return "refs/heads/" + branch, nil
}

// MergeBase returns the best common ancestor of two commits, consulting the
// cache in the event log database before asking git. The pair is keyed in
// sorted order so both argument orders hit the same row. An empty result
// means the commits share no history; that is cached too, since commit
// ancestry never changes.
func (c *Context) MergeBase(ctx context.Context, lhs, rhs eventlog.OID) (eventlog.OID, error) {
	a, b := lhs, rhs
	if b < a {
		a, b = b, a
	}

	cached, ok, err := c.Store.MergeBase(ctx, a, b)
	if err != nil {
		return "", err
	}
	if ok {
		return cached, nil
	}

	mergeBase, err := c.Repo.MergeBase(a, b)
	if err != nil {
		return "", err
	}
	if err := c.Store.PutMergeBase(ctx, a, b, mergeBase); err != nil {
		return "", err
	}
	return mergeBase, nil
}
