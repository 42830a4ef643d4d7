package git

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	arborerrors "arbor.dev/arbor/internal/errors"
)

// StateDirName is the directory under .git holding arbor's state
const StateDirName = "arbor"

// EventLogFileName is the SQLite database file inside the state directory
const EventLogFileName = "events.sqlite3"

// Repository wraps a go-git repository together with the command runner
// rooted at its worktree.
type Repository struct {
	repo   *gogit.Repository
	runner *CommandRunner
	root   string
	gitDir string
}

// Open opens the git repository containing dir, searching parent
// directories the way git itself does.
func Open(dir string) (*Repository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	gitDir := filepath.Join(root, gogit.GitDirName)
	if storage, ok := repo.Storer.(*filesystem.Storage); ok {
		gitDir = storage.Filesystem().Root()
	}

	return &Repository{
		repo:   repo,
		runner: NewCommandRunner(root),
		root:   root,
		gitDir: gitDir,
	}, nil
}

// Root returns the worktree root directory
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the .git directory
func (r *Repository) GitDir() string {
	return r.gitDir
}

// StateDir returns the directory under .git where arbor keeps its state
func (r *Repository) StateDir() string {
	return filepath.Join(r.gitDir, StateDirName)
}

// EventLogPath returns the path of the event log database
func (r *Repository) EventLogPath() string {
	return filepath.Join(r.StateDir(), EventLogFileName)
}

// Runner returns the command runner rooted at the worktree
func (r *Repository) Runner() *CommandRunner {
	return r.runner
}

// RequireInitialized returns ErrNotInitialized when the event log database
// does not exist yet.
func (r *Repository) RequireInitialized() error {
	if !fileExists(r.EventLogPath()) {
		return arborerrors.ErrNotInitialized
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
