// Package testutil provides hermetic fixtures for tests: on-disk git
// repositories built through go-git (no git binary required), a throwaway
// event log store, and an in-memory commit reader.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/eventlog"
)

// Repo is a real repository in a temp directory, built commit by commit
// through go-git. Commit times increase by one minute per commit so child
// ordering is deterministic.
type Repo struct {
	T    *testing.T
	Dir  string
	Repo *gogit.Repository

	worktree *gogit.Worktree
	commits  int
}

// InitRepo creates an empty repository under t.TempDir. The default branch
// is master, matching go-git's init.
func InitRepo(t *testing.T) *Repo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	// Give the repository an identity so git commands that create commits
	// (cherry-pick and friends) work against the fixture.
	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	return &Repo{T: t, Dir: dir, Repo: repo, worktree: worktree}
}

// CommitFile writes a file and commits it, returning the commit oid
func (r *Repo) CommitFile(name, content, message string) eventlog.OID {
	r.T.Helper()

	path := filepath.Join(r.Dir, name)
	require.NoError(r.T, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.T, os.WriteFile(path, []byte(content), 0o644))
	_, err := r.worktree.Add(name)
	require.NoError(r.T, err)

	when := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(r.commits) * time.Minute)
	r.commits++
	signature := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	hash, err := r.worktree.Commit(message, &gogit.CommitOptions{Author: signature, Committer: signature})
	require.NoError(r.T, err)

	return eventlog.OID(hash.String())
}

// Branch creates or moves a branch to the commit
func (r *Repo) Branch(name string, oid eventlog.OID) {
	r.T.Helper()

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(string(oid)))
	require.NoError(r.T, r.Repo.Storer.SetReference(ref))
}

// DeleteBranch removes a branch ref
func (r *Repo) DeleteBranch(name string) {
	r.T.Helper()

	require.NoError(r.T, r.Repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)))
}

// CheckoutBranch points HEAD at the branch and updates the worktree
func (r *Repo) CheckoutBranch(name string) {
	r.T.Helper()

	err := r.worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Force:  true,
	})
	require.NoError(r.T, err)
}

// Detach checks out a commit directly, detaching HEAD
func (r *Repo) Detach(oid eventlog.OID) {
	r.T.Helper()

	err := r.worktree.Checkout(&gogit.CheckoutOptions{
		Hash:  plumbing.NewHash(string(oid)),
		Force: true,
	})
	require.NoError(r.T, err)
}

// Head returns the oid HEAD resolves to
func (r *Repo) Head() eventlog.OID {
	r.T.Helper()

	head, err := r.Repo.Head()
	require.NoError(r.T, err)
	return eventlog.OID(head.Hash().String())
}
