// Package git is the only package that touches the repository.
//
// Reads go through go-git: resolving revisions, listing refs, loading
// commits, computing merge bases. Mutations shell out to the git binary
// through a context-aware runner: ref transactions, checkouts and
// cherry-picks, so that the behavior users observe is exactly what their
// own git would do.
//
// The package also owns the repository-adjacent plumbing: the state
// directory under .git, the single-writer lock file, hook installation
// and git aliases.
package git
