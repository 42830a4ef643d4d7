package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/testutil"
)

func TestReadCommit(t *testing.T) {
	t.Run("loads oid, parents and summary", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		first := fixture.CommitFile("a.txt", "a\n", "first change")
		second := fixture.CommitFile("b.txt", "b\n", "second change\n\nwith a longer body\n")

		repo, err := Open(fixture.Dir)
		require.NoError(t, err)

		commit, err := repo.ReadCommit(context.Background(), second)
		require.NoError(t, err)
		require.Equal(t, second, commit.OID)
		require.Equal(t, []eventlog.OID{first}, commit.Parents)
		require.Equal(t, "second change", commit.Summary)
		require.False(t, commit.CommitTime.IsZero())

		root, err := repo.ReadCommit(context.Background(), first)
		require.NoError(t, err)
		require.Empty(t, root.Parents)
	})

	t.Run("reports unresolvable oids as graph errors", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		fixture.CommitFile("a.txt", "a\n", "first change")

		repo, err := Open(fixture.Dir)
		require.NoError(t, err)

		missing := eventlog.OID("0123456789abcdef0123456789abcdef01234567")
		_, err = repo.ReadCommit(context.Background(), missing)
		require.ErrorIs(t, err, arborerrors.ErrGraph)

		var graphErr *arborerrors.GraphError
		require.ErrorAs(t, err, &graphErr)
		require.Equal(t, string(missing), graphErr.OID)
	})
}

func TestResolveRevision(t *testing.T) {
	fixture := testutil.InitRepo(t)
	first := fixture.CommitFile("a.txt", "a\n", "first change")
	fixture.Branch("feature", first)

	repo, err := Open(fixture.Dir)
	require.NoError(t, err)

	t.Run("resolves branch names", func(t *testing.T) {
		oid, err := repo.ResolveRevision("feature")
		require.NoError(t, err)
		require.Equal(t, first, oid)
	})

	t.Run("resolves HEAD", func(t *testing.T) {
		oid, err := repo.ResolveRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, first, oid)
	})

	t.Run("fails on unknown revisions", func(t *testing.T) {
		_, err := repo.ResolveRevision("no-such-thing")
		require.ErrorIs(t, err, arborerrors.ErrGraph)
	})
}

func TestShortOID(t *testing.T) {
	require.Equal(t, "01234567", ShortOID("0123456789abcdef0123456789abcdef01234567"))
	require.Equal(t, "abc", ShortOID("abc"))
}

func TestSnapshot(t *testing.T) {
	t.Run("captures branches and symbolic head", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		first := fixture.CommitFile("a.txt", "a\n", "first change")
		second := fixture.CommitFile("b.txt", "b\n", "second change")
		fixture.Branch("feature", first)

		repo, err := Open(fixture.Dir)
		require.NoError(t, err)

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, second, snapshot.Refs["refs/heads/master"])
		require.Equal(t, first, snapshot.Refs["refs/heads/feature"])
		require.Equal(t, second, snapshot.Refs[eventlog.HeadRef])
		require.Equal(t, "refs/heads/master", snapshot.HeadRef)
		require.Equal(t, "refs/heads/master", repo.CurrentBranch())
	})

	t.Run("reports detached head with an empty ref name", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		first := fixture.CommitFile("a.txt", "a\n", "first change")
		fixture.CommitFile("b.txt", "b\n", "second change")
		fixture.Detach(first)

		repo, err := Open(fixture.Dir)
		require.NoError(t, err)

		snapshot, err := repo.Snapshot()
		require.NoError(t, err)
		require.Equal(t, first, snapshot.Refs[eventlog.HeadRef])
		require.Empty(t, snapshot.HeadRef)
		require.Empty(t, repo.CurrentBranch())
	})
}
