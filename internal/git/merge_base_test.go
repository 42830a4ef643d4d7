package git

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/testutil"
)

func TestMergeBase(t *testing.T) {
	fixture := testutil.InitRepo(t)
	base := fixture.CommitFile("base.txt", "base\n", "base commit")
	left := fixture.CommitFile("left.txt", "left\n", "left change")
	fixture.Detach(base)
	right := fixture.CommitFile("right.txt", "right\n", "right change")

	repo, err := Open(fixture.Dir)
	require.NoError(t, err)

	t.Run("finds the fork point of diverged commits", func(t *testing.T) {
		mergeBase, err := repo.MergeBase(left, right)
		require.NoError(t, err)
		require.Equal(t, base, mergeBase)
	})

	t.Run("returns the ancestor when one side contains the other", func(t *testing.T) {
		mergeBase, err := repo.MergeBase(base, left)
		require.NoError(t, err)
		require.Equal(t, base, mergeBase)
	})
}

func TestIsAncestor(t *testing.T) {
	fixture := testutil.InitRepo(t)
	base := fixture.CommitFile("base.txt", "base\n", "base commit")
	child := fixture.CommitFile("child.txt", "child\n", "child change")
	fixture.Detach(base)
	sibling := fixture.CommitFile("sibling.txt", "sibling\n", "sibling change")

	repo, err := Open(fixture.Dir)
	require.NoError(t, err)

	ok, err := repo.IsAncestor(base, child)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsAncestor(child, base)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.IsAncestor(child, sibling)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.IsAncestor(base, base)
	require.NoError(t, err)
	require.True(t, ok)
}
