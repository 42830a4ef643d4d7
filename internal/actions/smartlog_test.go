package actions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/testutil"
)

func TestSmartlogAction(t *testing.T) {
	t.Run("renders a populated graph", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		base := fixture.CommitFile("f.txt", "one\n", "first commit")
		fixture.CommitFile("g.txt", "two\n", "second commit")
		fixture.Detach(base)
		fixture.CommitFile("d.txt", "draft\n", "draft work")
		rctx := newTestContext(t, fixture)

		require.NoError(t, actions.SmartlogAction(rctx))

		// Showing the graph records nothing.
		events, err := rctx.Store.All(rctx.Context)
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("handles a repository without commits", func(t *testing.T) {
		fixture := testutil.InitRepo(t)
		rctx := newTestContext(t, fixture)

		require.NoError(t, actions.SmartlogAction(rctx))
	})
}
