package cli_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor.dev/arbor/internal/cli"
	arborerrors "arbor.dev/arbor/internal/errors"
)

func TestNewRootCmd(t *testing.T) {
	root := cli.NewRootCmd("1.2.3", "abcdef0", "2024-05-10")

	t.Run("registers every command", func(t *testing.T) {
		names := []string{
			"init", "smartlog", "hide", "unhide", "undo", "redo",
			"move", "restack", "continue", "abort", "prev", "next",
			"hook", "status",
		}
		for _, name := range names {
			cmd, _, err := root.Find([]string{name})
			require.NoError(t, err, name)
			require.Equal(t, name, cmd.Name())
		}
	})

	t.Run("smartlog answers to sl", func(t *testing.T) {
		cmd, _, err := root.Find([]string{"sl"})
		require.NoError(t, err)
		require.Equal(t, "smartlog", cmd.Name())
	})

	t.Run("the hook command stays out of help", func(t *testing.T) {
		cmd, _, err := root.Find([]string{"hook"})
		require.NoError(t, err)
		require.True(t, cmd.Hidden)
	})

	t.Run("the version string carries the build info", func(t *testing.T) {
		require.Contains(t, root.Version, "1.2.3")
		require.Contains(t, root.Version, "abcdef0")
	})

	t.Run("prev rejects a count that is not a number", func(t *testing.T) {
		root := cli.NewRootCmd("dev", "none", "unknown")
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"prev", "abc"})

		err := root.Execute()
		require.ErrorContains(t, err, `invalid count "abc"`)
	})
}

func TestExitCode(t *testing.T) {
	require.Equal(t, cli.ExitOK, cli.ExitCode(nil))
	require.Equal(t, cli.ExitFailure, cli.ExitCode(errors.New("boom")))
	require.Equal(t, cli.ExitConflict, cli.ExitCode(arborerrors.NewConflictError("abc123", 0, "merge conflict")))
	require.Equal(t, cli.ExitAborted, cli.ExitCode(arborerrors.ErrUserAbort))
	require.Equal(t, cli.ExitAborted, cli.ExitCode(fmt.Errorf("undo: %w", arborerrors.ErrUserAbort)))
}
