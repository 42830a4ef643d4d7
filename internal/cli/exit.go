package cli

import (
	"errors"

	arborerrors "arbor.dev/arbor/internal/errors"
)

// Exit codes. Scripts drive the conflict loop off code 2: pause, let the
// user resolve, run 'arbor continue'.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitConflict = 2
	ExitAborted  = 3
)

// ExitCode maps an error returned by command execution to the process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, arborerrors.ErrConflict):
		return ExitConflict
	case errors.Is(err, arborerrors.ErrUserAbort):
		return ExitAborted
	default:
		return ExitFailure
	}
}
