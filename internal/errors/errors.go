// Package errors provides sentinel errors and custom error types for the arbor application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotInitialized indicates that arbor has not been initialized in this repository
	ErrNotInitialized = errors.New("arbor not initialized")

	// ErrStorage indicates a failure in the event log database
	ErrStorage = errors.New("event log storage failure")

	// ErrGraph indicates that the commit graph could not be built
	ErrGraph = errors.New("commit graph failure")

	// ErrConflict indicates that replaying a commit stopped on a merge conflict
	ErrConflict = errors.New("replay conflict")

	// ErrUserAbort indicates that an operation was refused or interrupted before mutating anything
	ErrUserAbort = errors.New("aborted")

	// ErrLockHeld indicates that another arbor process holds the repository lock
	ErrLockHeld = errors.New("repository lock held")

	// ErrNoContinuation indicates that no paused operation exists to continue or abort
	ErrNoContinuation = errors.New("no operation in progress")
)

// StorageError represents a failure while reading or writing the event log database
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("event log %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError creates a new StorageError
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// GraphError represents a failure to build the commit graph, naming the offending oid
type GraphError struct {
	OID string
	Err error
}

func (e *GraphError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve commit %s: %v", e.OID, e.Err)
	}
	return fmt.Sprintf("cannot resolve commit %s", e.OID)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrGraph
func (e *GraphError) Is(target error) bool {
	return target == ErrGraph
}

// NewGraphError creates a new GraphError
func NewGraphError(oid string, err error) *GraphError {
	return &GraphError{OID: oid, Err: err}
}

// ConflictError represents a replay that stopped on a merge conflict.
// The applied prefix of the plan remains committed; StepIndex is the
// zero-based index of the step that did not complete.
type ConflictError struct {
	CommitOID string
	StepIndex int
	Message   string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("conflict while replaying commit %s (step %d): %s", e.CommitOID, e.StepIndex+1, e.Message)
	}
	return fmt.Sprintf("conflict while replaying commit %s (step %d)", e.CommitOID, e.StepIndex+1)
}

// Is returns true if the target error is ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(commitOID string, stepIndex int, message string) *ConflictError {
	return &ConflictError{
		CommitOID: commitOID,
		StepIndex: stepIndex,
		Message:   message,
	}
}

// DirtyWorktreeError represents a refusal to mutate on top of uncommitted changes
type DirtyWorktreeError struct {
	Hint string
}

func (e *DirtyWorktreeError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("working tree has uncommitted changes: %s", e.Hint)
	}
	return "working tree has uncommitted changes"
}

// Is returns true if the target error is ErrUserAbort
func (e *DirtyWorktreeError) Is(target error) bool {
	return target == ErrUserAbort
}

// NewDirtyWorktreeError creates a new DirtyWorktreeError
func NewDirtyWorktreeError(hint string) *DirtyWorktreeError {
	return &DirtyWorktreeError{Hint: hint}
}

// LockHeldError represents a repository lock held by another process
type LockHeldError struct {
	Path string
	PID  int
}

func (e *LockHeldError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("another arbor command is running (pid %d); remove %s if it is stale", e.PID, e.Path)
	}
	return fmt.Sprintf("another arbor command is running; remove %s if it is stale", e.Path)
}

// Is returns true if the target error is ErrLockHeld
func (e *LockHeldError) Is(target error) bool {
	return target == ErrLockHeld
}

// NewLockHeldError creates a new LockHeldError
func NewLockHeldError(path string, pid int) *LockHeldError {
	return &LockHeldError{Path: path, PID: pid}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
