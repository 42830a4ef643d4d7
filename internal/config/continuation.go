package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	arborerrors "arbor.dev/arbor/internal/errors"
)

const continuationFileName = "continue.json"

// ContinuationState is the on-disk state of a plan that paused on a
// conflict. It carries everything needed to resume: the full step list,
// the results of the applied prefix, and where the user was before the
// plan started.
type ContinuationState struct {
	// Op is the command that produced the plan (move, restack).
	Op string `json:"op"`
	// TxID groups all events of the plan, across pause and resume.
	TxID string `json:"txId"`
	// Source and Dest describe the plan for status output.
	Source string `json:"source,omitempty"`
	Dest   string `json:"dest,omitempty"`
	// Steps is the full ordered plan.
	Steps []ContinuationStep `json:"steps"`
	// Replayed maps a planned commit oid to the oid its replay produced,
	// for every fully applied step.
	Replayed map[string]string `json:"replayed,omitempty"`
	// HaltedStep indexes the step whose replay conflicted.
	HaltedStep int `json:"haltedStep"`
	// OriginalHeadRef is the branch that was checked out before the plan
	// started, empty when HEAD was detached at OriginalHeadOID.
	OriginalHeadRef string `json:"originalHeadRef,omitempty"`
	OriginalHeadOID string `json:"originalHeadOid,omitempty"`
}

// ContinuationStep mirrors one plan step for persistence
type ContinuationStep struct {
	CommitOID  string   `json:"commitOid"`
	ParentStep int      `json:"parentStep"`
	NewParent  string   `json:"newParent,omitempty"`
	Refs       []string `json:"refs,omitempty"`
}

// GetContinuationState reads the paused-plan state. Reports
// ErrNoContinuation when no plan is paused.
func GetContinuationState(stateDir string) (*ContinuationState, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, continuationFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, arborerrors.ErrNoContinuation
		}
		return nil, fmt.Errorf("failed to read continuation state: %w", err)
	}

	var state ContinuationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse continuation state: %w", err)
	}
	return &state, nil
}

// PersistContinuationState writes the paused-plan state to disk
func PersistContinuationState(stateDir string, state *ContinuationState) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuation state: %w", err)
	}
	return os.WriteFile(filepath.Join(stateDir, continuationFileName), data, 0o600)
}

// ClearContinuationState removes the continuation state file
func ClearContinuationState(stateDir string) error {
	err := os.Remove(filepath.Join(stateDir, continuationFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear continuation state: %w", err)
	}
	return nil
}

// HasContinuation reports whether a paused plan exists
func HasContinuation(stateDir string) bool {
	_, err := os.Stat(filepath.Join(stateDir, continuationFileName))
	return err == nil
}
