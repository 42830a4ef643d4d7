// Package config manages arbor's state files under .git/arbor: the
// repository configuration and the continuation state of a paused plan.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MainBranchEnv overrides the configured main branch when set
const MainBranchEnv = "ARBOR_MAIN_BRANCH"

const configFileName = "config.json"

// RepoConfig represents the repository configuration
type RepoConfig struct {
	MainBranch string `json:"mainBranch,omitempty"`
	ColorMode  string `json:"colorMode,omitempty"`
}

// GetRepoConfig reads the repository configuration. A missing file is not
// an error; it reads as the zero config.
func GetRepoConfig(stateDir string) (*RepoConfig, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, configFileName))
	if err != nil {
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	return &config, nil
}

// writeRepoConfig persists the configuration, creating the state
// directory when needed.
func writeRepoConfig(stateDir string, config *RepoConfig) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(stateDir, configFileName), configJSON, 0o600)
}

// GetMainBranch returns the configured main branch short name, with the
// environment override applied. Empty when not configured.
func GetMainBranch(stateDir string) (string, error) {
	if fromEnv := os.Getenv(MainBranchEnv); fromEnv != "" {
		return fromEnv, nil
	}

	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return "", err
	}
	return config.MainBranch, nil
}

// SetMainBranch updates the main branch in the config
func SetMainBranch(stateDir string, branch string) error {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		config = &RepoConfig{}
	}
	config.MainBranch = branch
	return writeRepoConfig(stateDir, config)
}

// GetColorMode returns the configured color mode: auto, always or never.
// Defaults to auto.
func GetColorMode(stateDir string) (string, error) {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return "", err
	}
	if config.ColorMode == "" {
		return "auto", nil
	}
	return config.ColorMode, nil
}

// SetColorMode updates the color mode in the config
func SetColorMode(stateDir string, mode string) error {
	switch mode {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}

	config, err := GetRepoConfig(stateDir)
	if err != nil {
		config = &RepoConfig{}
	}
	config.ColorMode = mode
	return writeRepoConfig(stateDir, config)
}

// IsInitialized checks if arbor has been initialized for this repository
func IsInitialized(stateDir string) bool {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return false
	}
	return config.MainBranch != ""
}
