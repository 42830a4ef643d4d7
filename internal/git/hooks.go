package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	hookShebang     = "#!/bin/sh"
	hookMarkerStart = "## START ARBOR CONFIG"
	hookMarkerEnd   = "## END ARBOR CONFIG"
)

// HookNames lists the hooks arbor installs, in installation order
var HookNames = []string{
	"post-commit",
	"post-rewrite",
	"post-checkout",
	"reference-transaction",
}

// hookScript returns the managed block body for a hook. The
// reference-transaction hook must never cancel the transaction, so its
// failure is reported instead of propagated.
func hookScript(name string) string {
	if name == "reference-transaction" {
		return `arbor hook reference-transaction "$@" || (
    echo 'arbor: failed to process reference transaction!'
    echo 'arbor: some ref updates may not have been recorded.'
)
`
	}
	return fmt.Sprintf("arbor hook %s \"$@\"\n", name)
}

// InstallHooks writes the managed block into every hook file, creating
// files that do not exist and leaving user content outside the markers
// untouched. Installation is idempotent.
func (r *Repository) InstallHooks(ctx context.Context) error {
	hooksDir, err := r.hooksDir(ctx)
	if err != nil {
		return err
	}
	for _, name := range HookNames {
		if err := installHook(filepath.Join(hooksDir, name), hookScript(name)); err != nil {
			return fmt.Errorf("failed to install %s hook: %w", name, err)
		}
	}
	return nil
}

// UninstallHooks removes the managed block from every hook file. Hook
// files arbor created stay behind with an empty block removed; files that
// never had a block are left alone.
func (r *Repository) UninstallHooks(ctx context.Context) error {
	hooksDir, err := r.hooksDir(ctx)
	if err != nil {
		return err
	}
	for _, name := range HookNames {
		if err := uninstallHook(filepath.Join(hooksDir, name)); err != nil {
			return fmt.Errorf("failed to uninstall %s hook: %w", name, err)
		}
	}
	return nil
}

// hooksDir resolves core.hooksPath when set, else .git/hooks
func (r *Repository) hooksDir(ctx context.Context) (string, error) {
	configured, err := r.runner.Run(ctx, "config", "core.hooksPath")
	if err == nil && configured != "" {
		if filepath.IsAbs(configured) {
			return configured, nil
		}
		return filepath.Join(r.root, configured), nil
	}
	return filepath.Join(r.gitDir, "hooks"), nil
}

func installHook(path, script string) error {
	existing, err := os.ReadFile(path)
	var contents string
	switch {
	case err == nil:
		contents = updateBetweenMarkers(string(existing), script)
	case os.IsNotExist(err):
		contents = fmt.Sprintf("%s\n%s\n%s%s\n", hookShebang, hookMarkerStart, script, hookMarkerEnd)
	default:
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0o755)
}

func uninstallHook(path string) error {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	contents := removeBetweenMarkers(string(existing))
	if contents == string(existing) {
		return nil
	}
	return os.WriteFile(path, []byte(contents), 0o755)
}

// updateBetweenMarkers replaces the content between the marker lines with
// script, appending a fresh block when no markers are present. Everything
// outside the markers is preserved verbatim.
func updateBetweenMarkers(existing, script string) string {
	var b strings.Builder
	ignoring := false
	replaced := false
	for _, line := range splitLines(existing) {
		switch {
		case line == hookMarkerStart:
			ignoring = true
			replaced = true
			b.WriteString(hookMarkerStart)
			b.WriteByte('\n')
			b.WriteString(script)
			b.WriteString(hookMarkerEnd)
			b.WriteByte('\n')
		case line == hookMarkerEnd:
			ignoring = false
		case !ignoring:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if !replaced {
		b.WriteString(hookMarkerStart)
		b.WriteByte('\n')
		b.WriteString(script)
		b.WriteString(hookMarkerEnd)
		b.WriteByte('\n')
	}
	return b.String()
}

// removeBetweenMarkers drops the managed block, markers included
func removeBetweenMarkers(existing string) string {
	var b strings.Builder
	ignoring := false
	for _, line := range splitLines(existing) {
		switch {
		case line == hookMarkerStart:
			ignoring = true
		case line == hookMarkerEnd:
			ignoring = false
		case !ignoring:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
