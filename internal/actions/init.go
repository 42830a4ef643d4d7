package actions

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"arbor.dev/arbor/internal/config"
	arborerrors "arbor.dev/arbor/internal/errors"
	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/tui"
)

// InitOptions contains options for the init command
type InitOptions struct {
	// MainBranch names the main branch explicitly instead of detecting it.
	MainBranch string
	// Aliases installs git aliases (sl, hide, undo, ...) pointing at arbor.
	Aliases bool
	// Uninstall removes the hooks, aliases, and config arbor installed.
	Uninstall bool
}

// InitAction sets arbor up in the repository containing dir: it creates the
// state directory and event log, records the current ref positions as the
// first log entries, installs the hooks, and writes the config. Running it
// again refreshes hooks and config without reseeding the log.
func InitAction(ctx context.Context, dir string, opts InitOptions) error {
	repo, err := git.Open(dir)
	if err != nil {
		return err
	}
	splog := tui.NewSplog()

	if opts.Uninstall {
		return uninstall(ctx, repo, splog)
	}

	snapshot, err := repo.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read refs: %w", err)
	}
	branches := branchNames(snapshot)
	if len(branches) == 0 {
		return fmt.Errorf("no branches found in this repository; create your first commit and re-run 'arbor init'")
	}

	mainBranch, err := chooseMainBranch(ctx, repo, branches, opts.MainBranch)
	if err != nil {
		return err
	}

	stateDir := repo.StateDir()
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	wasInitialized := repo.RequireInitialized() == nil

	store, err := eventlog.Open(repo.EventLogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := config.SetMainBranch(stateDir, mainBranch); err != nil {
		return err
	}
	if err := repo.SetLocalConfig(ctx, git.MainBranchConfigKey, mainBranch); err != nil {
		return err
	}
	// Detached checkouts are routine in a branchless workflow; keep git from
	// lecturing about them.
	if err := repo.SetLocalConfig(ctx, "advice.detachedHead", "false"); err != nil {
		return err
	}

	if err := repo.InstallHooks(ctx); err != nil {
		return err
	}
	if opts.Aliases {
		if err := repo.InstallAliases(ctx); err != nil {
			return err
		}
	}

	if wasInitialized {
		splog.Info("Reinitializing arbor...")
	} else {
		seeded, err := seedLog(ctx, store, snapshot)
		if err != nil {
			return err
		}
		splog.Info("Welcome to arbor!")
		splog.Info("Recorded %d ref(s) in the event log.", seeded)
	}

	splog.Info("Main branch set to %s.", mainBranch)
	splog.Info("arbor initialized successfully!")
	splog.Tip("Run 'arbor smartlog' to see your commit graph.")
	return nil
}

// uninstall removes what init installed. The event log is kept; history is
// the user's to delete.
func uninstall(ctx context.Context, repo *git.Repository, splog *tui.Splog) error {
	if err := repo.UninstallHooks(ctx); err != nil {
		return err
	}
	if err := repo.UninstallAliases(ctx); err != nil {
		return err
	}
	_ = repo.UnsetLocalConfig(ctx, git.MainBranchConfigKey)
	_ = repo.UnsetLocalConfig(ctx, "advice.detachedHead")

	splog.Info("Removed arbor hooks, aliases, and config.")
	splog.Info("The event log at %s was kept; delete it to remove all arbor state.", repo.EventLogPath())
	return nil
}

// chooseMainBranch resolves the main branch: an explicit name is verified,
// otherwise detection runs, otherwise the user picks from the existing
// branches.
func chooseMainBranch(ctx context.Context, repo *git.Repository, branches []string, explicit string) (string, error) {
	if explicit != "" {
		if !repo.BranchExists(explicit) {
			return "", fmt.Errorf("branch %q not found", explicit)
		}
		return explicit, nil
	}

	if detected := repo.DetectMainBranch(ctx); detected != "" {
		return detected, nil
	}

	selected, err := tui.PromptSelect("Select your main branch:", branches, branches[0])
	if err != nil {
		return "", arborerrors.ErrUserAbort
	}
	return selected, nil
}

// seedLog records the current position of every ref as ref-updated events
// with old = new: the refs already stood there, so undoing past the seed
// changes nothing. Returns the number of refs recorded.
func seedLog(ctx context.Context, store *eventlog.Store, snapshot *git.RefSnapshot) (int, error) {
	names := make([]string, 0, len(snapshot.Refs))
	for name := range snapshot.Refs {
		names = append(names, name)
	}
	sort.Strings(names)

	meta := eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpInit)
	events := make([]eventlog.Event, 0, len(names))
	for _, name := range names {
		oid := snapshot.Refs[name]
		events = append(events, eventlog.Event{
			Kind:     eventlog.KindRefUpdated,
			RefName:  name,
			OldOID:   oid,
			NewOID:   oid,
			Metadata: meta,
		})
	}
	if len(events) == 0 {
		return 0, nil
	}
	if _, err := store.AppendBatch(ctx, events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func branchNames(snapshot *git.RefSnapshot) []string {
	var names []string
	for name := range snapshot.Refs {
		if strings.HasPrefix(name, "refs/heads/") {
			names = append(names, git.BranchShortName(name))
		}
	}
	sort.Strings(names)
	return names
}
