package actions

import (
	"fmt"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/runtime"
)

// resolveRev resolves a user-supplied revision (branch name, short or full
// oid, HEAD expression) to a commit oid.
func resolveRev(ctx *runtime.Context, rev string) (eventlog.OID, error) {
	oid, err := ctx.Repo.ResolveRevision(rev)
	if err != nil {
		return "", fmt.Errorf("unknown revision %q: %w", rev, err)
	}
	return oid, nil
}

// readSummary returns the commit's summary line, or an empty string when the
// commit cannot be read.
func readSummary(ctx *runtime.Context, oid eventlog.OID) string {
	commit, err := ctx.Repo.ReadCommit(ctx.Context, oid)
	if err != nil {
		return ""
	}
	return commit.Summary
}

// describeEvent renders one log event the way the undo and status output
// talk about it.
func describeEvent(ev eventlog.Event) string {
	switch ev.Kind {
	case eventlog.KindCommitCreated:
		return fmt.Sprintf("create commit %s", git.ShortOID(ev.NewOID))
	case eventlog.KindRefUpdated:
		if ev.RefName == eventlog.HeadRef {
			return fmt.Sprintf("check out %s", git.ShortOID(ev.NewOID))
		}
		name := git.BranchShortName(ev.RefName)
		if ev.OldOID == "" {
			return fmt.Sprintf("create branch %s at %s", name, git.ShortOID(ev.NewOID))
		}
		return fmt.Sprintf("move branch %s from %s to %s", name, git.ShortOID(ev.OldOID), git.ShortOID(ev.NewOID))
	case eventlog.KindRefDeleted:
		return fmt.Sprintf("delete branch %s", git.BranchShortName(ev.RefName))
	case eventlog.KindCommitRewritten:
		return fmt.Sprintf("rewrite %s as %s", git.ShortOID(ev.OldOID), git.ShortOID(ev.NewOID))
	case eventlog.KindCommitHidden:
		return fmt.Sprintf("hide %s", git.ShortOID(ev.NewOID))
	case eventlog.KindCommitUnhidden:
		return fmt.Sprintf("unhide %s", git.ShortOID(ev.NewOID))
	}
	return string(ev.Kind)
}
