package actions

import (
	"fmt"
	"strings"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
	"arbor.dev/arbor/internal/runtime"
)

// HideAction marks the given commits as hidden. Hiding is an event, not a
// mutation: the commits stay in the repository and the smartlog stops
// showing their subtrees unless something still points at them.
func HideAction(ctx *runtime.Context, revs []string) error {
	return setVisibility(ctx, revs, eventlog.KindCommitHidden)
}

// UnhideAction undoes HideAction for the given commits.
func UnhideAction(ctx *runtime.Context, revs []string) error {
	return setVisibility(ctx, revs, eventlog.KindCommitUnhidden)
}

func setVisibility(ctx *runtime.Context, revs []string, kind eventlog.Kind) error {
	if len(revs) == 0 {
		return fmt.Errorf("no commits given")
	}

	oids := make([]eventlog.OID, len(revs))
	for i, rev := range revs {
		oid, err := resolveRev(ctx, rev)
		if err != nil {
			return err
		}
		oids[i] = oid
	}

	events, err := ctx.Store.All(ctx.Context)
	if err != nil {
		return err
	}
	rp := eventlog.NewReplayer(events)
	cursor := rp.LatestCursor()

	op := eventlog.OpHide
	if kind == eventlog.KindCommitUnhidden {
		op = eventlog.OpUnhide
	}
	meta := eventlog.TxMetadata(eventlog.NewTxID(), op)

	batch := make([]eventlog.Event, len(oids))
	for i, oid := range oids {
		batch[i] = eventlog.Event{Kind: kind, NewOID: oid, Metadata: meta}
	}
	if _, err := ctx.Store.AppendBatch(ctx.Context, batch); err != nil {
		return err
	}

	for _, oid := range oids {
		parts := []string{fmt.Sprintf("%s commit: %s", verb(kind), git.ShortOID(oid))}
		if summary := readSummary(ctx, oid); summary != "" {
			parts = append(parts, summary)
		}
		if note := redundancyNote(rp, cursor, oid, kind); note != "" {
			parts = append(parts, note)
		}
		ctx.Splog.Info("%s", strings.Join(parts, " "))
	}
	ctx.Splog.Info("%s", inverseHint(oids, kind))
	return nil
}

func verb(kind eventlog.Kind) string {
	if kind == eventlog.KindCommitUnhidden {
		return "Unhid"
	}
	return "Hid"
}

// redundancyNote reports when the commit was already in the requested state.
// The event is appended regardless; the log records what the user did.
func redundancyNote(rp *eventlog.Replayer, cursor eventlog.Cursor, oid eventlog.OID, kind eventlog.Kind) string {
	vis, found := rp.VisibilityAt(cursor, oid)
	hidden := found && vis == eventlog.VisibilityHidden
	if kind == eventlog.KindCommitHidden && hidden {
		return "(was already hidden)"
	}
	if kind == eventlog.KindCommitUnhidden && !hidden {
		return "(was not hidden)"
	}
	return ""
}

func inverseHint(oids []eventlog.OID, kind eventlog.Kind) string {
	command, noun := "arbor unhide", "this commit"
	if kind == eventlog.KindCommitUnhidden {
		command = "arbor hide"
	}
	if len(oids) > 1 {
		noun = "these commits"
	}
	shorts := make([]string, len(oids))
	for i, oid := range oids {
		shorts[i] = git.ShortOID(oid)
	}
	verb := "unhide"
	if kind == eventlog.KindCommitUnhidden {
		verb = "hide"
	}
	return fmt.Sprintf("To %s %s, run: %s %s", verb, noun, command, strings.Join(shorts, " "))
}
