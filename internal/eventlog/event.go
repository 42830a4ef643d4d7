// Package eventlog implements the append-only event log that records every
// mutation of the repository's commit graph. The log is the sole source of
// truth for historical state: the current graph, past graphs, and the
// undo/redo machinery are all reconstructed from it.
package eventlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OID is a commit object id in hex form. The empty string means "no commit";
// the all-zero hash git reports for ref creations and deletions is normalized
// to the empty string on the way in.
type OID string

// Cursor is a position in the event log. Cursors are assigned by the store,
// start at 1, and increase by exactly one per event. Zero denotes the state
// before the first event.
type Cursor int64

// Kind identifies what a single event records.
type Kind string

// The closed set of event kinds. Consumers switch exhaustively over these;
// a kind read from storage that is not in this set is a storage error.
const (
	KindCommitCreated   Kind = "commit-created"
	KindRefUpdated      Kind = "ref-updated"
	KindCommitRewritten Kind = "commit-rewritten"
	KindRefDeleted      Kind = "ref-deleted"
	KindCommitHidden    Kind = "commit-hidden"
	KindCommitUnhidden  Kind = "commit-unhidden"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCommitCreated, KindRefUpdated, KindCommitRewritten,
		KindRefDeleted, KindCommitHidden, KindCommitUnhidden:
		return true
	}
	return false
}

// Metadata keys attached to events.
const (
	// MetaTx groups the events of one logical mutation under a shared id.
	MetaTx = "tx"
	// MetaOp names the command that produced the event (commit, undo, move, ...).
	MetaOp = "op"
)

// Operation names recorded under MetaOp.
const (
	OpInit      = "init"
	OpCommit    = "commit"
	OpRewrite   = "rewrite"
	OpCheckout  = "checkout"
	OpRefUpdate = "ref-update"
	OpHide      = "hide"
	OpUnhide    = "unhide"
	OpMove      = "move"
	OpRestack   = "restack"
	OpContinue  = "continue"
	OpAbort     = "abort"
	OpUndo      = "undo"
	OpRedo      = "redo"
)

// CompensatingOp reports whether op rewinds or replays recorded history
// rather than creating new history. Compensating appends keep the undo
// position; everything else invalidates it.
func CompensatingOp(op string) bool {
	return op == OpUndo || op == OpRedo
}

// Event is a single entry in the log. The store assigns Cursor; callers never
// set it. RefName, OldOID and NewOID are used according to Kind:
//
//	commit-created    NewOID is the created commit
//	ref-updated       RefName moved from OldOID to NewOID
//	ref-deleted       RefName, previously at OldOID, was removed
//	commit-rewritten  OldOID was replaced by NewOID
//	commit-hidden     NewOID was manually hidden
//	commit-unhidden   NewOID was manually unhidden
type Event struct {
	Cursor    Cursor
	Timestamp time.Time
	Kind      Kind
	RefName   string
	OldOID    OID
	NewOID    OID
	Metadata  map[string]string
}

// OIDs returns the commit ids the event mentions, in old-then-new order.
func (e Event) OIDs() []OID {
	var oids []OID
	if e.OldOID != "" {
		oids = append(oids, e.OldOID)
	}
	if e.NewOID != "" && e.NewOID != e.OldOID {
		oids = append(oids, e.NewOID)
	}
	return oids
}

func (e Event) String() string {
	switch e.Kind {
	case KindCommitCreated:
		return fmt.Sprintf("[%d] commit-created %s", e.Cursor, e.NewOID)
	case KindRefUpdated:
		return fmt.Sprintf("[%d] ref-updated %s %s -> %s", e.Cursor, e.RefName, orNone(e.OldOID), orNone(e.NewOID))
	case KindCommitRewritten:
		return fmt.Sprintf("[%d] commit-rewritten %s -> %s", e.Cursor, e.OldOID, e.NewOID)
	case KindRefDeleted:
		return fmt.Sprintf("[%d] ref-deleted %s (was %s)", e.Cursor, e.RefName, orNone(e.OldOID))
	case KindCommitHidden:
		return fmt.Sprintf("[%d] commit-hidden %s", e.Cursor, e.NewOID)
	case KindCommitUnhidden:
		return fmt.Sprintf("[%d] commit-unhidden %s", e.Cursor, e.NewOID)
	}
	return fmt.Sprintf("[%d] %s", e.Cursor, e.Kind)
}

func orNone(oid OID) string {
	if oid == "" {
		return "(none)"
	}
	return string(oid)
}

// NormalizeOID converts a hex hash from git output into an OID, mapping the
// all-zero hash to the empty OID.
func NormalizeOID(s string) OID {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0") == "" {
		return ""
	}
	return OID(s)
}

// NewTxID returns a fresh id for grouping the events of one logical mutation.
func NewTxID() string {
	return uuid.NewString()
}

// TxMetadata builds the standard metadata map for a command invocation.
func TxMetadata(txID, op string) map[string]string {
	return map[string]string{MetaTx: txID, MetaOp: op}
}
