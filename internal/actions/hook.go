package actions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"arbor.dev/arbor/internal/eventlog"
	"arbor.dev/arbor/internal/git"
)

// HookAction handles 'arbor hook <name>', the writing end of the event log.
// Hooks degrade gracefully: when arbor is disabled for this process, the
// directory is not a repository, or init has not been run, they do nothing
// and report success so the user's git keeps working.
func HookAction(ctx context.Context, dir, name string, args []string, stdin io.Reader) error {
	if git.HooksDisabled() {
		return nil
	}
	repo, err := git.Open(dir)
	if err != nil {
		return nil
	}
	if err := repo.RequireInitialized(); err != nil {
		return nil
	}

	store, err := eventlog.Open(repo.EventLogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	switch name {
	case "post-commit":
		return hookPostCommit(ctx, repo, store)
	case "post-rewrite":
		return hookPostRewrite(ctx, store, stdin)
	case "post-checkout":
		return hookPostCheckout(ctx, store, args)
	case "reference-transaction":
		return hookReferenceTransaction(ctx, store, args, stdin)
	}
	return fmt.Errorf("unknown hook %q", name)
}

func hookPostCommit(ctx context.Context, repo *git.Repository, store *eventlog.Store) error {
	head, err := repo.ResolveRevision("HEAD")
	if err != nil {
		return nil
	}
	_, err = store.Append(ctx, eventlog.Event{
		Kind:     eventlog.KindCommitCreated,
		NewOID:   head,
		Metadata: eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpCommit),
	})
	return err
}

// hookPostRewrite records amends and rebases. Stdin carries one line per
// rewritten commit: "<old> <new>", optionally followed by extra info.
func hookPostRewrite(ctx context.Context, store *eventlog.Store, stdin io.Reader) error {
	meta := eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpRewrite)
	var batch []eventlog.Event

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		oldOID := eventlog.NormalizeOID(fields[0])
		newOID := eventlog.NormalizeOID(fields[1])
		if oldOID == "" || newOID == "" || oldOID == newOID {
			continue
		}
		batch = append(batch, eventlog.Event{
			Kind:     eventlog.KindCommitRewritten,
			OldOID:   oldOID,
			NewOID:   newOID,
			Metadata: meta,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read hook input: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	_, err := store.AppendBatch(ctx, batch)
	return err
}

// hookPostCheckout records HEAD movements. Args are "<old> <new> <flag>";
// flag 1 marks a branch/commit checkout as opposed to a file checkout.
func hookPostCheckout(ctx context.Context, store *eventlog.Store, args []string) error {
	if len(args) < 3 || args[2] != "1" {
		return nil
	}
	oldOID := eventlog.NormalizeOID(args[0])
	newOID := eventlog.NormalizeOID(args[1])
	if newOID == "" || oldOID == newOID {
		return nil
	}
	_, err := store.Append(ctx, eventlog.Event{
		Kind:     eventlog.KindRefUpdated,
		RefName:  eventlog.HeadRef,
		OldOID:   oldOID,
		NewOID:   newOID,
		Metadata: eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpCheckout),
	})
	return err
}

// hookReferenceTransaction records branch movements. Git calls the hook for
// every transaction state; only committed transactions are facts. Stdin
// carries one line per ref: "<old> <new> <refname>".
func hookReferenceTransaction(ctx context.Context, store *eventlog.Store, args []string, stdin io.Reader) error {
	if len(args) == 0 || args[0] != "committed" {
		return nil
	}
	meta := eventlog.TxMetadata(eventlog.NewTxID(), eventlog.OpRefUpdate)
	var batch []eventlog.Event

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		refName := fields[2]
		if !trackedRef(refName) {
			continue
		}
		oldOID := eventlog.NormalizeOID(fields[0])
		newOID := eventlog.NormalizeOID(fields[1])
		if oldOID == newOID {
			continue
		}
		if newOID == "" {
			batch = append(batch, eventlog.Event{
				Kind:     eventlog.KindRefDeleted,
				RefName:  refName,
				OldOID:   oldOID,
				Metadata: meta,
			})
		} else {
			batch = append(batch, eventlog.Event{
				Kind:     eventlog.KindRefUpdated,
				RefName:  refName,
				OldOID:   oldOID,
				NewOID:   newOID,
				Metadata: meta,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read hook input: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	_, err := store.AppendBatch(ctx, batch)
	return err
}

// trackedRef reports whether movements of the ref belong in the event log:
// local branches and HEAD. Remote refs, tags, and plumbing refs do not.
func trackedRef(name string) bool {
	return name == eventlog.HeadRef || strings.HasPrefix(name, "refs/heads/")
}
