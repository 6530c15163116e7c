package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/formwizard/pkg/ports"
)

// ListSessions prints one line per stored session: id, status and active step.
func ListSessions(ctx context.Context, store ports.StateStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTATUS\tSTEP\tVISITED")
	for _, id := range ids {
		state, err := store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\n", id, "unreadable")
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", id, state.Status, state.ActiveStep, len(state.Visited()))
	}
	return tw.Flush()
}

// InspectSession prints the stored state as indented JSON.
func InspectSession(ctx context.Context, store ports.StateStore, id string, w io.Writer) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", id, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// RemoveSession deletes a stored session.
func RemoveSession(ctx context.Context, store ports.StateStore, id string, w io.Writer) error {
	if err := store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	fmt.Fprintf(w, "Session %q deleted.\n", id)
	return nil
}
