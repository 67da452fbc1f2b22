package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/docura/pkg/printers"
	"tableflip.dev/docura/pkg/store"
	"tableflip.dev/docura/pkg/timeutil"
)

// Snapshots lists or prunes crash-recovery snapshots.
type Snapshots struct {
	ShowID      bool
	Clear       bool
	Delete      string
	Prune       string
	Output      string
	Persistence store.Persistence
}

func (n *Snapshots) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list snapshots, no persistence")
	}

	if n.Clear {
		if err := n.Persistence.ClearSnapshots(); err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		fmt.Println("snapshots cleared")
		return nil
	}

	if n.Delete != "" {
		if err := n.Persistence.DeleteSnapshot(n.Delete); err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		fmt.Printf("snapshot %s deleted\n", n.Delete)
		return nil
	}

	if n.Prune != "" {
		window, err := timeutil.ParseWindow(n.Prune)
		if err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		cutoff := time.Now().Add(-window)
		pruned := 0
		for _, s := range n.Persistence.ListSnapshots(ctx) {
			if s.CreatedAt.Before(cutoff) {
				if err := n.Persistence.DeleteSnapshot(s.ID); err != nil {
					return fmt.Errorf("snapshots: %w", err)
				}
				pruned++
			}
		}
		fmt.Printf("pruned %d snapshots older than %s\n", pruned, n.Prune)
		return nil
	}

	snaps := n.Persistence.ListSnapshots(ctx)

	if n.Output == "json" {
		b, err := json.Marshal(snaps)
		if err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}

	fmt.Println("")
	pp.TitleWithCount("Snapshots", len(snaps))
	pp.Snapshots(snaps...)

	return nil
}
