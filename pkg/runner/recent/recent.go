package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/docura/pkg/printers"
	"tableflip.dev/docura/pkg/store"
)

// Recent lists or clears the recently-opened files and folders.
type Recent struct {
	Clear       bool
	Output      string
	Persistence store.Persistence
}

func (n *Recent) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list recent, no persistence")
	}

	if n.Clear {
		if err := n.Persistence.ClearRecent(); err != nil {
			return fmt.Errorf("recent: %w", err)
		}
		fmt.Println("recent items cleared")
		return nil
	}

	items := n.Persistence.RecentItems()

	if n.Output == "json" {
		b, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("recent: %w", err)
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}

	pp := printers.PrettyPrint{}

	fmt.Println("")
	pp.TitleWithCount("Recent", len(items))
	pp.Recents(items...)

	return nil
}
