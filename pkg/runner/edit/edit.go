package edit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tableflip.dev/docura/pkg/store"
	"tableflip.dev/docura/pkg/tui/app"
)

// Edit launches the full-screen editor on a workspace folder.
type Edit struct {
	Folder      string
	Persistence store.Persistence
	Config      store.Config
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not edit, no persistence")
	}

	folder := n.Folder
	if folder == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		folder = cwd
	}
	folder, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("edit: %s is not a folder", folder)
	}

	if err := n.Persistence.AddRecent(folder, "folder"); err != nil {
		fmt.Fprintf(os.Stderr, "edit: recent: %v\n", err)
	}

	return app.Run(app.Options{
		Folder:      folder,
		Persistence: n.Persistence,
		Config:      n.Config,
	})
}
