// Package files lists and watches the folder tree shown in the sidebar
// and consumed by quick-open indexing.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ItemType distinguishes tree nodes.
type ItemType string

const (
	TypeFile   ItemType = "file"
	TypeFolder ItemType = "folder"
)

// Item is one node of the folder tree.
type Item struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     ItemType `json:"type"`
	Children []Item   `json:"children,omitempty"`
}

// ListFolder reads the folder recursively into a tree. Hidden entries
// are skipped. Folders sort before files, both case-insensitively by
// name. Unreadable subdirectories are listed empty rather than failing
// the whole walk.
func ListFolder(folder string) ([]Item, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("files: stat %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("files: %s is not a directory", folder)
	}
	return readDir(folder, true)
}

func readDir(dir string, failOnError bool) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if failOnError {
			return nil, fmt.Errorf("files: read %s: %w", dir, err)
		}
		// Subdirectories we cannot read render empty.
		return nil, nil
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			children, _ := readDir(path, false)
			items = append(items, Item{
				Name:     name,
				Path:     path,
				Type:     TypeFolder,
				Children: children,
			})
		} else {
			items = append(items, Item{
				Name: name,
				Path: path,
				Type: TypeFile,
			})
		}
	}

	sortItems(items)
	return items, nil
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Type != b.Type {
			return a.Type == TypeFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// ErrNotFound is returned when a requested file is missing.
var ErrNotFound = errors.New("files: not found")

// FS is the file access surface the document controller depends on.
type FS interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
}

// OSFS implements FS against the real filesystem.
type OSFS struct{}

func (OSFS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("files: read %s: %w", path, err)
	}
	return string(data), nil
}

func (OSFS) WriteFile(path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("files: write %s: %w", path, err)
	}
	return nil
}
