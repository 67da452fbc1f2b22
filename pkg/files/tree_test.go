package files

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFolderSortsFoldersFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zeta.md"))
	writeFile(t, filepath.Join(dir, "Alpha.md"))
	writeFile(t, filepath.Join(dir, "notes", "todo.md"))
	writeFile(t, filepath.Join(dir, "archive", "old.md"))

	items, err := ListFolder(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.Name)
	}
	want := []string{"archive", "notes", "Alpha.md", "zeta.md"}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
	if items[1].Type != TypeFolder || len(items[1].Children) != 1 {
		t.Errorf("notes should be a folder with one child: %+v", items[1])
	}
}

func TestListFolderSkipsHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".hidden.md"))
	writeFile(t, filepath.Join(dir, ".git", "config"))
	writeFile(t, filepath.Join(dir, "visible.md"))

	items, err := ListFolder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "visible.md" {
		t.Fatalf("expected only visible.md, got %+v", items)
	}
}

func TestListFolderRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.md")
	writeFile(t, path)
	if _, err := ListFolder(path); err == nil {
		t.Fatal("expected error listing a plain file")
	}
}

func TestOSFSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	var fs OSFS
	if err := fs.WriteFile(path, "# hello"); err != nil {
		t.Fatal(err)
	}
	content, err := fs.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "# hello" {
		t.Errorf("content = %q", content)
	}
	if _, err := fs.ReadFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
}
