package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestPersistence(t *testing.T) Persistence {
	t.Helper()
	p, err := Load(StaticConfig(t.TempDir(), "dark", true))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSnapshotLifecycle(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	id, err := p.SaveSnapshot("# draft", "")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a minted snapshot id")
	}

	// Updating with the same id must not create a second record.
	id2, err := p.SaveSnapshot("# draft v2", id)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Fatalf("update changed id: %q -> %q", id, id2)
	}

	snaps := p.ListSnapshots(ctx)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Content != "# draft v2" {
		t.Errorf("content = %q", snaps[0].Content)
	}

	if err := p.DeleteSnapshot(id); err != nil {
		t.Fatal(err)
	}
	if snaps := p.ListSnapshots(ctx); len(snaps) != 0 {
		t.Fatalf("expected no snapshots after delete, got %d", len(snaps))
	}
}

func TestListSnapshotsOrdersMostRecentFirst(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	var ids []string
	for _, content := range []string{"first", "second", "third"} {
		id, err := p.SaveSnapshot(content, "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	snaps := p.ListSnapshots(ctx)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	if snaps[0].ID != ids[2] || snaps[2].ID != ids[0] {
		t.Errorf("unexpected order: %s %s %s (created %s %s %s)",
			snaps[0].ID, snaps[1].ID, snaps[2].ID, ids[0], ids[1], ids[2])
	}
}

func TestClearSnapshots(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := p.SaveSnapshot("x", ""); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}
	if err := p.ClearSnapshots(); err != nil {
		t.Fatal(err)
	}
	if snaps := p.ListSnapshots(ctx); len(snaps) != 0 {
		t.Fatalf("expected empty store, got %d snapshots", len(snaps))
	}
}

func TestRecentItemsDedupeAndCap(t *testing.T) {
	p := newTestPersistence(t)

	if err := p.AddRecent("/tmp/a.md", "file"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddRecent("/tmp/b.md", "file"); err != nil {
		t.Fatal(err)
	}
	// Re-opening a moves it back to the head without duplicating.
	if err := p.AddRecent("/tmp/a.md", "file"); err != nil {
		t.Fatal(err)
	}

	items := p.RecentItems()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Path != "/tmp/a.md" || items[1].Path != "/tmp/b.md" {
		t.Errorf("unexpected order: %+v", items)
	}
	if items[0].Name != "a.md" {
		t.Errorf("name = %q", items[0].Name)
	}

	for i := 0; i < 20; i++ {
		if err := p.AddRecent(fmt.Sprintf("/tmp/file-%d.md", i), "file"); err != nil {
			t.Fatal(err)
		}
	}
	if items := p.RecentItems(); len(items) != recentLimit {
		t.Fatalf("expected cap of %d, got %d", recentLimit, len(items))
	}

	if err := p.ClearRecent(); err != nil {
		t.Fatal(err)
	}
	if items := p.RecentItems(); len(items) != 0 {
		t.Fatalf("expected empty history, got %d", len(items))
	}
}
