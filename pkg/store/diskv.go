// Package store persists editor state that must survive a crash or
// restart: recovery snapshots of untitled documents and the
// recent-items list. Snapshot layout is an implementation detail of
// this package; callers only see create/update, list-by-recency,
// delete, and clear.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const (
	snapshotBucket = "snapshot"
	recentFile     = ".recent.json"
	recentLimit    = 15
)

// Snapshot is a crash-recovery copy of an untitled document.
type Snapshot struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecentItem records a file or folder the user opened.
type RecentItem struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Type     string    `json:"type"` // "file" or "folder"
	OpenedAt time.Time `json:"openedAt"`
}

// Persistence is the durable-state contract for the editor.
type Persistence interface {
	SaveSnapshot(content string, id string) (string, error)
	ListSnapshots(ctx context.Context) []*Snapshot
	DeleteSnapshot(id string) error
	ClearSnapshots() error

	RecentItems() []RecentItem
	AddRecent(path string, typ string) error
	ClearRecent() error
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.DataPath()
	if basePath == "" {
		return nil, errors.New("store: data path required")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

// SaveSnapshot writes content under the given id, minting a new id when
// none is supplied. The returned id is stable across updates.
func (p *persistence) SaveSnapshot(content string, id string) (string, error) {
	snap := &Snapshot{ID: id, Content: content, CreatedAt: time.Now()}
	if snap.ID == "" {
		snap.ID = newSnapshotID()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("store: marshal snapshot: %w", err)
	}
	if err := p.d.Write(snapshotKey(snap.ID), data); err != nil {
		return "", fmt.Errorf("store: write snapshot %s: %w", snap.ID, err)
	}
	return snap.ID, nil
}

// ListSnapshots returns all snapshots ordered most-recent-first.
// Unreadable records are skipped with a note on stderr.
func (p *persistence) ListSnapshots(ctx context.Context) []*Snapshot {
	all := make([]*Snapshot, 0)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] != snapshotBucket {
			continue
		}
		snap, err := p.readSnapshot(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %s: %s\n", key, err)
			continue
		}
		all = append(all, snap)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (p *persistence) DeleteSnapshot(id string) error {
	if id == "" {
		return errors.New("store: snapshot id required")
	}
	if err := p.d.Erase(snapshotKey(id)); err != nil {
		return fmt.Errorf("store: delete snapshot %s: %w", id, err)
	}
	return nil
}

func (p *persistence) ClearSnapshots() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	keys := make([]string, 0)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] != snapshotBucket {
			continue
		}
		keys = append(keys, key)
	}
	var firstErr error
	for _, key := range keys {
		if err := p.d.Erase(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: clear snapshot %s: %w", key, err)
		}
	}
	return firstErr
}

func (p *persistence) readSnapshot(key string) (*Snapshot, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(val, snap); err != nil {
		return nil, err
	}
	if snap.ID == "" {
		snap.ID = keyToPathTransform(key).FileName
	}
	return snap, nil
}

// RecentItems returns the most-recent-first open history.
func (p *persistence) RecentItems() []RecentItem {
	items, err := p.loadRecent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: load recent items: %v\n", err)
		return nil
	}
	return items
}

// AddRecent records path at the head of the history, deduping by path
// and truncating to the cap.
func (p *persistence) AddRecent(path string, typ string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("store: recent item path required")
	}
	items, err := p.loadRecent()
	if err != nil {
		return fmt.Errorf("store: load recent items: %w", err)
	}

	kept := make([]RecentItem, 0, len(items)+1)
	kept = append(kept, RecentItem{
		Path:     path,
		Name:     filepath.Base(path),
		Type:     typ,
		OpenedAt: time.Now(),
	})
	for _, item := range items {
		if item.Path == path {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) > recentLimit {
		kept = kept[:recentLimit]
	}
	return p.saveRecent(kept)
}

func (p *persistence) ClearRecent() error {
	return p.saveRecent(nil)
}

func (p *persistence) recentPath() string {
	return filepath.Join(p.basePath, recentFile)
}

func (p *persistence) loadRecent() ([]RecentItem, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.recentPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var items []RecentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *persistence) saveRecent(items []RecentItem) error {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return err
	}
	if items == nil {
		items = []RecentItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	path := p.recentPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func newSnapshotID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func snapshotKey(id string) string {
	return fmt.Sprintf("%s-%s", snapshotBucket, id)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
