package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"tableflip.dev/docura/pkg/store"
)

const testDelay = 20 * time.Millisecond

// settle waits long enough for a pending debounce to fire.
func settle() { time.Sleep(4 * testDelay) }

type fakeFS struct {
	mu         sync.Mutex
	contents   map[string]string
	writes     []string
	failWrites bool
	blockWrite chan struct{} // when set, writes block until closed
	started    chan struct{} // signalled when a write begins
}

func newFakeFS() *fakeFS {
	return &fakeFS{contents: map[string]string{}}
}

func (f *fakeFS) ReadFile(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.contents[path]
	if !ok {
		return "", fmt.Errorf("fakefs: no such file %s", path)
	}
	return content, nil
}

func (f *fakeFS) WriteFile(path, content string) error {
	f.mu.Lock()
	started := f.started
	block := f.blockWrite
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("fakefs: disk full")
	}
	f.contents[path] = content
	f.writes = append(f.writes, content)
	return nil
}

func (f *fakeFS) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

type fakeSnapshots struct {
	mu        sync.Mutex
	snaps     map[string]*store.Snapshot
	nextID    int
	listCalls int
	deletes   []string
	failOnDel bool
	blockSave chan struct{} // when set, saves block until closed
	started   chan struct{} // signalled when a save begins
}

func newFakeSnapshots(seed ...*store.Snapshot) *fakeSnapshots {
	fs := &fakeSnapshots{snaps: map[string]*store.Snapshot{}}
	for _, s := range seed {
		fs.snaps[s.ID] = s
	}
	return fs
}

func (f *fakeSnapshots) SaveSnapshot(content, id string) (string, error) {
	f.mu.Lock()
	started := f.started
	block := f.blockSave
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "" {
		f.nextID++
		id = fmt.Sprintf("snap-%d", f.nextID)
	}
	f.snaps[id] = &store.Snapshot{ID: id, Content: content, CreatedAt: time.Now()}
	return id, nil
}

func (f *fakeSnapshots) ListSnapshots(context.Context) []*store.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]*store.Snapshot, 0, len(f.snaps))
	for _, s := range f.snaps {
		out = append(out, s)
	}
	// Most recent first, ties broken by id for stable tests.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) ||
				(out[j].CreatedAt.Equal(out[i].CreatedAt) && out[j].ID > out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (f *fakeSnapshots) DeleteSnapshot(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.failOnDel {
		return errors.New("fakesnaps: delete failed")
	}
	delete(f.snaps, id)
	return nil
}

func (f *fakeSnapshots) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

func (f *fakeSnapshots) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

type fakeDialogs struct {
	mu       sync.Mutex
	choices  []Choice
	recovery []RecoveryChoice
	paths    []string
	previews []string
	asked    int
}

func (f *fakeDialogs) ConfirmUnsaved(context.Context, string) (Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked++
	if len(f.choices) == 0 {
		return ChoiceCancel, nil
	}
	c := f.choices[0]
	f.choices = f.choices[1:]
	return c, nil
}

func (f *fakeDialogs) ConfirmRecovery(_ context.Context, preview string, _ time.Time) (RecoveryChoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews = append(f.previews, preview)
	if len(f.recovery) == 0 {
		return RecoveryDiscard, nil
	}
	c := f.recovery[0]
	f.recovery = f.recovery[1:]
	return c, nil
}

func (f *fakeDialogs) PickSavePath(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return "", nil
	}
	p := f.paths[0]
	f.paths = f.paths[1:]
	return p, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ NotifyKind, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

type fixture struct {
	ctrl    *Controller
	fs      *fakeFS
	snaps   *fakeSnapshots
	dialogs *fakeDialogs
	notes   *fakeNotifier
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	fx := &fixture{
		fs:      newFakeFS(),
		snaps:   newFakeSnapshots(),
		dialogs: &fakeDialogs{},
		notes:   &fakeNotifier{},
	}
	o := Options{
		FS:        fx.fs,
		Snapshots: fx.snaps,
		Dialogs:   fx.dialogs,
		Notifier:  fx.notes,
		AutoSave:  true,
		Delay:     testDelay,
	}
	for _, fn := range opts {
		fn(&o)
	}
	fx.snaps = o.Snapshots.(*fakeSnapshots)
	fx.ctrl = NewController(o)
	return fx
}

func TestCancelLeavesStateUntouched(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "# original"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("# edited")
	before := fx.ctrl.State()

	fx.dialogs.choices = []Choice{ChoiceCancel}
	proceed, err := fx.ctrl.NewFile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if proceed {
		t.Fatal("cancel must abort the destructive action")
	}
	after := fx.ctrl.State()
	if before != after {
		t.Fatalf("state changed across cancel:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSaveAsCancelCancelsWholeAction(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.ctrl.NewFile(ctx); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("# draft")

	// User picks "save" but then dismisses the save-as prompt.
	fx.dialogs.choices = []Choice{ChoiceSave}
	fx.dialogs.paths = nil
	proceed, err := fx.ctrl.Close(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if proceed {
		t.Fatal("cancelled save-as must cancel the close")
	}
	st := fx.ctrl.State()
	if !st.Open || st.Content != "# draft" {
		t.Fatalf("state disturbed: %+v", st)
	}
}

func TestSaveFailurePreservesDirtyForRetry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "old"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("new")

	fx.fs.mu.Lock()
	fx.fs.failWrites = true
	fx.fs.mu.Unlock()
	if _, err := fx.ctrl.Save(ctx); err == nil {
		t.Fatal("expected save error")
	}
	if st := fx.ctrl.State(); !st.Dirty || st.Content != "new" {
		t.Fatalf("dirty state must survive a failed save: %+v", st)
	}

	fx.fs.mu.Lock()
	fx.fs.failWrites = false
	fx.fs.mu.Unlock()
	if saved, err := fx.ctrl.Save(ctx); err != nil || !saved {
		t.Fatalf("retry failed: saved=%v err=%v", saved, err)
	}
	if st := fx.ctrl.State(); st.Dirty {
		t.Fatalf("expected clean state after retry: %+v", st)
	}
}

func TestTempSnapshotExclusivity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.ctrl.NewFile(ctx); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("# draft one")
	settle()
	st := fx.ctrl.State()
	if st.TempSnapshotID == "" {
		t.Fatal("expected a snapshot after the quiet period")
	}
	if fx.snaps.liveCount() != 1 {
		t.Fatalf("expected exactly 1 live snapshot, got %d", fx.snaps.liveCount())
	}

	// More edits update the same snapshot id.
	fx.ctrl.SetContent("# draft two")
	settle()
	if got := fx.ctrl.State().TempSnapshotID; got != st.TempSnapshotID {
		t.Fatalf("snapshot id changed across updates: %q -> %q", st.TempSnapshotID, got)
	}
	if fx.snaps.liveCount() != 1 {
		t.Fatalf("expected exactly 1 live snapshot, got %d", fx.snaps.liveCount())
	}

	// Saving releases the snapshot; saved documents never hold one.
	fx.dialogs.paths = []string{"/saved.md"}
	if saved, err := fx.ctrl.Save(ctx); err != nil || !saved {
		t.Fatalf("save-as failed: saved=%v err=%v", saved, err)
	}
	if st := fx.ctrl.State(); st.TempSnapshotID != "" {
		t.Fatalf("saved document holds a snapshot id: %+v", st)
	}
	if fx.snaps.liveCount() != 0 {
		t.Fatalf("expected snapshot deleted after save, %d live", fx.snaps.liveCount())
	}

	// Edits to the saved document must not mint snapshots.
	fx.ctrl.SetContent("# draft three")
	settle()
	if fx.snaps.liveCount() != 0 {
		t.Fatalf("saved document produced a snapshot")
	}
}

func TestAutosaveDebounce(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "v0"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}

	// Edits inside the quiet period must not write.
	for i := 0; i < 5; i++ {
		fx.ctrl.SetContent(fmt.Sprintf("v%d", i+1))
		time.Sleep(testDelay / 4)
	}
	if n := fx.fs.writeCount(); n != 0 {
		t.Fatalf("wrote %d times during the busy period", n)
	}

	settle()
	if n := fx.fs.writeCount(); n != 1 {
		t.Fatalf("wrote %d times after quiet period, want 1", n)
	}
	if st := fx.ctrl.State(); st.Dirty {
		t.Fatalf("expected clean state after autosave: %+v", st)
	}

	// A later edit separated by a gap writes again.
	fx.ctrl.SetContent("v6")
	settle()
	if n := fx.fs.writeCount(); n != 2 {
		t.Fatalf("wrote %d times, want 2", n)
	}
}

func TestAutosaveBaselineMatchesWrittenContent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "v0"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{}, 1)
	block := make(chan struct{})
	fx.fs.mu.Lock()
	fx.fs.started = started
	fx.fs.blockWrite = block
	fx.fs.mu.Unlock()

	fx.ctrl.SetContent("v1")
	<-started // autosave write for v1 is now in flight

	// The user keeps typing while the write hangs.
	fx.ctrl.SetContent("v1 plus more")

	fx.fs.mu.Lock()
	fx.fs.started = nil
	fx.fs.blockWrite = nil
	fx.fs.mu.Unlock()
	close(block)

	// Wait for the in-flight write to land.
	deadline := time.Now().Add(time.Second)
	for fx.fs.writeCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if fx.fs.writeCount() == 0 {
		t.Fatal("first autosave never completed")
	}

	// The baseline advances only to what was actually written: the
	// controller may never read clean while the file on disk still
	// holds the stale value.
	st := fx.ctrl.State()
	if st.Content != "v1 plus more" {
		t.Fatalf("content = %q", st.Content)
	}
	fx.fs.mu.Lock()
	onDisk := fx.fs.contents["/a.md"]
	fx.fs.mu.Unlock()
	if !st.Dirty && onDisk != "v1 plus more" {
		t.Fatalf("state clean while disk holds %q", onDisk)
	}

	// The re-armed debounce eventually persists the newer edit too.
	settle()
	settle()
	fx.fs.mu.Lock()
	final := fx.fs.contents["/a.md"]
	fx.fs.mu.Unlock()
	if final != "v1 plus more" {
		t.Fatalf("final content = %q", final)
	}
	if st := fx.ctrl.State(); st.Dirty {
		t.Fatalf("expected clean state once caught up: %+v", st)
	}
}

func TestStartupRecoverySingleShot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.ctrl.StartupRecoveryCheck(ctx); err != nil {
		t.Fatal(err)
	}
	if err := fx.ctrl.StartupRecoveryCheck(ctx); err != nil {
		t.Fatal(err)
	}
	fx.snaps.mu.Lock()
	calls := fx.snaps.listCalls
	fx.snaps.mu.Unlock()
	if calls != 1 {
		t.Fatalf("snapshot listing invoked %d times, want 1", calls)
	}
}

func seedSnapshots() *fakeSnapshots {
	base := time.Now()
	return newFakeSnapshots(
		&store.Snapshot{ID: "old", Content: "oldest", CreatedAt: base.Add(-2 * time.Hour)},
		&store.Snapshot{ID: "mid", Content: "middle", CreatedAt: base.Add(-time.Hour)},
		&store.Snapshot{ID: "new", Content: "newest draft", CreatedAt: base},
	)
}

func TestRecoveryAcceptCleansBatch(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.Snapshots = seedSnapshots() })
	ctx := context.Background()

	fx.dialogs.recovery = []RecoveryChoice{RecoveryRecover}
	if err := fx.ctrl.StartupRecoveryCheck(ctx); err != nil {
		t.Fatal(err)
	}

	st := fx.ctrl.State()
	if !st.Open || !st.Untitled || st.Content != "newest draft" {
		t.Fatalf("recovered state: %+v", st)
	}
	if !st.Dirty {
		t.Fatal("recovered document must be dirty (unsaved)")
	}
	if n := fx.snaps.deleteCount(); n != 3 {
		t.Fatalf("expected 3 deletions (recovered + 2 others), got %d", n)
	}
}

func TestRecoveryRejectCleansBatch(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.Snapshots = seedSnapshots() })
	ctx := context.Background()

	fx.dialogs.recovery = []RecoveryChoice{RecoveryDiscard}
	if err := fx.ctrl.StartupRecoveryCheck(ctx); err != nil {
		t.Fatal(err)
	}
	if st := fx.ctrl.State(); st.Open {
		t.Fatalf("reject must not open a document: %+v", st)
	}
	if n := fx.snaps.deleteCount(); n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	if fx.snaps.liveCount() != 0 {
		t.Fatalf("expected empty store, %d live", fx.snaps.liveCount())
	}
}

func TestRecoveryPreviewKeepsRuneBoundary(t *testing.T) {
	// A multi-byte rune straddles the preview cut point.
	content := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 40)
	fx := newFixture(t, func(o *Options) {
		o.Snapshots = newFakeSnapshots(
			&store.Snapshot{ID: "s", Content: content, CreatedAt: time.Now()})
	})

	fx.dialogs.recovery = []RecoveryChoice{RecoveryDiscard}
	if err := fx.ctrl.StartupRecoveryCheck(context.Background()); err != nil {
		t.Fatal(err)
	}

	fx.dialogs.mu.Lock()
	previews := fx.dialogs.previews
	fx.dialogs.mu.Unlock()
	if len(previews) != 1 {
		t.Fatalf("dialog shown %d times, want 1", len(previews))
	}
	p := previews[0]
	if !utf8.ValidString(p) {
		t.Fatalf("preview is not valid UTF-8: %q", p)
	}
	if p != strings.Repeat("a", 199) {
		t.Fatalf("preview cut at %d bytes: %q", len(p), p)
	}
}

func TestDiscardDuringSnapshotWriteLeavesNoOrphan(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.ctrl.NewFile(ctx); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("# draft")
	settle()
	if fx.snaps.liveCount() != 1 {
		t.Fatalf("expected 1 live snapshot, got %d", fx.snaps.liveCount())
	}

	started := make(chan struct{}, 1)
	block := make(chan struct{})
	fx.snaps.mu.Lock()
	fx.snaps.started = started
	fx.snaps.blockSave = block
	fx.snaps.mu.Unlock()

	done := make(chan struct{})
	go func() {
		fx.ctrl.snapshotFlush()
		close(done)
	}()
	<-started // the snapshot update is now in flight

	fx.snaps.mu.Lock()
	fx.snaps.started = nil
	fx.snaps.blockSave = nil
	fx.snaps.mu.Unlock()

	// The user discards the draft while the write hangs.
	fx.dialogs.choices = []Choice{ChoiceDiscard}
	if proceed, err := fx.ctrl.NewFile(ctx); err != nil || !proceed {
		t.Fatalf("discard: proceed=%v err=%v", proceed, err)
	}
	if fx.snaps.liveCount() != 0 {
		t.Fatalf("discard left %d snapshots", fx.snaps.liveCount())
	}

	close(block)
	<-done

	// The completed write must not resurrect the released id.
	if fx.snaps.liveCount() != 0 {
		t.Fatalf("stale snapshot write left %d live", fx.snaps.liveCount())
	}
	if st := fx.ctrl.State(); st.TempSnapshotID != "" {
		t.Fatalf("fresh document adopted a stale snapshot id: %+v", st)
	}
}

func TestExplicitQuitBypassesCloseInterceptor(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "x"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("x edited")

	// The user confirms discard through the quit action.
	fx.dialogs.choices = []Choice{ChoiceDiscard}
	if proceed, err := fx.ctrl.Quit(ctx); err != nil || !proceed {
		t.Fatalf("quit: proceed=%v err=%v", proceed, err)
	}
	asked := fx.dialogs.asked

	// The host close request that follows must not prompt again.
	if proceed, err := fx.ctrl.HandleCloseRequest(ctx); err != nil || !proceed {
		t.Fatalf("close request: proceed=%v err=%v", proceed, err)
	}
	if fx.dialogs.asked != asked {
		t.Fatal("close interceptor double-prompted after explicit quit")
	}
}

func TestCloseInterceptorBlocksOnCancel(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "x"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}
	fx.ctrl.SetContent("x edited")

	fx.dialogs.choices = []Choice{ChoiceCancel}
	if proceed, _ := fx.ctrl.HandleCloseRequest(ctx); proceed {
		t.Fatal("cancel must keep the window open")
	}

	// The interceptor stays armed: a second attempt prompts again and
	// can proceed.
	fx.dialogs.choices = []Choice{ChoiceDiscard}
	if proceed, err := fx.ctrl.HandleCloseRequest(ctx); err != nil || !proceed {
		t.Fatalf("second close attempt: proceed=%v err=%v", proceed, err)
	}
}

func TestCleanDocumentSkipsPrompt(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.fs.contents["/a.md"] = "same"
	if _, err := fx.ctrl.OpenFile(ctx, "/a.md"); err != nil {
		t.Fatal(err)
	}
	if proceed, err := fx.ctrl.NewFile(ctx); err != nil || !proceed {
		t.Fatalf("clean close: proceed=%v err=%v", proceed, err)
	}
	if fx.dialogs.asked != 0 {
		t.Fatalf("prompted %d times for a clean document", fx.dialogs.asked)
	}
}
