package document

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"tableflip.dev/docura/pkg/debounce"
	"tableflip.dev/docura/pkg/files"
	"tableflip.dev/docura/pkg/store"
)

// Choice is the result of the unsaved-changes dialog.
type Choice int

const (
	ChoiceSave Choice = iota
	ChoiceDiscard
	ChoiceCancel
)

// RecoveryChoice is the result of the startup recovery dialog.
type RecoveryChoice int

const (
	RecoveryRecover RecoveryChoice = iota
	RecoveryDiscard
)

// NotifyKind classifies non-blocking notifications.
type NotifyKind int

const (
	NotifyInfo NotifyKind = iota
	NotifySuccess
	NotifyError
)

// Dialogs is the blocking user-interaction surface the controller
// depends on. Implementations suspend the calling goroutine until the
// user resolves the dialog.
type Dialogs interface {
	// ConfirmUnsaved presents save / discard / cancel.
	ConfirmUnsaved(ctx context.Context, name string) (Choice, error)
	// ConfirmRecovery presents recover / discard for a snapshot preview.
	ConfirmRecovery(ctx context.Context, preview string, createdAt time.Time) (RecoveryChoice, error)
	// PickSavePath prompts for a save destination. An empty path means
	// the user cancelled.
	PickSavePath(ctx context.Context, defaultName string) (string, error)
}

// Notifier delivers non-blocking toasts.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// SnapshotStore is the subset of store.Persistence the controller uses.
type SnapshotStore interface {
	SaveSnapshot(content string, id string) (string, error)
	ListSnapshots(ctx context.Context) []*store.Snapshot
	DeleteSnapshot(id string) error
}

const (
	// DebounceDelay is the quiet period before autosave and snapshot
	// writes fire.
	DebounceDelay = 2000 * time.Millisecond

	recoveryPreviewLen = 200
)

// Options configures a Controller. FS, Snapshots, Dialogs, and Notifier
// are required.
type Options struct {
	FS        files.FS
	Snapshots SnapshotStore
	Dialogs   Dialogs
	Notifier  Notifier
	AutoSave  bool
	// Delay overrides the debounce quiet period; zero means DebounceDelay.
	Delay time.Duration
}

// Controller owns the current document and serializes every state
// transition on it.
type Controller struct {
	fs       files.FS
	store    SnapshotStore
	dialogs  Dialogs
	notify   Notifier
	autoSave bool

	autosaveTimer *debounce.Debouncer
	snapshotTimer *debounce.Debouncer

	recoveryOnce sync.Once

	mu           sync.Mutex
	doc          Document
	open         bool
	writing      bool // one in-flight autosave write at a time
	confirming   bool // a blocking dialog is up; competing actions bail
	explicitQuit bool
}

// NewController wires a controller with its collaborators.
func NewController(opts Options) *Controller {
	delay := opts.Delay
	if delay <= 0 {
		delay = DebounceDelay
	}
	return &Controller{
		fs:            opts.FS,
		store:         opts.Snapshots,
		dialogs:       opts.Dialogs,
		notify:        opts.Notifier,
		autoSave:      opts.AutoSave,
		autosaveTimer: debounce.New(delay),
		snapshotTimer: debounce.New(delay),
	}
}

// State is a read-only snapshot of controller state for rendering.
type State struct {
	Open           bool
	Path           string
	Name           string
	Content        string
	Dirty          bool
	Untitled       bool
	TempSnapshotID string
}

// State returns the current document state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Open:           c.open,
		Path:           c.doc.Path,
		Name:           c.doc.Name(),
		Content:        c.doc.Content,
		Dirty:          c.doc.Dirty(),
		Untitled:       c.doc.Untitled(),
		TempSnapshotID: c.doc.TempSnapshotID,
	}
}

// SetContent applies an edit to the open document and arms the
// applicable debounce timer. Saved documents schedule autosave;
// untitled documents schedule a temp snapshot. The two timers are
// mutually exclusive because a document has a path or it does not.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.doc.Content = content
	saved := !c.doc.Untitled()
	dirty := c.doc.Dirty()
	c.mu.Unlock()

	if saved {
		if c.autoSave && dirty && content != "" {
			c.autosaveTimer.Trigger(c.autosaveFlush)
		}
		return
	}
	if content != "" {
		c.snapshotTimer.Trigger(c.snapshotFlush)
	}
}

// autosaveFlush performs one debounced autosave write. The baseline
// only ever advances to the content value actually written, so a slow
// write can never clobber a fresher edit's dirty flag.
func (c *Controller) autosaveFlush() {
	c.mu.Lock()
	if !c.open || c.doc.Untitled() || !c.doc.Dirty() || c.doc.Content == "" {
		c.mu.Unlock()
		return
	}
	if c.writing {
		// A prior write is still in flight; let it finish and re-arm.
		c.mu.Unlock()
		c.autosaveTimer.Trigger(c.autosaveFlush)
		return
	}
	c.writing = true
	path := c.doc.Path
	content := c.doc.Content
	c.mu.Unlock()

	err := c.fs.WriteFile(path, content)

	c.mu.Lock()
	c.writing = false
	if err == nil && c.open && c.doc.Path == path {
		c.doc.OriginalContent = content
	}
	stillDirty := c.open && !c.doc.Untitled() && c.doc.Dirty() && c.doc.Content != ""
	c.mu.Unlock()

	if err != nil {
		// Autosave failures stay out of the user's way; the next quiet
		// period retries.
		c.notify.Notify(NotifyError, fmt.Sprintf("Auto-save failed: %v", err))
		fmt.Fprintf(os.Stderr, "document: autosave %s: %v\n", path, err)
	}
	if stillDirty && c.autoSave {
		c.autosaveTimer.Trigger(c.autosaveFlush)
	}
}

// snapshotFlush creates or updates the crash-recovery snapshot for the
// untitled document. The first fire mints the session id; later fires
// reuse it.
func (c *Controller) snapshotFlush() {
	c.mu.Lock()
	if !c.open || !c.doc.Untitled() || c.doc.Content == "" {
		c.mu.Unlock()
		return
	}
	content := c.doc.Content
	id := c.doc.TempSnapshotID
	c.mu.Unlock()

	newID, err := c.store.SaveSnapshot(content, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "document: snapshot: %v\n", err)
		c.notify.Notify(NotifyError, "Could not write recovery snapshot")
		return
	}

	c.mu.Lock()
	if c.open && c.doc.Untitled() && c.doc.TempSnapshotID == id {
		c.doc.TempSnapshotID = newID
	} else {
		// The document was saved, closed, or had its snapshot released
		// while the write ran; the record is stale and must not outlive
		// the session.
		c.mu.Unlock()
		c.releaseSnapshot(newID)
		return
	}
	c.mu.Unlock()
}

// Save persists the document to its path, prompting for a destination
// when it has none. It reports whether a write happened: (false, nil)
// means the user cancelled the save-as prompt. On write failure the
// document state is left untouched so the user can retry.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return false, nil
	}
	path := c.doc.Path
	content := c.doc.Content
	name := c.doc.Name()
	c.mu.Unlock()

	if path == "" {
		picked, err := c.dialogs.PickSavePath(ctx, name)
		if err != nil {
			return false, fmt.Errorf("document: pick save path: %w", err)
		}
		if picked == "" {
			return false, nil
		}
		path = picked
	}

	if err := c.fs.WriteFile(path, content); err != nil {
		return false, fmt.Errorf("document: save %s: %w", path, err)
	}

	c.mu.Lock()
	wasUntitled := c.doc.Untitled()
	snapID := c.doc.TempSnapshotID
	c.doc.Path = path
	c.doc.OriginalContent = content
	c.doc.TempSnapshotID = ""
	c.mu.Unlock()

	if wasUntitled {
		c.snapshotTimer.Stop()
	}
	if snapID != "" {
		c.releaseSnapshot(snapID)
	}
	return true, nil
}

// RequestDestructiveAction is the shared unsaved-changes gate used by
// new-file, open, close, quit, and the window-close interceptor. It
// reports whether the destructive action may proceed. Cancelling, at
// either the three-way dialog or a nested save-as prompt, leaves all
// state exactly as it was.
func (c *Controller) RequestDestructiveAction(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.open || !c.doc.Dirty() || strings.TrimSpace(c.doc.Content) == "" {
		c.mu.Unlock()
		return true, nil
	}
	if c.confirming {
		// Another destructive action already has a dialog up.
		c.mu.Unlock()
		return false, nil
	}
	c.confirming = true
	name := c.doc.Name()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.confirming = false
		c.mu.Unlock()
	}()

	choice, err := c.dialogs.ConfirmUnsaved(ctx, name)
	if err != nil {
		return false, fmt.Errorf("document: confirm unsaved: %w", err)
	}

	switch choice {
	case ChoiceCancel:
		return false, nil
	case ChoiceSave:
		saved, err := c.Save(ctx)
		if err != nil {
			return false, err
		}
		if !saved {
			// Save-as prompt cancelled; the whole action is cancelled.
			return false, nil
		}
	case ChoiceDiscard:
		c.mu.Lock()
		snapID := c.doc.TempSnapshotID
		c.doc.TempSnapshotID = ""
		c.mu.Unlock()
		c.snapshotTimer.Stop()
		if snapID != "" {
			c.releaseSnapshot(snapID)
		}
	}
	return true, nil
}

// NewFile opens a fresh untitled document, gated on unsaved changes.
func (c *Controller) NewFile(ctx context.Context) (bool, error) {
	proceed, err := c.RequestDestructiveAction(ctx)
	if err != nil || !proceed {
		return false, err
	}
	c.resetTo(Document{}, true)
	return true, nil
}

// OpenFile loads path into the controller, gated on unsaved changes.
func (c *Controller) OpenFile(ctx context.Context, path string) (bool, error) {
	proceed, err := c.RequestDestructiveAction(ctx)
	if err != nil || !proceed {
		return false, err
	}
	content, err := c.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("document: open %s: %w", path, err)
	}
	c.resetTo(Document{Path: path, Content: content, OriginalContent: content}, true)
	return true, nil
}

// Close detaches the current document, gated on unsaved changes.
func (c *Controller) Close(ctx context.Context) (bool, error) {
	proceed, err := c.RequestDestructiveAction(ctx)
	if err != nil || !proceed {
		return false, err
	}
	c.resetTo(Document{}, false)
	return true, nil
}

// Quit runs the unsaved-changes gate and, when allowed, marks the quit
// as explicit so the close interceptor will not prompt a second time.
func (c *Controller) Quit(ctx context.Context) (bool, error) {
	proceed, err := c.RequestDestructiveAction(ctx)
	if err != nil || !proceed {
		return false, err
	}
	c.mu.Lock()
	c.explicitQuit = true
	c.mu.Unlock()
	c.autosaveTimer.Stop()
	c.snapshotTimer.Stop()
	return true, nil
}

// HandleCloseRequest intercepts a host-initiated window close. It
// reports whether the close may proceed. A cancelled confirmation
// blocks this close; the interceptor stays armed for the next attempt.
func (c *Controller) HandleCloseRequest(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.explicitQuit {
		c.mu.Unlock()
		return true, nil
	}
	c.mu.Unlock()
	return c.Quit(ctx)
}

// StartupRecoveryCheck offers the most recent crash-recovery snapshot,
// if any, exactly once per process. Accepting loads the snapshot into a
// fresh untitled document and restarts its snapshot lifecycle under a
// new id; either resolution deletes the whole stored batch best-effort.
func (c *Controller) StartupRecoveryCheck(ctx context.Context) error {
	var outerErr error
	c.recoveryOnce.Do(func() {
		snaps := c.store.ListSnapshots(ctx)
		if len(snaps) == 0 {
			return
		}

		candidate := snaps[0]
		preview := candidate.Content
		if len(preview) > recoveryPreviewLen {
			cut := recoveryPreviewLen
			for cut > 0 && !utf8.RuneStart(preview[cut]) {
				cut--
			}
			preview = preview[:cut]
		}

		choice, err := c.dialogs.ConfirmRecovery(ctx, preview, candidate.CreatedAt)
		if err != nil {
			outerErr = fmt.Errorf("document: recovery dialog: %w", err)
			return
		}

		if choice == RecoveryRecover {
			c.resetTo(Document{Content: candidate.Content}, true)
			// The recovered content is live again and will re-snapshot
			// under a fresh id, so the old record goes with the batch.
			for _, snap := range snaps {
				c.releaseSnapshot(snap.ID)
			}
			c.snapshotTimer.Trigger(c.snapshotFlush)
			c.notify.Notify(NotifySuccess, "Recovered unsaved document")
			return
		}

		for _, snap := range snaps {
			c.releaseSnapshot(snap.ID)
		}
	})
	return outerErr
}

// resetTo swaps in a new document, stopping both debounce timers.
func (c *Controller) resetTo(doc Document, open bool) {
	c.autosaveTimer.Stop()
	c.snapshotTimer.Stop()
	c.mu.Lock()
	c.doc = doc
	c.open = open
	c.mu.Unlock()
}

// releaseSnapshot deletes a snapshot best-effort. Failures are logged
// and toasted but never block the action in progress.
func (c *Controller) releaseSnapshot(id string) {
	if err := c.store.DeleteSnapshot(id); err != nil {
		fmt.Fprintf(os.Stderr, "document: delete snapshot %s: %v\n", id, err)
		c.notify.Notify(NotifyInfo, "Could not remove recovery snapshot")
	}
}
