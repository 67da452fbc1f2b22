// Package app hosts the Bubble Tea program for the docura editor.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/files"
	"tableflip.dev/docura/pkg/quickopen"
	"tableflip.dev/docura/pkg/store"
	"tableflip.dev/docura/pkg/tui/components/confirm"
	"tableflip.dev/docura/pkg/tui/components/editorpane"
	"tableflip.dev/docura/pkg/tui/components/filetree"
	"tableflip.dev/docura/pkg/tui/components/quickopendialog"
	"tableflip.dev/docura/pkg/tui/components/recovery"
	"tableflip.dev/docura/pkg/tui/components/savepath"
	"tableflip.dev/docura/pkg/tui/components/statusbar"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

type mode int

const (
	modeEditor mode = iota
	modeTree
	modeQuickOpen
	modeConfirm
	modeRecovery
	modeSavePath
)

const treeWidth = 32

// Options configures the editor program.
type Options struct {
	Folder      string
	Persistence store.Persistence
	Config      store.Config
}

// Model is the root UI state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	folder      string
	persistence store.Persistence
	ctrl        *document.Controller
	searcher    *quickopen.Searcher
	index       []*quickopen.Item
	fs          files.FS

	mode       mode
	resumeMode mode

	editor    *editorpane.Model
	tree      *filetree.Model
	quick     *quickopendialog.Model
	confirm   *confirm.Model
	recover   *recovery.Model
	savePath  *savepath.Model
	status    *statusbar.Model
	themeName string
	theme     theme.Theme

	pendingConfirm  func(document.Choice)
	pendingRecovery func(document.RecoveryChoice)
	pendingSavePath func(string)

	watchCh <-chan files.Event

	width  int
	height int
}

// New assembles the root model and the lifecycle controller behind it.
// The returned dialogs value must be connected to the running program
// with SetSend before any lifecycle action fires.
func New(opts Options) (*Model, *Dialogs) {
	ctx, cancel := context.WithCancel(context.Background())

	th := theme.Load(opts.Config.Theme())
	fs := files.OSFS{}
	dialogs := &Dialogs{}
	notifier := &teaNotifier{dialogs: dialogs}

	ctrl := document.NewController(document.Options{
		FS:        fs,
		Snapshots: opts.Persistence,
		Dialogs:   dialogs,
		Notifier:  notifier,
		AutoSave:  opts.Config.AutoSave(),
	})

	m := &Model{
		ctx:         ctx,
		cancel:      cancel,
		folder:      opts.Folder,
		persistence: opts.Persistence,
		ctrl:        ctrl,
		searcher:    &quickopen.Searcher{Reader: fsReader{fs: fs}},
		fs:          fs,
		editor:      editorpane.NewModel(editorpane.Options{Theme: th}),
		tree:        filetree.NewModel(filetree.Options{Theme: th}),
		quick:       quickopendialog.NewModel(quickopendialog.Options{Theme: th}),
		confirm:     confirm.NewModel(confirm.Options{Theme: th}),
		recover:     recovery.NewModel(recovery.Options{Theme: th}),
		savePath:    savepath.NewModel(savepath.Options{Theme: th}),
		status:      statusbar.NewModel(statusbar.Options{Theme: th}),
		theme:       th,
	}
	return m, dialogs
}

// Run starts the program with the alternate screen and blocks until it
// exits.
func Run(opts Options) error {
	m, dialogs := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	dialogs.SetSend(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// fsReader adapts files.FS to the quickopen content reader.
type fsReader struct {
	fs files.FS
}

func (r fsReader) ReadFile(path string) (string, error) {
	return r.fs.ReadFile(path)
}

// Init loads the tree, starts the watcher, and runs the one-shot crash
// recovery check.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.reloadTreeCmd(),
		m.startWatchCmd(),
		m.recoveryCheckCmd(),
		m.editor.Focus(),
	}
	return tea.Batch(cmds...)
}

func (m *Model) reloadTreeCmd() tea.Cmd {
	folder := m.folder
	return func() tea.Msg {
		tree, err := files.ListFolder(folder)
		if err != nil {
			return events.ToastMsg{Kind: document.NotifyError, Text: "Could not read folder", At: time.Now()}
		}
		return treeLoadedMsg{tree: tree}
	}
}

func (m *Model) startWatchCmd() tea.Cmd {
	return func() tea.Msg {
		ch, err := files.Watch(m.ctx, m.folder)
		if err != nil {
			fmt.Fprintf(os.Stderr, "app: watch: %v\n", err)
			return nil
		}
		return watchStartedMsg{ch: ch}
	}
}

func (m *Model) waitWatchCmd() tea.Cmd {
	ch := m.watchCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return events.TreeReloadMsg{Component: "watcher"}
	}
}

func (m *Model) recoveryCheckCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := m.ctrl.StartupRecoveryCheck(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "app: recovery: %v\n", err)
		}
		return events.DocumentStateMsg{State: m.ctrl.State()}
	}
}

type treeLoadedMsg struct {
	tree []files.Item
}

type watchStartedMsg struct {
	ch <-chan files.Event
}

// lifecycleCmd runs a gated controller action off the update loop and
// reports back when it resolves.
func (m *Model) lifecycleCmd(action string, run func(context.Context) (bool, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		proceeded, err := run(ctx)
		return events.ActionDoneMsg{Action: action, Proceeded: proceeded, Err: err}
	}
}

func (m *Model) searchCmd(query string) tea.Cmd {
	ctx := m.ctx
	index := m.index
	s := m.searcher
	return func() tea.Msg {
		return events.QuickOpenResultsMsg{
			Component: "quickopen",
			Query:     query,
			Results:   s.Search(ctx, index, query),
		}
	}
}

func (m *Model) rebuildIndex() {
	var recent []store.RecentItem
	if m.persistence != nil {
		recent = m.persistence.RecentItems()
	}
	m.index = quickopen.BuildIndex(m.tree.Tree(), recent)
}

// Update is the root message router.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case treeLoadedMsg:
		m.tree.SetTree(msg.tree)
		m.rebuildIndex()
		return m, nil

	case watchStartedMsg:
		m.watchCh = msg.ch
		return m, m.waitWatchCmd()

	case events.TreeReloadMsg:
		return m, tea.Batch(m.reloadTreeCmd(), m.waitWatchCmd())

	case events.ConfirmRequestMsg:
		m.pendingConfirm = msg.Resolve
		m.confirm.Open(msg.DocumentName)
		m.resumeMode = m.mode
		m.mode = modeConfirm
		return m, nil

	case confirm.ResolvedMsg:
		m.mode = m.resumeMode
		if m.pendingConfirm != nil {
			resolve := m.pendingConfirm
			m.pendingConfirm = nil
			resolve(msg.Choice)
		}
		return m, nil

	case events.RecoveryRequestMsg:
		m.pendingRecovery = msg.Resolve
		m.recover.Open(msg.Preview, msg.CreatedAt)
		m.resumeMode = m.mode
		m.mode = modeRecovery
		return m, nil

	case recovery.ResolvedMsg:
		m.mode = m.resumeMode
		if m.pendingRecovery != nil {
			resolve := m.pendingRecovery
			m.pendingRecovery = nil
			resolve(msg.Choice)
		}
		return m, nil

	case events.SavePathRequestMsg:
		m.pendingSavePath = msg.Resolve
		m.resumeMode = m.mode
		m.mode = modeSavePath
		return m, m.savePath.Open(m.defaultSavePath(msg.DefaultName))

	case savepath.ResolvedMsg:
		m.mode = m.resumeMode
		if m.pendingSavePath != nil {
			resolve := m.pendingSavePath
			m.pendingSavePath = nil
			resolve(msg.Path)
		}
		return m, nil

	case events.ActionDoneMsg:
		return m, m.finishAction(msg)

	case events.DocumentStateMsg:
		m.status.SetState(msg.State)
		if msg.State.Open {
			m.editor.SetContent(msg.State.Content)
		}
		return m, nil

	case events.ToastMsg:
		model, cmd := m.status.Update(msg)
		m.status = model.(*statusbar.Model)
		return m, cmd

	case events.ToastExpireMsg:
		model, cmd := m.status.Update(msg)
		m.status = model.(*statusbar.Model)
		return m, cmd

	case events.OpenFileMsg:
		if m.mode == modeQuickOpen {
			m.mode = modeEditor
		}
		path := msg.Path
		return m, m.lifecycleCmd("open", func(ctx context.Context) (bool, error) {
			proceed, err := m.ctrl.OpenFile(ctx, path)
			if proceed && err == nil && m.persistence != nil {
				if rerr := m.persistence.AddRecent(path, "file"); rerr != nil {
					fmt.Fprintf(os.Stderr, "app: recent: %v\n", rerr)
				}
			}
			return proceed, err
		})

	case editorpane.ContentChangedMsg:
		m.ctrl.SetContent(msg.Content)
		m.status.SetState(m.ctrl.State())
		return m, nil

	case quickopendialog.QueryChangedMsg:
		return m, m.searchCmd(msg.Query)

	case events.QuickOpenResultsMsg:
		m.quick.SetResults(msg.Query, msg.Results)
		return m, nil

	case quickopendialog.ClosedMsg:
		m.mode = modeEditor
		return m, nil

	case events.QuitMsg:
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	// Route everything else to the active component.
	switch m.mode {
	case modeEditor:
		model, cmd := m.editor.Update(msg)
		m.editor = model.(*editorpane.Model)
		cmds = append(cmds, cmd)
	case modeTree:
		model, cmd := m.tree.Update(msg)
		m.tree = model.(*filetree.Model)
		cmds = append(cmds, cmd)
	case modeQuickOpen:
		model, cmd := m.quick.Update(msg)
		m.quick = model.(*quickopendialog.Model)
		cmds = append(cmds, cmd)
	case modeConfirm:
		model, cmd := m.confirm.Update(msg)
		m.confirm = model.(*confirm.Model)
		cmds = append(cmds, cmd)
	case modeRecovery:
		model, cmd := m.recover.Update(msg)
		m.recover = model.(*recovery.Model)
		cmds = append(cmds, cmd)
	case modeSavePath:
		model, cmd := m.savePath.Update(msg)
		m.savePath = model.(*savepath.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey intercepts global chords before component routing.
func (m *Model) handleKey(key tea.KeyMsg) (tea.Cmd, bool) {
	// Modal dialogs own the keyboard outright.
	if m.mode == modeConfirm || m.mode == modeRecovery || m.mode == modeSavePath {
		return nil, false
	}

	switch key.String() {
	case "ctrl+c":
		// Window close path: prompts unless quit was already granted.
		return m.lifecycleCmd("quit", m.ctrl.HandleCloseRequest), true
	case "ctrl+q":
		return m.lifecycleCmd("quit", m.ctrl.Quit), true
	case "ctrl+n":
		return m.lifecycleCmd("new", m.ctrl.NewFile), true
	case "ctrl+s":
		return m.lifecycleCmd("save", func(ctx context.Context) (bool, error) {
			return m.ctrl.Save(ctx)
		}), true
	case "ctrl+w":
		return m.lifecycleCmd("close", m.ctrl.Close), true
	case "ctrl+p":
		if m.mode == modeQuickOpen {
			return nil, false
		}
		m.resumeMode = m.mode
		m.mode = modeQuickOpen
		return m.quick.Open(), true
	case "tab":
		if m.mode == modeEditor || m.mode == modeTree {
			if m.mode == modeEditor {
				m.mode = modeTree
				m.editor.Blur()
				m.tree.Focus()
				return nil, true
			}
			m.mode = modeEditor
			m.tree.Blur()
			return m.editor.Focus(), true
		}
	}
	return nil, false
}

// finishAction folds a completed lifecycle action back into the UI.
func (m *Model) finishAction(msg events.ActionDoneMsg) tea.Cmd {
	var cmds []tea.Cmd

	if msg.Err != nil {
		fmt.Fprintf(os.Stderr, "app: %s: %v\n", msg.Action, msg.Err)
		cmds = append(cmds, events.ToastCmd(document.NotifyError, "Action failed: "+msg.Action))
	}

	state := m.ctrl.State()
	m.status.SetState(state)

	if msg.Proceeded {
		switch msg.Action {
		case "quit":
			cmds = append(cmds, func() tea.Msg { return events.QuitMsg{} })
		case "open", "new", "close":
			m.editor.SetContent(state.Content)
			if m.mode == modeTree {
				m.mode = modeEditor
				m.tree.Blur()
				cmds = append(cmds, m.editor.Focus())
			}
		case "save":
			cmds = append(cmds, events.ToastCmd(document.NotifySuccess, "Saved "+state.Name))
		}
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) defaultSavePath(name string) string {
	if m.folder == "" {
		return name
	}
	return filepath.Join(m.folder, name)
}

func (m *Model) layout() {
	m.status.SetSize(m.width, 1)
	m.tree.SetSize(treeWidth, m.height-1)
	m.editor.SetSize(m.width-treeWidth, m.height-1)
	m.quick.SetSize(m.width*2/3, m.height-4)
	m.confirm.SetSize(m.width, m.height)
	m.recover.SetSize(m.width, m.height)
	m.savePath.SetSize(m.width*2/3, m.height)
}

// View composes the sidebar, editor, status bar, and any active dialog.
func (m *Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), m.editor.View())
	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.status.View())

	var overlay string
	switch m.mode {
	case modeQuickOpen:
		overlay = m.quick.View()
	case modeConfirm:
		overlay = m.confirm.View()
	case modeRecovery:
		overlay = m.recover.View()
	case modeSavePath:
		overlay = m.savePath.View()
	}
	if overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return screen
}
