package recovery

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/timeutil"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// ResolvedMsg reports the user answering the crash-recovery dialog.
type ResolvedMsg struct {
	Component events.ComponentID
	Choice    document.RecoveryChoice
}

// Describe implements the logging helper.
func (m ResolvedMsg) Describe() string {
	return fmt.Sprintf(`choice:%d`, m.Choice)
}

// Options configures the dialog.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// Model renders the recover / discard dialog offered at startup when an
// unsaved draft survived a crash.
type Model struct {
	id    events.ComponentID
	theme theme.Theme

	preview   string
	createdAt time.Time
	selected  int
	width     int
}

// NewModel constructs the dialog.
func NewModel(opts Options) *Model {
	id := opts.ID
	if id == "" {
		id = events.ComponentID("recovery")
	}
	return &Model{id: id, theme: opts.Theme}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the dialog width.
func (m *Model) SetSize(width, _ int) { m.width = width }

// Open arms the dialog with the snapshot preview. Recover is
// preselected.
func (m *Model) Open(preview string, createdAt time.Time) {
	m.preview = preview
	m.createdAt = createdAt
	m.selected = 0
}

// Update handles selection movement and resolution keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "right", "tab", "shift+tab":
		m.selected = 1 - m.selected
	case "enter":
		if m.selected == 0 {
			return m, m.resolve(document.RecoveryRecover)
		}
		return m, m.resolve(document.RecoveryDiscard)
	case "esc", "d":
		return m, m.resolve(document.RecoveryDiscard)
	case "r":
		return m, m.resolve(document.RecoveryRecover)
	}
	return m, nil
}

func (m *Model) resolve(choice document.RecoveryChoice) tea.Cmd {
	id := m.id
	return func() tea.Msg {
		return ResolvedMsg{Component: id, Choice: choice}
	}
}

// View renders the dialog with the draft preview.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Dialog.Title.Render("Recover unsaved draft?"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Dialog.Body.Render(
		fmt.Sprintf("An unsaved draft from %s was found:", timeutil.Ago(m.createdAt))))
	b.WriteString("\n\n")
	b.WriteString(m.theme.QuickOpen.Snippet.Render(m.preview))
	b.WriteString("\n\n")

	labels := []string{"Recover", "Discard"}
	row := make([]string, 0, len(labels))
	for i, label := range labels {
		style := m.theme.Dialog.Button
		if i == m.selected {
			style = m.theme.Dialog.Selected
		}
		row = append(row, style.Render(label))
	}
	b.WriteString(strings.Join(row, "  "))

	return m.theme.Dialog.Frame.Render(b.String())
}
