package confirm

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// ResolvedMsg reports the user answering the unsaved-changes dialog.
type ResolvedMsg struct {
	Component events.ComponentID
	Choice    document.Choice
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

var buttons = []struct {
	label  string
	choice document.Choice
}{
	{"Save", document.ChoiceSave},
	{"Discard", document.ChoiceDiscard},
	{"Cancel", document.ChoiceCancel},
}

// Model renders the save / discard / cancel dialog every destructive
// action shares.
type Model struct {
	id    events.ComponentID
	theme theme.Theme

	docName  string
	selected int
	width    int
}

// NewModel constructs the dialog.
func NewModel(opts Options) *Model {
	id := opts.ID
	if id == "" {
		id = events.ComponentID("confirm")
	}
	return &Model{id: id, theme: opts.Theme}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the dialog width.
func (m *Model) SetSize(width, _ int) { m.width = width }

// Open arms the dialog for a document. Save is preselected.
func (m *Model) Open(docName string) {
	m.docName = docName
	m.selected = 0
}

// Update handles selection movement and resolution keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "shift+tab":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "tab":
		if m.selected < len(buttons)-1 {
			m.selected++
		}
	case "enter":
		return m, m.resolve(buttons[m.selected].choice)
	case "esc":
		// Dismissing the dialog is a cancel, never a discard.
		return m, m.resolve(document.ChoiceCancel)
	case "s":
		return m, m.resolve(document.ChoiceSave)
	case "d":
		return m, m.resolve(document.ChoiceDiscard)
	}
	return m, nil
}

func (m *Model) resolve(choice document.Choice) tea.Cmd {
	id := m.id
	return func() tea.Msg {
		return ResolvedMsg{Component: id, Choice: choice}
	}
}

// View renders the dialog.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Dialog.Title.Render("Unsaved changes"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Dialog.Body.Render(fmt.Sprintf("%q has unsaved changes.", m.docName)))
	b.WriteString("\n\n")

	row := make([]string, 0, len(buttons))
	for i, btn := range buttons {
		style := m.theme.Dialog.Button
		if i == m.selected {
			style = m.theme.Dialog.Selected
		}
		row = append(row, style.Render(btn.label))
	}
	b.WriteString(strings.Join(row, "  "))

	return m.theme.Dialog.Frame.Render(b.String())
}
