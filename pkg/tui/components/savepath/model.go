package savepath

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// ResolvedMsg reports the chosen destination path, or "" on cancel.
type ResolvedMsg struct {
	Component events.ComponentID
	Path      string
}

// Describe implements the logging helper.
func (m ResolvedMsg) Describe() string {
	return fmt.Sprintf(`path:%q`, m.Path)
}

// Options configures the prompt.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// Model collects a save destination for an untitled document.
type Model struct {
	id    events.ComponentID
	theme theme.Theme
	input textinput.Model
	width int
}

// NewModel constructs the prompt.
func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Prompt = "Save as: "

	id := opts.ID
	if id == "" {
		id = events.ComponentID("savepath")
	}
	return &Model{id: id, theme: opts.Theme, input: input}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the prompt width.
func (m *Model) SetSize(width, _ int) {
	m.width = width
	m.input.SetWidth(width - 14)
}

// Open seeds the prompt with a default file name and focuses it.
func (m *Model) Open(defaultName string) tea.Cmd {
	m.input.SetValue(defaultName)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Update handles edits and resolution keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.input.Blur()
			return m, m.resolve(path)
		case "esc":
			m.input.Blur()
			return m, m.resolve("")
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resolve(path string) tea.Cmd {
	id := m.id
	return func() tea.Msg {
		return ResolvedMsg{Component: id, Path: path}
	}
}

// View renders the prompt.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Dialog.Title.Render("Save document"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	return m.theme.Dialog.Frame.Render(b.String())
}
