package editorpane

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/markdown"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// ContentChangedMsg fires whenever the buffer text diverges from the
// last observed value, so the lifecycle layer can arm its timers.
type ContentChangedMsg struct {
	Component events.ComponentID
	Content   string
}

// Describe implements the logging helper.
func (m ContentChangedMsg) Describe() string {
	return fmt.Sprintf(`component:%q len:%d`, m.Component, len(m.Content))
}

// Options configures the editor pane.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// Model wraps the markdown editing textarea.
type Model struct {
	id      events.ComponentID
	theme   theme.Theme
	area    textarea.Model
	focused bool
	last    string

	width  int
	height int
}

// NewModel constructs an editor pane.
func NewModel(opts Options) *Model {
	area := textarea.New()
	area.Placeholder = "Start writing…"
	area.CharLimit = 0
	area.ShowLineNumbers = false

	id := opts.ID
	if id == "" {
		id = events.ComponentID("editor")
	}

	return &Model{
		id:    id,
		theme: opts.Theme,
		area:  area,
	}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the pane dimensions, inset by the frame border.
func (m *Model) SetSize(width, height int) {
	if width < 4 {
		width = 4
	}
	if height < 3 {
		height = 3
	}
	m.width = width
	m.height = height
	m.area.SetWidth(width - 4)
	m.area.SetHeight(height - 2)
}

// SetContent replaces the buffer, e.g. after opening a file. The change
// is not reported back as an edit.
func (m *Model) SetContent(content string) {
	m.area.SetValue(content)
	m.last = content
}

// Value returns the current buffer contents.
func (m *Model) Value() string { return m.area.Value() }

// Focus gives the pane keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.area.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.area.Blur()
}

// Focused reports whether the pane has keyboard focus.
func (m *Model) Focused() bool { return m.focused }

// Update routes messages to the textarea and reports buffer edits.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	var cmds []tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+x" {
		m.toggleCheckbox()
	} else {
		var cmd tea.Cmd
		m.area, cmd = m.area.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if v := m.area.Value(); v != m.last {
		m.last = v
		id := m.id
		cmds = append(cmds, func() tea.Msg {
			return ContentChangedMsg{Component: id, Content: v}
		})
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// toggleCheckbox flips the task checkbox on the cursor line, keeping
// the cursor on that row.
func (m *Model) toggleCheckbox() {
	row := m.area.Line()
	toggled, ok := markdown.ToggleCheckbox(m.area.Value(), row+1)
	if !ok {
		return
	}
	m.area.SetValue(toggled)
	for m.area.Line() > row {
		m.area.CursorUp()
	}
	m.area.CursorStart()
}

// View renders the framed editing surface.
func (m *Model) View() string {
	frame := m.theme.Editor.Frame
	if m.focused {
		frame = m.theme.Editor.FrameFocus
	}
	return frame.Width(m.width - 2).Height(m.height - 2).Render(m.area.View())
}
