package quickopendialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/docura/pkg/quickopen"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// QueryChangedMsg asks the app to run a search for the new query.
type QueryChangedMsg struct {
	Component events.ComponentID
	Query     string
}

// Describe implements the logging helper.
func (m QueryChangedMsg) Describe() string {
	return fmt.Sprintf(`query:%q`, m.Query)
}

// ClosedMsg reports the dialog dismissing without a selection.
type ClosedMsg struct {
	Component events.ComponentID
}

// Describe implements the logging helper.
func (m ClosedMsg) Describe() string {
	return fmt.Sprintf(`component:%q`, m.Component)
}

// Options configures the quick-open dialog.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// Model renders the quick-open search input and ranked results.
type Model struct {
	id    events.ComponentID
	theme theme.Theme

	input    textinput.Model
	results  []*quickopen.Item
	selected int

	width  int
	height int
}

// NewModel constructs a quick-open dialog.
func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Search files…"
	input.Prompt = "> "

	id := opts.ID
	if id == "" {
		id = events.ComponentID("quickopen")
	}

	return &Model{
		id:    id,
		theme: opts.Theme,
		input: input,
	}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the dialog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 6)
}

// Open resets the dialog for a fresh session and focuses the input.
func (m *Model) Open() tea.Cmd {
	m.input.SetValue("")
	m.results = nil
	m.selected = 0
	id := m.id
	return tea.Batch(m.input.Focus(), func() tea.Msg {
		return QueryChangedMsg{Component: id, Query: ""}
	})
}

// SetResults installs a ranked result set. Results for a stale query
// are ignored so a slow search cannot clobber fresher ones.
func (m *Model) SetResults(query string, results []*quickopen.Item) {
	if query != strings.TrimSpace(m.input.Value()) {
		return
	}
	m.results = results
	if m.selected >= len(results) {
		m.selected = 0
	}
}

// Selected returns the highlighted result, if any.
func (m *Model) Selected() (*quickopen.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return nil, false
	}
	return m.results[m.selected], true
}

// Update handles navigation, selection, and query edits.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.input.Blur()
			id := m.id
			return m, func() tea.Msg { return ClosedMsg{Component: id} }
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.results)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			if it, ok := m.Selected(); ok {
				m.input.Blur()
				return m, events.OpenFileCmd(m.id, it.Path, it.Name)
			}
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if v := m.input.Value(); v != prev {
		// Selection resets whenever the query changes.
		m.selected = 0
		id := m.id
		query := strings.TrimSpace(v)
		cmds = append(cmds, func() tea.Msg {
			return QueryChangedMsg{Component: id, Query: query}
		})
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// View renders the input and result rows inside the dialog frame.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.QuickOpen.Input.Render(m.input.View()))
	b.WriteString("\n")

	innerWidth := m.width - 6
	if innerWidth < 10 {
		innerWidth = 10
	}

	if len(m.results) == 0 {
		b.WriteString(m.theme.QuickOpen.Path.Render("no matches"))
	}
	for i, it := range m.results {
		name := m.theme.QuickOpen.Name.Render(it.Name)
		if i == m.selected {
			name = m.theme.QuickOpen.Selected.Render(it.Name)
		}
		line := name
		if badge := it.Match.String(); badge != "" {
			line += " " + m.theme.QuickOpen.Badge.Render("["+badge+"]")
		}
		line += " " + m.theme.QuickOpen.Path.Render(it.DisplayPath)
		b.WriteString(truncate.StringWithTail(line, uint(innerWidth), "…"))
		b.WriteString("\n")

		if snip, ok := it.Preview(); ok {
			text := fmt.Sprintf("  %d: %s", snip.Line, snip.Text)
			b.WriteString(m.theme.QuickOpen.Snippet.Render(truncate.StringWithTail(text, uint(innerWidth), "…")))
			b.WriteString("\n")
		}
	}

	return m.theme.QuickOpen.Frame.Width(m.width - 2).Render(strings.TrimRight(b.String(), "\n"))
}
