package filetree

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/files"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// Options configures the file tree sidebar.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// row is a flattened, visible tree entry.
type row struct {
	item     files.Item
	depth    int
	expanded bool
}

// Model renders the workspace folder as a collapsible tree.
type Model struct {
	id    events.ComponentID
	theme theme.Theme

	tree     []files.Item
	expanded map[string]bool
	rows     []row
	cursor   int
	offset   int
	focused  bool

	width  int
	height int
}

// NewModel constructs a file tree.
func NewModel(opts Options) *Model {
	id := opts.ID
	if id == "" {
		id = events.ComponentID("filetree")
	}
	return &Model{
		id:       id,
		theme:    opts.Theme,
		expanded: make(map[string]bool),
	}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the sidebar dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampCursor()
}

// SetTree replaces the tree contents, keeping expansion state for
// folders that still exist.
func (m *Model) SetTree(tree []files.Item) {
	m.tree = tree
	m.rebuild()
	m.clampCursor()
}

// Tree returns the current tree contents.
func (m *Model) Tree() []files.Item { return m.tree }

// Focus gives the sidebar keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur releases keyboard focus.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the sidebar has keyboard focus.
func (m *Model) Focused() bool { return m.focused }

func (m *Model) rebuild() {
	m.rows = m.rows[:0]
	var walk func(nodes []files.Item, depth int)
	walk = func(nodes []files.Item, depth int) {
		for _, node := range nodes {
			open := m.expanded[node.Path]
			m.rows = append(m.rows, row{item: node, depth: depth, expanded: open})
			if node.Type == files.TypeFolder && open {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(m.tree, 0)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	visible := m.height - 2
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// Update handles navigation and selection keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.rows) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter", "right", "l":
		r := m.rows[m.cursor]
		if r.item.Type == files.TypeFolder {
			m.expanded[r.item.Path] = !m.expanded[r.item.Path]
			m.rebuild()
			m.clampCursor()
			return m, nil
		}
		if key.String() == "enter" {
			return m, events.OpenFileCmd(m.id, r.item.Path, r.item.Name)
		}
	case "left", "h":
		r := m.rows[m.cursor]
		if r.item.Type == files.TypeFolder && m.expanded[r.item.Path] {
			m.expanded[r.item.Path] = false
			m.rebuild()
			m.clampCursor()
		}
	}
	return m, nil
}

// View renders the visible window of tree rows.
func (m *Model) View() string {
	visible := m.height - 2
	if visible < 1 {
		visible = 1
	}
	end := m.offset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		label := r.item.Name
		if r.item.Type == files.TypeFolder {
			marker := "▸"
			if r.expanded {
				marker = "▾"
			}
			label = fmt.Sprintf("%s %s", marker, label)
		}
		line := strings.Repeat("  ", r.depth) + label

		style := m.theme.Tree.File
		if r.item.Type == files.TypeFolder {
			style = m.theme.Tree.Folder
		}
		if i == m.cursor && m.focused {
			style = m.theme.Tree.Selected
		}
		b.WriteString(style.Render(line))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return m.theme.Tree.Frame.Width(m.width - 2).Height(m.height - 2).Render(b.String())
}
