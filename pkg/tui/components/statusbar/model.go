package statusbar

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/tui/events"
	"tableflip.dev/docura/pkg/tui/theme"
)

// toastDuration is how long a notification stays visible.
const toastDuration = 4 * time.Second

// Options configures the status bar.
type Options struct {
	ID    events.ComponentID
	Theme theme.Theme
}

// Model renders the bottom bar: document name, dirty marker, and
// transient toasts from the lifecycle layer.
type Model struct {
	id    events.ComponentID
	theme theme.Theme

	state document.State
	toast string
	kind  document.NotifyKind
	shown time.Time

	width int
}

// NewModel constructs a status bar.
func NewModel(opts Options) *Model {
	id := opts.ID
	if id == "" {
		id = events.ComponentID("statusbar")
	}
	return &Model{id: id, theme: opts.Theme}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the bar width.
func (m *Model) SetSize(width, _ int) { m.width = width }

// SetState installs a fresh lifecycle snapshot.
func (m *Model) SetState(state document.State) { m.state = state }

// Update consumes toast messages and their expiry ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.ToastMsg:
		m.toast = msg.Text
		m.kind = msg.Kind
		m.shown = msg.At
		at := msg.At
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return events.ToastExpireMsg{At: at}
		})
	case events.ToastExpireMsg:
		if !msg.At.Before(m.shown) {
			m.toast = ""
		}
	}
	return m, nil
}

// View renders the bar.
func (m *Model) View() string {
	name := m.state.Name
	if !m.state.Open {
		name = "no document"
	}
	left := m.theme.StatusBar.Name.Render(name)
	if m.state.Dirty {
		left += " " + m.theme.StatusBar.Dirty.Render("●")
	}

	right := ""
	if m.toast != "" {
		style := m.theme.StatusBar.Info
		switch m.kind {
		case document.NotifySuccess:
			style = m.theme.StatusBar.Success
		case document.NotifyError:
			style = m.theme.StatusBar.Error
		}
		right = style.Render(m.toast)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Base.Render(left + strings.Repeat(" ", gap) + right)
}
