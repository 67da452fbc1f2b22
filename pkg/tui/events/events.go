// Package events defines the cross-component messages the editor UI
// passes through the Bubble Tea update loop.
package events

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/quickopen"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// OpenFileMsg asks the app to open the file at Path in the editor.
type OpenFileMsg struct {
	Component ComponentID
	Path      string
	Name      string
}

// Describe renders the open request in a human-friendly format for logs.
func (m OpenFileMsg) Describe() string {
	return fmt.Sprintf(`component:%q path:%q`, m.Component, m.Path)
}

// OpenFileCmd wraps OpenFileMsg in a tea.Cmd.
func OpenFileCmd(component ComponentID, path, name string) tea.Cmd {
	return func() tea.Msg {
		return OpenFileMsg{Component: component, Path: path, Name: name}
	}
}

// DocumentStateMsg announces a refreshed lifecycle snapshot after an
// action completed, so the status bar and title can re-render.
type DocumentStateMsg struct {
	State document.State
}

// Describe implements the logging helper.
func (m DocumentStateMsg) Describe() string {
	return fmt.Sprintf(`name:%q dirty:%v`, m.State.Name, m.State.Dirty)
}

// DocumentStateCmd wraps DocumentStateMsg in a tea.Cmd.
func DocumentStateCmd(state document.State) tea.Cmd {
	return func() tea.Msg {
		return DocumentStateMsg{State: state}
	}
}

// ToastMsg carries a transient notification for the status bar.
type ToastMsg struct {
	Kind document.NotifyKind
	Text string
	At   time.Time
}

// Describe implements the logging helper.
func (m ToastMsg) Describe() string {
	return fmt.Sprintf(`kind:%d text:%q`, m.Kind, m.Text)
}

// ToastCmd wraps ToastMsg in a tea.Cmd.
func ToastCmd(kind document.NotifyKind, text string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Kind: kind, Text: text, At: time.Now()}
	}
}

// ToastExpireMsg clears a toast shown at or before At.
type ToastExpireMsg struct {
	At time.Time
}

// QuickOpenResultsMsg delivers ranked search results to the dialog.
type QuickOpenResultsMsg struct {
	Component ComponentID
	Query     string
	Results   []*quickopen.Item
}

// Describe implements the logging helper.
func (m QuickOpenResultsMsg) Describe() string {
	return fmt.Sprintf(`query:%q results:%d`, m.Query, len(m.Results))
}

// TreeReloadMsg asks the app to re-scan the workspace folder, e.g.
// after the filesystem watcher reports a change.
type TreeReloadMsg struct {
	Component ComponentID
}

// Describe implements the logging helper.
func (m TreeReloadMsg) Describe() string {
	return fmt.Sprintf(`component:%q`, m.Component)
}

// TreeReloadCmd wraps TreeReloadMsg in a tea.Cmd.
func TreeReloadCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return TreeReloadMsg{Component: component}
	}
}

// ConfirmRequestMsg asks the root model to present the three-way
// unsaved-changes dialog. The resolver is called exactly once with the
// user's choice.
type ConfirmRequestMsg struct {
	DocumentName string
	Resolve      func(document.Choice)
}

// Describe implements the logging helper.
func (m ConfirmRequestMsg) Describe() string {
	return fmt.Sprintf(`name:%q`, m.DocumentName)
}

// RecoveryRequestMsg asks the root model to present the crash-recovery
// dialog for a temp snapshot.
type RecoveryRequestMsg struct {
	Preview   string
	CreatedAt time.Time
	Resolve   func(document.RecoveryChoice)
}

// Describe implements the logging helper.
func (m RecoveryRequestMsg) Describe() string {
	return fmt.Sprintf(`created:%q`, m.CreatedAt.Format(time.RFC3339))
}

// SavePathRequestMsg asks the root model to collect a destination path
// for an untitled document. Resolve receives "" when cancelled.
type SavePathRequestMsg struct {
	DefaultName string
	Resolve     func(string)
}

// Describe implements the logging helper.
func (m SavePathRequestMsg) Describe() string {
	return fmt.Sprintf(`default:%q`, m.DefaultName)
}

// ActionDoneMsg reports a lifecycle action finishing, with whether it
// went through or was cancelled at a prompt.
type ActionDoneMsg struct {
	Action    string
	Proceeded bool
	Err       error
}

// Describe implements the logging helper.
func (m ActionDoneMsg) Describe() string {
	return fmt.Sprintf(`action:%q proceeded:%v err:%v`, m.Action, m.Proceeded, m.Err)
}

// QuitMsg tells the program loop to exit after the lifecycle gate
// allowed it.
type QuitMsg struct{}
