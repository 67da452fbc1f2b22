package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/docura/pkg/document"
	"tableflip.dev/docura/pkg/tui/events"
)

// Dialogs bridges the controller's blocking dialog surface onto the
// Bubble Tea update loop. Each prompt sends a request message carrying
// a resolver and parks the calling goroutine until Update invokes it.
type Dialogs struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// SetSend connects the dialogs to a running program.
func (d *Dialogs) SetSend(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

func (d *Dialogs) dispatch(msg tea.Msg) bool {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// ConfirmUnsaved presents save / discard / cancel and blocks for the
// answer.
func (d *Dialogs) ConfirmUnsaved(ctx context.Context, name string) (document.Choice, error) {
	ch := make(chan document.Choice, 1)
	ok := d.dispatch(events.ConfirmRequestMsg{
		DocumentName: name,
		Resolve:      func(c document.Choice) { ch <- c },
	})
	if !ok {
		return document.ChoiceCancel, nil
	}
	select {
	case c := <-ch:
		return c, nil
	case <-ctx.Done():
		return document.ChoiceCancel, ctx.Err()
	}
}

// ConfirmRecovery presents recover / discard for a snapshot preview and
// blocks for the answer.
func (d *Dialogs) ConfirmRecovery(ctx context.Context, preview string, createdAt time.Time) (document.RecoveryChoice, error) {
	ch := make(chan document.RecoveryChoice, 1)
	ok := d.dispatch(events.RecoveryRequestMsg{
		Preview:   preview,
		CreatedAt: createdAt,
		Resolve:   func(c document.RecoveryChoice) { ch <- c },
	})
	if !ok {
		return document.RecoveryDiscard, nil
	}
	select {
	case c := <-ch:
		return c, nil
	case <-ctx.Done():
		return document.RecoveryDiscard, ctx.Err()
	}
}

// PickSavePath collects a destination for an untitled document and
// blocks for the answer. An empty path means the user cancelled.
func (d *Dialogs) PickSavePath(ctx context.Context, defaultName string) (string, error) {
	ch := make(chan string, 1)
	ok := d.dispatch(events.SavePathRequestMsg{
		DefaultName: defaultName,
		Resolve:     func(p string) { ch <- p },
	})
	if !ok {
		return "", nil
	}
	select {
	case p := <-ch:
		return p, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// teaNotifier surfaces controller notifications as status bar toasts.
type teaNotifier struct {
	dialogs *Dialogs
}

func (n *teaNotifier) Notify(kind document.NotifyKind, message string) {
	n.dialogs.dispatch(events.ToastMsg{Kind: kind, Text: message, At: time.Now()})
}
