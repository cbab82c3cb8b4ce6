package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	toastTitle = lipgloss.NewStyle().Bold(true)
	toastColor = map[Type]lipgloss.Color{
		TypeSuccess: lipgloss.Color("42"),
		TypeInfo:    lipgloss.Color("39"),
		TypeWarning: lipgloss.Color("214"),
		TypeError:   lipgloss.Color("196"),
	}
	toastIcon = map[Type]string{
		TypeSuccess: "✓",
		TypeInfo:    "i",
		TypeWarning: "!",
		TypeError:   "✗",
	}
)

// TerminalNotifier renders toasts as single styled lines.
type TerminalNotifier struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTerminalNotifier creates a notifier writing to w.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

// Notify writes n to the terminal.
func (t *TerminalNotifier) Notify(_ context.Context, n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, Render(n))
}

// Render formats n as "<icon> Title: message".
func Render(n Notification) string {
	style := toastTitle.Foreground(toastColor[n.Type])
	icon, ok := toastIcon[n.Type]
	if !ok {
		icon = "•"
	}
	head := style.Render(icon + " " + n.Title)
	if n.Message == "" {
		return head
	}
	return head + ": " + n.Message
}
