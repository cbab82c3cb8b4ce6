// Package notify delivers user-visible toasts.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Type is the severity of a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is a single toast.
type Notification struct {
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier receives toasts.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notification) {}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs n at a level matching its type.
func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	switch n.Type {
	case TypeWarning:
		level = slog.LevelWarn
	case TypeError:
		level = slog.LevelError
	}
	l.logger.Log(ctx, level, n.Title, "type", n.Type, "message", n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	items []Notification
	mu    sync.Mutex
}

// Notify appends n.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}
