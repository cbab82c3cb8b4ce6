package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogNotifier_Levels(t *testing.T) {
	tests := []struct {
		wantLevel string
		typ       Type
	}{
		{typ: TypeSuccess, wantLevel: "level=INFO"},
		{typ: TypeInfo, wantLevel: "level=INFO"},
		{typ: TypeWarning, wantLevel: "level=WARN"},
		{typ: TypeError, wantLevel: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			var buf bytes.Buffer
			n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
			n.Notify(context.Background(), Notification{Type: tt.typ, Title: "Appointment moved", Message: "1"})

			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, `msg="Appointment moved"`)
			assert.Contains(t, out, "message=1")
		})
	}
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)
	n.Notify(context.Background(), Notification{Type: TypeError, Title: "Move timed out", Message: "card 1"})

	assert.Contains(t, buf.String(), "Move timed out")
	assert.Contains(t, buf.String(), ": card 1")
}

func TestRender_NoMessage(t *testing.T) {
	out := Render(Notification{Type: "custom", Title: "Hello"})
	assert.Contains(t, out, "Hello")
	assert.NotContains(t, out, ":")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(context.Background(), Notification{Type: TypeInfo, Title: "a"})
	all := r.All()
	all[0].Title = "changed"
	assert.Equal(t, "a", r.All()[0].Title)

	Discard.Notify(context.Background(), Notification{})
}
