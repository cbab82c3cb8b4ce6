package iocli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iudanet/garageboard/internal/client/conflict"
)

// maxAttempts ограничивает число повторных вопросов при неверном ответе
const maxAttempts = 3

// Prompter asks for a conflict choice on a plain line-oriented terminal.
type Prompter struct {
	io IO
}

var _ conflict.Prompter = (*Prompter)(nil)

// NewPrompter creates a line prompter over io.
func NewPrompter(io IO) *Prompter {
	return &Prompter{io: io}
}

// OpenConflict prints the diff and reads d/o/c. End of input and repeated
// invalid answers resolve to cancel.
func (p *Prompter) OpenConflict(ctx context.Context, payload conflict.Payload) (conflict.Choice, error) {
	p.io.Println(payload.Title)
	p.io.Println("")
	writeDiff(p.io, payload.Fields)
	p.io.Println("")

	for range maxAttempts {
		if err := ctx.Err(); err != nil {
			return conflict.ChoiceCancel, err
		}

		answer, err := p.io.ReadInput("[d]iscard my change / [o]verwrite theirs / [c]ancel: ")
		if errors.Is(err, io.EOF) {
			return conflict.ChoiceCancel, nil
		}
		if err != nil {
			return conflict.ChoiceCancel, fmt.Errorf("failed to read choice: %w", err)
		}

		if choice, ok := parseAnswer(answer); ok {
			return choice, nil
		}
		p.io.Printf("Unknown answer %q\n", answer)
	}
	return conflict.ChoiceCancel, nil
}

func parseAnswer(answer string) (conflict.Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "d", "discard":
		return conflict.ChoiceDiscard, true
	case "o", "overwrite":
		return conflict.ChoiceOverwrite, true
	case "c", "cancel":
		return conflict.ChoiceCancel, true
	}
	return "", false
}

func writeDiff(w io.Writer, fields []conflict.Field) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tYOURS\tSERVER")
	for _, f := range fields {
		_, _ = fmt.Fprintf(tw, "%s\t%v\t%v\n", f.Label, display(f.Local), display(f.Remote))
	}
	_ = tw.Flush()
}

func display(v any) any {
	if v == nil {
		return "-"
	}
	return v
}
