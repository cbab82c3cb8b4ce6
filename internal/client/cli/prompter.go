package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/iudanet/garageboard/internal/client/conflict"
)

// FormPrompter asks about conflicts with an interactive select form.
type FormPrompter struct {
	out io.Writer
}

var _ conflict.Prompter = (*FormPrompter)(nil)

// NewFormPrompter creates a prompter that prints the diff to out before
// showing the form.
func NewFormPrompter(out io.Writer) *FormPrompter {
	return &FormPrompter{out: out}
}

// OpenConflict shows the diff and waits for a choice. Aborting the form
// counts as cancel.
func (p *FormPrompter) OpenConflict(ctx context.Context, payload conflict.Payload) (conflict.Choice, error) {
	_, _ = fmt.Fprintln(p.out)
	_, _ = fmt.Fprintln(p.out, headerStyle.Render(payload.Title))
	_, _ = fmt.Fprint(p.out, RenderDiff(payload.Fields))
	_, _ = fmt.Fprintln(p.out)

	choice := conflict.ChoiceCancel
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[conflict.Choice]().
				Title("How do you want to resolve the conflict?").
				Description("Someone saved this record after you opened it.").
				Options(
					huh.NewOption("Keep the server version (discard my changes)", conflict.ChoiceDiscard),
					huh.NewOption("Save my changes anyway (overwrite)", conflict.ChoiceOverwrite),
					huh.NewOption("Cancel", conflict.ChoiceCancel),
				).
				Value(&choice),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return conflict.ChoiceCancel, nil
		}
		return conflict.ChoiceCancel, err
	}
	return choice, nil
}
