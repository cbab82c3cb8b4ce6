package conflict

import "context"

// StaticPrompter answers every conflict with the same choice. It backs the
// non-interactive on_conflict policies.
type StaticPrompter struct {
	Choice Choice
}

// OpenConflict returns the configured choice.
func (s StaticPrompter) OpenConflict(ctx context.Context, p Payload) (Choice, error) {
	if err := ctx.Err(); err != nil {
		return ChoiceCancel, err
	}
	return s.Choice, nil
}
