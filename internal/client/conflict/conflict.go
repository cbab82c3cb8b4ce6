// Package conflict negotiates stale-token write conflicts with a human.
//
// A negotiation per entity moves idle -> negotiating -> one of the terminal
// states discarded, overwritten or abandoned. While an entity is negotiating
// no other negotiation for it may start.
package conflict

import (
	"context"
	"fmt"

	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/models"
)

//go:generate moq -out prompter_mock.go . Prompter

// Choice is the human's answer to a conflict.
type Choice string

const (
	ChoiceDiscard   Choice = "discard"   // принять состояние сервера
	ChoiceOverwrite Choice = "overwrite" // повторить запись без проверки версии
	ChoiceCancel    Choice = "cancel"    // ничего не менять
)

// ParseChoice converts user or config input into a Choice.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceDiscard, ChoiceOverwrite, ChoiceCancel:
		return c, nil
	}
	return "", fmt.Errorf("unknown conflict choice %q", s)
}

// State is the negotiation state of one entity.
type State string

const (
	StateIdle        State = "idle"
	StateNegotiating State = "negotiating"
	StateDiscarded   State = "discarded"
	StateOverwritten State = "overwritten"
	StateAbandoned   State = "abandoned"
)

// Terminal reports whether s ends a negotiation.
func (s State) Terminal() bool {
	return s == StateDiscarded || s == StateOverwritten || s == StateAbandoned
}

func stateFor(c Choice) State {
	switch c {
	case ChoiceDiscard:
		return StateDiscarded
	case ChoiceOverwrite:
		return StateOverwritten
	default:
		return StateAbandoned
	}
}

// Field is one row of a conflict diff.
type Field struct {
	Local  any    `json:"local"`  // значение, которое пытался записать клиент
	Remote any    `json:"remote"` // актуальное значение на сервере
	Name   string `json:"name"`
	Label  string `json:"label"`
}

// Payload is everything a prompter needs to render a conflict.
type Payload struct {
	Local      map[string]any       // последнее известное клиенту представление
	Remote     map[string]any       // свежее состояние сервера
	Patch      models.Patch         // изменение, которое не удалось записать
	Resolution *mutation.Resolution // запись о конфликте
	Resource   string
	EntityID   string
	Title      string
	Fields     []Field
}

// Key identifies the entity the payload is about.
func (p Payload) Key() string {
	return p.Resource + "/" + p.EntityID
}

// Prompter is the human-interaction surface.
type Prompter interface {
	// OpenConflict shows the conflict and blocks until the human answers.
	OpenConflict(ctx context.Context, p Payload) (Choice, error)
}

// Diff returns one row per patched field, ordered by field name.
// labels maps JSON field names to display labels; unknown names are shown as-is.
func Diff(patch models.Patch, remote map[string]any, labels map[string]string) []Field {
	fields := make([]Field, 0, len(patch))
	for _, name := range patch.Keys() {
		label, ok := labels[name]
		if !ok {
			label = name
		}
		fields = append(fields, Field{
			Name:   name,
			Label:  label,
			Local:  patch[name],
			Remote: remote[name],
		})
	}
	return fields
}

// Changed reports whether any diff row has differing values.
func Changed(fields []Field) bool {
	for _, f := range fields {
		if fmt.Sprint(f.Local) != fmt.Sprint(f.Remote) {
			return true
		}
	}
	return false
}
