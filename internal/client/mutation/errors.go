// Package mutation defines the error taxonomy shared by every client-side
// mutation pipeline and the record produced when the server rejects a write
// because of a stale concurrency token.
package mutation

import (
	"errors"
	"fmt"
)

// Kind классифицирует причину неудачи мутации
type Kind string

const (
	// KindVersionConflict устаревший токен; восстанавливается повтором или переговорами
	KindVersionConflict Kind = "version_conflict"
	// KindDoubleMove повторное перемещение той же карточки в пределах окна
	KindDoubleMove Kind = "double_move"
	// KindMoveInProgress мутация той же записи уже выполняется
	KindMoveInProgress Kind = "move_in_progress"
	// KindTooManyPending превышен лимит одновременных оптимистичных обновлений
	KindTooManyPending Kind = "too_many_pending"
	// KindTimeout клиент перестал ждать ответа сервера
	KindTimeout Kind = "timeout_error"
	// KindNetwork транспортная ошибка или 5xx
	KindNetwork Kind = "network_error"
	// KindValidation 4xx, отличный от конфликта версий
	KindValidation Kind = "validation_error"
	// KindHandled пользователь отменил переговоры; уже показано в UI
	KindHandled Kind = "handled"
)

// Retryable reports whether re-issuing the same mutation later may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindVersionConflict, KindDoubleMove, KindMoveInProgress, KindTooManyPending, KindTimeout, KindNetwork:
		return true
	default:
		return false
	}
}

// Sentinel causes for client-side guards that never reach the server.
var (
	ErrDoubleMove     = errors.New("another move for this card started moments ago")
	ErrInProgress     = errors.New("a mutation for this record is already in flight")
	ErrTooManyPending = errors.New("too many pending operations")
	ErrTimeout        = errors.New("server did not respond in time")
	ErrHandled        = errors.New("conflict left unresolved by operator")
)

// Error описывает неудачную мутацию конкретной записи
type Error struct {
	Err        error       // исходная причина
	Resolution *Resolution // заполнено для KindVersionConflict
	Kind       Kind
	EntityID   string
}

// New wraps err with a kind and the id of the entity being mutated.
func New(kind Kind, entityID string, err error) *Error {
	return &Error{Kind: kind, EntityID: entityID, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.EntityID)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.EntityID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the mutation kind from anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr.Kind, true
	}
	return "", false
}

// IsHandled reports whether err is a conflict the operator already saw and
// declined to resolve. Such errors must not be surfaced a second time.
func IsHandled(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindHandled
}
