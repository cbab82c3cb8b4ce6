package mutation

import (
	"context"
	"errors"

	"github.com/iudanet/garageboard/internal/client/api"
)

// Classify maps a failed write onto the taxonomy. Errors that already carry
// a Kind are returned unchanged.
func Classify(entityID string, err error) *Error {
	if err == nil {
		return nil
	}

	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr
	}

	var conflict *api.ConflictError
	var status *api.StatusError
	switch {
	case errors.As(err, &conflict), errors.Is(err, api.ErrPreconditionFailed):
		return New(KindVersionConflict, entityID, err)
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return New(KindTimeout, entityID, err)
	case errors.As(err, &status) && status.IsClientError():
		return New(KindValidation, entityID, err)
	default:
		return New(KindNetwork, entityID, err)
	}
}
