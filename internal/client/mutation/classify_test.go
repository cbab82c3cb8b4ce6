package mutation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/client/api"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want Kind
	}{
		{
			name: "409 with body",
			err:  fmt.Errorf("move request failed: %w", &api.ConflictError{StatusCode: http.StatusConflict, CurrentVersion: 3}),
			want: KindVersionConflict,
		},
		{
			name: "412 without body",
			err:  fmt.Errorf("patch vehicles request failed: %w", api.ErrPreconditionFailed),
			want: KindVersionConflict,
		},
		{
			name: "client timeout",
			err:  ErrTimeout,
			want: KindTimeout,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("request failed: %w", context.DeadlineExceeded),
			want: KindTimeout,
		},
		{
			name: "validation 400",
			err:  &api.StatusError{StatusCode: http.StatusBadRequest, Message: "bad status"},
			want: KindValidation,
		},
		{
			name: "server 503",
			err:  &api.StatusError{StatusCode: http.StatusServiceUnavailable},
			want: KindNetwork,
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
			want: KindNetwork,
		},
		{
			name: "already classified",
			err:  New(KindHandled, "1", ErrHandled),
			want: KindHandled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("1", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, "1", got.EntityID)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, Classify("1", nil))
}
