package mutation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Chain(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("move failed: %w", New(KindNetwork, "42", cause))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNetwork, kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network_error (42): boom")
}

func TestError_NoCause(t *testing.T) {
	err := New(KindDoubleMove, "7", nil)
	assert.Equal(t, "double_move: 7", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsHandled(errors.New("plain")))
}

func TestIsHandled(t *testing.T) {
	assert.True(t, IsHandled(New(KindHandled, "c1", ErrHandled)))
	assert.False(t, IsHandled(New(KindValidation, "c1", nil)))
}

func TestKind_Retryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindVersionConflict, true},
		{KindDoubleMove, true},
		{KindMoveInProgress, true},
		{KindTooManyPending, true},
		{KindTimeout, true},
		{KindNetwork, true},
		{KindValidation, false},
		{KindHandled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Retryable())
		})
	}
}
