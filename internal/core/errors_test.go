package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := ErrValidation("BAD", "bad input")
	assert.Equal(t, "[validation] BAD: bad input", err.Error())

	wrapped := ErrTransport("model call failed").WithCause(errors.New("connection reset"))
	assert.Equal(t, "[network] COMPLETION_FAILED: model call failed (connection reset)", wrapped.Error())
}

func TestDomainError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage: %w", ErrTransport("x").WithCause(cause))

	assert.True(t, errors.Is(err, ErrTransport("other message")))
	assert.False(t, errors.Is(err, ErrTimeout("x")))
	assert.True(t, errors.Is(err, cause))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout("slow")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrTransport("down"))))
	assert.False(t, IsRetryable(ErrValidation("X", "y")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, ErrCatNetwork, CategoryOf(ErrTransport("x")))
	assert.Equal(t, ErrCatNotFound, CategoryOf(ErrNotFound("step", "s1")))
	assert.Equal(t, ErrCatInternal, CategoryOf(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := ErrValidation(CodeDuplicateStep, "dup").WithDetail("step_id", "s1")
	assert.Equal(t, "s1", err.Details["step_id"])
}
