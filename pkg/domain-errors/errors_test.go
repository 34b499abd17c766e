package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load event")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
}

func TestHasCodeFindsInnerCode(t *testing.T) {
	inner := New(CodeNotFound, "event not found")
	outer := Wrap(inner, CodeInternal, "register failed")

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.True(t, Is(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeForbidden))
}

func TestHasCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("service: %w", New(CodeForbidden, "managers only"))

	assert.True(t, HasCode(err, CodeForbidden))
	assert.Equal(t, CodeForbidden, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
