package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct code matches", func(t *testing.T) {
		err := New(CodeInvalidConfig, "bad ranges")
		assert.True(t, HasCode(err, CodeInvalidConfig))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("wrapped by fmt keeps code", func(t *testing.T) {
		err := fmt.Errorf("loading catalog: %w", New(CodeInvalidConfig, "bad ranges"))
		assert.True(t, HasCode(err, CodeInvalidConfig))
		assert.Equal(t, CodeInvalidConfig, CodeOf(err))
	})

	t.Run("inner code is visible through outer wrap", func(t *testing.T) {
		inner := New(CodeNotFound, "layer not found")
		err := Wrap(inner, CodeInternal, "render failed")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.True(t, Is(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "publish notification")
	assert.Equal(t, "publish notification: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
