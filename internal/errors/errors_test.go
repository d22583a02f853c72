package errors_test

import (
	"fmt"
	"testing"

	"github.com/simao/jaxe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithStackTrace(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errors.WithStackTrace(nil))

	err := errors.WithStackTrace(assert.AnError)
	require.Error(t, err)
	assert.True(t, errors.ContainsStackTrace(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Same(t, err, errors.WithStackTrace(err))
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := errors.Errorf("reading %s: %w", "app.log", assert.AnError)
	assert.True(t, errors.ContainsStackTrace(err))
	assert.True(t, errors.Is(err, assert.AnError))
	assert.Contains(t, err.Error(), "reading app.log")
	assert.NotEmpty(t, errors.ErrorStack(err))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, errors.ExitCode(assert.AnError))

	err := errors.ErrorWithExitCode{Err: assert.AnError, ExitCode: 2}
	assert.Equal(t, 2, errors.ExitCode(err))
	assert.Equal(t, 2, errors.ExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, assert.AnError)
}
