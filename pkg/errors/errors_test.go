package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pricewatch/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	err := errors.NewNotFoundError("provider snapshot", "openrouter")

	assert.Equal(t, "provider snapshot with ID openrouter not found", err.Error())
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.IsInvalidInput(err))
}

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("priority", []string{}, "must not be empty")

	assert.Equal(t, "validation failed for field priority: must not be empty", err.Error())
	assert.True(t, errors.IsInvalidInput(err))

	bare := errors.NewValidationError("", nil, "bad payload")
	assert.Equal(t, "validation failed: bad payload", bare.Error())
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := errors.New("yaml: bad indent")
	err := errors.NewConfigError("config", "parsing config.yaml", cause)

	assert.Equal(t, "configuration error in config: parsing config.yaml", err.Error())
	assert.True(t, errors.Is(err, cause))

	var configErr *errors.ConfigError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &configErr))
}

func TestIOErrorUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := errors.NewIOError("snapshots/v1.json", "reading snapshot", cause)

	assert.Equal(t, "io error for snapshots/v1.json: reading snapshot", err.Error())
	assert.True(t, errors.Is(err, cause))
}
