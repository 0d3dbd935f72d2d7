package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("change role: %w", invalid("role", "Select a valid role."))

	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.False(t, errors.Is(ErrPermissionDenied, ErrValidation))
}
