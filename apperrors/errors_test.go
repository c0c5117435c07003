package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayErrorUnwrapsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("initialize checkout: %w", &GatewayError{StatusCode: 400, Message: "Invalid key"})

	var gwErr *GatewayError
	assert.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 400, gwErr.StatusCode)
	assert.Equal(t, "payment gateway (400): Invalid key", gwErr.Error())
}

func TestTransitionIsInvalidTransition(t *testing.T) {
	err := Transition("payment session", "completed", "pending")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "completed -> pending")
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(fmt.Errorf("enroll: %w", ErrNotFound)))
	assert.True(t, IsDomain(&GatewayError{StatusCode: 400, Message: "bad"}))
	assert.False(t, IsDomain(&GatewayError{StatusCode: 502, Message: "down"}))
	assert.False(t, IsDomain(&GatewayError{Message: "dial tcp: timeout"}))
	assert.False(t, IsDomain(ErrConflict))
	assert.False(t, IsDomain(errors.New("database is locked")))
}
