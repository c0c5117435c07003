package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTransitions(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		ok       bool
	}{
		{SessionPending, SessionCompleted, true},
		{SessionPending, SessionFailed, true},
		{SessionCompleted, SessionCompleted, true},
		{SessionCompleted, SessionPending, false},
		{SessionCompleted, SessionFailed, false},
		{SessionFailed, SessionCompleted, false},
		{SessionFailed, SessionPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
