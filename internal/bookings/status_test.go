package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusReserved, StatusActive, true},
		{StatusReserved, StatusCancelled, true},
		{StatusReserved, StatusNoShow, true},
		{StatusReserved, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusNoShow, false},
		{StatusActive, StatusReserved, false},
		{StatusCompleted, StatusActive, false},
		{StatusCancelled, StatusReserved, false},
		{StatusNoShow, StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusReserved.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())

	// unknown statuses are not terminal, just invalid
	assert.False(t, Status("BOGUS").IsTerminal())
}

func TestStatusLive(t *testing.T) {
	assert.True(t, StatusReserved.IsLive())
	assert.True(t, StatusActive.IsLive())
	assert.False(t, StatusCompleted.IsLive())
	assert.False(t, StatusCancelled.IsLive())
	assert.False(t, StatusNoShow.IsLive())
}

func TestStatusCanBeCancelled(t *testing.T) {
	assert.True(t, StatusReserved.CanBeCancelled())
	assert.True(t, StatusActive.CanBeCancelled())
	assert.False(t, StatusCompleted.CanBeCancelled())
	assert.False(t, StatusNoShow.CanBeCancelled())
}
