package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	for _, s := range []Status{
		StatusIncoming, StatusInProgress, StatusAwaitingPickup,
		StatusOutForDelivery, StatusCompleted, StatusIssues,
	} {
		assert.True(t, Valid(s), "%s should be valid", s)
	}

	for _, s := range []Status{"", "Shipped", "incoming", "CANCELLED", "Done"} {
		assert.False(t, Valid(s), "%q should be rejected", s)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusIncoming, StatusInProgress, true},
		{StatusIncoming, StatusIssues, true},
		{StatusInProgress, StatusAwaitingPickup, true},
		{StatusInProgress, StatusOutForDelivery, true},
		{StatusAwaitingPickup, StatusCompleted, true},
		{StatusOutForDelivery, StatusCompleted, true},
		{StatusIncoming, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusIssues, StatusIncoming, false},
		{StatusAwaitingPickup, StatusOutForDelivery, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
