package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_AdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	var fired []string
	c.Every(time.Second, func() { fired = append(fired, "a") })
	cancel := c.Every(2*time.Second, func() { fired = append(fired, "b") })

	c.Advance(4 * time.Second)
	assert.Equal(t, []string{"a", "a", "b", "a", "a", "b"}, fired)
	assert.Equal(t, start.Add(4*time.Second), c.Now())
	assert.Equal(t, 2, c.Pending())

	cancel()
	fired = nil
	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "a"}, fired)
	assert.Equal(t, 1, c.Pending())
}

func TestManualClock_SetSkipsCallbacks(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	calls := 0
	c.Every(time.Second, func() { calls++ })

	c.Set(start.Add(time.Hour))
	assert.Equal(t, 0, calls)

	c.Advance(time.Second)
	assert.Equal(t, 1, calls)
}
