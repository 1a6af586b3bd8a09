package testutil

import (
	"sync"
	"time"

	"github.com/chris/tock/internal/clock"
)

// ManualClock is a clock.Clock and clock.Scheduler driven by the test.
//
// Time only moves on Advance or Set. Scheduled callbacks fire synchronously
// inside Advance, in due order, with the clock set to each due instant.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks run
// without the internal lock held, so they may call Now or Every.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*manualTask
}

type manualTask struct {
	interval  time.Duration
	next      time.Time
	fn        func()
	cancelled bool
}

var (
	_ clock.Clock     = (*ManualClock)(nil)
	_ clock.Scheduler = (*ManualClock)(nil)
)

// NewManualClock creates a clock stopped at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps to t without firing any callbacks, as if the process had been suspended
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
	for _, task := range c.tasks {
		for !task.next.After(t) {
			task.next = task.next.Add(task.interval)
		}
	}
}

// Every registers fn to fire every interval of manual time
func (c *ManualClock) Every(interval time.Duration, fn func()) clock.Cancel {
	c.mu.Lock()
	defer c.mu.Unlock()

	task := &manualTask{
		interval: interval,
		next:     c.now.Add(interval),
		fn:       fn,
	}
	c.tasks = append(c.tasks, task)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		task.cancelled = true
	}
}

// Advance moves time forward by d, firing every callback that falls due
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		task := c.nextDue(target)
		if task == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = task.next
		task.next = task.next.Add(task.interval)
		fn := task.fn
		c.mu.Unlock()

		fn()
	}
}

// Pending returns the number of live scheduled tasks
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, task := range c.tasks {
		if !task.cancelled {
			n++
		}
	}
	return n
}

// nextDue returns the earliest live task due at or before target. Caller holds mu.
func (c *ManualClock) nextDue(target time.Time) *manualTask {
	var due *manualTask
	for _, task := range c.tasks {
		if task.cancelled || task.next.After(target) {
			continue
		}
		if due == nil || task.next.Before(due.next) {
			due = task
		}
	}
	return due
}
