// Package clock provides the time source and periodic scheduler that the
// counter engine and the aggregator are built on.
//
// Every periodic task is started with Scheduler.Every, which hands back a
// Cancel owned by the caller. There is no global registry of timers.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// Cancel stops a periodic task. When it returns, the task's callback is not
// running and will not run again. Calling it more than once is safe.
// It must not be called from inside the task's own callback.
type Cancel func()

// Scheduler runs fn every interval until the returned Cancel is called
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
}

// System is the wall clock
type System struct{}

// Now returns time.Now()
func (System) Now() time.Time {
	return time.Now()
}

// Ticker schedules tasks on time.Ticker goroutines
type Ticker struct{}

// Every starts a goroutine that calls fn on each tick
func (Ticker) Every(interval time.Duration, fn func()) Cancel {
	t := time.NewTicker(interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				// A tick and a cancel can be ready together; cancel wins
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
		<-done
	}
}

// Noop is a Cancel that does nothing
func Noop() {}
