// Package engine runs the active named counter.
//
// An Engine holds one transient view of a counter bound by name. User actions
// (SelectName, SetMode, SetTarget, Start, Pause, Reset, Save) and periodic
// ticks mutate that view in memory and queue a whole-counter write to the
// store. Writes are fire-and-forget and applied in order by one goroutine.
// The only reads that block are the ones that establish the in-memory base:
// SelectName and the reconciliation read in Start.
//
// State machine:
//
//	Idle --Start--> Running --Pause--> Idle
//	Idle|Running --Reset--> Idle (elapsed 0, reference now)
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/tock/internal/clock"
	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/internal/store"
	"github.com/chris/tock/pkg/models"
)

const (
	// DefaultInterval is the tick period
	DefaultInterval = time.Second

	writeTimeout = 5 * time.Second
)

var (
	// ErrInvalidOperation rejects start, reset and save without a counter name.
	// No state changes when it is returned.
	ErrInvalidOperation = errors.New("enter a name first")

	// ErrClosed is returned by Start after Close
	ErrClosed = errors.New("engine closed")
)

// Engine drives one active counter. It is safe for concurrent use.
type Engine struct {
	store    *store.Store
	clock    clock.Clock
	sched    clock.Scheduler
	logger   *slog.Logger
	interval time.Duration
	onChange func(models.Counter)

	mu     sync.Mutex
	active models.Counter
	base   int64         // elapsed last written to or read from the store
	frac   time.Duration // sub-second tick remainder for count-up
	gen    uint64        // bumped whenever ticking stops; stale ticks compare against it
	cancel clock.Cancel
	closed bool

	writes *writeQueue
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the time source
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithScheduler sets the scheduler that produces ticks
func WithScheduler(s clock.Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithLogger sets the logger for recovered persistence failures
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInterval sets the tick period
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithMode sets the mode a fresh counter starts in
func WithMode(m models.Mode) Option {
	return func(e *Engine) {
		e.active.Mode = m
	}
}

// WithOnChange registers fn to receive a snapshot after every state change,
// including ticks. fn runs without the engine lock held, on the goroutine that
// caused the change. It must not block waiting on a caller of Pause, Reset,
// SelectName or Close, since those wait for an in-flight tick to finish.
func WithOnChange(fn func(models.Counter)) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// New creates an idle engine with no active name and starts its writer
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		clock:    clock.System{},
		sched:    clock.Ticker{},
		logger:   slog.Default(),
		interval: DefaultInterval,
		active:   models.Counter{Mode: models.CountUp},
		writes:   newWriteQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.active.Reference = e.clock.Now()

	go e.writes.run(e.persist)
	return e
}

// SelectName binds the engine to name. An existing counter is loaded but never
// resumed; an unknown name starts a fresh idle counter in the current mode.
// A counter that was running is paused and saved first.
func (e *Engine) SelectName(ctx context.Context, name string) {
	name = models.CanonicalName(name)

	e.mu.Lock()
	cancel := e.pauseLocked()
	mode := e.active.Mode
	e.active = models.Counter{Name: name, Mode: mode, Reference: e.clock.Now()}
	e.base = 0
	e.frac = 0
	e.mu.Unlock()
	cancel()

	if name != "" {
		e.writes.flush()
		stored, found, err := e.store.Get(ctx, name)
		if err != nil {
			e.logger.Warn("failed to load counter, starting fresh", "name", name, "error", err)
			found = false
		}

		e.mu.Lock()
		if e.active.Name != name {
			// superseded by a later SelectName
			e.mu.Unlock()
			return
		}
		if found {
			e.active = stored
			e.active.IsRunning = false
			e.base = stored.Elapsed
			if e.active.Mode == models.CountDown {
				e.active.Elapsed = e.active.Remaining(e.clock.Now())
			}
		}
		e.mu.Unlock()
	}

	e.notify()
}

// SetMode switches the active counter's mode without touching elapsed time.
// The change is not persisted until Save, Start, Pause or Reset.
func (e *Engine) SetMode(m models.Mode) {
	e.mu.Lock()
	e.active.Mode = m
	e.mu.Unlock()
	e.notify()
}

// SetTarget sets the reference instant, which is the target of a count-down
func (e *Engine) SetTarget(t time.Time) {
	e.mu.Lock()
	e.active.Reference = t
	if e.active.Mode == models.CountDown {
		e.active.Elapsed = e.active.Remaining(e.clock.Now())
	}
	e.mu.Unlock()
	e.notify()
}

// Start resumes the active counter. Pending writes are drained and the stored
// elapsed is re-read first, so edits made elsewhere while idle are kept.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return ErrClosed
	case e.active.Name == "":
		e.mu.Unlock()
		return ErrInvalidOperation
	case e.active.IsRunning:
		e.mu.Unlock()
		return nil
	}
	name := e.active.Name
	e.mu.Unlock()

	e.writes.flush()
	stored, found, err := e.store.Get(ctx, name)
	if err != nil {
		e.logger.Warn("reconciliation read failed, resuming from memory", "name", name, "error", err)
	}

	e.mu.Lock()
	if e.closed || e.active.Name != name || e.active.IsRunning {
		e.mu.Unlock()
		return nil
	}

	if e.active.Mode == models.CountDown {
		e.active.Elapsed = e.active.Remaining(e.clock.Now())
	} else if err == nil {
		var persisted int64
		if found {
			persisted = stored.Elapsed
		}
		unsaved := e.active.Elapsed - e.base
		if unsaved < 0 {
			unsaved = 0
		}
		e.active.Elapsed = persisted + unsaved
		e.base = persisted
	}

	e.active.IsRunning = true
	e.enqueueLocked()

	gen := e.gen
	e.cancel = e.sched.Every(e.interval, func() { e.tick(gen) })
	e.mu.Unlock()

	e.notify()
	return nil
}

// Pause stops a running counter and persists it. It is a no-op when idle.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.active.IsRunning {
		e.mu.Unlock()
		return
	}
	cancel := e.pauseLocked()
	e.mu.Unlock()
	cancel()

	e.notify()
}

// Reset clears elapsed time, moves the reference instant to now, stops the
// counter and persists it, whatever state it was in
func (e *Engine) Reset() error {
	e.mu.Lock()
	if e.active.Name == "" {
		e.mu.Unlock()
		return ErrInvalidOperation
	}
	cancel := e.stopLocked()
	e.active.Elapsed = 0
	e.active.Reference = e.clock.Now()
	e.active.IsRunning = false
	e.frac = 0
	e.enqueueLocked()
	e.mu.Unlock()
	cancel()

	e.notify()
	return nil
}

// Save persists the active counter as it is, which is how a mode or target
// change becomes durable
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active.Name == "" {
		return ErrInvalidOperation
	}
	e.enqueueLocked()
	return nil
}

// Tick advances a running counter by one interval. Count-up adds the interval;
// count-down recomputes the remaining time from the clock, so missed ticks and
// drift correct themselves.
func (e *Engine) Tick() {
	e.mu.Lock()
	changed := e.tickLocked()
	e.mu.Unlock()

	if changed {
		e.notify()
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	changed := e.tickLocked()
	e.mu.Unlock()

	if changed {
		e.notify()
	}
}

func (e *Engine) tickLocked() bool {
	if !e.active.IsRunning {
		return false
	}

	if e.active.Mode == models.CountDown {
		e.active.Elapsed = e.active.Remaining(e.clock.Now())
	} else {
		e.frac += e.interval
		whole := e.frac / time.Second
		e.frac -= whole * time.Second
		e.active.Elapsed += int64(whole)
	}

	e.enqueueLocked()
	return true
}

// Snapshot returns a copy of the active counter
func (e *Engine) Snapshot() models.Counter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Display formats the active elapsed time as HH:MM:SS
func (e *Engine) Display() string {
	return format.Clock(e.Snapshot().Elapsed)
}

// Flush blocks until every write queued so far has reached the store
func (e *Engine) Flush() {
	e.writes.flush()
}

// Close pauses a running counter, cancels ticking and waits for queued writes.
// It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	cancel := e.pauseLocked()
	e.closed = true
	e.mu.Unlock()
	cancel()

	e.writes.close()
}

// pauseLocked stops ticking and, if the counter was running, freezes and
// persists it. The returned Cancel must be called after e.mu is released.
func (e *Engine) pauseLocked() clock.Cancel {
	wasRunning := e.active.IsRunning
	cancel := e.stopLocked()
	if wasRunning {
		if e.active.Mode == models.CountDown {
			e.active.Elapsed = e.active.Remaining(e.clock.Now())
		}
		e.active.IsRunning = false
		e.enqueueLocked()
	}
	return cancel
}

// stopLocked invalidates outstanding ticks and hands back the scheduler cancel
func (e *Engine) stopLocked() clock.Cancel {
	e.gen++
	cancel := e.cancel
	e.cancel = nil
	if cancel == nil {
		return clock.Noop
	}
	return cancel
}

// enqueueLocked queues a snapshot of the active counter for persistence
func (e *Engine) enqueueLocked() {
	if e.active.Mode != models.CountDown {
		e.base = e.active.Elapsed
	}
	if !e.writes.push(write{counter: e.active}) {
		e.logger.Debug("engine closed, dropping write", "name", e.active.Name)
	}
}

// persist runs on the writer goroutine
func (e *Engine) persist(w write) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := e.store.Put(ctx, w.counter); err != nil {
		e.logger.Warn("counter not persisted", "name", w.counter.Name, "error", err)
	}
}

func (e *Engine) notify() {
	if e.onChange == nil {
		return
	}
	e.onChange(e.Snapshot())
}
