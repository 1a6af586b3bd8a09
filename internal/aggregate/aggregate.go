// Package aggregate projects the stored counters into display cards for a
// read-only board. It polls the store on its own schedule and never writes.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chris/tock/internal/clock"
	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/internal/store"
	"github.com/chris/tock/pkg/models"
)

// DefaultInterval is the polling period
const DefaultInterval = time.Second

// Card is the display record for one count-up counter
type Card struct {
	Name               string
	Span               format.Span
	ReferenceDateLabel string
	Running            bool
}

// Board is one snapshot of the store
type Board struct {
	Cards []Card
	// Empty is true only when the store holds no counters at all. A store
	// holding only count-down counters is not empty but has no cards.
	Empty bool
}

// Aggregator re-reads the store on an interval
type Aggregator struct {
	store    *store.Store
	sched    clock.Scheduler
	interval time.Duration

	mu   sync.Mutex
	last Board
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithScheduler sets the scheduler that drives polling
func WithScheduler(s clock.Scheduler) Option {
	return func(a *Aggregator) {
		a.sched = s
	}
}

// WithInterval sets the polling period
func WithInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// New creates an Aggregator over s
func New(s *store.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    s,
		sched:    clock.Ticker{},
		interval: DefaultInterval,
		last:     Board{Empty: true},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Project builds a board from a loaded collection. Count-down counters are
// left off the board. Date labels are in local time.
func Project(counters map[string]models.Counter) Board {
	board := Board{Empty: len(counters) == 0}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := counters[name]
		if c.Mode != models.CountUp {
			continue
		}
		board.Cards = append(board.Cards, Card{
			Name:               name,
			Span:               format.Decompose(c.Elapsed),
			ReferenceDateLabel: format.DateLabel(c.Reference.Local()),
			Running:            c.IsRunning,
		})
	}
	return board
}

// Snapshot reads the store once. Storage failures surface as an empty board.
func (a *Aggregator) Snapshot(ctx context.Context) Board {
	board := Project(a.store.LoadAll(ctx))

	a.mu.Lock()
	a.last = board
	a.mu.Unlock()
	return board
}

// Last returns the most recent snapshot without reading the store
func (a *Aggregator) Last() Board {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Start calls fn with a snapshot now and then once per interval until the
// returned Cancel is called
func (a *Aggregator) Start(fn func(Board)) clock.Cancel {
	fn(a.Snapshot(context.Background()))
	return a.sched.Every(a.interval, func() {
		fn(a.Snapshot(context.Background()))
	})
}

// Watch delivers snapshots on the returned channel until the returned Cancel
// is called. Cancel stops polling before it returns and then closes the
// channel. A slow reader only ever sees the latest board; older undelivered
// boards are dropped.
func (a *Aggregator) Watch() (<-chan Board, clock.Cancel) {
	out := make(chan Board, 1)

	publish := func(b Board) {
		for {
			select {
			case out <- b:
				return
			default:
			}
			// Drop the stale board and retry
			select {
			case <-out:
			default:
			}
		}
	}

	stop := a.Start(publish)
	var once sync.Once
	return out, func() {
		once.Do(func() {
			stop()
			close(out)
		})
	}
}
