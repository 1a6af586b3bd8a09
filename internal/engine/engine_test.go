package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/internal/store"
	"github.com/chris/tock/internal/testutil"
	"github.com/chris/tock/pkg/models"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupEngine creates an engine over a fresh SQLite store driven by a manual clock
func setupEngine(t *testing.T, opts ...Option) (*Engine, *store.Store, *testutil.ManualClock) {
	t.Helper()
	database, err := db.NewForTesting(filepath.Join(t.TempDir(), "counters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s := store.New(database)
	clk := testutil.NewManualClock(start)
	e := New(s, append([]Option{WithClock(clk), WithScheduler(clk)}, opts...)...)
	t.Cleanup(e.Close)
	return e, s, clk
}

// stored flushes the engine and reads name back from the store
func stored(t *testing.T, e *Engine, s *store.Store, name string) models.Counter {
	t.Helper()
	e.Flush()
	c, ok, err := s.Get(context.Background(), name)
	require.NoError(t, err)
	require.True(t, ok, "counter %q should be persisted", name)
	return c
}

// TestScenario_CountUpRun tests: create "Run", start, 65 ticks, pause
func TestScenario_CountUpRun(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	clk.Advance(65 * time.Second)
	e.Pause()

	c := stored(t, e, s, "Run")
	assert.Equal(t, int64(65), c.Elapsed)
	assert.False(t, c.IsRunning)
	assert.Equal(t, models.CountUp, c.Mode)
	assert.Equal(t, "00:01:05", e.Display())
}

// TestScenario_CountDownExam tests: "Exam" ten seconds out, twelve seconds of ticking
func TestScenario_CountDownExam(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SetMode(models.CountDown)
	e.SelectName(ctx, "Exam")
	e.SetTarget(clk.Now().Add(10 * time.Second))
	require.NoError(t, e.Start(ctx))
	assert.Equal(t, int64(10), e.Snapshot().Elapsed)

	clk.Advance(4 * time.Second)
	assert.Equal(t, int64(6), e.Snapshot().Elapsed)

	clk.Advance(8 * time.Second)
	assert.Equal(t, int64(0), e.Snapshot().Elapsed, "remaining time floors at zero")
	assert.True(t, e.Snapshot().IsRunning)

	c := stored(t, e, s, "Exam")
	assert.Equal(t, int64(0), c.Elapsed)
	assert.Equal(t, models.CountDown, c.Mode)
}

// TestTick_CountDownPastReference tests that a past target reads zero
func TestTick_CountDownPastReference(t *testing.T) {
	ctx := context.Background()
	e, _, clk := setupEngine(t, WithMode(models.CountDown))

	e.SelectName(ctx, "Old")
	e.SetTarget(clk.Now().Add(-time.Hour))
	require.NoError(t, e.Start(ctx))
	e.Tick()

	assert.Equal(t, int64(0), e.Snapshot().Elapsed)
}

// TestTick_CountDownSelfCorrects tests that a suspended process catches up on
// the next tick instead of compounding error
func TestTick_CountDownSelfCorrects(t *testing.T) {
	ctx := context.Background()
	e, _, clk := setupEngine(t, WithMode(models.CountDown))

	e.SelectName(ctx, "Launch")
	e.SetTarget(clk.Now().Add(time.Hour))
	require.NoError(t, e.Start(ctx))
	clk.Advance(time.Second)
	assert.Equal(t, int64(3599), e.Snapshot().Elapsed)

	// No ticks for twenty minutes, then one tick
	clk.Set(clk.Now().Add(20 * time.Minute))
	clk.Advance(time.Second)
	assert.Equal(t, int64(3599-1200-1), e.Snapshot().Elapsed)
}

// TestPauseStart_KeepsElapsed tests that resuming never loses or doubles time
func TestPauseStart_KeepsElapsed(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Read")
	require.NoError(t, e.Start(ctx))
	clk.Advance(30 * time.Second)
	e.Pause()
	assert.Equal(t, int64(30), stored(t, e, s, "Read").Elapsed)

	require.NoError(t, e.Start(ctx))
	clk.Advance(20 * time.Second)
	e.Pause()

	assert.Equal(t, int64(50), e.Snapshot().Elapsed)
	assert.Equal(t, int64(50), stored(t, e, s, "Read").Elapsed)
}

// TestStart_ReconcilesExternalEdit tests that Start picks up a value written
// by another session while this one was idle
func TestStart_ReconcilesExternalEdit(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Shared")
	require.NoError(t, e.Start(ctx))
	clk.Advance(10 * time.Second)
	e.Pause()
	e.Flush()

	// Another session bumps the stored value
	require.NoError(t, s.Put(ctx, models.Counter{Name: "Shared", Mode: models.CountUp, Reference: start, Elapsed: 100}))

	require.NoError(t, e.Start(ctx))
	clk.Advance(5 * time.Second)
	e.Pause()

	assert.Equal(t, int64(105), stored(t, e, s, "Shared").Elapsed)
}

// TestStart_IsNoopWhenRunning tests that a second Start does not double tick
func TestStart_IsNoopWhenRunning(t *testing.T) {
	ctx := context.Background()
	e, _, clk := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	require.NoError(t, e.Start(ctx))
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(3 * time.Second)
	assert.Equal(t, int64(3), e.Snapshot().Elapsed)
}

// TestInvalidOperation_WithoutName tests that start, reset and save are
// rejected without a name and change nothing
func TestInvalidOperation_WithoutName(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	before := e.Snapshot()
	assert.ErrorIs(t, e.Start(ctx), ErrInvalidOperation)
	assert.ErrorIs(t, e.Reset(), ErrInvalidOperation)
	assert.ErrorIs(t, e.Save(), ErrInvalidOperation)

	e.SelectName(ctx, "   ")
	assert.ErrorIs(t, e.Start(ctx), ErrInvalidOperation)

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, 0, clk.Pending())
	e.Flush()
	assert.Empty(t, s.LoadAll(ctx))
}

// TestReset_FromAnyState tests that reset always leaves zero and idle
func TestReset_FromAnyState(t *testing.T) {
	ctx := context.Background()

	t.Run("running", func(t *testing.T) {
		e, s, clk := setupEngine(t)
		e.SelectName(ctx, "Run")
		require.NoError(t, e.Start(ctx))
		clk.Advance(42 * time.Second)

		require.NoError(t, e.Reset())

		assert.Equal(t, int64(0), e.Snapshot().Elapsed)
		assert.False(t, e.Snapshot().IsRunning)
		assert.Equal(t, 0, clk.Pending(), "reset cancels ticking")
		c := stored(t, e, s, "Run")
		assert.Equal(t, int64(0), c.Elapsed)
		assert.False(t, c.IsRunning)
		assert.True(t, clk.Now().Equal(c.Reference))

		clk.Advance(10 * time.Second)
		assert.Equal(t, int64(0), e.Snapshot().Elapsed)
	})

	t.Run("idle never saved", func(t *testing.T) {
		e, s, clk := setupEngine(t, WithMode(models.CountDown))
		e.SelectName(ctx, "Fresh")
		e.SetTarget(clk.Now().Add(time.Hour))

		require.NoError(t, e.Reset())

		c := stored(t, e, s, "Fresh")
		assert.Equal(t, int64(0), c.Elapsed)
		assert.False(t, c.IsRunning)
		assert.True(t, clk.Now().Equal(c.Reference), "reset moves the reference to now")
	})
}

// TestSelectName_LoadsWithoutResuming tests that re-entering a name loads it
func TestSelectName_LoadsWithoutResuming(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	// A record left running by a session that died
	require.NoError(t, s.Put(ctx, models.Counter{Name: "Gym", Mode: models.CountUp, Reference: start, Elapsed: 300, IsRunning: true}))

	e.SelectName(ctx, "Gym")
	c := e.Snapshot()
	assert.Equal(t, "Gym", c.Name)
	assert.Equal(t, int64(300), c.Elapsed)
	assert.False(t, c.IsRunning, "loading never auto-resumes")

	clk.Advance(5 * time.Second)
	assert.Equal(t, int64(300), e.Snapshot().Elapsed)
}

// TestSelectName_UnknownNameIsFresh tests that a new name starts empty in the
// current mode and is not persisted until an action saves it
func TestSelectName_UnknownNameIsFresh(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	clk.Advance(7 * time.Second)

	e.SelectName(ctx, "Trip")

	c := e.Snapshot()
	assert.Equal(t, "Trip", c.Name)
	assert.Equal(t, int64(0), c.Elapsed)
	assert.False(t, c.IsRunning)
	assert.Equal(t, 0, clk.Pending())

	// The previous counter was paused and saved when the name changed
	run := stored(t, e, s, "Run")
	assert.False(t, run.IsRunning)
	assert.Equal(t, int64(7), run.Elapsed)

	_, ok, err := s.Get(ctx, "Trip")
	require.NoError(t, err)
	assert.False(t, ok, "selecting a name does not create it")

	e.SetMode(models.CountDown)
	e.SelectName(ctx, "Exam")
	assert.Equal(t, models.CountDown, e.Snapshot().Mode, "mode carries over to a fresh name")
}

// TestSetMode_PersistsOnlyOnSave tests the explicit save action
func TestSetMode_PersistsOnlyOnSave(t *testing.T) {
	ctx := context.Background()
	e, s, _ := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Save())
	assert.Equal(t, models.CountUp, stored(t, e, s, "Run").Mode)

	e.SetMode(models.CountDown)
	assert.Equal(t, models.CountUp, stored(t, e, s, "Run").Mode)

	require.NoError(t, e.Save())
	assert.Equal(t, models.CountDown, stored(t, e, s, "Run").Mode)
}

// TestTick_PersistsWhileRunning tests that each tick reaches the store
func TestTick_PersistsWhileRunning(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	clk.Advance(3 * time.Second)

	c := stored(t, e, s, "Run")
	assert.Equal(t, int64(3), c.Elapsed)
	assert.True(t, c.IsRunning)

	// Ticks are ignored while idle
	e.Pause()
	e.Tick()
	assert.Equal(t, int64(3), e.Snapshot().Elapsed)
}

// TestWithInterval_SubSecond tests that fractional intervals accumulate
func TestWithInterval_SubSecond(t *testing.T) {
	ctx := context.Background()
	e, _, clk := setupEngine(t, WithInterval(250*time.Millisecond))

	e.SelectName(ctx, "Fast")
	require.NoError(t, e.Start(ctx))
	clk.Advance(2500 * time.Millisecond)

	assert.Equal(t, int64(2), e.Snapshot().Elapsed)
}

// downKV always fails
type downKV struct{}

func (downKV) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: disk missing", db.ErrUnavailable)
}
func (downKV) Set(context.Context, string, string) error {
	return fmt.Errorf("%w: disk missing", db.ErrUnavailable)
}
func (downKV) Remove(context.Context, string) error {
	return fmt.Errorf("%w: disk missing", db.ErrUnavailable)
}

// lockedBuffer guards a log buffer written from the writer goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestStorageUnavailable_KeepsCountingInMemory tests that persistence failures
// are logged and never stop the session
func TestStorageUnavailable_KeepsCountingInMemory(t *testing.T) {
	ctx := context.Background()
	var logs lockedBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	clk := testutil.NewManualClock(start)
	e := New(store.New(downKV{}, store.WithLogger(logger)), WithClock(clk), WithScheduler(clk), WithLogger(logger))
	defer e.Close()

	e.SelectName(ctx, "Offline")
	require.NoError(t, e.Start(ctx))
	clk.Advance(4 * time.Second)
	e.Pause()
	e.Flush()

	assert.Equal(t, int64(4), e.Snapshot().Elapsed)
	assert.Contains(t, logs.String(), "counter not persisted")
	assert.Contains(t, logs.String(), "disk missing")
}

// TestClose_CancelsTicking tests teardown
func TestClose_CancelsTicking(t *testing.T) {
	ctx := context.Background()
	e, s, clk := setupEngine(t)

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	clk.Advance(2 * time.Second)

	e.Close()
	assert.Equal(t, 0, clk.Pending())

	clk.Advance(10 * time.Second)
	assert.Equal(t, int64(2), e.Snapshot().Elapsed)

	c, ok, err := s.Get(ctx, "Run")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), c.Elapsed)
	assert.False(t, c.IsRunning, "closing pauses and saves")

	assert.ErrorIs(t, e.Start(ctx), ErrClosed)
	e.Close()
}

// TestOnChange_ReceivesTicks tests the change hook
func TestOnChange_ReceivesTicks(t *testing.T) {
	ctx := context.Background()
	var seen []int64
	e, _, clk := setupEngine(t, WithOnChange(func(c models.Counter) {
		if c.IsRunning {
			seen = append(seen, c.Elapsed)
		}
	}))

	e.SelectName(ctx, "Run")
	require.NoError(t, e.Start(ctx))
	clk.Advance(3 * time.Second)

	assert.Equal(t, []int64{0, 1, 2, 3}, seen)
}

// TestEngine_RealTicker runs against the goroutine scheduler
func TestEngine_RealTicker(t *testing.T) {
	ctx := context.Background()
	database, err := db.NewForTesting(filepath.Join(t.TempDir(), "counters.db"))
	require.NoError(t, err)
	defer database.Close()

	e := New(store.New(database), WithInterval(10*time.Millisecond))
	e.SelectName(ctx, "Live")
	require.NoError(t, e.Start(ctx))

	assert.Eventually(t, func() bool { return e.Snapshot().Elapsed >= 1 }, 5*time.Second, 10*time.Millisecond)

	e.Close()
	frozen := e.Snapshot().Elapsed
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, e.Snapshot().Elapsed)
}
