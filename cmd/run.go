package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/internal/engine"
	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/internal/store"
	"github.com/chris/tock/internal/tui/counter"
	"github.com/chris/tock/pkg/models"
)

var (
	runMode   string
	runTarget string
	runPlain  bool
	runFor    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a counter",
	Long: `Open the counter screen, optionally bound to a counter name.

With --plain no screen is drawn: the named counter starts, its time is printed
on every tick, and it is paused and saved on Ctrl-C, SIGTERM or after --for.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runMode, "mode", "countup", "Counter mode: countup or countdown")
	runCmd.Flags().StringVar(&runTarget, "target", "", "Reference date or countdown target (90m, RFC3339 or 2006-01-02 15:04)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Run without a screen, printing HH:MM:SS on each tick")
	runCmd.Flags().DurationVar(&runFor, "for", 0, "With --plain, pause after this long (default: until interrupted)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	flags, err := parseCounterFlags(cmd, runMode, runTarget)
	if err != nil {
		return err
	}

	if runPlain {
		return runHeadless(cmd, name, flags)
	}
	return runScreen(cmd, name, flags)
}

// counterFlags are the parsed --mode and --target values
type counterFlags struct {
	mode      models.Mode
	modeSet   bool
	target    time.Time
	targetSet bool
}

// parseCounterFlags validates --mode and --target before anything is changed
func parseCounterFlags(cmd *cobra.Command, mode, target string) (counterFlags, error) {
	var flags counterFlags

	m, err := models.ParseMode(mode)
	if err != nil {
		return flags, err
	}
	flags.mode = m
	flags.modeSet = cmd.Flags().Changed("mode")

	if target != "" {
		t, err := models.ParseTarget(target, time.Now())
		if err != nil {
			return flags, err
		}
		flags.target = t
		flags.targetSet = true
	}
	return flags, nil
}

// apply overrides the loaded counter with explicitly given flags
func (f counterFlags) apply(e *engine.Engine) {
	if f.modeSet {
		e.SetMode(f.mode)
	}
	if f.targetSet {
		e.SetTarget(f.target)
	}
}

// newEngine builds an engine with the configured tick interval
func newEngine(s *store.Store, flags counterFlags, opts ...engine.Option) *engine.Engine {
	base := []engine.Option{
		engine.WithLogger(slog.Default()),
		engine.WithInterval(cfg.Tick),
	}
	if flags.mode != "" {
		base = append(base, engine.WithMode(flags.mode))
	}
	return engine.New(s, append(base, opts...)...)
}

func runScreen(cmd *cobra.Command, name string, flags counterFlags) error {
	closeLog, err := useTUILogger()
	if err != nil {
		return err
	}
	defer closeLog()

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	e := newEngine(s, flags)
	defer e.Close()

	if name != "" {
		e.SelectName(ctx, name)
	}
	flags.apply(e)

	model := counter.New(e, counter.WithContext(ctx), counter.WithRefresh(cfg.Tick))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("counter screen failed: %w", err)
	}
	return nil
}

func runHeadless(cmd *cobra.Command, name string, flags counterFlags) error {
	if models.CanonicalName(name) == "" {
		return fmt.Errorf("run --plain needs a counter name: %w", engine.ErrInvalidOperation)
	}

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	var (
		mu   sync.Mutex
		last string
	)
	printClock := func(c models.Counter) {
		line := format.Clock(c.Elapsed)
		mu.Lock()
		defer mu.Unlock()
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(out, line)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if runFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, pausing", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	e := newEngine(s, flags, engine.WithOnChange(printClock))
	defer e.Close()

	e.SelectName(ctx, name)
	flags.apply(e)
	if err := e.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	e.Pause()
	e.Flush()

	c := e.Snapshot()
	slog.Info("counter paused", "name", c.Name, "elapsed", c.Elapsed)
	return nil
}

// useTUILogger points the default logger at tock.log beside the database so
// log lines do not tear the screen. The returned func closes the log file.
func useTUILogger() (func(), error) {
	if dbPath == db.MemoryPath {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}

	path, err := db.ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(filepath.Dir(path), "tock.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel})))
	return func() { f.Close() }, nil
}
