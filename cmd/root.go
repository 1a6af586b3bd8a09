package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chris/tock/internal/config"
	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/internal/store"
)

var (
	dbPath    string
	verbose   bool
	colorMode string

	cfg      config.Config
	logLevel = slog.LevelWarn
)

var rootCmd = &cobra.Command{
	Use:   "tock",
	Short: "Named count-up and countdown timers",
	Long: `Keep any number of named timers. Each one counts up from a reference date
or down to a target, and remembers its time between runs.`,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path, or :memory: (default: ~/.local/share/tock/counters.db)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always or never")
}

// setup loads the environment config and installs the default logger.
// Flags override the environment.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if !cmd.Flags().Changed("db") && cfg.DB != "" {
		dbPath = cfg.DB
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logLevel = level
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return applyColor(cmd.OutOrStdout())
}

// applyColor picks the lipgloss color profile for w
func applyColor(w io.Writer) error {
	switch colorMode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "auto", "":
		if isTerminal(w) {
			lipgloss.SetColorProfile(termenv.EnvColorProfile())
		} else {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	default:
		return fmt.Errorf("invalid --color %q: must be auto, always or never", colorMode)
	}
	return nil
}

// noColor reports whether plain-text output should skip styling
func noColor(w io.Writer) bool {
	switch colorMode {
	case "always":
		return false
	case "never":
		return true
	}
	return !isTerminal(w)
}

// isTerminal returns true if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// openStore opens the configured backend and wraps it in a Store.
// The returned func closes the backend.
func openStore() (*store.Store, func(), error) {
	backend, err := db.Open(dbPath, cfg.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	closer := func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}
	return store.New(backend, store.WithLogger(slog.Default())), closer, nil
}
