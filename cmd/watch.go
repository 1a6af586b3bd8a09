package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chris/tock/internal/aggregate"
	"github.com/chris/tock/internal/tui/board"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live board of counters",
	Long:  "Open a read-only board of every count-up counter, refreshed from the database.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

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

	model := board.New(aggregate.New(s, aggregate.WithInterval(cfg.Poll)))
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board screen failed: %w", err)
	}
	return nil
}
