package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/pkg/models"
)

// Styles for counter details
var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // Cyan
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")) // White
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // Orange
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // Green
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")) // Gray
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Display a counter",
	Long:  "Print a stored counter's mode, reference date, time and state.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	c, found, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("counter %q not found", models.CanonicalName(args[0]))
	}

	displayCounter(cmd.OutOrStdout(), c, time.Now())
	return nil
}

func displayCounter(w io.Writer, c models.Counter, now time.Time) {
	elapsed := c.Elapsed
	if c.Mode == models.CountDown {
		elapsed = c.Remaining(now)
	}
	span := format.Decompose(elapsed)

	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Name:"),
		valueStyle.Render(c.Name))

	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Mode:"),
		valueStyle.Render(c.Mode.Label()))

	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Time:"),
		clockStyle.Render(format.Clock(elapsed)))

	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Breakdown:"),
		valueStyle.Render(span.DaysLabel()+" "+span.String()))

	referenceLabel := "Since:"
	if c.Mode == models.CountDown {
		referenceLabel = "Until:"
	}
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render(referenceLabel),
		valueStyle.Render(format.TargetLabel(c.Reference.Local())))

	state := pausedStyle.Render("paused")
	if c.IsRunning {
		state = runningStyle.Render("running")
	}
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("State:"),
		state)
}
