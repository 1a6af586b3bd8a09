package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/chris/tock/internal/aggregate"
)

// Styles for summary output
var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true) // bright-magenta
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // bright-blue
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // bright-green
	spanStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))            // white
	dateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // bright-black
	statLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // bright-blue
	statValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // bright-green
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // bright-black
)

// FormatOptions contains options for formatting a board
type FormatOptions struct {
	Date    string // Label for the day the board was taken
	NoColor bool   // Disable color output
}

// Helper function to render with or without colors
func renderStyle(style lipgloss.Style, text string, noColor bool) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

// FormatBoard formats one board snapshot as human-readable text
func FormatBoard(board aggregate.Board, opts FormatOptions) string {
	var output strings.Builder

	// Header
	title := fmt.Sprintf("Counting Up - %s", opts.Date)
	separator := renderStyle(separatorStyle, strings.Repeat("=", max(40-(ansi.StringWidth(title)/2), 0)), opts.NoColor)
	output.WriteString(fmt.Sprintf("\n%s %s %s\n\n", separator, renderStyle(headerStyle, title, opts.NoColor), separator))

	if board.Empty {
		output.WriteString(renderStyle(statLabelStyle, "No counters saved.", opts.NoColor) + "\n")
		return output.String()
	}
	if len(board.Cards) == 0 {
		output.WriteString(renderStyle(statLabelStyle, "No counters counting up.", opts.NoColor) + "\n")
		return output.String()
	}

	running := 0
	for _, card := range board.Cards {
		name := renderStyle(nameStyle, card.Name, opts.NoColor)
		if card.Running {
			running++
			name = renderStyle(runningStyle, "●", opts.NoColor) + " " + name
		}
		output.WriteString(name + "\n")

		fmt.Fprintf(&output, "  %s  %s\n",
			renderStyle(spanStyle, card.Span.DaysLabel(), opts.NoColor),
			renderStyle(spanStyle, card.Span.String(), opts.NoColor))
		fmt.Fprintf(&output, "  %s\n\n",
			renderStyle(dateStyle, "since "+card.ReferenceDateLabel, opts.NoColor))
	}

	output.WriteString(formatStats(len(board.Cards), running, opts.NoColor))
	return output.String()
}

func formatStats(total, running int, noColor bool) string {
	noun := "counters"
	if total == 1 {
		noun = "counter"
	}
	return fmt.Sprintf("%s %s, %s %s\n",
		renderStyle(statValueStyle, fmt.Sprintf("%d", total), noColor),
		renderStyle(statLabelStyle, noun, noColor),
		renderStyle(statValueStyle, fmt.Sprintf("%d", running), noColor),
		renderStyle(statLabelStyle, "running", noColor))
}
