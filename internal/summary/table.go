package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/pkg/models"
)

// FormatTable formats every stored counter, count-down included, as a table
// sorted by name
func FormatTable(counters map[string]models.Counter) string {
	if len(counters) == 0 {
		return formatTableHeader() + "\n\nNo counters saved.\n"
	}

	rows := make([]models.Counter, 0, len(counters))
	for _, c := range counters {
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})

	var sb strings.Builder

	// Header
	sb.WriteString(formatTableHeader())
	sb.WriteString("\n\n")

	// Calculate column widths
	widths := calculateColumnWidths(rows)

	// Table header row
	sb.WriteString(formatColumnHeaders(widths))
	sb.WriteString("\n")

	// Table rows
	running := 0
	for _, c := range rows {
		if c.IsRunning {
			running++
		}
		sb.WriteString(formatTableRow(c, widths))
		sb.WriteString("\n")
	}

	// Summary statistics
	sb.WriteString("\n")
	sb.WriteString(formatStats(len(rows), running, true))

	return sb.String()
}

func formatTableHeader() string {
	title := "Counters"
	separator := strings.Repeat("=", len(title))
	return title + "\n" + separator
}

// columnWidths holds the display width of each padded column
type columnWidths struct {
	name      int
	mode      int
	elapsed   int
	reference int
}

func calculateColumnWidths(rows []models.Counter) columnWidths {
	w := columnWidths{
		name:      len("Name"),
		mode:      len("Mode"),
		elapsed:   len("Elapsed"),
		reference: len("Reference"),
	}
	for _, c := range rows {
		w.name = max(w.name, ansi.StringWidth(c.Name))
		w.mode = max(w.mode, len(c.Mode.String()))
		w.elapsed = max(w.elapsed, len(format.Clock(c.Elapsed)))
		w.reference = max(w.reference, len(format.TargetLabel(c.Reference)))
	}
	return w
}

func formatColumnHeaders(widths columnWidths) string {
	return fmt.Sprintf("%s  %-*s  %*s  %-*s  %s",
		padRight("Name", widths.name),
		widths.mode, "Mode",
		widths.elapsed, "Elapsed",
		widths.reference, "Reference",
		"State")
}

func formatTableRow(c models.Counter, widths columnWidths) string {
	state := "paused"
	if c.IsRunning {
		state = "running"
	}
	return fmt.Sprintf("%s  %-*s  %*s  %-*s  %s",
		padRight(c.Name, widths.name),
		widths.mode, c.Mode.String(),
		widths.elapsed, format.Clock(c.Elapsed),
		widths.reference, format.TargetLabel(c.Reference),
		state)
}

// padRight pads s to width display cells; %-*s counts bytes, not cells
func padRight(s string, width int) string {
	pad := width - ansi.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
