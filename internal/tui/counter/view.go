package counter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chris/tock/internal/format"
	"github.com/chris/tock/pkg/models"
)

// Styles
var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	focusDotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	blurDotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	clockStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

const marginX = 2

func (m *Model) renderView() string {
	var b strings.Builder

	width := m.width
	if width == 0 {
		width = 80
	}

	// Content width excludes left and right margins
	contentWidth := width - 2*marginX
	if contentWidth < 20 {
		contentWidth = 20
	}
	margin := strings.Repeat(" ", marginX)

	// Header
	b.WriteString(margin + m.renderHeader())
	b.WriteString("\n")
	b.WriteString(margin + separatorStyle.Render(strings.Repeat("=", contentWidth)))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.renderHelp(margin))
	} else {
		b.WriteString(m.renderCounter(margin))
	}

	if m.editing != editNone {
		b.WriteString("\n")
		b.WriteString(margin + m.input.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(margin + errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	// Status bar
	b.WriteString("\n")
	b.WriteString(margin + separatorStyle.Render(strings.Repeat("─", contentWidth)))
	b.WriteString("\n")
	b.WriteString(margin + m.renderStatusBar())

	return b.String()
}

func (m *Model) renderHeader() string {
	dot := focusDotStyle.Render("●")
	if !m.focused {
		dot = blurDotStyle.Render("○")
	}
	mode := m.counter.Mode
	if mode == "" {
		mode = models.CountUp
	}
	return headerStyle.Render("tock") + " " + dot + " " + headerStyle.Render(mode.Label())
}

func (m *Model) renderCounter(margin string) string {
	var b strings.Builder
	c := m.counter

	name := c.Name
	if name == "" {
		name = dimStyle.Render("(no name)")
	} else {
		name = nameStyle.Render(name)
	}
	b.WriteString(margin + name + "\n\n")
	b.WriteString(margin + clockStyle.Render(format.Clock(c.Elapsed)) + "\n")

	if c.Mode == models.CountDown {
		b.WriteString(margin + dimStyle.Render("until "+format.TargetLabel(c.Reference.Local())) + "\n")
	} else {
		span := format.Decompose(c.Elapsed)
		b.WriteString(margin + dimStyle.Render(fmt.Sprintf("%s %s since %s", span.DaysLabel(), span, format.DateLabel(c.Reference.Local()))) + "\n")
	}

	b.WriteString("\n")
	if c.IsRunning {
		b.WriteString(margin + clockStyle.Render("● running") + "\n")
	} else {
		b.WriteString(margin + pausedStyle.Render("○ paused") + "\n")
	}
	return b.String()
}

func (m *Model) renderHelp(margin string) string {
	var b strings.Builder
	for _, hb := range counterBindings() {
		b.WriteString(fmt.Sprintf("%s%s  %s\n", margin, keyStyle.Render(fmt.Sprintf("%-6s", hb.key)), hb.desc))
	}
	return b.String()
}

func (m *Model) renderStatusBar() string {
	if m.editing != editNone {
		var parts []string
		for _, hb := range editBindings() {
			parts = append(parts, fmt.Sprintf("[%s] %s", hb.key, hb.desc))
		}
		return statusBarStyle.Render(strings.Join(parts, "  "))
	}
	action := "Start"
	if m.counter.IsRunning {
		action = "Pause"
	}
	return statusBarStyle.Render(fmt.Sprintf("[Space] %s  [Tab] Mode  [n] Name  [t] Target  [r] Reset  [s] Save  [?] Help  [q] Quit", action))
}
