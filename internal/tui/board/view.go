package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/chris/tock/internal/aggregate"
)

// Styles
var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	focusDotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	blurDotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)
	cardNameStyle = lipgloss.NewStyle().Bold(true)
	selectedCard  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("13"))
	plainCard     = lipgloss.NewStyle().Border(lipgloss.HiddenBorder())
)

// cardColors alternate by card position
var cardColors = []lipgloss.Color{"#FFB6B9", "#C7CEEA"}

const (
	marginX   = 2
	cardWidth = 22
)

func (m *Model) renderView() string {
	var b strings.Builder

	width := m.width
	if width == 0 {
		width = 80
	}

	// Content width excludes left and right margins
	contentWidth := width - 2*marginX
	if contentWidth < cardWidth+4 {
		contentWidth = cardWidth + 4
	}
	margin := strings.Repeat(" ", marginX)

	// Header
	b.WriteString(margin + m.renderHeader())
	b.WriteString("\n")
	b.WriteString(margin + separatorStyle.Render(strings.Repeat("=", contentWidth)))
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		for _, hb := range boardBindings() {
			b.WriteString(fmt.Sprintf("%s%s  %s\n", margin, keyStyle.Render(fmt.Sprintf("%-3s", hb.key)), hb.desc))
		}
	case !m.loaded:
		b.WriteString(margin + emptyStyle.Render("Loading...") + "\n")
	case m.board.Empty:
		b.WriteString(margin + emptyStyle.Render("No counters saved.") + "\n")
	case len(m.board.Cards) == 0:
		b.WriteString(margin + emptyStyle.Render("No counters counting up.") + "\n")
	default:
		b.WriteString(indent(m.renderCards(contentWidth), margin))
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
	return headerStyle.Render("Counting Up") + " " + dot + " " + headerStyle.Render(fmt.Sprintf("%d counters", len(m.board.Cards)))
}

// renderCards lays cards out left to right, wrapping to fit width
func (m *Model) renderCards(width int) string {
	perRow := width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	var row []string
	for i, card := range m.board.Cards {
		row = append(row, renderCard(card, i, i == m.selectedIdx))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(card aggregate.Card, idx int, selected bool) string {
	name := card.Name
	if card.Running {
		name = "● " + name
	}
	name = truncateWithEllipsis(name, cardWidth-2)

	body := strings.Join([]string{
		cardNameStyle.Render(name),
		card.Span.DaysLabel(),
		card.Span.String(),
		"since " + card.ReferenceDateLabel,
	}, "\n")

	inner := cardStyle.
		Background(cardColors[idx%len(cardColors)]).
		Width(cardWidth).
		Render(body)

	if selected {
		return selectedCard.Render(inner)
	}
	return plainCard.Render(inner)
}

// truncateWithEllipsis truncates a string to maxWidth, adding … if truncated
func truncateWithEllipsis(s string, maxWidth int) string {
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth-1, "") + "…"
}

func indent(block, margin string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = margin + line
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *Model) renderStatusBar() string {
	return statusBarStyle.Render("[j/k] Select  [?] Help  [q] Quit")
}
