package board

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chris/tock/internal/aggregate"
	"github.com/chris/tock/internal/clock"
)

// Model is the read-only board of count-up counters. It never writes to the
// store; boards arrive from an aggregator watch.
type Model struct {
	agg    *aggregate.Aggregator
	stop   clock.Cancel
	boards <-chan aggregate.Board

	// Data
	board  aggregate.Board
	loaded bool

	// Selection
	selectedIdx int
	showHelp    bool

	// UI dimensions
	width  int
	height int

	// Focus
	focused bool
}

// New creates a Model over agg. Polling starts in Init and stops on quit.
func New(agg *aggregate.Aggregator) *Model {
	return &Model{
		agg:     agg,
		stop:    clock.Noop,
		focused: true,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.boards, m.stop = m.agg.Watch()
	return m.waitForBoard
}

// waitForBoard blocks until the aggregator publishes the next board
func (m *Model) waitForBoard() tea.Msg {
	b, ok := <-m.boards
	if !ok {
		return watchClosedMsg{}
	}
	return boardMsg{board: b}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case boardMsg:
		m.board = msg.board
		m.loaded = true
		if m.selectedIdx >= len(m.board.Cards) {
			m.selectedIdx = max(0, len(m.board.Cards)-1)
		}
		if m.boards == nil {
			return m, nil
		}
		return m, m.waitForBoard

	case watchClosedMsg:
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "ctrl+c":
			return m.quit()
		}
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m.quit()

	case "?":
		m.showHelp = true
		return m, nil

	case "j", "down", "l", "right":
		if m.selectedIdx < len(m.board.Cards)-1 {
			m.selectedIdx++
		}
		return m, nil

	case "k", "up", "h", "left":
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil
	}

	return m, nil
}

// quit stops polling before the program exits
func (m *Model) quit() (*Model, tea.Cmd) {
	m.stop()
	return m, tea.Quit
}

// Close stops polling; no poll runs after it returns. It is safe to call
// after quit.
func (m *Model) Close() {
	m.stop()
}

// View implements tea.Model
func (m *Model) View() string {
	return m.renderView()
}

// Messages
type boardMsg struct {
	board aggregate.Board
}

type watchClosedMsg struct{}

// Getters for testing
func (m *Model) Board() aggregate.Board {
	return m.board
}

func (m *Model) SelectedIdx() int {
	return m.selectedIdx
}

func (m *Model) Focused() bool {
	return m.focused
}
