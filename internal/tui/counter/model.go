package counter

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chris/tock/internal/engine"
	"github.com/chris/tock/pkg/models"
)

// editField is the field the text input is currently bound to
type editField int

const (
	editNone editField = iota
	editName
	editTarget
)

// Model is the single-counter screen. All counter state lives in the engine;
// the model only keeps the last snapshot for rendering.
type Model struct {
	engine *engine.Engine
	ctx    context.Context

	// Input
	input   textinput.Model
	editing editField

	// Data
	counter models.Counter
	status  string

	showHelp bool
	refresh  time.Duration

	// UI dimensions
	width  int
	height int

	// Focus
	focused bool

	// For testing - allows injecting "now" for target parsing
	now func() time.Time
}

// Option is a functional option for configuring the Model
type Option func(*Model)

// WithNow sets the function used to get the current time (for testing)
func WithNow(fn func() time.Time) Option {
	return func(m *Model) {
		m.now = fn
	}
}

// WithRefresh sets how often the screen re-reads the engine
func WithRefresh(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.refresh = d
		}
	}
}

// WithContext sets the context used for engine reads
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// New creates a Model over e. When e has no active name the screen opens
// with the name field focused.
func New(e *engine.Engine, opts ...Option) *Model {
	input := textinput.New()
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		engine:  e,
		ctx:     context.Background(),
		input:   input,
		refresh: engine.DefaultInterval,
		focused: true,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.counter = e.Snapshot()
	if m.counter.Name == "" {
		m.beginEdit(editName)
	}

	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
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

	case refreshMsg:
		m.counter = m.engine.Snapshot()
		return m, m.scheduleRefresh()

	case selectedMsg:
		m.counter = msg.counter
		m.status = ""
		return m, nil

	case actionMsg:
		m.counter = m.engine.Snapshot()
		m.setErr(msg.err)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.editing != editNone {
		return m.handleEditKey(msg)
	}
	if m.showHelp {
		if msg.String() == "q" {
			return m.quit()
		}
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m.quit()

	case "?":
		m.showHelp = true
		return m, nil

	case " ", "space":
		return m, m.toggle()

	case "tab", "m":
		mode := models.CountDown
		if m.engine.Snapshot().Mode == models.CountDown {
			mode = models.CountUp
		}
		m.engine.SetMode(mode)
		m.counter = m.engine.Snapshot()
		return m, nil

	case "n":
		m.beginEdit(editName)
		return m, nil

	case "t":
		m.beginEdit(editTarget)
		return m, nil

	case "r":
		m.setErr(m.engine.Reset())
		m.counter = m.engine.Snapshot()
		return m, nil

	case "s":
		m.setErr(m.engine.Save())
		if m.status == "" && m.engine.Snapshot().Name != "" {
			m.status = "saved"
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endEdit()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		field := m.editing
		m.endEdit()

		switch field {
		case editName:
			name := models.CanonicalName(value)
			if name == "" {
				m.status = engine.ErrInvalidOperation.Error()
				m.beginEdit(editName)
				return m, nil
			}
			return m, m.selectName(name)

		case editTarget:
			target, err := models.ParseTarget(value, m.now())
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.engine.SetTarget(target)
			m.counter = m.engine.Snapshot()
			m.status = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// toggle starts an idle counter or pauses a running one. Start reads the
// store, so it runs as a command.
func (m *Model) toggle() tea.Cmd {
	snap := m.engine.Snapshot()
	if snap.IsRunning {
		m.engine.Pause()
		m.counter = m.engine.Snapshot()
		return nil
	}
	if snap.Name == "" {
		m.status = engine.ErrInvalidOperation.Error()
		return nil
	}

	e, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return actionMsg{err: e.Start(ctx)}
	}
}

func (m *Model) selectName(name string) tea.Cmd {
	e, ctx := m.engine, m.ctx
	return func() tea.Msg {
		e.SelectName(ctx, name)
		return selectedMsg{counter: e.Snapshot()}
	}
}

func (m *Model) beginEdit(field editField) {
	m.editing = field
	m.input.SetValue("")
	switch field {
	case editName:
		m.input.Prompt = "Name: "
		m.input.Placeholder = "counter name"
	case editTarget:
		m.input.Prompt = "Target: "
		m.input.Placeholder = "90m or 2026-03-01 12:00"
	}
	m.input.Focus()
}

func (m *Model) endEdit() {
	m.editing = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// quit closes the engine, pausing and persisting a running counter, before
// the program exits
func (m *Model) quit() (*Model, tea.Cmd) {
	m.engine.Close()
	m.counter = m.engine.Snapshot()
	return m, tea.Quit
}

// View implements tea.Model
func (m *Model) View() string {
	return m.renderView()
}

// Messages
type refreshMsg struct{}

type selectedMsg struct {
	counter models.Counter
}

type actionMsg struct {
	err error
}

// Getters for testing
func (m *Model) Counter() models.Counter {
	return m.counter
}

func (m *Model) Status() string {
	return m.status
}

func (m *Model) Editing() bool {
	return m.editing != editNone
}

func (m *Model) Focused() bool {
	return m.focused
}
