// Package tui renders the tracked timer and its records in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Timer is what the view drives
type Timer interface {
	Refresh(ctx context.Context) error
	StartTimer(ctx context.Context) error
	StopTimer(ctx context.Context) error
	Select(id string) error
	DeleteSelected(ctx context.Context) error
}

const actionTimeout = 30 * time.Second

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1)

	trackingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type stateMsg models.TimerState

type errMsg string

type channelClosedMsg struct{}

type actionDoneMsg struct {
	err error
}

// Model is the bubbletea model for the watch screen
type Model struct {
	timer  Timer
	states <-chan models.TimerState
	errs   <-chan string
	now    func() time.Time

	state  models.TimerState
	cursor int
	err    string
	width  int
}

// New creates the watch model. states and errs are the tracker's snapshot and error channels.
func New(timer Timer, states <-chan models.TimerState, errs <-chan string) Model {
	return Model{
		timer:  timer,
		states: states,
		errs:   errs,
		now:    time.Now,
	}
}

func waitForState(ch <-chan models.TimerState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return stateMsg(s)
	}
}

func waitForError(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return errMsg(e)
	}
}

func (m Model) run(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: fn(ctx)}
	}
}

// Init starts listening for snapshots and errors
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.states), waitForError(m.errs))
}

// Update handles keys and tracker notifications
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case stateMsg:
		m.state = models.TimerState(msg)
		if m.cursor >= len(m.state.Records) {
			m.cursor = max(len(m.state.Records)-1, 0)
		}
		return m, waitForState(m.states)
	case errMsg:
		m.err = string(msg)
		return m, waitForError(m.errs)
	case actionDoneMsg:
		// tracker failures arrive on the error channel
	case channelClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "s":
		m.err = ""
		if m.state.IsTracking {
			return m, m.run(m.timer.StopTimer)
		}
		return m, m.run(m.timer.StartTimer)
	case "r":
		m.err = ""
		return m, m.run(m.timer.Refresh)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Records)-1 {
			m.cursor++
		}
	case "d":
		if len(m.state.Records) == 0 {
			return m, nil
		}
		if err := m.timer.Select(m.state.Records[m.cursor].ID); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		return m, m.run(m.timer.DeleteSelected)
	}
	return m, nil
}

// View renders the header, the record list and the footer
func (m Model) View() string {
	now := m.now()

	var b strings.Builder
	b.WriteString(headerStyle.Render("flow"))
	b.WriteString("\n\n")

	switch {
	case m.state.IsLoading:
		b.WriteString("Loading...")
	case m.state.IsTracking:
		b.WriteString(trackingStyle.Render("● Tracking " + tracker.FormatSeconds(m.state.CurrentTimeSeconds)))
		if m.state.StartedAt != "" {
			b.WriteString(fmt.Sprintf("  started %s", m.state.StartedAt))
		}
	default:
		b.WriteString(idleStyle.Render("○ Not tracking"))
	}
	b.WriteString("\n\n")

	if len(m.state.Records) == 0 {
		b.WriteString(helpStyle.Render("No time records"))
		b.WriteString("\n")
	}
	for i, rec := range m.state.Records {
		b.WriteString(m.renderRecord(i, rec, now))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s start/stop • r refresh • d delete • ↑/↓ move • q quit"))
	return b.String()
}

func (m Model) renderRecord(i int, rec models.TimeRecord, now time.Time) string {
	end := rec.EndTime
	if rec.IsActive() {
		end = &now
	}
	line := fmt.Sprintf("%-20s %-20s %9s  %s",
		tracker.DisplayDateTime(rec.StartTime, now),
		tracker.DisplayDateTime(rec.EndTime, now),
		tracker.DisplayDifference(rec.StartTime, end),
		strings.Join(rec.Tags, ", "),
	)
	if i == m.cursor {
		return cursorStyle.Render("> " + line)
	}
	return "  " + line
}
