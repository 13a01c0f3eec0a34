package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxEvents bounds the event log history.
const MaxEvents = 500

// EventLog is a scrolling view of recent lever events
type EventLog struct {
	viewport viewport.Model
	lines    []string
}

func NewEventLog(width, height int) *EventLog {
	return &EventLog{viewport: viewport.New(width, height)}
}

func (l *EventLog) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *EventLog) Add(events ...Event) {
	if len(events) == 0 {
		return
	}
	for _, e := range events {
		l.lines = append(l.lines, FormatEvent(e))
	}
	if over := len(l.lines) - MaxEvents; over > 0 {
		l.lines = l.lines[over:]
	}
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

func (l *EventLog) Len() int { return len(l.lines) }

func (l *EventLog) Clear() {
	l.lines = nil
	l.viewport.SetContent("")
}

func (l *EventLog) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only pass resizes so the viewport does not consume our key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return l.viewport.Update(msg)
	default:
		return l.viewport, nil
	}
}

func (l *EventLog) View() string {
	return l.viewport.View()
}
