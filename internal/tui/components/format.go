package components

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/allbin/go-lever/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// EventKind classifies dashboard events
type EventKind int

const (
	EventOpened EventKind = iota
	EventOpenFailed
	EventClosed
	EventForce
	EventPull
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "OPEN"
	case EventOpenFailed:
		return "FAIL"
	case EventClosed:
		return "CLOSE"
	case EventForce:
		return "FORCE"
	case EventPull:
		return "PULL"
	default:
		return "ERROR"
	}
}

func (k EventKind) color() lipgloss.Color {
	switch k {
	case EventOpened:
		return colors.Open
	case EventOpenFailed, EventError:
		return colors.Red
	case EventClosed:
		return colors.Overlay0
	case EventForce:
		return colors.Blue
	default:
		return colors.Pull
	}
}

// Event is one line in the dashboard event log
type Event struct {
	Time   time.Time
	Port   string
	Kind   EventKind
	Detail string
}

// FormatEvent renders e as a single styled line.
func FormatEvent(e Event) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(e.Time.Format("15:04:05.000"))

	kind := lipgloss.NewStyle().
		Foreground(e.Kind.color()).
		Bold(true).
		Width(6).
		Render(e.Kind.String())

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Render(e.Port)

	parts := []string{timestamp, kind, port}
	if e.Detail != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Text).Render(e.Detail))
	}
	return strings.Join(parts, " ")
}

// FormatForce renders an optional force in grams.
func FormatForce(grams int, ok bool) string {
	if !ok {
		return "—"
	}
	return strconv.Itoa(grams) + " g"
}

// FormatReading renders an optional sensor reading.
func FormatReading(v float64, ok bool) string {
	if !ok {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// PositionBar draws position in [0, 1] as a bar of the given width.
func PositionBar(position float64, width int) string {
	if width < 1 {
		return ""
	}
	switch {
	case position < 0:
		position = 0
	case position > 1:
		position = 1
	}
	filled := int(position*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatPosition renders a position bar followed by its percentage.
func FormatPosition(position float64, ok bool, width int) string {
	if !ok {
		return strings.Repeat("░", width) + "    —"
	}
	return fmt.Sprintf("%s %3.0f%%", PositionBar(position, width), position*100)
}
