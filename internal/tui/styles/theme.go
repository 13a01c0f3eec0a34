package styles

import (
	"github.com/allbin/go-lever/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Lever status styles
	StatusOpenStyle = lipgloss.NewStyle().
			Foreground(colors.Open).
			Bold(true)

	StatusClosedStyle = lipgloss.NewStyle().
				Foreground(colors.Closed).
				Bold(true)

	StatusPendingStyle = lipgloss.NewStyle().
				Foreground(colors.Pending).
				Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	PullStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Pull)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)
)

// LeverStatus is the connection state shown for a lever.
type LeverStatus int

const (
	StatusClosed LeverStatus = iota
	StatusPending
	StatusOpen
)

func (s LeverStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusPending:
		return "opening"
	default:
		return "closed"
	}
}

// Symbol is the one-character indicator for s.
func (s LeverStatus) Symbol() string {
	switch s {
	case StatusOpen:
		return "●"
	case StatusPending:
		return "◐"
	default:
		return "○"
	}
}

func GetStatusStyle(status LeverStatus) lipgloss.Style {
	switch status {
	case StatusOpen:
		return StatusOpenStyle
	case StatusPending:
		return StatusPendingStyle
	default:
		return StatusClosedStyle
	}
}
