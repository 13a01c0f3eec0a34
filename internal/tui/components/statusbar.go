package components

import (
	"fmt"

	"github.com/allbin/go-lever/internal/tui/colors"
	"github.com/allbin/go-lever/serialport"
	"github.com/charmbracelet/lipgloss"
)

// ConnectionInfo describes the serial settings used for every lever
type ConnectionInfo struct {
	BaudRate  int
	DataBits  int
	StopBits  int
	Parity    serialport.Parity
	Simulated bool
}

type StatusBar struct {
	title          string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title string, info *ConnectionInfo) *StatusBar {
	return &StatusBar{title: title, connectionInfo: info}
}

func (sb *StatusBar) SetError(err error) {
	sb.err = err
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// StatusLine holds the live values shown in the status bar
type StatusLine struct {
	Mode      string
	Port      string
	Open      int
	Total     int
	Ticks     uint64
	Timestamp string
}

// Render draws the status bar: mode, selected port, open count, serial
// settings, worker ticks and the time.
func (sb *StatusBar) Render(line StatusLine) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := colors.Blue
	if line.Mode == "FORCE" {
		modeBackground = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(line.Mode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(line.Port)

	var indicator lipgloss.Style
	switch {
	case sb.err != nil:
		indicator = lipgloss.NewStyle().Foreground(colors.Red)
	case line.Open == line.Total && line.Total > 0:
		indicator = lipgloss.NewStyle().Foreground(colors.Open)
	case line.Open > 0:
		indicator = lipgloss.NewStyle().Foreground(colors.Pending)
	default:
		indicator = lipgloss.NewStyle().Foreground(colors.Closed)
	}
	openCount := indicator.Render(fmt.Sprintf("%d/%d open", line.Open, line.Total))

	connInfo := "⚡ lever"
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %d baud %d%s%d",
			sb.connectionInfo.BaudRate,
			sb.connectionInfo.DataBits,
			sb.connectionInfo.Parity,
			sb.connectionInfo.StopBits)
		if sb.connectionInfo.Simulated {
			connInfo += " (simulated)"
		}
	}
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	ticks := lipgloss.NewStyle().
		Foreground(colors.Overlay0).
		Padding(0, 1).
		Render(fmt.Sprintf("%d polls", line.Ticks))

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(line.Timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, openCount, divider)
	if sb.err != nil {
		errText := lipgloss.NewStyle().Foreground(colors.Red).Padding(0, 1).Render(sb.err.Error())
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, leftSide, errText)
	}
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, ticks, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

// Title returns the dashboard title.
func (sb *StatusBar) Title() string { return sb.title }
