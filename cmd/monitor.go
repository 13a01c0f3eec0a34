/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/internal/config"
	"github.com/allbin/go-lever/internal/tui/components"
	"github.com/allbin/go-lever/internal/tui/keys"
	"github.com/allbin/go-lever/internal/tui/models"
	"github.com/allbin/go-lever/internal/tui/styles"
	"github.com/allbin/go-lever/serialport"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard for every configured lever",
	Long: `Open every configured lever and show a live dashboard with the commanded
and confirmed force, sensor readings, normalized position and pull count of
each lever, above a log of connection and pull events.

Keys:
  ↑/↓ or k/j   select lever
  o / c        open / close the selected lever
  + / -        step the selected lever's force
  f            type a force for the selected lever (enter applies, esc cancels)
  x            clear the event log
  ?            toggle help
  q            quit

Log records go to the configured log file; without one they are discarded
so they do not disturb the dashboard.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		refresh, _ := cmd.Flags().GetDuration("refresh")
		step, _ := cmd.Flags().GetInt("step")

		if err := runMonitorTUI(refresh, step); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().Duration("refresh", 50*time.Millisecond, "Dashboard refresh and control tick interval")
	monitorCmd.Flags().Int("step", models.DefaultForceStep, "Force change in grams per +/- key press")
}

type monitorTickMsg time.Time

type monitorModel struct {
	levers    *models.LeverModel
	table     *components.LeverTable
	events    *components.EventLog
	input     *components.ForceInput
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.MonitorKeys
	refresh   time.Duration
	height    int
	ready     bool
}

func runMonitorTUI(refresh time.Duration, step int) error {
	cfg, log, done := setup(io.Discard)
	defer done()

	rig, err := startRig(cfg, log, cfg.Ports())
	if err != nil {
		return err
	}
	defer rig.stop()

	lm, err := models.NewLeverModel(rig.sys, rig.handles, cfg.Levers, cfg.Pull, device.MaxForce)
	if err != nil {
		return err
	}
	lm.SetForceStep(step)
	lm.Start()

	m := &monitorModel{
		levers:    lm,
		table:     components.NewLeverTable(80),
		events:    components.NewEventLog(80, 10),
		input:     components.NewForceInput(device.MaxForce),
		statusBar: components.NewStatusBar("Lever Monitor", connectionInfo(cfg)),
		help:      help.New(),
		keys:      keys.NewMonitorKeys(),
		refresh:   refresh,
	}
	m.table.SetRows(lm.Rows(), lm.Selected())

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func connectionInfo(cfg *config.Config) *components.ConnectionInfo {
	sc := serialport.DefaultConfig()
	return &components.ConnectionInfo{
		BaudRate:  cfg.Serial.BaudRate,
		DataBits:  sc.DataBits,
		StopBits:  sc.StopBits,
		Parity:    sc.Parity,
		Simulated: cfg.Simulate,
	}
}

func monitorTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return monitorTickMsg(t) })
}

func (m *monitorModel) Init() tea.Cmd {
	return monitorTick(m.refresh)
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true

	case monitorTickMsg:
		events, err := m.levers.Tick(time.Time(msg))
		m.events.Add(events...)
		if err != nil {
			m.statusBar.SetError(err)
		}
		m.table.SetRows(m.levers.Rows(), m.levers.Selected())
		cmds = append(cmds, monitorTick(m.refresh))

	case tea.KeyMsg:
		if m.levers.Mode() == models.InputModeForce {
			return m, m.updateForceInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.help.Width, 0)
		case key.Matches(msg, m.keys.Up):
			m.levers.Move(-1)
		case key.Matches(msg, m.keys.Down):
			m.levers.Move(1)
		case key.Matches(msg, m.keys.Open):
			m.events.Add(m.levers.OpenSelected())
		case key.Matches(msg, m.keys.Close):
			m.events.Add(m.levers.CloseSelected())
		case key.Matches(msg, m.keys.ForceUp):
			m.events.Add(m.levers.AdjustForce(1))
		case key.Matches(msg, m.keys.ForceDown):
			m.events.Add(m.levers.AdjustForce(-1))
		case key.Matches(msg, m.keys.SetForce):
			m.levers.SetMode(models.InputModeForce)
			m.statusBar.SetError(nil)
			cmds = append(cmds, m.input.Focus())
		case key.Matches(msg, m.keys.ClearLog):
			m.events.Clear()
		}
		m.table.SetRows(m.levers.Rows(), m.levers.Selected())
	}

	return m, tea.Batch(cmds...)
}

// updateForceInput handles keys while a force is being typed.
func (m *monitorModel) updateForceInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.leaveForceInput()
		return nil
	case key.Matches(msg, m.keys.Enter):
		grams, err := m.input.Grams()
		if err != nil {
			m.statusBar.SetError(err)
			return nil
		}
		m.input.AddToHistory(m.input.Value())
		m.events.Add(m.levers.SetForce(grams))
		m.table.SetRows(m.levers.Rows(), m.levers.Selected())
		m.leaveForceInput()
		return nil
	case key.Matches(msg, m.keys.Up):
		m.input.NavigateHistoryUp()
		return nil
	case key.Matches(msg, m.keys.Down):
		m.input.NavigateHistoryDown()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *monitorModel) leaveForceInput() {
	m.input.SetValue("")
	m.input.Blur()
	m.levers.SetMode(models.InputModeNormal)
}

// resize lays out the table, event log, input, help and status bar. A zero
// height keeps the last known height.
func (m *monitorModel) resize(width, height int) {
	if height > 0 {
		m.help.Width = width
		m.height = height
	}
	m.table.SetWidth(width)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)

	// Rounded table borders, the header and its separator add four lines
	tableHeight := m.levers.Len() + 4
	// Input box with border is three lines, status bar and help one each
	fixed := tableHeight + 3 + 1 + m.helpHeight()
	// Event log top border
	logHeight := m.height - fixed - 1
	if logHeight < 3 {
		logHeight = 3
	}
	m.events.SetSize(width, logHeight)
}

func (m *monitorModel) helpHeight() int {
	if m.help.ShowAll {
		return lipgloss.Height(m.help.View(m.keys))
	}
	return 1
}

func (m *monitorModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	line := components.StatusLine{
		Mode:      m.levers.Mode().String(),
		Port:      m.levers.SelectedPort(),
		Open:      m.levers.OpenCount(),
		Total:     m.levers.Len(),
		Ticks:     m.levers.Ticks(),
		Timestamp: time.Now().Format("15:04:05"),
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.table.View(),
		styles.ContentBorderStyle.Render(m.events.View()),
		m.input.View(m.levers.SelectedPort()),
		m.help.View(m.keys),
		m.statusBar.Render(line),
	)
}
