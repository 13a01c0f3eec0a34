package models

import (
	"fmt"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/internal/config"
	"github.com/allbin/go-lever/internal/tui/components"
	"github.com/allbin/go-lever/internal/tui/styles"
	"github.com/allbin/go-lever/pull"
	"github.com/allbin/go-lever/record"
)

// InputMode is the dashboard's key handling mode
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeForce
)

func (m InputMode) String() string {
	switch m {
	case InputModeForce:
		return "FORCE"
	default:
		return "NORMAL"
	}
}

// DefaultForceStep is the change applied by one +/- key press.
const DefaultForceStep = 50

type leverState struct {
	handle   lever.Handle
	cfg      config.Lever
	detector *pull.Detector

	status   styles.LeverStatus
	position float64
	hasPos   bool
	lastSeen time.Time
}

// LeverModel holds the control side of a running lever.System. All methods
// must be called from the goroutine that calls System.Update.
type LeverModel struct {
	sys       *lever.System
	levers    []*leverState
	maxForce  int
	forceStep int
	selected  int
	mode      InputMode
	recorder  *record.Writer
}

// NewLeverModel pairs each handle with its configured lever.
func NewLeverModel(sys *lever.System, handles []lever.Handle, levers []config.Lever, p config.Pull, maxForce int) (*LeverModel, error) {
	if len(handles) != len(levers) {
		return nil, fmt.Errorf("%d handles for %d levers", len(handles), len(levers))
	}
	m := &LeverModel{sys: sys, maxForce: maxForce, forceStep: DefaultForceStep}
	for i, h := range handles {
		m.levers = append(m.levers, &leverState{
			handle:   h,
			cfg:      levers[i],
			detector: p.Detector(),
		})
	}
	return m, nil
}

// SetRecorder makes Tick write one sample per lever to w.
func (m *LeverModel) SetRecorder(w *record.Writer) { m.recorder = w }

func (m *LeverModel) SetForceStep(grams int) {
	if grams > 0 {
		m.forceStep = grams
	}
}

// Start commands each lever's configured force and opens its port.
func (m *LeverModel) Start() {
	for _, l := range m.levers {
		m.sys.SetForce(l.handle, l.cfg.Force)
		m.sys.OpenConnection(l.handle, l.cfg.Port)
		l.status = styles.StatusPending
	}
}

// Stop asks every lever to close.
func (m *LeverModel) Stop() {
	for _, l := range m.levers {
		m.sys.CloseConnection(l.handle)
	}
}

// Tick runs one control tick and returns what changed.
func (m *LeverModel) Tick(now time.Time) ([]components.Event, error) {
	m.sys.Update()

	var events []components.Event
	emit := func(l *leverState, kind components.EventKind, detail string) {
		events = append(events, components.Event{Time: now, Port: l.cfg.Port, Kind: kind, Detail: detail})
	}

	var recErr error
	for _, l := range m.levers {
		status := m.statusOf(l.handle)
		switch {
		case status == l.status:
		case status == styles.StatusOpen:
			emit(l, components.EventOpened, "")
		case status == styles.StatusClosed && l.status == styles.StatusPending:
			emit(l, components.EventOpenFailed, "could not open port")
		case status == styles.StatusClosed:
			emit(l, components.EventClosed, "")
		}
		l.status = status

		state, hasState := m.sys.State(l.handle)
		l.hasPos = hasState
		pulled := false
		if hasState {
			l.position = l.cfg.Position(state.PotentiometerReading)
			if l.detector.Update(l.position).Pulled {
				pulled = true
				emit(l, components.EventPull, fmt.Sprintf("pull #%d", l.detector.Count()))
			}
			l.lastSeen = now
		}

		if m.recorder != nil && recErr == nil {
			force, hasForce := m.sys.CanonicalForce(l.handle)
			recErr = m.recorder.Write(record.Sample{
				Time:     now,
				Handle:   l.handle,
				Port:     l.cfg.Port,
				Force:    force,
				HasForce: hasForce,
				State:    state,
				HasState: hasState,
				IsOpen:   status == styles.StatusOpen,
				Position: l.position,
				Pulled:   pulled,
			})
		}
	}
	return events, recErr
}

func (m *LeverModel) statusOf(h lever.Handle) styles.LeverStatus {
	switch {
	case m.sys.IsPendingOpen(h):
		return styles.StatusPending
	case m.sys.IsOpen(h):
		return styles.StatusOpen
	default:
		return styles.StatusClosed
	}
}

// Rows snapshots every lever for display.
func (m *LeverModel) Rows() []components.LeverRow {
	rows := make([]components.LeverRow, len(m.levers))
	for i, l := range m.levers {
		canonical, hasForce := m.sys.CanonicalForce(l.handle)
		state, hasState := m.sys.State(l.handle)
		rows[i] = components.LeverRow{
			Handle:      l.handle.String(),
			Port:        l.cfg.Port,
			Status:      l.status,
			Commanded:   m.sys.CommandedForce(l.handle),
			Canonical:   canonical,
			HasForce:    hasForce,
			Pot:         state.PotentiometerReading,
			Strain:      state.StrainGaugeReading,
			HasState:    hasState,
			Position:    l.position,
			HasPosition: l.hasPos,
			Pulls:       l.detector.Count(),
		}
	}
	return rows
}

// OpenCount returns how many levers are connected.
func (m *LeverModel) OpenCount() int {
	n := 0
	for _, l := range m.levers {
		if l.status == styles.StatusOpen {
			n++
		}
	}
	return n
}

func (m *LeverModel) Len() int { return len(m.levers) }

func (m *LeverModel) Selected() int { return m.selected }

// SelectedPort returns the port of the selected lever.
func (m *LeverModel) SelectedPort() string {
	if len(m.levers) == 0 {
		return ""
	}
	return m.levers[m.selected].cfg.Port
}

// Move shifts the selection by delta, wrapping around.
func (m *LeverModel) Move(delta int) {
	n := len(m.levers)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// OpenSelected reopens the selected lever on its configured port.
func (m *LeverModel) OpenSelected() components.Event {
	l := m.levers[m.selected]
	m.sys.OpenConnection(l.handle, l.cfg.Port)
	l.status = styles.StatusPending
	return components.Event{Time: time.Now(), Port: l.cfg.Port, Kind: components.EventOpened, Detail: "requested"}
}

// CloseSelected closes the selected lever.
func (m *LeverModel) CloseSelected() components.Event {
	l := m.levers[m.selected]
	m.sys.CloseConnection(l.handle)
	return components.Event{Time: time.Now(), Port: l.cfg.Port, Kind: components.EventClosed, Detail: "requested"}
}

// AdjustForce steps the selected lever's force by steps increments, clamped
// to the device range.
func (m *LeverModel) AdjustForce(steps int) components.Event {
	l := m.levers[m.selected]
	return m.SetForce(m.sys.CommandedForce(l.handle) + steps*m.forceStep)
}

// SetForce commands grams on the selected lever, clamped to the device range.
func (m *LeverModel) SetForce(grams int) components.Event {
	l := m.levers[m.selected]
	if grams < 0 {
		grams = 0
	}
	if grams > m.maxForce {
		grams = m.maxForce
	}
	m.sys.SetForce(l.handle, grams)
	return components.Event{Time: time.Now(), Port: l.cfg.Port, Kind: components.EventForce, Detail: fmt.Sprintf("%d g", grams)}
}

func (m *LeverModel) Mode() InputMode { return m.mode }

func (m *LeverModel) SetMode(mode InputMode) { m.mode = mode }

// Ticks returns the worker's completed poll iterations.
func (m *LeverModel) Ticks() uint64 { return m.sys.Ticks() }
