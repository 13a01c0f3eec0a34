package models

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/internal/config"
	"github.com/allbin/go-lever/internal/tui/components"
	"github.com/allbin/go-lever/internal/tui/styles"
	"github.com/allbin/go-lever/levertest"
	"github.com/allbin/go-lever/record"
)

var testLevers = []config.Lever{
	{Port: "/dev/lever0", Force: 100, PositionMin: 0, PositionMax: 100},
	{Port: "/dev/lever1", PositionMin: 0, PositionMax: 100},
}

func newModel(t *testing.T, tr lever.Transport) *LeverModel {
	t.Helper()
	sys, err := lever.New(lever.WithTransport(tr), lever.WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	hs, err := sys.Initialize(len(testLevers))
	require.NoError(t, err)
	t.Cleanup(sys.Terminate)

	m, err := NewLeverModel(sys, hs, testLevers, config.Default().Pull, 1000)
	require.NoError(t, err)
	return m
}

// tickUntil runs ticks until cond holds, collecting the events seen.
func tickUntil(t *testing.T, m *LeverModel, cond func([]components.Event) bool) []components.Event {
	t.Helper()
	var all []components.Event
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		events, err := m.Tick(time.Now())
		require.NoError(t, err)
		all = append(all, events...)
		if cond(all) {
			return all
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached; events: %+v", all)
	return nil
}

func hasKind(kind components.EventKind, port string) func([]components.Event) bool {
	return func(events []components.Event) bool {
		for _, e := range events {
			if e.Kind == kind && e.Port == port {
				return true
			}
		}
		return false
	}
}

func TestNewLeverModelMismatch(t *testing.T) {
	_, err := NewLeverModel(nil, []lever.Handle{0}, nil, config.Default().Pull, 1000)
	assert.Error(t, err)
}

func TestStartOpensAndPulls(t *testing.T) {
	m := newModel(t, levertest.NewTransport())
	m.Start()

	rows := m.Rows()
	assert.Equal(t, styles.StatusPending, rows[0].Status)
	assert.Equal(t, 100, rows[0].Commanded)

	tickUntil(t, m, hasKind(components.EventOpened, "/dev/lever1"))
	assert.Equal(t, 2, m.OpenCount())

	// The stub potentiometer counts reads, so the lever sweeps upward.
	events := tickUntil(t, m, hasKind(components.EventPull, "/dev/lever0"))
	assert.True(t, hasKind(components.EventPull, "/dev/lever0")(events))

	rows = m.Rows()
	assert.Equal(t, 1, rows[0].Pulls)
	assert.True(t, rows[0].HasPosition)
	assert.True(t, rows[0].HasState)
	assert.Equal(t, "lever#0", rows[0].Handle)

	m.Stop()
	tickUntil(t, m, hasKind(components.EventClosed, "/dev/lever0"))
	assert.Equal(t, 0, m.OpenCount())
}

func TestOpenFailure(t *testing.T) {
	m := newModel(t, levertest.FailingTransport())
	m.Start()

	tickUntil(t, m, hasKind(components.EventOpenFailed, "/dev/lever0"))
	assert.Equal(t, styles.StatusClosed, m.Rows()[0].Status)
}

func TestSelectionAndForce(t *testing.T) {
	m := newModel(t, levertest.NewTransport())

	assert.Equal(t, "/dev/lever0", m.SelectedPort())
	m.Move(-1)
	assert.Equal(t, 1, m.Selected())
	m.Move(1)
	assert.Equal(t, 0, m.Selected())

	m.SetForceStep(100)
	e := m.AdjustForce(3)
	assert.Equal(t, components.EventForce, e.Kind)
	assert.Equal(t, 300, m.Rows()[0].Commanded)

	m.AdjustForce(-10)
	assert.Equal(t, 0, m.Rows()[0].Commanded)

	m.SetForce(5000)
	assert.Equal(t, 1000, m.Rows()[0].Commanded)

	m.SetMode(InputModeForce)
	assert.Equal(t, "FORCE", m.Mode().String())
}

func TestManualOpenClose(t *testing.T) {
	m := newModel(t, levertest.NewTransport())

	m.Move(1)
	m.OpenSelected()
	assert.Equal(t, styles.StatusPending, m.Rows()[1].Status)
	tickUntil(t, m, hasKind(components.EventOpened, "/dev/lever1"))

	m.CloseSelected()
	tickUntil(t, m, hasKind(components.EventClosed, "/dev/lever1"))
	assert.Equal(t, styles.StatusClosed, m.Rows()[1].Status)
}

func TestRecorder(t *testing.T) {
	m := newModel(t, levertest.NewTransport())
	var buf bytes.Buffer
	w := record.NewWriter(&buf)
	m.SetRecorder(w)
	m.Start()

	tickUntil(t, m, hasKind(components.EventOpened, "/dev/lever0"))
	require.Positive(t, w.Count())
	assert.Zero(t, w.Count()%2, "one sample per lever per tick")

	samples, err := record.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, samples, w.Count())
	assert.Equal(t, "/dev/lever0", samples[0].Port)
	assert.Equal(t, w.Session(), samples[0].Session)
}
