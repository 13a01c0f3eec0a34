package lever_test

import (
	"errors"
	"testing"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/levertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pollInterval = time.Millisecond

func newSystem(t *testing.T, tr lever.Transport, opts ...lever.Option) *lever.System {
	t.Helper()
	opts = append([]lever.Option{
		lever.WithTransport(tr),
		lever.WithPollInterval(pollInterval),
	}, opts...)
	sys, err := lever.New(opts...)
	require.NoError(t, err)
	return sys
}

// pump drives the control side until cond holds.
func pump(t *testing.T, sys *lever.System, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sys.Update()
		if cond() {
			return
		}
		time.Sleep(pollInterval)
	}
	t.Fatal("condition not reached")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := lever.New(lever.WithPollInterval(0))
	assert.ErrorIs(t, err, lever.ErrInvalidPollInterval)

	_, err = lever.New(lever.WithTelemetryCapacity(0))
	assert.ErrorIs(t, err, lever.ErrInvalidCapacity)

	_, err = lever.New(lever.WithTransport(nil))
	assert.ErrorIs(t, err, lever.ErrNoTransport)
}

func TestInitializeAssignsSequentialHandles(t *testing.T) {
	sys := newSystem(t, levertest.NewTransport())

	first, err := sys.Initialize(3)
	require.NoError(t, err)
	assert.Equal(t, []lever.Handle{0, 1, 2}, first)
	assert.Equal(t, first, sys.Handles())

	_, err = sys.Initialize(1)
	assert.ErrorIs(t, err, lever.ErrAlreadyRunning)

	sys.Terminate()
	assert.False(t, sys.Running())

	second, err := sys.Initialize(2)
	require.NoError(t, err)
	assert.Equal(t, []lever.Handle{3, 4}, second, "handles are never reused")
	sys.Terminate()
}

func TestInitializeWithoutTransport(t *testing.T) {
	sys, err := lever.New()
	require.NoError(t, err)
	_, err = sys.Initialize(1)
	assert.ErrorIs(t, err, lever.ErrNoTransport)
}

func TestSetForceEchoesSynchronously(t *testing.T) {
	sys := newSystem(t, levertest.NewTransport())
	hs, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()

	sys.SetForce(hs[0], 50)
	assert.Equal(t, 50, sys.CommandedForce(hs[0]))
	_, ok := sys.CanonicalForce(hs[0])
	assert.False(t, ok)
}

func TestOpenRoundTripSuccess(t *testing.T) {
	tr := levertest.NewTransport()
	sys := newSystem(t, tr)
	hs, err := sys.Initialize(2)
	require.NoError(t, err)
	defer sys.Terminate()
	h := hs[1]

	sys.OpenConnection(h, "OK")
	assert.True(t, sys.IsPendingOpen(h))
	assert.False(t, sys.IsOpen(h))

	pump(t, sys, func() bool { return !sys.IsPendingOpen(h) })
	assert.True(t, sys.IsOpen(h))
	assert.Equal(t, []string{"OK"}, tr.Opened())
	assert.Equal(t, 9600, tr.Last().BaudRate())

	sys.SetForce(h, 80)
	pump(t, sys, func() bool {
		f, ok := sys.CanonicalForce(h)
		return ok && f == 80
	})
	pump(t, sys, func() bool {
		st, ok := sys.State(h)
		return ok && st.StrainGaugeReading == 80
	})

	assert.False(t, sys.IsOpen(hs[0]), "other lever untouched")
}

func TestOpenRoundTripFailure(t *testing.T) {
	sys := newSystem(t, levertest.FailingTransport())
	hs, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()
	h := hs[0]

	sys.OpenConnection(h, "OK")
	pump(t, sys, func() bool { return !sys.IsPendingOpen(h) })
	assert.False(t, sys.IsOpen(h))
	_, ok := sys.State(h)
	assert.False(t, ok)
}

func TestCloseResetsCachedValues(t *testing.T) {
	tr := levertest.NewTransport()
	sys := newSystem(t, tr)
	hs, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()
	h := hs[0]

	sys.OpenConnection(h, "a")
	sys.SetForce(h, 20)
	pump(t, sys, func() bool {
		_, ok := sys.State(h)
		f, fok := sys.CanonicalForce(h)
		return ok && fok && f == 20
	})

	sys.CloseConnection(h)
	pump(t, sys, func() bool { return !sys.IsOpen(h) })
	_, ok := sys.State(h)
	assert.False(t, ok)
	_, ok = sys.CanonicalForce(h)
	assert.False(t, ok)
	assert.Equal(t, 20, sys.CommandedForce(h), "local commanded force survives close")
	assert.False(t, tr.Last().IsOpen())
}

func TestCoalescedForceReachesDevice(t *testing.T) {
	tr := levertest.NewTransport()
	sys := newSystem(t, tr)
	hs, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()
	h := hs[0]

	sys.OpenConnection(h, "a")
	pump(t, sys, func() bool { return sys.IsOpen(h) })

	sys.SetForce(h, 5)
	sys.SetForce(h, 9)
	pump(t, sys, func() bool {
		f, ok := sys.CanonicalForce(h)
		return ok && f == 9
	})
	assert.NotContains(t, tr.Last().Forces(), 5)
}

func TestIOFailureDemotesValues(t *testing.T) {
	tr := levertest.NewTransport()
	sys := newSystem(t, tr)
	hs, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()
	h := hs[0]

	sys.OpenConnection(h, "a")
	pump(t, sys, func() bool {
		_, ok := sys.State(h)
		return ok
	})

	tr.Last().FailState(true)
	tr.Last().FailForce(true)
	pump(t, sys, func() bool {
		_, sok := sys.State(h)
		_, fok := sys.CanonicalForce(h)
		return !sok && !fok
	})
	assert.True(t, sys.IsOpen(h), "I/O failures do not close the lever")
}

// Per-lever ShareState observations must never go backwards, even when the
// channel is saturated and the worker keeps retrying.
func TestTelemetryOrderingUnderSaturation(t *testing.T) {
	tr := levertest.NewTransport()
	sys := newSystem(t, tr, lever.WithTelemetryCapacity(1))
	hs, err := sys.Initialize(2)
	require.NoError(t, err)
	defer sys.Terminate()

	for _, h := range hs {
		sys.OpenConnection(h, "p")
	}
	last := make(map[lever.Handle]float64)
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		sys.Update()
		for _, h := range hs {
			st, ok := sys.State(h)
			if !ok {
				continue
			}
			require.GreaterOrEqual(t, st.PotentiometerReading, last[h], "lever %s went backwards", h)
			last[h] = st.PotentiometerReading
		}
		time.Sleep(3 * time.Millisecond)
	}
	// The first lever polls first and wins the single slot; fairness across
	// levers is not guaranteed.
	assert.Greater(t, last[hs[0]], 0.0)
}

func TestTerminateIsBounded(t *testing.T) {
	tr := levertest.NewTransport()
	const delay = 20 * time.Millisecond
	tr.SetDelay(delay)
	sys := newSystem(t, tr, lever.WithPollInterval(50*time.Millisecond))
	hs, err := sys.Initialize(1)
	require.NoError(t, err)

	sys.OpenConnection(hs[0], "slow")
	pump(t, sys, func() bool { return sys.IsOpen(hs[0]) })

	start := time.Now()
	sys.Terminate()
	// One poll interval plus one in-flight iteration (two device calls).
	assert.Less(t, time.Since(start), 50*time.Millisecond+3*delay)
	assert.False(t, tr.Last().IsOpen(), "terminate closes open connections")

	sys.Terminate()
}

func TestUnknownHandlePanics(t *testing.T) {
	sys := newSystem(t, levertest.NewTransport())
	_, err := sys.Initialize(1)
	require.NoError(t, err)
	defer sys.Terminate()

	assert.PanicsWithError(t, "unknown lever handle: lever#42", func() {
		sys.IsOpen(42)
	})
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, lever.ErrUnknownHandle))
	}()
	sys.SetForce(42, 1)
}

func TestWorkerUsesTransportDefaults(t *testing.T) {
	conn := new(levertest.MockConn)
	conn.On("IsOpen").Return(true)
	conn.On("SetForce", 0).Return(nil)
	conn.On("ReadState").Return(lever.State{PotentiometerReading: 3}, nil)
	conn.On("Close").Return(nil).Once()

	tr := new(levertest.MockTransport)
	tr.On("DefaultBaudRate").Return(115200)
	tr.On("DefaultTimeout").Return(250 * time.Millisecond)
	tr.On("Open", "/dev/ttyUSB3", 115200, 250*time.Millisecond).Return(conn, nil).Once()

	sys := newSystem(t, tr)
	hs, err := sys.Initialize(1)
	require.NoError(t, err)

	sys.OpenConnection(hs[0], "/dev/ttyUSB3")
	pump(t, sys, func() bool {
		st, ok := sys.State(hs[0])
		return ok && st.PotentiometerReading == 3
	})
	sys.Terminate()

	tr.AssertExpectations(t)
	conn.AssertCalled(t, "Close")
	conn.AssertNotCalled(t, "SetForce", mock.MatchedBy(func(g int) bool { return g != 0 }))
}
