package device_test

import (
	"testing"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/serialport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulator(t *testing.T, names ...string) *device.Simulator {
	t.Helper()
	sim, err := device.NewSimulator(nil, names...)
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	return sim
}

func TestSimulatorConn(t *testing.T) {
	sim := newSimulator(t, "left")

	conn, err := sim.Open("left", sim.DefaultBaudRate(), sim.DefaultTimeout())
	require.NoError(t, err)
	defer conn.Close()
	assert.True(t, conn.IsOpen())

	require.NoError(t, conn.SetForce(400))
	s, err := conn.ReadState()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.PotentiometerReading, float64(device.SimPotentiometerMin))
	assert.LessOrEqual(t, s.PotentiometerReading, float64(device.SimPotentiometerMax))
	assert.GreaterOrEqual(t, s.StrainGaugeReading, 400.0)

	assert.ErrorIs(t, conn.SetForce(device.MaxForce+1), device.ErrInvalidForce)
	assert.ErrorIs(t, conn.SetForce(-1), device.ErrInvalidForce)

	require.NoError(t, conn.Close())
	assert.False(t, conn.IsOpen())
	_, err = conn.ReadState()
	assert.ErrorIs(t, err, device.ErrConnClosed)
}

func TestSimulatorUnknownLever(t *testing.T) {
	sim := newSimulator(t, "left")

	_, err := sim.Open("right", sim.DefaultBaudRate(), sim.DefaultTimeout())
	assert.ErrorIs(t, err, serialport.ErrDeviceNotFound)
}

func TestSimulatorDuplicateName(t *testing.T) {
	_, err := device.NewSimulator(nil, "a", "a")
	assert.Error(t, err)
}

func TestSimulatorReopen(t *testing.T) {
	sim := newSimulator(t, "left")

	for i := 0; i < 2; i++ {
		conn, err := sim.Open("left", sim.DefaultBaudRate(), sim.DefaultTimeout())
		require.NoError(t, err)
		_, err = conn.ReadState()
		require.NoError(t, err, "round %d", i)
		require.NoError(t, conn.Close())
	}
}

func TestNoResponse(t *testing.T) {
	master, slave, err := serialport.OpenPTY()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer master.Close()

	conn, err := device.NewTransport(0, 0).Open(slave, device.DefaultBaudRate, device.DefaultTimeout)
	require.NoError(t, err)
	defer conn.Close()

	start := time.Now()
	_, err = conn.ReadState()
	assert.ErrorIs(t, err, device.ErrNoResponse)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSystemOverSimulator(t *testing.T) {
	sim := newSimulator(t, "left", "right")

	sys, err := lever.New(lever.WithTransport(sim), lever.WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	hs, err := sys.Initialize(2)
	require.NoError(t, err)
	defer sys.Terminate()

	sys.OpenConnection(hs[0], "left")
	sys.OpenConnection(hs[1], "right")
	sys.SetForce(hs[0], 250)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sys.Update()
		f, ok := sys.CanonicalForce(hs[0])
		_, hasState := sys.State(hs[1])
		if ok && f == 250 && hasState && sys.IsOpen(hs[1]) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	f, ok := sys.CanonicalForce(hs[0])
	require.True(t, ok)
	assert.Equal(t, 250, f)
	assert.True(t, sys.IsOpen(hs[0]))
	assert.False(t, sys.IsPendingOpen(hs[0]))

	s, ok := sys.State(hs[1])
	require.True(t, ok)
	assert.GreaterOrEqual(t, s.PotentiometerReading, float64(device.SimPotentiometerMin))
}
