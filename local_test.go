package lever

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliver plays the worker side of one handshake.
func deliver(t *testing.T, l *localInstance) Message {
	t.Helper()
	msg, ok := l.mailbox.Read()
	require.True(t, ok, "nothing published")
	return msg
}

func TestFlushPrecedence(t *testing.T) {
	l := &localInstance{handle: 7}
	l.setForce(30)
	l.closeConnection()
	l.openConnection("/dev/ttyACM0")

	l.flush()
	assert.Equal(t, OpenPort{Port: "/dev/ttyACM0"}, deliver(t, l))
	assert.True(t, l.pendingClose, "close must stay pending")
	require.NotNil(t, l.pendingForce)

	// Delivered but not yet acknowledged: flush acknowledges and publishes
	// the next command in the same call.
	l.flush()
	assert.Equal(t, ClosePort{}, deliver(t, l))

	l.flush()
	assert.Equal(t, SetForce{Force: 30}, deliver(t, l))

	l.flush()
	assert.Equal(t, MailboxEmpty, l.mailbox.State())
}

func TestFlushOnePerCall(t *testing.T) {
	l := &localInstance{}
	l.openConnection("a")
	l.closeConnection()

	l.flush()
	l.flush() // still pending, nothing else may be published
	assert.Equal(t, OpenPort{Port: "a"}, deliver(t, l))
	assert.True(t, l.pendingClose)
}

func TestSetForceCoalesces(t *testing.T) {
	l := &localInstance{}
	l.setForce(5)
	l.setForce(9)
	assert.Equal(t, 9, l.commandedForce)

	l.flush()
	assert.Equal(t, SetForce{Force: 9}, deliver(t, l))

	l.flush()
	_, ok := l.mailbox.Read()
	assert.False(t, ok, "only the latest force is published")
}

func TestOpenCoalescesPorts(t *testing.T) {
	l := &localInstance{}
	l.openConnection("a")
	l.openConnection("b")
	l.flush()
	assert.Equal(t, OpenPort{Port: "b"}, deliver(t, l))
	assert.Equal(t, 1, l.opensInFlight)
}

func TestPortStatusClearsAwaitingOpen(t *testing.T) {
	l := &localInstance{handle: 3}
	l.openConnection("a")
	assert.True(t, l.awaitingOpen)
	l.flush()

	l.applyPortStatus(PortStatus{Handle: 3, IsOpen: true})
	assert.False(t, l.awaitingOpen)
	assert.True(t, l.isOpen)
}

func TestPortStatusWithSecondOpenQueued(t *testing.T) {
	l := &localInstance{handle: 3}
	l.openConnection("a")
	l.flush()
	deliver(t, l)
	l.openConnection("b")

	l.applyPortStatus(PortStatus{Handle: 3, Err: OpenErrorFailedToOpen})
	assert.True(t, l.awaitingOpen, "second open still pending")

	l.flush()
	deliver(t, l)
	l.applyPortStatus(PortStatus{Handle: 3, IsOpen: true})
	assert.False(t, l.awaitingOpen)
	assert.True(t, l.isOpen)
}

func TestUnexpectedPortStatusPanics(t *testing.T) {
	l := &localInstance{handle: 3}
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	}()
	l.applyPortStatus(PortStatus{Handle: 3})
}
