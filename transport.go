package lever

import "time"

// Transport establishes connections to lever devices.
type Transport interface {
	Open(port string, baudRate int, timeout time.Duration) (Conn, error)
	DefaultBaudRate() int
	DefaultTimeout() time.Duration
}

// Conn is a live connection to one lever device. A Conn is used by the
// worker goroutine only.
type Conn interface {
	// SetForce commands the lever to resist with the given force in grams.
	SetForce(grams int) error
	// ReadState reads the current sensor values.
	ReadState() (State, error)
	IsOpen() bool
	Close() error
}
