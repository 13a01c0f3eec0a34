package device

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/serialport"
)

// Conn is an open lever speaking the firmware protocol.
type Conn struct {
	mu      sync.Mutex
	port    serialport.Port
	timeout time.Duration
	pending []byte
	closed  bool
}

var _ lever.Conn = (*Conn)(nil)

func newConn(port serialport.Port, timeout time.Duration) *Conn {
	return &Conn{port: port, timeout: timeout}
}

// SetForce asks the lever to resist with grams of force and waits for the
// acknowledgement.
func (c *Conn) SetForce(grams int) error {
	if grams < 0 || grams > MaxForce {
		return fmt.Errorf("%w: %d", ErrInvalidForce, grams)
	}
	line, err := c.exchange(setForceLine(grams))
	if err != nil {
		return err
	}
	return parseAck(line)
}

// ReadState samples the potentiometer and strain gauge.
func (c *Conn) ReadState() (lever.State, error) {
	line, err := c.exchange(readStateLine)
	if err != nil {
		return lever.State{}, err
	}
	return parseState(line)
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}

// Path returns the device path the connection was opened on.
func (c *Conn) Path() string { return c.port.Path() }

// exchange writes one request line and returns the reply without its line
// terminator. Stale input from an earlier timed out exchange is dropped first.
func (c *Conn) exchange(req string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrConnClosed
	}

	c.pending = c.pending[:0]
	if err := c.port.FlushInput(); err != nil {
		return "", fmt.Errorf("flush %s: %w", c.port.Path(), err)
	}
	if _, err := c.port.Write([]byte(req)); err != nil {
		return "", fmt.Errorf("write %s: %w", c.port.Path(), err)
	}
	return c.readLine()
}

func (c *Conn) readLine() (string, error) {
	deadline := time.Now().Add(c.timeout)
	buf := make([]byte, maxLineLength)

	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := bytes.ReplaceAll(c.pending[:i], []byte{'\r'}, nil)
			c.pending = c.pending[i+1:]
			return string(line), nil
		}
		if len(c.pending) > maxLineLength {
			c.pending = c.pending[:0]
			return "", ErrLineTooLong
		}
		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("%w within %v on %s", ErrNoResponse, c.timeout, c.port.Path())
		}

		n, err := c.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", c.port.Path(), err)
		}
		c.pending = append(c.pending, buf[:n]...)
	}
}
