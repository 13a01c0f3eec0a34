// Package levertest provides deterministic lever transports for tests.
package levertest

import (
	"errors"
	"sync"
	"time"

	lever "github.com/allbin/go-lever"
)

// Errors returned by the stub transport.
var (
	ErrRefused     = errors.New("levertest: open refused")
	ErrForceFailed = errors.New("levertest: set force failed")
	ErrStateFailed = errors.New("levertest: read state failed")
)

// Transport is an in-memory lever.Transport. Every successful Open returns a
// new *Conn that tests can inspect and steer.
type Transport struct {
	mu      sync.Mutex
	openErr error
	delay   time.Duration
	opened  []string
	conns   []*Conn
}

var _ lever.Transport = (*Transport)(nil)

// NewTransport returns a transport whose opens always succeed.
func NewTransport() *Transport {
	return &Transport{}
}

// FailingTransport returns a transport whose opens always fail.
func FailingTransport() *Transport {
	return &Transport{openErr: ErrRefused}
}

// SetDelay makes Open and every later Conn call block for d.
func (t *Transport) SetDelay(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = d
}

// SetOpenError makes subsequent opens fail with err, or succeed if err is nil.
func (t *Transport) SetOpenError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openErr = err
}

func (t *Transport) Open(port string, baudRate int, timeout time.Duration) (lever.Conn, error) {
	t.mu.Lock()
	delay, openErr := t.delay, t.openErr
	t.opened = append(t.opened, port)
	t.mu.Unlock()

	time.Sleep(delay)
	if openErr != nil {
		return nil, openErr
	}

	c := &Conn{port: port, baudRate: baudRate, delay: delay, open: true}
	t.mu.Lock()
	t.conns = append(t.conns, c)
	t.mu.Unlock()
	return c, nil
}

func (t *Transport) DefaultBaudRate() int { return 9600 }

func (t *Transport) DefaultTimeout() time.Duration { return 100 * time.Millisecond }

// Opened returns the ports passed to Open, in call order.
func (t *Transport) Opened() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.opened...)
}

// Conns returns the connections handed out so far.
func (t *Transport) Conns() []*Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Conn(nil), t.conns...)
}

// Last returns the most recent connection, or nil.
func (t *Transport) Last() *Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// Conn is an in-memory lever connection. Its potentiometer reading counts
// the number of successful reads.
type Conn struct {
	mu        sync.Mutex
	port      string
	baudRate  int
	delay     time.Duration
	open      bool
	forces    []int
	reads     int
	failForce bool
	failState bool
}

var _ lever.Conn = (*Conn)(nil)

func (c *Conn) SetForce(grams int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	time.Sleep(c.delay)
	if c.failForce {
		return ErrForceFailed
	}
	c.forces = append(c.forces, grams)
	return nil
}

func (c *Conn) ReadState() (lever.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	time.Sleep(c.delay)
	if c.failState {
		return lever.State{}, ErrStateFailed
	}
	c.reads++
	var last int
	if len(c.forces) > 0 {
		last = c.forces[len(c.forces)-1]
	}
	return lever.State{
		PotentiometerReading: float64(c.reads),
		StrainGaugeReading:   float64(last),
	}, nil
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// Port returns the port the connection was opened on.
func (c *Conn) Port() string { return c.port }

// BaudRate returns the baud rate the connection was opened with.
func (c *Conn) BaudRate() int { return c.baudRate }

// Forces returns every force successfully written, oldest first.
func (c *Conn) Forces() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.forces...)
}

// Reads returns the number of successful state reads.
func (c *Conn) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// FailForce makes SetForce fail until called again with false.
func (c *Conn) FailForce(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failForce = fail
}

// FailState makes ReadState fail until called again with false.
func (c *Conn) FailState(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failState = fail
}
