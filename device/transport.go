package device

import (
	"fmt"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/serialport"
)

const (
	DefaultBaudRate = 9600
	DefaultTimeout  = 100 * time.Millisecond
)

// Transport opens levers on serial devices.
type Transport struct {
	baudRate int
	timeout  time.Duration
	extra    []serialport.Option
}

var _ lever.Transport = (*Transport)(nil)

// NewTransport returns a Transport with the given defaults. Zero values
// select DefaultBaudRate and DefaultTimeout. extra is applied to every port
// after the baud rate and timeout.
func NewTransport(baudRate int, timeout time.Duration, extra ...serialport.Option) *Transport {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{baudRate: baudRate, timeout: timeout, extra: extra}
}

func (t *Transport) DefaultBaudRate() int { return t.baudRate }

func (t *Transport) DefaultTimeout() time.Duration { return t.timeout }

// Open opens path and discards anything the lever sent before it was opened.
func (t *Transport) Open(path string, baudRate int, timeout time.Duration) (lever.Conn, error) {
	conn, err := t.OpenConn(path, baudRate, timeout)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// OpenConn is Open returning the concrete connection.
func (t *Transport) OpenConn(path string, baudRate int, timeout time.Duration) (*Conn, error) {
	opts := append([]serialport.Option{
		serialport.WithBaudRate(baudRate),
		serialport.WithReadTimeout(termiosTimeout(timeout)),
	}, t.extra...)

	port, err := serialport.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := port.FlushInput(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush %s: %w", path, err)
	}
	return newConn(port, timeout), nil
}

// termiosTimeout rounds d up to the 100ms resolution of VTIME, clamped to the
// range the line discipline supports.
func termiosTimeout(d time.Duration) time.Duration {
	const step = 100 * time.Millisecond
	if d <= step {
		return step
	}
	if d >= serialport.MaxReadTimeout {
		return serialport.MaxReadTimeout
	}
	return (d + step - 1) / step * step
}
