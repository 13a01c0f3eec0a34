package serialport

import "time"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	default:
		return "N"
	}
}

// MaxReadTimeout is the longest read timeout termios can express.
const MaxReadTimeout = 25500 * time.Millisecond

// Config holds the configuration for a serial port
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration // multiple of 100ms; 0 makes reads non-blocking
	DTR         *bool         // DTR level applied on open; nil leaves it alone
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns 9600 8N1 with a 100ms read timeout, the usual
// setting for lever firmware.
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, ok := baudRates[rate]; !ok {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(p Parity) Option {
	return func(c *Config) error {
		if p < ParityNone || p > ParityEven {
			return ErrInvalidConfig
		}
		c.Parity = p
		return nil
	}
}

// WithReadTimeout sets how long a read waits for the first byte. termios
// counts in tenths of a second, so d must be a multiple of 100ms.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 || d > MaxReadTimeout || d%(100*time.Millisecond) != 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = d
		return nil
	}
}

// WithDTR drives DTR to the given level right after opening. Many
// microcontroller boards reset when DTR toggles.
func WithDTR(level bool) Option {
	return func(c *Config) error {
		c.DTR = &level
		return nil
	}
}
