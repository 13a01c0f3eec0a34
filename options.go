package lever

import (
	"io"
	"log/slog"
	"time"
)

// DefaultPollInterval is the pause between two worker iterations.
const DefaultPollInterval = 10 * time.Millisecond

// Options holds the configuration of a System
type Options struct {
	PollInterval      time.Duration
	TelemetryCapacity int
	Transport         Transport
	Logger            *slog.Logger
}

// Option is a functional option for configuring a System
type Option func(*Options) error

// DefaultOptions returns the options used when none are given. There is no
// default transport.
func DefaultOptions() Options {
	return Options{
		PollInterval:      DefaultPollInterval,
		TelemetryCapacity: DefaultTelemetryCapacity,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithPollInterval sets the worker poll interval
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return ErrInvalidPollInterval
		}
		o.PollInterval = d
		return nil
	}
}

// WithTelemetryCapacity sets how many worker → control messages are buffered
func WithTelemetryCapacity(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return ErrInvalidCapacity
		}
		o.TelemetryCapacity = n
		return nil
	}
}

// WithTransport sets the transport used to open lever connections
func WithTransport(t Transport) Option {
	return func(o *Options) error {
		if t == nil {
			return ErrNoTransport
		}
		o.Transport = t
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) error {
		if l != nil {
			o.Logger = l
		}
		return nil
	}
}
