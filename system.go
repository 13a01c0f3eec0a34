package lever

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
)

// System owns a set of levers and the worker goroutine that talks to them.
//
// Initialize, Terminate, Update and the per-lever operations must all be
// called from the same control goroutine.
type System struct {
	opts Options
	log  *slog.Logger

	nextHandle Handle
	running    bool

	// locals[i] and remotes[i] describe the same lever for as long as the
	// worker runs.
	locals    []*localInstance
	remotes   []*remoteInstance
	telemetry *Telemetry

	cancel context.CancelFunc
	wg     conc.WaitGroup
	done   chan struct{}
	ticks  atomic.Uint64
}

// New creates a stopped System.
func New(opts ...Option) (*System, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &System{
		opts: o,
		log:  o.Logger.With(slog.String("component", "lever")),
	}, nil
}

// Initialize allocates n levers, starts the worker and returns the new
// handles in creation order.
func (s *System) Initialize(n int) ([]Handle, error) {
	if s.running {
		return nil, ErrAlreadyRunning
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLeverCount, n)
	}
	if s.opts.Transport == nil {
		return nil, ErrNoTransport
	}

	handles := make([]Handle, 0, n)
	s.locals = make([]*localInstance, 0, n)
	s.remotes = make([]*remoteInstance, 0, n)
	for i := 0; i < n; i++ {
		h := s.nextHandle
		s.nextHandle++
		s.locals = append(s.locals, &localInstance{handle: h})
		s.remotes = append(s.remotes, &remoteInstance{})
		handles = append(handles, h)
	}
	s.telemetry = NewTelemetry(s.opts.TelemetryCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	locals, remotes, tel, done := s.locals, s.remotes, s.telemetry, s.done
	s.wg.Go(func() {
		defer close(done)
		s.worker(ctx, locals, remotes, tel)
	})

	s.log.Debug("lever system started",
		slog.Int("levers", n),
		slog.Duration("poll_interval", s.opts.PollInterval))
	return handles, nil
}

// Terminate stops and joins the worker, then closes every open connection
// and forgets all levers. The call returns after at most one in-flight poll
// iteration, including any device I/O inside it.
func (s *System) Terminate() {
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.wg.Wait()

	for _, r := range s.remotes {
		r.reset(s.log)
	}
	s.locals = nil
	s.remotes = nil
	s.telemetry = nil
	s.log.Debug("lever system stopped", slog.Uint64("ticks", s.ticks.Load()))
}

// Running reports whether the worker has been started and not terminated.
func (s *System) Running() bool {
	return s.running
}

// Ticks returns the number of completed worker iterations.
func (s *System) Ticks() uint64 {
	return s.ticks.Load()
}

// Handles returns the handles of all levers in creation order.
func (s *System) Handles() []Handle {
	out := make([]Handle, len(s.locals))
	for i, l := range s.locals {
		out[i] = l.handle
	}
	return out
}

func (s *System) worker(ctx context.Context, locals []*localInstance, remotes []*remoteInstance, tel *Telemetry) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		for i, r := range remotes {
			if ctx.Err() != nil {
				return
			}
			r.poll(locals[i].handle, &locals[i].mailbox, tel, s.opts.Transport, s.log)
		}
		s.ticks.Inc()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Update must be called exactly once per control tick. It acknowledges
// delivered commands, publishes at most one new command per lever and
// applies all available telemetry.
func (s *System) Update() {
	if !s.running {
		return
	}
	select {
	case <-s.done:
		// The worker only exits early by panicking; surface it here.
		s.running = false
		s.wg.Wait()
	default:
	}

	for _, l := range s.locals {
		l.flush()
	}

	for _, msg := range s.telemetry.Drain() {
		switch m := msg.(type) {
		case ShareState:
			if l := s.find(m.Handle); l != nil {
				l.applyShareState(m)
			}
		case PortStatus:
			if l := s.find(m.Handle); l != nil {
				l.applyPortStatus(m)
			}
		default:
			panic(fmt.Errorf("%w: %T", ErrUnexpectedMessage, msg))
		}
	}
}

func (s *System) find(h Handle) *localInstance {
	for _, l := range s.locals {
		if l.handle == h {
			return l
		}
	}
	return nil
}

func (s *System) mustFind(h Handle) *localInstance {
	l := s.find(h)
	if l == nil {
		panic(fmt.Errorf("%w: %s", ErrUnknownHandle, h))
	}
	return l
}

// SetForce commands a new force in grams. CommandedForce reflects it
// immediately; the device is updated on a later Update.
func (s *System) SetForce(h Handle, grams int) {
	s.mustFind(h).setForce(grams)
}

// OpenConnection requests that the lever connect to port. IsPendingOpen
// reports true until the worker has answered.
func (s *System) OpenConnection(h Handle, port string) {
	s.mustFind(h).openConnection(port)
}

// CloseConnection requests that the lever drop its connection.
func (s *System) CloseConnection(h Handle) {
	s.mustFind(h).closeConnection()
}

// IsPendingOpen reports whether an open request has not been answered yet.
func (s *System) IsPendingOpen(h Handle) bool {
	return s.mustFind(h).awaitingOpen
}

// IsOpen reports whether the lever was connected at the last telemetry.
func (s *System) IsOpen(h Handle) bool {
	return s.mustFind(h).isOpen
}

// CommandedForce returns the force last passed to SetForce.
func (s *System) CommandedForce(h Handle) int {
	return s.mustFind(h).commandedForce
}

// CanonicalForce returns the force the device last confirmed. ok is false
// when the confirmed force is unknown.
func (s *System) CanonicalForce(h Handle) (grams int, ok bool) {
	l := s.mustFind(h)
	return l.canonicalForce, l.hasForce
}

// State returns the last sensor reading. ok is false when it is unknown.
func (s *System) State(h Handle) (State, bool) {
	l := s.mustFind(h)
	return l.state, l.hasState
}
