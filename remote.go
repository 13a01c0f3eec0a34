package lever

import (
	"fmt"
	"log/slog"
)

// remoteInstance is the worker-side state of one lever. It is read and
// written by the worker goroutine only.
type remoteInstance struct {
	conn           Conn
	commandedForce int
	confirmedForce int
	hasForce       bool
	state          State
	hasState       bool
	openResult     *OpenError
	needSendState  bool
}

func (r *remoteInstance) isOpen() bool {
	return r.conn != nil && r.conn.IsOpen()
}

// reset closes the connection and returns the instance to its zero value.
func (r *remoteInstance) reset(log *slog.Logger) {
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Debug("close lever connection", slog.Any("error", err))
		}
	}
	*r = remoteInstance{}
}

func (r *remoteInstance) shareState(h Handle) ShareState {
	return ShareState{
		Handle:   h,
		Force:    r.confirmedForce,
		HasForce: r.hasForce,
		State:    r.state,
		HasState: r.hasState,
		IsOpen:   r.isOpen(),
	}
}

// process applies one command and reports whether the result must be shared.
// Accepting a new force is silent; only executing it produces telemetry.
func (r *remoteInstance) process(msg Message, tr Transport, log *slog.Logger) bool {
	switch m := msg.(type) {
	case SetForce:
		r.commandedForce = m.Force
		return false

	case OpenPort:
		if r.openResult != nil {
			panic(fmt.Errorf("%w: port %s", ErrOpenResultPending, m.Port))
		}
		r.reset(log)
		conn, err := tr.Open(m.Port, tr.DefaultBaudRate(), tr.DefaultTimeout())
		result := OpenErrorNone
		if err != nil {
			result = OpenErrorFailedToOpen
			log.Info("open lever port failed", slog.String("port", m.Port), slog.Any("error", err))
		} else {
			r.conn = conn
			log.Info("opened lever port", slog.String("port", m.Port))
		}
		r.openResult = &result
		return true

	case ClosePort:
		r.reset(log)
		return true

	default:
		panic(fmt.Errorf("%w: %T", ErrUnexpectedMessage, msg))
	}
}

// poll runs one worker step for the lever paired with mb.
func (r *remoteInstance) poll(h Handle, mb *Mailbox, tel *Telemetry, tr Transport, log *slog.Logger) {
	// A new command may issue another open; hold it until the previous
	// result has been delivered.
	if r.openResult == nil {
		if msg, ok := mb.Read(); ok {
			if r.process(msg, tr, log) {
				r.needSendState = true
			}
		}
	}

	open := r.isOpen()
	if r.openResult != nil {
		if tel.TryWrite(PortStatus{Handle: h, Err: *r.openResult, IsOpen: open}) {
			r.openResult = nil
		}
	}

	if open {
		r.needSendState = true

		if err := r.conn.SetForce(r.commandedForce); err != nil {
			if r.hasForce {
				log.Debug("set force failed", slog.String("lever", h.String()), slog.Any("error", err))
			}
			r.hasForce = false
		} else {
			r.confirmedForce = r.commandedForce
			r.hasForce = true
		}

		if state, err := r.conn.ReadState(); err != nil {
			if r.hasState {
				log.Debug("read state failed", slog.String("lever", h.String()), slog.Any("error", err))
			}
			r.hasState = false
		} else {
			r.state = state
			r.hasState = true
		}
	}

	if r.needSendState {
		if tel.TryWrite(r.shareState(h)) {
			r.needSendState = false
		}
	}
}
