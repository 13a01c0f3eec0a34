package lever

import "errors"

// Predefined errors. The protocol violations are raised as panics wrapping
// these values and indicate misuse of the API, never device behavior.
var (
	ErrAlreadyRunning      = errors.New("lever system already running")
	ErrInvalidLeverCount   = errors.New("invalid lever count")
	ErrInvalidPollInterval = errors.New("invalid poll interval")
	ErrInvalidCapacity     = errors.New("invalid telemetry capacity")
	ErrNoTransport         = errors.New("no transport configured")

	// Protocol violations
	ErrUnknownHandle     = errors.New("unknown lever handle")
	ErrMailboxBusy       = errors.New("publish into non-empty mailbox")
	ErrUnexpectedMessage = errors.New("unexpected message type")
	ErrUnexpectedStatus  = errors.New("port status without pending open")
	ErrOpenResultPending = errors.New("open requested while previous result is pending")
)
