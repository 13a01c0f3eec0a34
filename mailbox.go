package lever

import (
	"fmt"

	"go.uber.org/atomic"
)

// MailboxState is the handshake state of a Mailbox.
type MailboxState int32

const (
	MailboxEmpty     MailboxState = iota // free for Publish
	MailboxPending                       // published, not yet read
	MailboxDelivered                     // read, not yet acknowledged
)

func (s MailboxState) String() string {
	switch s {
	case MailboxEmpty:
		return "empty"
	case MailboxPending:
		return "pending"
	case MailboxDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("MailboxState(%d)", int32(s))
	}
}

// Mailbox is a single-slot handshake channel between one producer and one
// consumer goroutine.
//
// The producer may write msg only while the state is Empty and publishes it
// by moving the state to Pending. The consumer reads msg only after winning
// the Pending → Delivered transition. The producer frees the slot with
// Acknowledge once it observes Delivered. A consumed but unacknowledged
// message therefore still blocks the next Publish, and an unread message can
// never be overwritten.
type Mailbox struct {
	state atomic.Int32
	msg   Message
}

// State returns the current handshake state.
func (m *Mailbox) State() MailboxState {
	return MailboxState(m.state.Load())
}

// Publish places msg in the slot. It panics unless the slot is Empty.
func (m *Mailbox) Publish(msg Message) {
	if s := m.State(); s != MailboxEmpty {
		panic(fmt.Errorf("%w: state %s", ErrMailboxBusy, s))
	}
	m.msg = msg
	m.state.Store(int32(MailboxPending))
}

// Read returns the pending message and marks it Delivered. It reports false
// when nothing is pending.
func (m *Mailbox) Read() (Message, bool) {
	if m.state.Load() != int32(MailboxPending) {
		return nil, false
	}
	msg := m.msg
	if !m.state.CompareAndSwap(int32(MailboxPending), int32(MailboxDelivered)) {
		return nil, false
	}
	return msg, true
}

// Acknowledge clears a Delivered slot back to Empty and reports whether it
// did so.
func (m *Mailbox) Acknowledge() bool {
	if !m.state.CompareAndSwap(int32(MailboxDelivered), int32(MailboxEmpty)) {
		return false
	}
	m.msg = nil
	return true
}
