package lever

import "fmt"

// localInstance is the control-side state of one lever. Apart from the
// mailbox, which the worker reads, it is touched by the control goroutine
// only.
type localInstance struct {
	handle  Handle
	mailbox Mailbox

	pendingOpenPort *string
	pendingClose    bool
	pendingForce    *int

	commandedForce int
	canonicalForce int
	hasForce       bool
	state          State
	hasState       bool
	isOpen         bool

	awaitingOpen  bool
	opensInFlight int
}

// flush frees a delivered slot and publishes at most one pending command,
// by precedence open > close > set-force.
func (l *localInstance) flush() {
	if l.mailbox.State() == MailboxDelivered {
		l.mailbox.Acknowledge()
	}
	if l.mailbox.State() != MailboxEmpty {
		return
	}

	switch {
	case l.pendingOpenPort != nil:
		l.mailbox.Publish(OpenPort{Port: *l.pendingOpenPort})
		l.pendingOpenPort = nil
		l.opensInFlight++
	case l.pendingClose:
		l.mailbox.Publish(ClosePort{})
		l.pendingClose = false
	case l.pendingForce != nil:
		l.mailbox.Publish(SetForce{Force: *l.pendingForce})
		l.pendingForce = nil
	}
}

func (l *localInstance) applyShareState(m ShareState) {
	l.canonicalForce = m.Force
	l.hasForce = m.HasForce
	l.state = m.State
	l.hasState = m.HasState
	l.isOpen = m.IsOpen
}

func (l *localInstance) applyPortStatus(m PortStatus) {
	if !l.awaitingOpen || l.opensInFlight == 0 {
		panic(fmt.Errorf("%w: %s", ErrUnexpectedStatus, l.handle))
	}
	l.opensInFlight--
	l.awaitingOpen = l.pendingOpenPort != nil || l.opensInFlight > 0
	l.isOpen = m.IsOpen
}

func (l *localInstance) setForce(grams int) {
	l.commandedForce = grams
	l.pendingForce = &grams
}

func (l *localInstance) openConnection(port string) {
	l.pendingOpenPort = &port
	l.awaitingOpen = true
}

func (l *localInstance) closeConnection() {
	l.pendingClose = true
}
