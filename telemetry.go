package lever

// DefaultTelemetryCapacity is the default number of messages the telemetry
// channel buffers before writes start failing.
const DefaultTelemetryCapacity = 64

// Telemetry is a bounded, non-blocking channel carrying messages from a
// single writer goroutine to a single reader goroutine in FIFO order.
type Telemetry struct {
	ch chan Message
}

// NewTelemetry returns a Telemetry buffering up to capacity messages.
func NewTelemetry(capacity int) *Telemetry {
	return &Telemetry{ch: make(chan Message, capacity)}
}

// TryWrite enqueues msg without blocking. It returns false and discards msg
// when the channel is full; the writer retries by deriving a fresh snapshot
// later, never by holding on to the dropped message.
func (t *Telemetry) TryWrite(msg Message) bool {
	select {
	case t.ch <- msg:
		return true
	default:
		return false
	}
}

// Drain pops every message available at the time of the call, oldest first.
// Messages written while Drain runs are left for the next call.
func (t *Telemetry) Drain() []Message {
	n := len(t.ch)
	if n == 0 {
		return nil
	}
	out := make([]Message, n)
	for i := range out {
		out[i] = <-t.ch
	}
	return out
}

// Len returns the number of buffered messages.
func (t *Telemetry) Len() int {
	return len(t.ch)
}

// Cap returns the channel capacity.
func (t *Telemetry) Cap() int {
	return cap(t.ch)
}
