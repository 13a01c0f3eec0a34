// Package lever drives force-sensing lever devices attached over serial ports.
//
// A System owns one background worker goroutine that holds every live
// serial connection and runs the per-lever command/telemetry protocol. The
// application talks to it from a single control goroutine through a
// non-blocking, poll-based API and calls Update exactly once per tick.
//
// # Basic Usage
//
//	sys, err := lever.New(lever.WithTransport(device.NewTransport(0, 0)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handles, err := sys.Initialize(2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Terminate()
//
//	sys.OpenConnection(handles[0], "/dev/ttyACM0")
//	sys.SetForce(handles[0], 50)
//
//	for range time.Tick(16 * time.Millisecond) {
//	    sys.Update()
//	    if state, ok := sys.State(handles[0]); ok {
//	        fmt.Println(state.PotentiometerReading)
//	    }
//	}
//
// # Channels
//
// Commands travel control → worker through a per-lever Mailbox, a single
// slot with an Empty → Pending → Delivered → Empty handshake. Newer pending
// commands of the same kind overwrite older unsent ones, and at most one
// command per lever is published per Update, chosen by the precedence
// open > close > set-force.
//
// Status and state travel worker → control through a bounded Telemetry
// channel. Writes never block; a full channel drops the message and the
// worker re-derives the same snapshot on a later poll. Content is level
// triggered, so only the latest state has to arrive.
//
// # Ownership
//
// There is no mutex on the hot path. Every remote field is written by the
// worker only and reaches the control goroutine as telemetry; every local
// field except the mailbox is touched by the control goroutine only. The
// mailbox and the telemetry channel are the whole shared surface.
//
// # Errors
//
// Connection failures are reported once through IsPendingOpen / IsOpen.
// Transient I/O failures demote the cached force or state to unknown.
// Protocol violations (an unknown handle, a status with no open in flight,
// publishing into a busy mailbox) are programming errors and panic.
//
// # Latency
//
// Opening a port runs synchronously inside the worker's poll iteration and
// stalls every lever for the duration of the attempt. Responsiveness scales
// with poll interval × lever count whenever device I/O blocks.
package lever
