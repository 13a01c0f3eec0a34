package lever

import "fmt"

// OpenError is the outcome of an OpenPort command.
type OpenError int

const (
	OpenErrorNone OpenError = iota
	OpenErrorFailedToOpen
)

func (e OpenError) String() string {
	switch e {
	case OpenErrorNone:
		return "none"
	case OpenErrorFailedToOpen:
		return "failed to open"
	default:
		return fmt.Sprintf("OpenError(%d)", int(e))
	}
}

// State is a single sensor reading from a lever.
type State struct {
	PotentiometerReading float64
	StrainGaugeReading   float64
}

// Message is exchanged between the control and worker goroutines. SetForce,
// OpenPort and ClosePort flow control → worker; PortStatus and ShareState
// flow worker → control.
type Message interface {
	isMessage()
}

// SetForce asks the worker to command a new force in grams.
type SetForce struct {
	Force int
}

// OpenPort asks the worker to open a serial connection.
type OpenPort struct {
	Port string
}

// ClosePort asks the worker to drop the connection and reset the lever.
type ClosePort struct{}

// PortStatus reports the result of an OpenPort command.
type PortStatus struct {
	Handle Handle
	Err    OpenError
	IsOpen bool
}

// ShareState is a snapshot of a lever's worker-side state.
type ShareState struct {
	Handle   Handle
	Force    int
	HasForce bool
	State    State
	HasState bool
	IsOpen   bool
}

func (SetForce) isMessage()   {}
func (OpenPort) isMessage()   {}
func (ClosePort) isMessage()  {}
func (PortStatus) isMessage() {}
func (ShareState) isMessage() {}
