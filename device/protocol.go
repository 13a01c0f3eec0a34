// Package device speaks the lever firmware's line protocol over a serial
// port and provides the lever.Transport used in production.
//
// Every request is one ASCII line and gets exactly one reply line:
//
//	F <grams>\n   →  OK\n | ERR <reason>\n
//	S\n           →  S <potentiometer> <strain>\n
//
// Carriage returns are ignored so firmware may terminate lines with \r\n.
package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lever "github.com/allbin/go-lever"
)

// Protocol errors
var (
	ErrNoResponse    = errors.New("lever did not respond")
	ErrMalformed     = errors.New("malformed lever reply")
	ErrRejected      = errors.New("lever rejected command")
	ErrInvalidForce  = errors.New("force out of range")
	ErrLineTooLong   = errors.New("lever reply too long")
	ErrConnClosed    = errors.New("lever connection closed")
	ErrUnknownPrefix = errors.New("unknown lever request")
)

// MaxForce is the largest force in grams the firmware accepts.
const MaxForce = 1000

const (
	maxLineLength   = 64
	readStateLine   = "S\n"
	replyOK         = "OK"
	replyErrPrefix  = "ERR"
	replyStateLabel = "S"
)

func setForceLine(grams int) string {
	return "F " + strconv.Itoa(grams) + "\n"
}

// parseAck interprets the reply to a set-force request.
func parseAck(line string) error {
	switch {
	case line == replyOK:
		return nil
	case strings.HasPrefix(line, replyErrPrefix):
		reason := strings.TrimSpace(strings.TrimPrefix(line, replyErrPrefix))
		return fmt.Errorf("%w: %s", ErrRejected, reason)
	default:
		return fmt.Errorf("%w: %q", ErrMalformed, line)
	}
}

// parseState interprets the reply to a read-state request.
func parseState(line string) (lever.State, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != replyStateLabel {
		if len(fields) > 0 && fields[0] == replyErrPrefix {
			return lever.State{}, fmt.Errorf("%w: %s", ErrRejected, strings.Join(fields[1:], " "))
		}
		return lever.State{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	pot, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return lever.State{}, fmt.Errorf("%w: potentiometer %q", ErrMalformed, fields[1])
	}
	strain, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return lever.State{}, fmt.Errorf("%w: strain %q", ErrMalformed, fields[2])
	}
	return lever.State{PotentiometerReading: pot, StrainGaugeReading: strain}, nil
}

// request is a decoded firmware request, used by the simulator.
type request struct {
	readState bool
	force     int
}

func parseRequest(line string) (request, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 1 && fields[0] == "S":
		return request{readState: true}, nil
	case len(fields) == 2 && fields[0] == "F":
		grams, err := strconv.Atoi(fields[1])
		if err != nil {
			return request{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		return request{force: grams}, nil
	default:
		return request{}, fmt.Errorf("%w: %q", ErrUnknownPrefix, line)
	}
}

func formatState(s lever.State) string {
	return fmt.Sprintf("%s %s %s\n", replyStateLabel,
		strconv.FormatFloat(s.PotentiometerReading, 'f', -1, 64),
		strconv.FormatFloat(s.StrainGaugeReading, 'f', -1, 64))
}
