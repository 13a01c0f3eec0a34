// Package pull turns raw potentiometer readings into lever positions and
// detects completed pulls.
package pull

import "errors"

// Default hysteresis thresholds.
const (
	DefaultRisingEdge  = 0.6
	DefaultFallingEdge = 0.25
)

var ErrInvalidThresholds = errors.New("falling edge must be below rising edge, both within [0, 1]")

// Normalize maps v from [min, max] onto [0, 1], clamping values outside the
// range. A degenerate range yields 0 before inversion. With invert the result
// is flipped, for levers whose potentiometer is mounted the other way round.
func Normalize(v, min, max float64, invert bool) float64 {
	if min > max {
		min, max = max, min
	}
	switch {
	case min == max:
		v = 0
	case v < min:
		v = 0
	case v > max:
		v = 1
	default:
		v = (v - min) / (max - min)
	}
	if invert {
		v = 1 - v
	}
	return v
}

// Result is the outcome of feeding one position to a Detector.
type Result struct {
	Position float64
	// Pulled is set on the sample that completes a pull.
	Pulled bool
}

// Detector recognises pulls with hysteresis. A pull fires once when the
// position rises above RisingEdge and the detector re-arms only after the
// position falls below FallingEdge.
type Detector struct {
	RisingEdge  float64
	FallingEdge float64

	armed   bool
	started bool
	count   int
}

// NewDetector returns a Detector with the default thresholds.
func NewDetector() *Detector {
	return &Detector{RisingEdge: DefaultRisingEdge, FallingEdge: DefaultFallingEdge}
}

// Validate checks that the thresholds describe a usable hysteresis band.
func (d *Detector) Validate() error {
	if d.FallingEdge < 0 || d.RisingEdge > 1 || d.FallingEdge >= d.RisingEdge {
		return ErrInvalidThresholds
	}
	return nil
}

// Update feeds one normalized position.
func (d *Detector) Update(position float64) Result {
	if !d.started {
		// A lever already held up at start does not count until released.
		d.started = true
		d.armed = position < d.RisingEdge
	}

	r := Result{Position: position}
	switch {
	case d.armed && position > d.RisingEdge:
		d.armed = false
		d.count++
		r.Pulled = true
	case !d.armed && position < d.FallingEdge:
		d.armed = true
	}
	return r
}

// Count returns the number of pulls seen.
func (d *Detector) Count() int { return d.count }

// Reset forgets all history.
func (d *Detector) Reset() {
	d.armed, d.started, d.count = false, false, 0
}
