package pull

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		min, max float64
		invert   bool
		want     float64
	}{
		{"midpoint", 3450, 1400, 5500, false, 0.5},
		{"below range", 100, 1400, 5500, false, 0},
		{"above range", 9000, 1400, 5500, false, 1},
		{"inverted", 1400, 1400, 5500, true, 1},
		{"degenerate", 42, 7, 7, false, 0},
		{"degenerate inverted", 42, 7, 7, true, 1},
		{"swapped limits", 64750, 65e3, 64e3, false, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(tt.v, tt.min, tt.max, tt.invert), 1e-9)
		})
	}
}

func TestDetectorHysteresis(t *testing.T) {
	d := NewDetector()
	assert.NoError(t, d.Validate())

	var pulls []int
	positions := []float64{0, 0.3, 0.61, 0.9, 0.5, 0.7, 0.3, 0.2, 0.65, 0.1}
	for i, p := range positions {
		if d.Update(p).Pulled {
			pulls = append(pulls, i)
		}
	}
	assert.Equal(t, []int{2, 8}, pulls)
	assert.Equal(t, 2, d.Count())
}

func TestDetectorStartsHeld(t *testing.T) {
	d := NewDetector()

	assert.False(t, d.Update(0.9).Pulled)
	assert.False(t, d.Update(0.95).Pulled)
	assert.False(t, d.Update(0.1).Pulled)
	assert.True(t, d.Update(0.8).Pulled)

	d.Reset()
	assert.Equal(t, 0, d.Count())
	assert.True(t, d.Update(0).Position == 0)
	assert.True(t, d.Update(0.7).Pulled)
}

func TestDetectorValidate(t *testing.T) {
	tests := []struct {
		rising, falling float64
		ok              bool
	}{
		{0.6, 0.25, true},
		{0.5, 0.5, false},
		{0.3, 0.6, false},
		{1.2, 0.2, false},
		{0.6, -0.1, false},
	}
	for _, tt := range tests {
		d := &Detector{RisingEdge: tt.rising, FallingEdge: tt.falling}
		if tt.ok {
			assert.NoError(t, d.Validate())
		} else {
			assert.ErrorIs(t, d.Validate(), ErrInvalidThresholds)
		}
	}
}
