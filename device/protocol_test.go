package device

import (
	"testing"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAck(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"OK", nil},
		{"ERR range", ErrRejected},
		{"ERR", ErrRejected},
		{"S 1 2", ErrMalformed},
		{"", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := parseAck(tt.line)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseState(t *testing.T) {
	s, err := parseState("S 4021 250.5")
	require.NoError(t, err)
	assert.Equal(t, lever.State{PotentiometerReading: 4021, StrainGaugeReading: 250.5}, s)

	for _, line := range []string{"S 1", "S x 2", "S 1 y", "OK", "T 1 2"} {
		_, err := parseState(line)
		assert.ErrorIs(t, err, ErrMalformed, line)
	}
	_, err = parseState("ERR sensor")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestRequestRoundTrip(t *testing.T) {
	req, err := parseRequest(setForceLine(350))
	require.NoError(t, err)
	assert.Equal(t, request{force: 350}, req)

	req, err = parseRequest(readStateLine)
	require.NoError(t, err)
	assert.True(t, req.readState)

	_, err = parseRequest("F abc")
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = parseRequest("X")
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestFormatState(t *testing.T) {
	line := formatState(lever.State{PotentiometerReading: 1400, StrainGaugeReading: 12.25})
	assert.Equal(t, "S 1400 12.25\n", line)

	s, err := parseState(line[:len(line)-1])
	require.NoError(t, err)
	assert.Equal(t, 12.25, s.StrainGaugeReading)
}

func TestTermiosTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, termiosTimeout(0))
	assert.Equal(t, DefaultTimeout, termiosTimeout(30*time.Millisecond))
	assert.Equal(t, 200*time.Millisecond, termiosTimeout(150*time.Millisecond))
	assert.Equal(t, 300*time.Millisecond, termiosTimeout(300*time.Millisecond))
	assert.Equal(t, 25500*time.Millisecond, termiosTimeout(time.Minute))
}
