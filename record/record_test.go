package record

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lever "github.com/allbin/go-lever"
)

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NotEqual(t, uuid.Nil, w.Session())

	at := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	samples := []Sample{
		{Time: at, Handle: 0, Port: "/dev/ttyUSB0", Force: 200, HasForce: true, IsOpen: true,
			State: lever.State{PotentiometerReading: 4100, StrainGaugeReading: 201.5}, HasState: true,
			Position: 0.66, Pulled: true},
		{Time: at.Add(10 * time.Millisecond), Handle: 1},
	}
	for _, s := range samples {
		require.NoError(t, w.Write(s))
	}
	assert.Equal(t, 2, w.Count())

	got, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range samples {
		samples[i].Session = w.Session()
		assert.True(t, samples[i].Time.Equal(got[i].Time), "sample %d time", i)
		got[i].Time = samples[i].Time
	}
	assert.Equal(t, samples, got)
}

func TestWriterStampsTime(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	before := time.Now()
	require.NoError(t, w.Write(Sample{Handle: 3}))

	s, err := NewReader(&buf).Next()
	require.NoError(t, err)
	assert.False(t, s.Time.Before(before.Truncate(time.Second)))

	_, err = NewReader(&buf).Next()
	assert.Equal(t, io.EOF, err)
}

type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestWriterClose(t *testing.T) {
	var out closeRecorder
	w := NewWriter(&out)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, out.closed)
	assert.ErrorIs(t, w.Write(Sample{}), ErrWriterClosed)
}

func TestReaderCorrupt(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0xff, 0x00})).Next()
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
