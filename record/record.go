// Package record captures lever sessions as a stream of CBOR samples so they
// can be replayed and analysed later.
package record

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	lever "github.com/allbin/go-lever"
)

var ErrWriterClosed = errors.New("recording writer closed")

// Sample is one lever observation.
type Sample struct {
	Session  uuid.UUID    `cbor:"1,keyasint"`
	Time     time.Time    `cbor:"2,keyasint"`
	Handle   lever.Handle `cbor:"3,keyasint"`
	Port     string       `cbor:"4,keyasint,omitempty"`
	Force    int          `cbor:"5,keyasint"`
	HasForce bool         `cbor:"6,keyasint"`
	State    lever.State  `cbor:"7,keyasint"`
	HasState bool         `cbor:"8,keyasint"`
	IsOpen   bool         `cbor:"9,keyasint"`
	Position float64      `cbor:"10,keyasint"`
	Pulled   bool         `cbor:"11,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create recording CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create recording CBOR decoder mode: %v", err))
	}
}

// Writer appends samples to a stream. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	session uuid.UUID
	enc     *cbor.Encoder
	closer  io.Closer
	count   int
	closed  bool
}

// NewWriter starts a new session on w. If w is an io.Closer, Close closes it.
func NewWriter(w io.Writer) *Writer {
	rw := &Writer{session: uuid.New(), enc: encMode.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		rw.closer = c
	}
	return rw
}

// Session returns the id stamped on every sample written.
func (w *Writer) Session() uuid.UUID { return w.session }

// Write stamps s with the session id, and the current time when unset, and
// appends it.
func (w *Writer) Write(s Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	s.Session = w.session
	if s.Time.IsZero() {
		s.Time = time.Now()
	}
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of samples written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Reader streams samples back.
type Reader struct {
	dec *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: decMode.NewDecoder(r)}
}

// Next returns the next sample, or io.EOF at the end of the stream.
func (r *Reader) Next() (Sample, error) {
	var s Sample
	if err := r.dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Sample{}, io.EOF
		}
		return Sample{}, fmt.Errorf("decode sample: %w", err)
	}
	return s, nil
}

// ReadAll collects the remaining samples.
func (r *Reader) ReadAll() ([]Sample, error) {
	var out []Sample
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
