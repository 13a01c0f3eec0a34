package device

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/serialport"
	"github.com/sourcegraph/conc"
)

// Potentiometer range reported by simulated levers.
const (
	SimPotentiometerMin = 1400
	SimPotentiometerMax = 5500
)

// SimPullPeriod is how long one simulated pull and release takes.
const SimPullPeriod = 3 * time.Second

// Simulator emulates lever firmware on pseudo-terminals. Each named lever gets
// its own pty pair; Open resolves the name and talks to it through the real
// serial protocol.
type Simulator struct {
	*Transport

	log    *slog.Logger
	levers map[string]*simLever
	order  []string
	wg     conc.WaitGroup
	once   sync.Once
}

var _ lever.Transport = (*Simulator)(nil)

type simLever struct {
	name   string
	master *os.File
	slave  string
	start  time.Time

	mu    sync.Mutex
	force int
}

// NewSimulator starts one simulated lever per name.
func NewSimulator(log *slog.Logger, names ...string) (*Simulator, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Simulator{
		Transport: NewTransport(DefaultBaudRate, DefaultTimeout),
		log:       log,
		levers:    make(map[string]*simLever, len(names)),
	}

	for _, name := range names {
		if _, dup := s.levers[name]; dup {
			s.Close()
			return nil, fmt.Errorf("duplicate simulated lever %q", name)
		}
		master, slave, err := serialport.OpenPTY()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("simulate %s: %w", name, err)
		}
		l := &simLever{name: name, master: master, slave: slave, start: time.Now()}
		s.levers[name] = l
		s.order = append(s.order, name)
		s.wg.Go(func() { s.serve(l) })
		log.Debug("simulated lever started", "name", name, "pty", slave)
	}
	return s, nil
}

// Names returns the simulated lever names in creation order.
func (s *Simulator) Names() []string {
	return append([]string(nil), s.order...)
}

// Device returns the pty path backing name.
func (s *Simulator) Device(name string) (string, bool) {
	l, ok := s.levers[name]
	if !ok {
		return "", false
	}
	return l.slave, true
}

// Open connects to the simulated lever called port. Pty paths are accepted
// as well.
func (s *Simulator) Open(port string, baudRate int, timeout time.Duration) (lever.Conn, error) {
	path, ok := s.Device(port)
	if !ok {
		path = port
		if !s.owns(port) {
			return nil, fmt.Errorf("open %s: %w", port, serialport.ErrDeviceNotFound)
		}
	}
	return s.Transport.Open(path, baudRate, timeout)
}

func (s *Simulator) owns(path string) bool {
	for _, l := range s.levers {
		if l.slave == path {
			return true
		}
	}
	return false
}

// Close stops every simulated lever and waits for them to exit.
func (s *Simulator) Close() error {
	var errs []error
	s.once.Do(func() {
		for _, l := range s.levers {
			if err := l.master.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.wg.Wait()
	})
	return errors.Join(errs...)
}

func (s *Simulator) serve(l *simLever) {
	buf := make([]byte, maxLineLength)
	var pending []byte

	for {
		n, err := l.master.Read(buf)
		switch {
		case errors.Is(err, os.ErrClosed):
			return
		case err != nil:
			// EIO until a client opens the slave end.
			pending = pending[:0]
			time.Sleep(10 * time.Millisecond)
			continue
		}
		pending = append(pending, buf[:n]...)

		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := string(bytes.TrimRight(pending[:i], "\r"))
			pending = pending[i+1:]

			reply := l.handle(line)
			if _, err := l.master.Write([]byte(reply)); err != nil && errors.Is(err, os.ErrClosed) {
				return
			}
		}
		if len(pending) > maxLineLength {
			pending = pending[:0]
		}
	}
}

func (l *simLever) handle(line string) string {
	req, err := parseRequest(line)
	if err != nil {
		return "ERR unknown command\n"
	}
	if req.readState {
		return formatState(l.sample(time.Now()))
	}
	if req.force < 0 || req.force > MaxForce {
		return "ERR range\n"
	}
	l.mu.Lock()
	l.force = req.force
	l.mu.Unlock()
	return replyOK + "\n"
}

// sample returns the lever state at t. The simulated subject pulls
// periodically; higher force shortens the travel. The strain gauge reads the
// commanded force plus the load of the pull.
func (l *simLever) sample(t time.Time) lever.State {
	l.mu.Lock()
	force := l.force
	l.mu.Unlock()

	phase := float64(t.Sub(l.start)%SimPullPeriod) / float64(SimPullPeriod)
	position := math.Max(0, math.Sin(2*math.Pi*phase))
	position *= 1 - 0.5*float64(force)/MaxForce

	return lever.State{
		PotentiometerReading: math.Round(SimPotentiometerMin + position*(SimPotentiometerMax-SimPotentiometerMin)),
		StrainGaugeReading:   float64(force) * (1 + 0.1*position),
	}
}
