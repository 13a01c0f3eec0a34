package serialport

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"
)

func TestOpenNonexistent(t *testing.T) {
	_, err := Open("/dev/nonexistent-lever")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Open nonexistent device error = %v, want ErrDeviceNotFound", err)
	}
}

func TestOpenInvalidOption(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(12345))
	if err != ErrInvalidBaudRate {
		t.Errorf("Open with bad baud rate error = %v, want ErrInvalidBaudRate", err)
	}
}

func openPair(t *testing.T) (*os.File, Port) {
	t.Helper()
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	p, err := Open(slave, WithBaudRate(115200))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	t.Cleanup(func() { p.Close() })
	return master, p
}

func TestPortRoundTrip(t *testing.T) {
	master, p := openPair(t)

	if _, err := p.Write([]byte("S\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	buf := make([]byte, 16)
	master.SetReadDeadline(time.Now().Add(time.Second))
	n, err := master.Read(buf)
	if err != nil {
		t.Fatalf("master Read failed: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte("S\n")) {
		t.Errorf("master got %q, want %q", buf[:n], "S\n")
	}

	if _, err := master.Write([]byte("OK\n")); err != nil {
		t.Fatalf("master Write failed: %v", err)
	}
	n, err = p.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "OK\n" {
		t.Errorf("port got %q, want %q", buf[:n], "OK\n")
	}
}

func TestReadTimeout(t *testing.T) {
	_, p := openPair(t)

	start := time.Now()
	n, err := p.Read(make([]byte, 8))
	if err != nil || n != 0 {
		t.Errorf("Read with no data = %d, %v; want 0, nil", n, err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Read returned after %v, expected to wait for the timeout", elapsed)
	}
}

func TestExclusiveOpen(t *testing.T) {
	_, p := openPair(t)

	if os.Geteuid() == 0 {
		t.Skip("root bypasses TIOCEXCL")
	}
	_, err := Open(p.Path())
	if !errors.Is(err, ErrDeviceInUse) {
		t.Errorf("second Open error = %v, want ErrDeviceInUse", err)
	}
}

func TestClosedPort(t *testing.T) {
	_, p := openPair(t)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != ErrPortClosed {
		t.Errorf("second Close error = %v, want ErrPortClosed", err)
	}
	if _, err := p.Read(make([]byte, 1)); err != ErrPortClosed {
		t.Errorf("Read after close error = %v, want ErrPortClosed", err)
	}
	if _, err := p.Write([]byte{1}); err != ErrPortClosed {
		t.Errorf("Write after close error = %v, want ErrPortClosed", err)
	}
	if err := p.FlushInput(); err != ErrPortClosed {
		t.Errorf("FlushInput after close error = %v, want ErrPortClosed", err)
	}
}
