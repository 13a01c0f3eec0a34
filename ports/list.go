// Package ports finds serial devices that may have levers attached and
// recovers hung USB levers.
package ports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Errors
var (
	ErrDeviceNotFound       = errors.New("device not found")
	ErrUnknownKind          = errors.New("unknown port kind")
	ErrUSBInfoNotAvailable  = errors.New("USB bus information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not found")
)

// Info describes one serial device.
type Info struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
	BusNumber    string
	DeviceNumber string
}

// Kind selects a family of serial devices.
type Kind string

const (
	KindAll      Kind = "all"
	KindUSB      Kind = "usb"
	KindStandard Kind = "standard"
	KindARM      Kind = "arm"
)

// ParseKind parses a --filter value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindAll, KindUSB, KindStandard, KindARM:
		return k, nil
	case "":
		return KindAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

func matchesSerialPattern(name string) bool {
	for _, p := range serialPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// detailedPorts is replaced in tests.
var detailedPorts = enumerator.GetDetailedPortsList

// List returns the serial devices present on the system, sorted by path.
// Virtual terminals and pseudo-terminals are left out.
func List() ([]Info, error) {
	details, err := detailedPorts()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}

	infos := make([]Info, 0, len(details))
	for _, d := range details {
		name := filepath.Base(d.Name)
		if !matchesSerialPattern(name) {
			continue
		}
		infos = append(infos, fromDetails(d))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func fromDetails(d *enumerator.PortDetails) Info {
	path := d.Name
	if !strings.HasPrefix(path, "/") {
		path = filepath.Join("/dev", path)
	}
	name := filepath.Base(path)
	info := Info{
		Name:         name,
		Path:         path,
		Description:  describe(name),
		IsUSB:        d.IsUSB,
		VendorID:     strings.ToLower(d.VID),
		ProductID:    strings.ToLower(d.PID),
		SerialNumber: d.SerialNumber,
		Product:      d.Product,
	}
	if info.IsUSB {
		info.BusNumber, info.DeviceNumber = usbAddress(name)
	}
	return info
}

// Lookup returns the details of the device at path.
func Lookup(path string) (Info, error) {
	if !isCharacterDevice(path) {
		return Info{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	}

	infos, err := List()
	if err == nil {
		for _, info := range infos {
			if info.Path == path {
				return info, nil
			}
		}
	}

	name := filepath.Base(path)
	return Info{Name: name, Path: path, Description: describe(name)}, nil
}

// Filter returns the infos of the given kind.
func Filter(infos []Info, kind Kind) []Info {
	if kind == KindAll || kind == "" {
		return infos
	}
	var out []Info
	for _, info := range infos {
		if kindOf(info) == kind {
			out = append(out, info)
		}
	}
	return out
}

func kindOf(info Info) Kind {
	switch {
	case info.IsUSB, strings.HasPrefix(info.Name, "ttyUSB"), strings.HasPrefix(info.Name, "ttyACM"):
		return KindUSB
	case strings.HasPrefix(info.Name, "ttyAMA"),
		strings.HasPrefix(info.Name, "ttymxc"),
		strings.HasPrefix(info.Name, "ttySAC"),
		strings.HasPrefix(info.Name, "ttyTHS"),
		strings.HasPrefix(info.Name, "ttyO"):
		return KindARM
	default:
		return KindStandard
	}
}

// describe gives a human-readable description of a device family.
func describe(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
