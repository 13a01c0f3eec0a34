package ports

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// sysfsRoot and runUSBReset are replaced in tests.
var (
	sysfsRoot   = "/sys"
	runUSBReset = func(addr string) ([]byte, error) {
		return exec.Command("usbreset", addr).CombinedOutput()
	}
	lookPath = exec.LookPath
)

// SettleTime is how long ResetUSB waits for the device to re-enumerate.
var SettleTime = 2 * time.Second

// ResetUSB performs a USB-level reset of the device behind path. A lever
// whose firmware stopped answering usually comes back after a reset.
//
// Requires the usbreset utility from usbutils and, typically, root.
func ResetUSB(path string) error {
	info, err := Lookup(path)
	if err != nil {
		return err
	}
	if info.BusNumber == "" || info.DeviceNumber == "" {
		info.BusNumber, info.DeviceNumber = usbAddress(info.Name)
	}
	if info.BusNumber == "" || info.DeviceNumber == "" {
		return fmt.Errorf("%w: %s", ErrUSBInfoNotAvailable, path)
	}
	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	addr := usbResetAddress(info.BusNumber, info.DeviceNumber)
	if output, err := runUSBReset(addr); err != nil {
		return fmt.Errorf("usbreset %s failed: %w (output: %s)", addr, err, strings.TrimSpace(string(output)))
	}

	time.Sleep(SettleTime)
	return nil
}

// ResetUSBBySerial resets the USB device with the given serial number.
func ResetUSBBySerial(serialNumber string) error {
	infos, err := List()
	if err != nil {
		return err
	}
	for _, info := range infos {
		if info.IsUSB && info.SerialNumber == serialNumber {
			return ResetUSB(info.Path)
		}
	}
	return fmt.Errorf("%w: serial %s", ErrDeviceNotFound, serialNumber)
}

// IsUSBResetAvailable reports whether usbreset is in PATH.
func IsUSBResetAvailable() bool {
	_, err := lookPath("usbreset")
	return err == nil
}

// usbResetAddress formats bus and device numbers as BBB/DDD.
func usbResetAddress(bus, dev string) string {
	b, errB := strconv.Atoi(bus)
	d, errD := strconv.Atoi(dev)
	if errB != nil || errD != nil {
		return fmt.Sprintf("%03s/%03s", bus, dev)
	}
	return fmt.Sprintf("%03d/%03d", b, d)
}

// usbAddress finds the bus and device numbers of the USB device that owns
// the tty called name by walking up its sysfs device path.
func usbAddress(name string) (bus, dev string) {
	link := filepath.Join(sysfsRoot, "class", "tty", name, "device")
	dir, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", ""
	}

	for ; dir != sysfsRoot && dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		b, errB := readTrimmed(filepath.Join(dir, "busnum"))
		d, errD := readTrimmed(filepath.Join(dir, "devnum"))
		if errB == nil && errD == nil {
			return b, d
		}
	}
	return "", ""
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
