// Package tty implements the ftdx.Driver contract over Linux USB serial ttys
// (ttyUSB*, ttyACM*). It is the reference driver used by the CLI; the vendor
// library shim plugs into the same interface.
package tty

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/allbin/go-ftdx"
)

// pollTenths is the VTIME poll window in tenths of a second. Reads block at
// most this long; the session's accumulating loop owns the actual deadline,
// so the poll must stay short for cancellation to bite.
const pollTenths = 1

// Driver maps driver handles to tty file descriptors. The handle table only
// exists for sysfs lookups (latency timer, chip identity) that need the tty
// name rather than the fd.
type Driver struct {
	devDir    string
	sysDir    string
	serialDir string

	mu      sync.Mutex
	handles map[ftdx.Handle]string
}

// Ensure Driver implements ftdx.Driver at compile time
var _ ftdx.Driver = (*Driver)(nil)

// New returns a Driver over the system device tree.
func New() *Driver {
	return &Driver{
		devDir:    "/dev",
		sysDir:    "/sys/class/tty",
		serialDir: "/sys/bus/usb-serial/devices",
		handles:   make(map[ftdx.Handle]string),
	}
}

// statusFromErr folds an errno into the driver status taxonomy.
func statusFromErr(err error) ftdx.Status {
	switch {
	case err == nil:
		return ftdx.StatusOK
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO), errors.Is(err, os.ErrNotExist):
		return ftdx.StatusNotFound
	case errors.Is(err, unix.EBADF):
		return ftdx.StatusNotOpen
	case errors.Is(err, unix.EINVAL):
		return ftdx.StatusInvalidParameter
	case errors.Is(err, unix.ENOMEM), errors.Is(err, unix.EMFILE), errors.Is(err, unix.ENFILE):
		return ftdx.StatusInsufficientResources
	case errors.Is(err, unix.EIO):
		return ftdx.StatusIOError
	default:
		return ftdx.StatusOther
	}
}

func (d *Driver) Open(index int) (ftdx.Handle, ftdx.Status) {
	names, err := d.scan()
	if err != nil {
		return 0, statusFromErr(err)
	}
	if index < 0 || index >= len(names) {
		return 0, ftdx.StatusNotFound
	}
	name := names[index]

	fd, err := unix.Open(filepath.Join(d.devDir, name), unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return 0, statusFromErr(err)
	}
	if err := configureRaw(fd); err != nil {
		unix.Close(fd)
		return 0, statusFromErr(err)
	}

	h := ftdx.Handle(fd)
	d.mu.Lock()
	d.handles[h] = name
	d.mu.Unlock()
	return h, ftdx.StatusOK
}

// configureRaw puts the tty into raw mode with a short read poll.
func configureRaw(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	// Keep the current baud bits: zeroing them means B0, which drops DTR
	// on most adapters. The session sets the real rate right after open.
	termios.Cflag = (termios.Cflag & unix.CBAUD) | unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0 with a short VTIME: a read returns whatever is buffered,
	// possibly nothing, and never blocks past the poll window.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = pollTenths

	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}

func (d *Driver) Close(h ftdx.Handle) ftdx.Status {
	d.mu.Lock()
	delete(d.handles, h)
	d.mu.Unlock()
	return statusFromErr(unix.Close(int(h)))
}

func (d *Driver) Read(h ftdx.Handle, buf []byte) (int, ftdx.Status) {
	n, err := unix.Read(int(h), buf)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return 0, ftdx.StatusOK
		}
		return 0, statusFromErr(err)
	}
	if n < 0 {
		n = 0
	}
	return n, ftdx.StatusOK
}

func (d *Driver) Write(h ftdx.Handle, data []byte) (int, ftdx.Status) {
	n, err := unix.Write(int(h), data)
	if err != nil {
		return 0, statusFromErr(err)
	}
	return n, ftdx.StatusOK
}

func (d *Driver) Purge(h ftdx.Handle, mask ftdx.PurgeMask) ftdx.Status {
	var arg int
	switch {
	case mask&ftdx.PurgeRX != 0 && mask&ftdx.PurgeTX != 0:
		arg = unix.TCIOFLUSH
	case mask&ftdx.PurgeRX != 0:
		arg = unix.TCIFLUSH
	case mask&ftdx.PurgeTX != 0:
		arg = unix.TCOFLUSH
	default:
		return ftdx.StatusInvalidParameter
	}
	return statusFromErr(unix.IoctlSetInt(int(h), unix.TCFLSH, arg))
}

func (d *Driver) SetBaudRate(h ftdx.Handle, rate int) ftdx.Status {
	bits, ok := baudBits[rate]
	if !ok {
		return ftdx.StatusInvalidParameter
	}

	termios, err := unix.IoctlGetTermios(int(h), unix.TCGETS)
	if err != nil {
		return statusFromErr(err)
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | bits
	termios.Ispeed = bits
	termios.Ospeed = bits
	return statusFromErr(unix.IoctlSetTermios(int(h), unix.TCSETS, termios))
}

func (d *Driver) SetDataCharacteristics(h ftdx.Handle, dataBits, stopBits int, parity ftdx.Parity) ftdx.Status {
	termios, err := unix.IoctlGetTermios(int(h), unix.TCGETS)
	if err != nil {
		return statusFromErr(err)
	}

	termios.Cflag &^= unix.CSIZE
	switch dataBits {
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return ftdx.StatusInvalidParameter
	}

	switch stopBits {
	case 1:
		termios.Cflag &^= unix.CSTOPB
	case 2:
		termios.Cflag |= unix.CSTOPB
	default:
		return ftdx.StatusInvalidParameter
	}

	termios.Cflag &^= unix.PARENB | unix.PARODD | unix.CMSPAR
	switch parity {
	case ftdx.ParityNone:
	case ftdx.ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ftdx.ParityEven:
		termios.Cflag |= unix.PARENB
	case ftdx.ParityMark:
		termios.Cflag |= unix.PARENB | unix.CMSPAR | unix.PARODD
	case ftdx.ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
	default:
		return ftdx.StatusInvalidParameter
	}

	return statusFromErr(unix.IoctlSetTermios(int(h), unix.TCSETS, termios))
}

func (d *Driver) SetFlowControl(h ftdx.Handle, mode ftdx.FlowControl, xon, xoff byte) ftdx.Status {
	termios, err := unix.IoctlGetTermios(int(h), unix.TCGETS)
	if err != nil {
		return statusFromErr(err)
	}

	termios.Cflag &^= unix.CRTSCTS
	termios.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY

	switch mode {
	case ftdx.FlowControlNone:
	case ftdx.FlowControlRTSCTS:
		termios.Cflag |= unix.CRTSCTS
	case ftdx.FlowControlXONXOFF:
		termios.Iflag |= unix.IXON | unix.IXOFF
		termios.Cc[unix.VSTART] = xon
		termios.Cc[unix.VSTOP] = xoff
	default:
		// DTR/DSR has no termios equivalent.
		return ftdx.StatusInvalidParameter
	}

	return statusFromErr(unix.IoctlSetTermios(int(h), unix.TCSETS, termios))
}

// SetTimeouts is accepted but changes nothing: the caller's accumulating
// loop enforces the deadline, and the VTIME poll must stay short so the
// loop keeps its cancellation points.
func (d *Driver) SetTimeouts(h ftdx.Handle, read, write time.Duration) ftdx.Status {
	return ftdx.StatusOK
}

// SetLatencyTimer writes the usb-serial latency_timer knob. Adapters without
// one (non-FTDI chips) simply don't expose the file; that is not an error.
func (d *Driver) SetLatencyTimer(h ftdx.Handle, latency time.Duration) ftdx.Status {
	name, ok := d.handleName(h)
	if !ok {
		return ftdx.StatusNotOpen
	}

	ms := int(latency / time.Millisecond)
	if ms < 1 {
		ms = 1
	}

	path := filepath.Join(d.serialDir, name, "latency_timer")
	if _, err := os.Stat(path); err != nil {
		return ftdx.StatusOK
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(ms)), 0); err != nil {
		return statusFromErr(err)
	}
	return ftdx.StatusOK
}

// SetBitMode only honors the reset mode; a tty has no path to the chip's
// MPSSE/bit-bang engines.
func (d *Driver) SetBitMode(h ftdx.Handle, mask, mode byte) ftdx.Status {
	if mode != ftdx.BitModeReset {
		return ftdx.StatusInvalidParameter
	}
	return ftdx.StatusOK
}

func (d *Driver) QueueStatus(h ftdx.Handle) (int, int, ftdx.Status) {
	rx, err := unix.IoctlGetInt(int(h), unix.TIOCINQ)
	if err != nil {
		return 0, 0, statusFromErr(err)
	}
	tx, err := unix.IoctlGetInt(int(h), unix.TIOCOUTQ)
	if err != nil {
		return 0, 0, statusFromErr(err)
	}
	return rx, tx, ftdx.StatusOK
}

func (d *Driver) ChipInfo(h ftdx.Handle) (ftdx.ChipInfo, ftdx.Status) {
	name, ok := d.handleName(h)
	if !ok {
		return ftdx.ChipInfo{}, ftdx.StatusNotOpen
	}

	usbDev := d.findUSBDevice(name)
	if usbDev == "" {
		return ftdx.ChipInfo{}, ftdx.StatusNotFound
	}

	info := ftdx.ChipInfo{Type: readSysAttr(usbDev, "product")}
	if v, err := strconv.ParseUint(readSysAttr(usbDev, "idVendor"), 16, 16); err == nil {
		info.VendorID = uint16(v)
	}
	if p, err := strconv.ParseUint(readSysAttr(usbDev, "idProduct"), 16, 16); err == nil {
		info.ProductID = uint16(p)
	}
	return info, ftdx.StatusOK
}

func (d *Driver) handleName(h ftdx.Handle) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.handles[h]
	return name, ok
}
