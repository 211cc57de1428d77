package ftdx

import "time"

// Status is the closed set of result codes a Driver reports. Session methods
// translate these into package errors; callers of Session never see a Status.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusNotOpen
	StatusIOError
	StatusInvalidParameter
	StatusInsufficientResources
	StatusOther
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusNotOpen:
		return "not open"
	case StatusIOError:
		return "io error"
	case StatusInvalidParameter:
		return "invalid parameter"
	case StatusInsufficientResources:
		return "insufficient resources"
	default:
		return "other"
	}
}

// Handle identifies one open device within a Driver. It is opaque to the
// Session, which owns at most one at a time and never exposes it.
type Handle uintptr

// PurgeMask selects which device buffers a purge discards.
type PurgeMask int

const (
	PurgeRX PurgeMask = 1 << iota
	PurgeTX
)

// BitModeReset returns the chip to its default asynchronous serial mode.
const BitModeReset byte = 0

// DeviceInfo describes one enumerated device. Index is only meaningful for an
// Open call issued before the next enumeration.
type DeviceInfo struct {
	Index        int
	SerialNumber string
	Description  string
}

// ChipInfo describes the chip behind an open handle.
type ChipInfo struct {
	Type      string
	VendorID  uint16
	ProductID uint16
}

// Driver is the synchronous vendor function table the Session drives. The
// table is process-wide, read-only after initialization, and reentrant per
// handle, so implementations need no locking of their own for Session use.
//
// Enumeration is a two-call protocol: DeviceCount, then DeviceList sized to
// that count. A device attached or removed in between is tolerated by
// trimming; callers wanting a race-free view enumerate again.
//
// Read may return fewer bytes than len(buf) with StatusOK and must not block
// longer than a short poll; assembling complete reads is the Session's job.
type Driver interface {
	DeviceCount() (int, Status)
	DeviceList(max int) ([]DeviceInfo, Status)
	Open(index int) (Handle, Status)
	Close(h Handle) Status
	Read(h Handle, buf []byte) (int, Status)
	Write(h Handle, data []byte) (int, Status)
	Purge(h Handle, mask PurgeMask) Status
	SetBaudRate(h Handle, rate int) Status
	SetDataCharacteristics(h Handle, dataBits, stopBits int, parity Parity) Status
	SetFlowControl(h Handle, mode FlowControl, xon, xoff byte) Status
	SetTimeouts(h Handle, read, write time.Duration) Status
	SetLatencyTimer(h Handle, d time.Duration) Status
	SetBitMode(h Handle, mask, mode byte) Status
	QueueStatus(h Handle) (rx, tx int, st Status)
	ChipInfo(h Handle) (ChipInfo, Status)
}
