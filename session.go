package ftdx

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// latencyTimer is applied on every open. The vendor default of 16ms adds
// visible lag to small transfers.
const latencyTimer = 2 * time.Millisecond

// Session manages one logical device over an injected Driver. It owns at most
// one open driver handle and serializes every operation behind a single
// mutex: the device is one serial resource, so finer-grained locking would
// only risk interleaved byte streams.
//
// A Session starts closed with the default configuration and moves between
// Closed and Open via the open operations and Close. Two Sessions over two
// different devices are fully independent.
type Session struct {
	mu     sync.Mutex
	drv    Driver
	handle Handle
	open   bool
	config Config
	log    *logrus.Entry
}

// New creates a closed Session over drv.
func New(drv Driver, opts ...Option) (*Session, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	log := config.Logger
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		log = logrus.NewEntry(silent)
	}

	return &Session{drv: drv, config: config, log: log}, nil
}

// ListDevices enumerates the attached devices.
func (s *Session) ListDevices() ([]DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Session) listLocked() ([]DeviceInfo, error) {
	count, st := s.drv.DeviceCount()
	if st != StatusOK {
		return nil, fmt.Errorf("%w: device count: %v", ErrCommunication, st)
	}
	if count == 0 {
		return nil, nil
	}

	// A device attached or removed between the two calls shows up as a
	// trimmed list; that is tolerated, not retried.
	devices, st := s.drv.DeviceList(count)
	if st != StatusOK {
		return nil, fmt.Errorf("%w: device list: %v", ErrCommunication, st)
	}
	return devices, nil
}

// Open opens the device at the given enumeration index and applies the
// session configuration. If any configuration step fails, the just-opened
// handle is closed again and the session stays closed: callers never observe
// an open session with unapplied configuration.
func (s *Session) Open(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(index)
}

// OpenBySerialNumber enumerates and opens the device with the given serial
// number. When several devices report the same serial number the last
// enumerated one wins.
func (s *Session) OpenBySerialNumber(serial string) error {
	return s.openMatch("serial number", serial, func(d DeviceInfo) bool {
		return d.SerialNumber == serial
	})
}

// OpenByDescription enumerates and opens the device with the given
// description string. Ties are broken like OpenBySerialNumber: the last
// enumerated match wins.
func (s *Session) OpenByDescription(description string) error {
	return s.openMatch("description", description, func(d DeviceInfo) bool {
		return d.Description == description
	})
}

// openMatch resolves an identity to an index and opens it without dropping
// the lock in between, so the index stays valid against the enumeration that
// produced it.
func (s *Session) openMatch(kind, value string, match func(DeviceInfo) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return ErrAlreadyOpen
	}

	devices, err := s.listLocked()
	if err != nil {
		return err
	}

	index := -1
	for _, d := range devices {
		if match(d) {
			index = d.Index
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s %q", ErrDeviceNotFound, kind, value)
	}

	return s.openLocked(index)
}

func (s *Session) openLocked(index int) error {
	if s.open {
		return ErrAlreadyOpen
	}
	if index < 0 {
		return fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	}

	h, st := s.drv.Open(index)
	switch st {
	case StatusOK:
	case StatusNotFound:
		return fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	default:
		return fmt.Errorf("%w: open index %d: %v", ErrCommunication, index, st)
	}

	s.handle = h
	s.open = true

	if err := s.applyConfigLocked(); err != nil {
		// Force back to a clean closed state; a failing secondary close
		// changes nothing about the handle being gone.
		s.drv.Close(h)
		s.handle = 0
		s.open = false
		return err
	}

	s.log.WithFields(logrus.Fields{
		"index": index,
		"baud":  s.config.BaudRate,
	}).Debug("session opened")
	return nil
}

// applyConfigLocked runs the fixed-order configuration sequence against the
// open handle. The order minimizes cross-dependency failures seen on real
// hardware; the first failing step aborts the rest.
func (s *Session) applyConfigLocked() error {
	steps := []struct {
		name  string
		apply func() Status
	}{
		{"baud rate", func() Status {
			return s.drv.SetBaudRate(s.handle, s.config.BaudRate)
		}},
		{"data characteristics", func() Status {
			return s.drv.SetDataCharacteristics(s.handle, s.config.DataBits, s.config.StopBits, s.config.Parity)
		}},
		{"timeouts", func() Status {
			return s.drv.SetTimeouts(s.handle, s.config.ReadTimeout, 0)
		}},
		{"flow control", func() Status {
			return s.drv.SetFlowControl(s.handle, FlowControlNone, 0, 0)
		}},
		{"latency timer", func() Status {
			return s.drv.SetLatencyTimer(s.handle, latencyTimer)
		}},
		{"bit mode", func() Status {
			return s.drv.SetBitMode(s.handle, 0, BitModeReset)
		}},
	}

	for _, step := range steps {
		if st := step.apply(); st != StatusOK {
			return fmt.Errorf("%w: %s: %v", ErrConfiguration, step.name, st)
		}
	}
	return nil
}

// Close releases the device handle. The handle is considered invalid after
// this call even when the driver reports a failure; a close is never retried.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}

	st := s.drv.Close(s.handle)
	s.handle = 0
	s.open = false

	if st != StatusOK {
		return fmt.Errorf("%w: close: %v", ErrCommunication, st)
	}
	s.log.Debug("session closed")
	return nil
}

// IsOpen reports whether the session currently holds an open handle.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Config returns a snapshot of the current configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetBaudRate changes the baud rate. While the session is closed the value is
// only cached and applied on the next open; while open the driver must accept
// it or the cached value stays unchanged.
func (s *Session) SetBaudRate(rate int) error {
	if rate <= 0 {
		return ErrInvalidBaudRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		if st := s.drv.SetBaudRate(s.handle, rate); st != StatusOK {
			return fmt.Errorf("%w: baud rate: %v", ErrConfiguration, st)
		}
	}
	s.config.BaudRate = rate
	return nil
}

// SetDataBits changes the number of data bits (7 or 8). Cached while closed,
// applied immediately while open.
func (s *Session) SetDataBits(bits int) error {
	if bits != 7 && bits != 8 {
		return ErrInvalidConfig
	}
	return s.setCharacteristics(func(c *Config) { c.DataBits = bits })
}

// SetStopBits changes the number of stop bits (1 or 2). Cached while closed,
// applied immediately while open.
func (s *Session) SetStopBits(bits int) error {
	if bits != 1 && bits != 2 {
		return ErrInvalidConfig
	}
	return s.setCharacteristics(func(c *Config) { c.StopBits = bits })
}

// SetParity changes the parity mode. Cached while closed, applied immediately
// while open.
func (s *Session) SetParity(parity Parity) error {
	if parity < ParityNone || parity > ParitySpace {
		return ErrInvalidConfig
	}
	return s.setCharacteristics(func(c *Config) { c.Parity = parity })
}

// setCharacteristics updates one of the line characteristics. The driver call
// carries all three because the vendor API sets them as a unit.
func (s *Session) setCharacteristics(update func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.config
	update(&next)

	if s.open {
		st := s.drv.SetDataCharacteristics(s.handle, next.DataBits, next.StopBits, next.Parity)
		if st != StatusOK {
			return fmt.Errorf("%w: data characteristics: %v", ErrConfiguration, st)
		}
	}
	s.config = next
	return nil
}

// SetReadTimeout changes the read timeout. Zero probes once, negative waits
// indefinitely. Cached while closed, applied immediately while open.
func (s *Session) SetReadTimeout(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		if st := s.drv.SetTimeouts(s.handle, timeout, 0); st != StatusOK {
			return fmt.Errorf("%w: timeouts: %v", ErrConfiguration, st)
		}
	}
	s.config.ReadTimeout = timeout
	return nil
}

// ChipInfo reports the chip type and USB identity of the open device.
func (s *Session) ChipInfo() (ChipInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ChipInfo{}, ErrNotOpen
	}

	info, st := s.drv.ChipInfo(s.handle)
	if st != StatusOK {
		return ChipInfo{}, fmt.Errorf("%w: chip info: %v", ErrCommunication, st)
	}
	return info, nil
}
