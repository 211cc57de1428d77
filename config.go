package ftdx

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return "none"
	}
}

// FlowControl represents the flow control mode. The Session always configures
// FlowControlNone; the other modes exist for Driver implementations.
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	FlowControlRTSCTS
	FlowControlDTRDSR
	FlowControlXONXOFF
)

// Config holds the configuration for a device session.
//
// ReadTimeout bounds one accumulating read as a whole: 0 probes the driver
// once and fails if incomplete, a negative value waits forever, a positive
// value is a wall-clock deadline measured when the read starts.
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration

	Logger *logrus.Entry
}

// Option is a functional option for configuring a Session
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		ReadTimeout: 0,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (7 or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits != 7 && bits != 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithReadTimeout sets the read timeout. Zero means a single non-blocking
// probe, negative means wait indefinitely.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.ReadTimeout = timeout
		return nil
	}
}

// WithLogger attaches a logger to the session. Without one the session logs
// nowhere.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Config) error {
		if log == nil {
			return ErrInvalidConfig
		}
		c.Logger = log
		return nil
	}
}
