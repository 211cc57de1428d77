package ftdx

import "errors"

// Predefined error types for robust error handling
var (
	ErrNotOpen        = errors.New("session is not open")
	ErrAlreadyOpen    = errors.New("session is already open")
	ErrDeviceNotFound = errors.New("device not found")
	ErrConfiguration  = errors.New("device configuration failed")
	ErrCommunication  = errors.New("device communication failed")
	ErrReadTimeout    = errors.New("read operation timed out")

	// Configuration option validation errors
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid session configuration")
)
