// Package ftdx manages FTDI-style USB-serial devices as sessions over a
// vendor driver's synchronous, handle-based function table.
//
// The driver primitive is partial by nature: a read hands back whatever bytes
// it already has, which may be fewer than asked for. This package turns that
// into a caller contract of "exactly N bytes or an error" and layers the
// session state machine, configuration handling and locking discipline on
// top.
//
// # Basic Usage
//
// Create a session over a driver and open a device:
//
//	session, err := ftdx.New(tty.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Open(0); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	buf := make([]byte, 10)
//	n, err := session.Read(buf) // exactly 10 bytes or an error
//	n, err = session.Write([]byte("Hello"))
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	session, err := ftdx.New(drv,
//	    ftdx.WithBaudRate(115200),
//	    ftdx.WithDataBits(8),
//	    ftdx.WithParity(ftdx.ParityNone),
//	    ftdx.WithReadTimeout(500*time.Millisecond),
//	)
//
// Configuration applies on every open in a fixed order (baud rate, data
// characteristics, timeouts, flow control, latency timer, bit mode); the
// first failing step closes the device again and surfaces ErrConfiguration,
// so an open session always carries its full configuration. Setters called
// while the session is closed only cache the value for the next open.
//
// # Read Timeouts
//
// The read timeout is a session property, not a per-call override, matching
// the hardware semantics of a serial line:
//
//   - 0 probes the driver once and fails with ErrReadTimeout if incomplete
//   - a negative value waits indefinitely
//   - a positive value is a wall-clock deadline for the read as a whole,
//     measured once when the read starts
//
// # Device Discovery
//
// Enumerate attached devices and open by identity:
//
//	devices, err := session.ListDevices()
//	err = session.Open(0)
//	err = session.OpenBySerialNumber("FT123456")
//	err = session.OpenByDescription("FT232R USB UART")
//
// When several devices share a serial number or description, the last
// enumerated match wins.
//
// # Concurrency
//
// Every session operation runs to completion under one mutex; operations
// from different goroutines never interleave their driver calls. For
// asynchronous use, run the blocking call in a goroutine and use the Context
// variants for cancellation:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	n, err := session.ReadContext(ctx, buf)
//
// Cancellation is cooperative: the read loop checks the context between
// driver calls but never interrupts a call in flight.
//
// # Writes Are Not Retried
//
// Write issues a single driver call and reports the number of bytes the
// driver accepted. Unlike reads, a short write is never completed
// automatically, because reissuing bytes after a transient driver quirk
// could duplicate them on the wire. The asymmetry is deliberate.
//
// # Error Handling
//
// The package provides specific error types for robust error handling:
//
//	var (
//	    ErrNotOpen        // operation requires an open session
//	    ErrAlreadyOpen    // open requested while already open
//	    ErrDeviceNotFound // enumeration or identity match failed
//	    ErrConfiguration  // a setup driver call failed
//	    ErrCommunication  // a data-path driver call failed
//	    ErrReadTimeout    // read deadline exceeded
//	)
//
// Use errors.Is() for error type checking:
//
//	if errors.Is(err, ftdx.ErrReadTimeout) {
//	    // device silent, not broken
//	}
//
// Cancellation surfaces as the context's own error.
//
// # Drivers
//
// The Driver interface mirrors the vendor function table and is injected at
// construction, which keeps the session testable against a scripted fake.
// The tty subpackage provides a reference implementation over Linux USB
// serial ttys.
package ftdx
