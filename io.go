package ftdx

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// pollInterval spaces out driver polls when a read attempt returned nothing.
const pollInterval = time.Millisecond

// Read fills buf completely or fails: callers never get a short read
// silently. The driver may hand back any prefix of what was asked for, so the
// session keeps reading until len(buf) bytes arrived, the configured
// ReadTimeout elapsed, or the context is cancelled.
//
// The returned count is how many bytes actually landed in buf, which equals
// len(buf) exactly when the error is nil.
func (s *Session) Read(buf []byte) (int, error) {
	return s.ReadContext(context.Background(), buf)
}

// ReadContext is Read with cooperative cancellation. Cancellation is checked
// before every driver call; a single driver call is never interrupted.
func (s *Session) ReadContext(ctx context.Context, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, ErrNotOpen
	}

	timeout := s.config.ReadTimeout
	var deadline time.Time
	if timeout > 0 {
		// Measured once up front: partial returns must not push the
		// deadline out.
		deadline = time.Now().Add(timeout)
	}

	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		got, st := s.drv.Read(s.handle, buf[total:])
		if st != StatusOK {
			return total, fmt.Errorf("%w: read: %v", ErrCommunication, st)
		}
		total += got
		if total >= len(buf) {
			return total, nil
		}

		if timeout == 0 {
			// Non-blocking probe: one attempt, then give up.
			return total, fmt.Errorf("%w: %d of %d bytes", ErrReadTimeout, total, len(buf))
		}
		if timeout > 0 && !time.Now().Before(deadline) {
			return total, fmt.Errorf("%w: %d of %d bytes", ErrReadTimeout, total, len(buf))
		}

		if got == 0 {
			time.Sleep(pollInterval)
		}
	}
}

// Write hands data to the driver in a single call and reports how many bytes
// it accepted. A short write is logged but deliberately not retried here:
// reissuing the remainder could duplicate bytes when the short count was a
// transient driver quirk rather than a safe resume point. Retry policy
// belongs to the caller.
func (s *Session) Write(data []byte) (int, error) {
	return s.WriteContext(context.Background(), data)
}

// WriteContext is Write with a pre-flight cancellation check. Once the driver
// call is issued it runs to completion.
func (s *Session) WriteContext(ctx context.Context, data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, ErrNotOpen
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	n, st := s.drv.Write(s.handle, data)
	if st != StatusOK {
		return n, fmt.Errorf("%w: write: %v", ErrCommunication, st)
	}
	if n < len(data) {
		s.log.WithFields(logrus.Fields{
			"requested": len(data),
			"accepted":  n,
		}).Warn("short write")
	}
	return n, nil
}

// FlushInput discards any bytes buffered on the receive side.
func (s *Session) FlushInput() error {
	return s.purge(PurgeRX)
}

// FlushOutput discards any bytes buffered on the transmit side.
func (s *Session) FlushOutput() error {
	return s.purge(PurgeTX)
}

func (s *Session) purge(mask PurgeMask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}
	if st := s.drv.Purge(s.handle, mask); st != StatusOK {
		return fmt.Errorf("%w: purge: %v", ErrCommunication, st)
	}
	return nil
}

// QueueStatus reports how many bytes sit in the receive and transmit queues.
func (s *Session) QueueStatus() (rx, tx int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, 0, ErrNotOpen
	}

	rx, tx, st := s.drv.QueueStatus(s.handle)
	if st != StatusOK {
		return 0, 0, fmt.Errorf("%w: queue status: %v", ErrCommunication, st)
	}
	return rx, tx, nil
}

// BytesAvailable reports how many bytes a Read could currently consume
// without waiting.
func (s *Session) BytesAvailable() (int, error) {
	rx, _, err := s.QueueStatus()
	return rx, err
}
