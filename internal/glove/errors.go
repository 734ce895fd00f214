package glove

import (
	"errors"
	"fmt"
)

// ErrNotStreaming is returned by NextSample when sampling is not started.
var ErrNotStreaming = errors.New("glove: sampling is not started")

// ErrClosed is returned by any session call after Disconnect.
var ErrClosed = errors.New("glove: session is closed")

// ConnectionError reports that the serial port could not be opened or that
// the connect-time handshake failed.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("glove connection on %q failed: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports that a transport read or write did not complete
// within the configured timeout.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("glove %s timeout", e.Op)
}

// Timeout reports this error as a timeout, net.Error style.
func (e *TimeoutError) Timeout() bool { return true }

// PacketError reports a frame that failed checksum or structure validation.
// The frame is dropped and the codec resynchronizes on the next call.
type PacketError struct {
	Reason string
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("glove damaged packet: %s", e.Reason)
}

// DeviceError reports a domain-level failure signaled by the device itself.
type DeviceError struct {
	Op   string
	Code byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("glove %s failed (code 0x%02X)", e.Op, e.Code)
}

// IsTimeout returns true if the error is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsPacketError returns true if the error is a PacketError.
func IsPacketError(err error) bool {
	var pe *PacketError
	return errors.As(err, &pe)
}
