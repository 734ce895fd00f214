package glove

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// Transport is a blocking byte channel to the glove. The implementation is
// expected to bound each read by a timeout and report an exhausted wait as
// a zero-length read.
type Transport interface {
	io.ReadWriteCloser
}

// openSerial opens the glove serial port and drops any stale input.
func openSerial(port string, baud int, timeout time.Duration) (Transport, error) {
	c := &serial.Config{
		Name:        port,
		Baud:        baud,
		ReadTimeout: timeout,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, err
	}
	if err := p.Flush(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// transportReader adapts a Transport into an io.Reader whose timeouts
// surface as TimeoutError. The serial port reports an expired read wait
// either as a zero-length read or as io.EOF depending on the platform.
type transportReader struct {
	t Transport
}

func (r transportReader) Read(p []byte) (int, error) {
	n, err := r.t.Read(p)
	if n == 0 && (err == nil || err == io.EOF) {
		return 0, &TimeoutError{Op: "read"}
	}
	return n, err
}
