package glove

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"
)

// Identity holds the device configuration reported during the handshake.
// Session keeps it in sync with the last state the device acknowledged.
type Identity struct {
	DeviceType byte
	DeviceID   uint16
	Label      string
	Firmware   string
	Address    net.IP
	Netmask    net.IP
	Gateway    net.IP
	DHCP       bool
}

// HasWifiModule reports whether the device carries the WIFI module.
func (id Identity) HasWifiModule() bool { return id.DeviceType == 0x02 }

// Session is a connection to a single glove. It owns the transport for its
// lifetime and is not safe for concurrent use without external locking.
type Session struct {
	port string
	conn Transport
	r    transportReader

	mode     byte // modeStop while idle
	closed   bool
	identity Identity
}

// Options configures the serial connection to the glove. Zero fields fall
// back to the defaults.
type Options struct {
	Baud    int
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Baud == 0 {
		o.Baud = DefaultBaudRate
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Connect opens the glove on the given serial port and performs the
// identification handshake using the default serial settings.
func Connect(port string) (*Session, error) {
	return ConnectOptions(port, Options{})
}

// ConnectTimeout opens the glove on the given serial port with an explicit
// read timeout.
func ConnectTimeout(port string, timeout time.Duration) (*Session, error) {
	return ConnectOptions(port, Options{Timeout: timeout})
}

// ConnectOptions opens the glove on the given serial port with explicit
// serial settings. A handshake timeout is reported as a ConnectionError
// with a hint, the glove is most likely powered off.
func ConnectOptions(port string, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	conn, err := openSerial(port, opts.Baud, opts.Timeout)
	if err != nil {
		return nil, &ConnectionError{Port: port, Err: err}
	}
	s, err := NewSession(conn)
	if err != nil {
		if IsTimeout(err) {
			err = errors.New("the glove is not responding, ensure it is turned on")
		}
		return nil, &ConnectionError{Port: port, Err: err}
	}
	s.port = port
	return s, nil
}

// NewSession runs the handshake over an already open transport and takes
// ownership of it. On error the transport is closed.
func NewSession(conn Transport) (*Session, error) {
	s := &Session{conn: conn, r: transportReader{conn}, mode: modeStop}
	if err := s.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// handshake quiesces a possibly streaming device, then queries label,
// firmware and device info.
func (s *Session) handshake() error {
	if err := s.StopSampling(); err != nil {
		return err
	}

	label, err := s.exec(cmdLabel, nil)
	if err != nil {
		return err
	}
	s.identity.Label = decodeLabel(label)

	fw, err := s.exec(cmdFirmware, nil)
	if err != nil {
		return err
	}
	if len(fw) != 3 {
		return &PacketError{Reason: fmt.Sprintf("firmware response of %d bytes", len(fw))}
	}
	s.identity.Firmware = fmt.Sprintf("%d.%d.%d", fw[0], fw[1], fw[2])

	info, err := s.exec(cmdDeviceInfo, nil)
	if err != nil {
		return err
	}
	if len(info) != 18 {
		return &PacketError{Reason: fmt.Sprintf("device info response of %d bytes", len(info))}
	}
	s.identity.DeviceType = info[0]
	s.identity.DeviceID = binary.BigEndian.Uint16(info[2:4])
	s.identity.Address = net.IPv4(info[4], info[5], info[6], info[7])
	s.identity.Netmask = net.IPv4(info[8], info[9], info[10], info[11])
	s.identity.Gateway = net.IPv4(info[12], info[13], info[14], info[15])
	s.identity.DHCP = info[16] != 0
	return nil
}

// Identity returns the cached device identity.
func (s *Session) Identity() Identity { return s.identity }

// DeviceID returns the device identificator.
func (s *Session) DeviceID() uint16 { return s.identity.DeviceID }

// Label returns the device string identificator.
func (s *Session) Label() string { return s.identity.Label }

// Firmware returns the firmware version string major.minor.patch.
func (s *Session) Firmware() string { return s.identity.Firmware }

// HasWifiModule reports whether the device carries the WIFI module.
func (s *Session) HasWifiModule() bool { return s.identity.HasWifiModule() }

// SetDeviceID updates the device identificator. The cached id changes only
// after the device echoes the new value back.
func (s *Session) SetDeviceID(id uint16) error {
	var req [2]byte
	binary.BigEndian.PutUint16(req[:], id)
	echo, err := s.exec(cmdSetDeviceID, req[:])
	if err != nil {
		return err
	}
	if len(echo) != 2 {
		return &PacketError{Reason: fmt.Sprintf("device id echo of %d bytes", len(echo))}
	}
	s.identity.DeviceID = binary.BigEndian.Uint16(echo)
	return nil
}

// SetLabel updates the device string identificator, 16 bytes at most. The
// cached label changes only after the device echoes the new value back.
func (s *Session) SetLabel(label string) error {
	if len(label) > labelSize {
		return fmt.Errorf("glove: label %q longer than %d bytes", label, labelSize)
	}
	req := make([]byte, labelSize)
	copy(req, label)
	echo, err := s.exec(cmdLabel, req)
	if err != nil {
		return err
	}
	s.identity.Label = decodeLabel(echo)
	return nil
}

// Calibration is a pull-based progress sequence of the orientation module
// self calibration. It is finite and not restartable, a new run needs a
// new Calibrate call.
type Calibration struct {
	s    *Session
	done bool
	err  error
}

// Calibrate starts the self calibration of the orientation module.
// Progress is pulled from the returned sequence.
func (s *Session) Calibrate() (*Calibration, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.mode != modeStop {
		return nil, errors.New("glove: cannot calibrate while sampling")
	}
	if err := s.send(cmdCalibration, nil); err != nil {
		return nil, err
	}
	return &Calibration{s: s}, nil
}

// Next returns the following progress stage in percent. ok turns false
// once the device reports the calibration finished; a device-reported
// failure surfaces as a DeviceError and terminates the sequence.
func (c *Calibration) Next() (stage int, ok bool, err error) {
	if c.done {
		return 0, false, c.err
	}
	payload, err := c.s.recv(cmdCalibration)
	if err != nil {
		c.done, c.err = true, err
		return 0, false, err
	}
	if len(payload) < 1 {
		c.done, c.err = true, &PacketError{Reason: "empty calibration stage"}
		return 0, false, c.err
	}
	switch payload[0] {
	case calStageDone:
		c.done = true
		return 0, false, nil
	case calStageFailed:
		c.done = true
		c.err = &DeviceError{Op: "calibration", Code: payload[0]}
		return 0, false, c.err
	}
	return int(payload[0]), true, nil
}

// StartSampling starts data sampling. With raw set the glove streams IMU
// measures instead of orientation quaternions. The command expects no
// response, samples begin to arrive asynchronously.
func (s *Session) StartSampling(raw bool) error {
	mode := byte(modeQuaternion)
	if raw {
		mode = modeRaw
	}
	if err := s.send(cmdSampling, []byte{mode}); err != nil {
		return err
	}
	s.mode = mode
	return nil
}

// StopSampling stops data sampling. The device needs a settle pause after
// each of the two stop commands before it accepts anything else.
func (s *Session) StopSampling() error {
	if err := s.send(cmdSampling, []byte{modeStop}); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	if err := s.send(cmdStop, nil); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	s.mode = modeStop
	return nil
}

// NextSample receives the next streamed sample. Valid only while sampling
// is started.
func (s *Session) NextSample() (*Sample, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.mode == modeStop {
		return nil, ErrNotStreaming
	}
	payload, err := s.recv(cmdSampling)
	if err != nil {
		return nil, err
	}
	return DecodeSample(payload)
}

// Sampling starts data sampling, runs fn and guarantees a stop on every
// exit path. fn pulls samples with NextSample.
func (s *Session) Sampling(raw bool, fn func() error) (err error) {
	if err := s.StartSampling(raw); err != nil {
		return err
	}
	defer func() {
		stopErr := s.StopSampling()
		if err == nil {
			err = stopErr
		}
	}()
	return fn()
}

// SetVibroFeedback sets the vibrotactile intensity on the finger tips.
// Levels are clamped to [0..1].
func (s *Session) SetVibroFeedback(levels [5]float64) error {
	payload := make([]byte, 6)
	for i, v := range levels {
		v = math.Min(math.Max(v, 0.0), 1.0)
		payload[i] = byte(math.Round(v*140 + 110))
	}
	// payload[5] is reserved
	return s.send(cmdVibro, payload)
}

// Reboot reboots the glove.
func (s *Session) Reboot() error {
	return s.send(cmdReboot, nil)
}

// TurnOff turns the glove off and closes the session.
func (s *Session) TurnOff() error {
	if err := s.send(cmdPowerOff, nil); err != nil {
		return err
	}
	return s.Disconnect()
}

// Disconnect closes the transport. Any further call on the session fails
// with ErrClosed.
func (s *Session) Disconnect() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.mode = modeStop
	return s.conn.Close()
}

func (s *Session) String() string {
	return fmt.Sprintf("Glove(port=%q, id=%d, label=%q)", s.port, s.identity.DeviceID, s.identity.Label)
}

// exec sends one command frame and waits for the response of the same
// type. There are no retries, a timeout or packet error surfaces to the
// caller immediately.
func (s *Session) exec(typ byte, payload []byte) ([]byte, error) {
	if err := s.send(typ, payload); err != nil {
		return nil, err
	}
	return s.recv(typ)
}

func (s *Session) send(typ byte, payload []byte) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.conn.Write(EncodeFrame(typ, payload)); err != nil {
		return fmt.Errorf("glove write: %w", err)
	}
	return nil
}

func (s *Session) recv(typ byte) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return DecodeNext(s.r, typ)
}

func decodeLabel(raw []byte) string {
	label := string(raw)
	if i := strings.IndexByte(label, 0); i >= 0 {
		label = label[:i]
	}
	return label
}
