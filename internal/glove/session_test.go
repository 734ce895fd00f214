package glove

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"
)

func TestConnectOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Baud != DefaultBaudRate {
		t.Errorf("default Baud = %d, want %d", o.Baud, DefaultBaudRate)
	}
	if o.Timeout != DefaultTimeout {
		t.Errorf("default Timeout = %v, want %v", o.Timeout, DefaultTimeout)
	}

	o = Options{Baud: 115200, Timeout: time.Second}.withDefaults()
	if o.Baud != 115200 || o.Timeout != time.Second {
		t.Errorf("explicit options changed: %+v", o)
	}
}

// fakeDevice scripts the glove side of the protocol in memory. Responses
// to written command frames are queued for the session to read back;
// an empty read queue behaves like a serial read timeout.
type fakeDevice struct {
	in     bytes.Buffer
	frames [][]byte // command frames received from the session

	deviceID   uint16
	label      [labelSize]byte
	calStages  []byte
	sampleRuns int // samples emitted on a start sampling command
	closed     bool
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{deviceID: 11}
	copy(d.label[:], "vmg30 left")
	return d
}

func (d *fakeDevice) respond(typ byte, payload []byte) {
	d.in.Write(EncodeFrame(typ, payload))
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	if d.in.Len() == 0 {
		return 0, nil // read timeout
	}
	return d.in.Read(p)
}

// Write handles exactly one command frame per call, the way the session
// writes them.
func (d *fakeDevice) Write(p []byte) (int, error) {
	d.frames = append(d.frames, append([]byte(nil), p...))
	typ, payload := p[1], p[3:len(p)-2]

	switch typ {
	case cmdLabel:
		if len(payload) == labelSize {
			copy(d.label[:], payload)
		}
		d.respond(cmdLabel, d.label[:])
	case cmdFirmware:
		d.respond(cmdFirmware, []byte{1, 2, 3})
	case cmdDeviceInfo:
		info := make([]byte, 18)
		info[0] = 0x02
		binary.BigEndian.PutUint16(info[2:4], d.deviceID)
		copy(info[4:8], net.IPv4(192, 168, 1, 5).To4())
		copy(info[8:12], net.IPv4(255, 255, 255, 0).To4())
		copy(info[12:16], net.IPv4(192, 168, 1, 1).To4())
		info[16] = 1
		d.respond(cmdDeviceInfo, info)
	case cmdSetDeviceID:
		d.deviceID = binary.BigEndian.Uint16(payload)
		d.respond(cmdSetDeviceID, payload)
	case cmdCalibration:
		for _, stage := range d.calStages {
			d.respond(cmdCalibration, []byte{stage})
		}
	case cmdSampling:
		if len(payload) == 1 && payload[0] != modeStop {
			for i := 0; i < d.sampleRuns; i++ {
				if payload[0] == modeRaw {
					d.respond(cmdSampling, buildRawSample(d.deviceID, uint32(i*10), [18]int16{}, [24]uint16{}))
				} else {
					d.respond(cmdSampling, buildQuatSample(d.deviceID, uint32(i*10), [8]int32{}, [24]uint16{}))
				}
			}
		}
	}
	return len(p), nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func connectFake(t *testing.T, d *fakeDevice) *Session {
	t.Helper()
	s, err := NewSession(d)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return s
}

func TestSessionHandshake(t *testing.T) {
	d := newFakeDevice()
	s := connectFake(t, d)

	if s.Label() != "vmg30 left" {
		t.Errorf("Label() = %q, want \"vmg30 left\"", s.Label())
	}
	if s.Firmware() != "1.2.3" {
		t.Errorf("Firmware() = %q, want \"1.2.3\"", s.Firmware())
	}
	if s.DeviceID() != 11 {
		t.Errorf("DeviceID() = %d, want 11", s.DeviceID())
	}
	if !s.HasWifiModule() {
		t.Error("HasWifiModule() = false, want true")
	}
	id := s.Identity()
	if !id.Address.Equal(net.IPv4(192, 168, 1, 5)) {
		t.Errorf("Address = %v, want 192.168.1.5", id.Address)
	}
	if !id.DHCP {
		t.Error("DHCP = false, want true")
	}

	// The handshake quiesces the device first: sampling stop, generic
	// stop, then label, firmware and info queries.
	wantTypes := []byte{cmdSampling, cmdStop, cmdLabel, cmdFirmware, cmdDeviceInfo}
	if len(d.frames) != len(wantTypes) {
		t.Fatalf("handshake sent %d frames, want %d", len(d.frames), len(wantTypes))
	}
	for i, want := range wantTypes {
		if d.frames[i][1] != want {
			t.Errorf("handshake frame %d type = 0x%02X, want 0x%02X", i, d.frames[i][1], want)
		}
	}
	if d.frames[0][3] != modeStop {
		t.Errorf("handshake stop mode byte = 0x%02X, want 0x00", d.frames[0][3])
	}
}

type silentDevice struct{ closed bool }

func (d *silentDevice) Read(p []byte) (int, error)  { return 0, nil }
func (d *silentDevice) Write(p []byte) (int, error) { return len(p), nil }
func (d *silentDevice) Close() error                { d.closed = true; return nil }

func TestSessionHandshakeTimeout(t *testing.T) {
	d := &silentDevice{}
	if _, err := NewSession(d); !IsTimeout(err) {
		t.Errorf("NewSession() error = %v, want TimeoutError", err)
	}
	if !d.closed {
		t.Error("transport left open after failed handshake")
	}
}

func TestSetDeviceID(t *testing.T) {
	s := connectFake(t, newFakeDevice())

	if err := s.SetDeviceID(42); err != nil {
		t.Fatalf("SetDeviceID() error: %v", err)
	}
	if s.DeviceID() != 42 {
		t.Errorf("DeviceID() = %d, want 42 after acknowledged set", s.DeviceID())
	}
}

func TestSetLabel(t *testing.T) {
	s := connectFake(t, newFakeDevice())

	if err := s.SetLabel("right hand"); err != nil {
		t.Fatalf("SetLabel() error: %v", err)
	}
	if s.Label() != "right hand" {
		t.Errorf("Label() = %q, want \"right hand\"", s.Label())
	}

	if err := s.SetLabel("a label longer than sixteen"); err == nil {
		t.Error("SetLabel() accepted an oversized label")
	}
}

func TestCalibration(t *testing.T) {
	d := newFakeDevice()
	d.calStages = []byte{10, 50, 90, 100}
	s := connectFake(t, d)

	cal, err := s.Calibrate()
	if err != nil {
		t.Fatalf("Calibrate() error: %v", err)
	}

	var stages []int
	for {
		stage, ok, err := cal.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if !ok {
			break
		}
		stages = append(stages, stage)
	}
	want := []int{10, 50, 90}
	if len(stages) != len(want) {
		t.Fatalf("calibration stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("calibration stages = %v, want %v", stages, want)
			break
		}
	}
}

func TestCalibrationFailure(t *testing.T) {
	d := newFakeDevice()
	d.calStages = []byte{10, 255}
	s := connectFake(t, d)

	cal, err := s.Calibrate()
	if err != nil {
		t.Fatalf("Calibrate() error: %v", err)
	}

	if stage, ok, err := cal.Next(); err != nil || !ok || stage != 10 {
		t.Fatalf("Next() = %d, %v, %v, want 10, true, nil", stage, ok, err)
	}

	_, _, err = cal.Next()
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("Next() error = %v, want DeviceError", err)
	}
	// The sequence is terminal, the failure sticks.
	if _, _, err := cal.Next(); !errors.As(err, &devErr) {
		t.Errorf("Next() after failure error = %v, want DeviceError", err)
	}
}

func TestNextSampleRequiresStreaming(t *testing.T) {
	s := connectFake(t, newFakeDevice())

	if _, err := s.NextSample(); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("NextSample() while idle error = %v, want ErrNotStreaming", err)
	}
}

func TestSampling(t *testing.T) {
	d := newFakeDevice()
	d.sampleRuns = 2
	s := connectFake(t, d)

	if err := s.StartSampling(false); err != nil {
		t.Fatalf("StartSampling() error: %v", err)
	}
	for i := 0; i < 2; i++ {
		sample, err := s.NextSample()
		if err != nil {
			t.Fatalf("NextSample() error: %v", err)
		}
		if sample.Raw() {
			t.Error("quaternion mode sample reported as raw")
		}
		if sample.DeviceID != 11 {
			t.Errorf("sample DeviceID = %d, want 11", sample.DeviceID)
		}
	}
	// The stream is drained, the next read runs into the timeout.
	if _, err := s.NextSample(); !IsTimeout(err) {
		t.Errorf("NextSample() on drained stream error = %v, want TimeoutError", err)
	}

	if err := s.StopSampling(); err != nil {
		t.Fatalf("StopSampling() error: %v", err)
	}
	if _, err := s.NextSample(); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("NextSample() after stop error = %v, want ErrNotStreaming", err)
	}
}

func TestSamplingRawMode(t *testing.T) {
	d := newFakeDevice()
	d.sampleRuns = 1
	s := connectFake(t, d)

	if err := s.StartSampling(true); err != nil {
		t.Fatalf("StartSampling() error: %v", err)
	}
	sample, err := s.NextSample()
	if err != nil {
		t.Fatalf("NextSample() error: %v", err)
	}
	if !sample.Raw() {
		t.Error("raw mode sample carries no IMU data")
	}
}

func TestSamplingScoped(t *testing.T) {
	d := newFakeDevice()
	d.sampleRuns = 1
	s := connectFake(t, d)

	boom := errors.New("boom")
	err := s.Sampling(false, func() error {
		if _, err := s.NextSample(); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Sampling() error = %v, want boom", err)
	}

	// Sampling must be stopped on the error path too.
	if _, err := s.NextSample(); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("NextSample() after scoped sampling error = %v, want ErrNotStreaming", err)
	}
	last := d.frames[len(d.frames)-1]
	if last[1] != cmdStop {
		t.Errorf("last frame type = 0x%02X, want generic stop", last[1])
	}
}

func TestSetVibroFeedback(t *testing.T) {
	d := newFakeDevice()
	s := connectFake(t, d)

	if err := s.SetVibroFeedback([5]float64{0, 0.5, 1, 2, -1}); err != nil {
		t.Fatalf("SetVibroFeedback() error: %v", err)
	}

	last := d.frames[len(d.frames)-1]
	if last[1] != cmdVibro {
		t.Fatalf("last frame type = 0x%02X, want 0x60", last[1])
	}
	payload := last[3 : len(last)-2]
	want := []byte{110, 180, 250, 250, 110, 0}
	if !bytes.Equal(payload, want) {
		t.Errorf("vibro payload = % X, want % X", payload, want)
	}
}

func TestTurnOff(t *testing.T) {
	d := newFakeDevice()
	s := connectFake(t, d)

	if err := s.TurnOff(); err != nil {
		t.Fatalf("TurnOff() error: %v", err)
	}
	if !d.closed {
		t.Error("transport left open after TurnOff")
	}
	if _, err := s.NextSample(); !errors.Is(err, ErrClosed) {
		t.Errorf("NextSample() after TurnOff error = %v, want ErrClosed", err)
	}
	if err := s.Reboot(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reboot() after TurnOff error = %v, want ErrClosed", err)
	}
}
