package glove

import (
	"encoding/binary"
	"fmt"
)

// Sample payload sizes: 7 byte header, orientation block, 48 byte tail.
const (
	sampleHdrSize  = 7
	sampleQuatSize = sampleHdrSize + 32 + 48
	sampleRawSize  = sampleHdrSize + 36 + 48
)

// IMUSample holds raw measures of a single inertial unit.
type IMUSample struct {
	AngularVelocity [3]float64 // gyroscope, °/s
	Acceleration    [3]float64 // accelerometer, g
	MagneticField   [3]float64 // magnetometer, μT
}

// Sample is one decoded glove data frame. Either the IMU pair or the
// quaternion pair is set, depending on the sampling mode.
type Sample struct {
	DeviceID uint16
	Clock    float64 // internal glove time, sec

	WristIMU *IMUSample // raw mode only
	HandIMU  *IMUSample // raw mode only

	WristQuat *[4]float64 // quaternion x,y,z,w
	HandQuat  *[4]float64 // quaternion x,y,z,w

	PIPJoints      [5]float64 // proximal interphalangeal sensors [0..1]
	DIPJoints      [5]float64 // distal interphalangeal sensors [0..1]
	PalmArch       float64    // palm arch sensor [0..1]
	ThumbCrossOver float64    // thumb cross over sensor [0..1]
	Abductions     [4]float64 // abduction sensors [0..1]
	Pressures      [5]float64 // tip pressure sensors, thumb..little [0..1]
	BatteryCharge  float64    // battery charge [0..1]
}

// Raw reports whether the sample carries raw IMU data instead of quaternions.
func (s *Sample) Raw() bool { return s.WristIMU != nil }

// DecodeSample interprets a streaming frame payload. The frame codec has
// already validated the payload against the checksum, the only possible
// failure here is a layout size mismatch.
func DecodeSample(payload []byte) (*Sample, error) {
	if len(payload) < sampleHdrSize {
		return nil, fmt.Errorf("glove: sample payload too short: %d bytes", len(payload))
	}
	raw := payload[0] == modeRaw
	want := sampleQuatSize
	if raw {
		want = sampleRawSize
	}
	if len(payload) != want {
		return nil, fmt.Errorf("glove: sample payload length %d, want %d", len(payload), want)
	}

	s := &Sample{
		DeviceID: binary.BigEndian.Uint16(payload[1:3]),
		Clock:    float64(binary.BigEndian.Uint32(payload[3:7])) / 1000,
	}

	body := payload[sampleHdrSize:]
	if raw {
		var values [18]int16
		for i := range values {
			values[i] = int16(binary.BigEndian.Uint16(body[2*i:]))
		}
		s.WristIMU = decodeIMU(values[0:9])
		s.HandIMU = decodeIMU(values[9:18])
		body = body[36:]
	} else {
		var values [8]float64
		for i := range values {
			values[i] = float64(int32(binary.BigEndian.Uint32(body[4*i:]))) / 0x10000
		}
		s.WristQuat = &[4]float64{values[0], values[1], values[2], values[3]}
		s.HandQuat = &[4]float64{values[4], values[5], values[6], values[7]}
		body = body[32:]
	}

	var tail [24]uint16
	for i := range tail {
		tail[i] = binary.BigEndian.Uint16(body[2*i:])
	}

	// Finger sensors are interleaved on the wire: pip at odd indices,
	// dip at even ones.
	for i := 0; i < 5; i++ {
		s.PIPJoints[i] = float64(tail[2*i+1]) / 1000
		s.DIPJoints[i] = float64(tail[2*i]) / 1000
	}
	s.PalmArch = float64(tail[10]) / 1000
	s.ThumbCrossOver = float64(tail[12]) / 1000
	// Pressure scale is inverted: raw 0 is the maximum pressure.
	for i := 0; i < 5; i++ {
		s.Pressures[i] = 1.0 - float64(tail[14+i])/999
	}
	for i := 0; i < 4; i++ {
		s.Abductions[i] = float64(tail[19+i]) / 1000
	}
	s.BatteryCharge = float64(tail[23]) / 1000

	return s, nil
}

func decodeIMU(values []int16) *IMUSample {
	imu := &IMUSample{}
	for i := 0; i < 3; i++ {
		imu.AngularVelocity[i] = float64(values[i]) / 0x8000 * 10
		imu.Acceleration[i] = float64(values[3+i]) / 0x8000 * 4
		imu.MagneticField[i] = float64(values[6+i])
	}
	return imu
}
