package glove

import "time"

// Frame structure markers.
const (
	frameStart = 0x24 // '$', frame start marker
	frameEnd   = 0x23 // '#', frame end marker
)

// Command type codes.
const (
	cmdSampling    = 0x0A // start/stop data sampling, also the sample frame type
	cmdStop        = 0x0B // generic stop
	cmdDeviceInfo  = 0x0C // device type, id and network setup
	cmdSetDeviceID = 0x0D // set device id, echoes the new id
	cmdReboot      = 0x0E // reboot the device
	cmdLabel       = 0x11 // get/set the 16 byte device label
	cmdFirmware    = 0x13 // firmware version, 3 bytes major.minor.patch
	cmdCalibration = 0x31 // orientation module self calibration
	cmdPowerOff    = 0x40 // turn the device off
	cmdVibro       = 0x60 // vibrotactile feedback, 5 levels + 1 reserved byte
)

// Sampling mode bytes for the cmdSampling payload.
const (
	modeStop       = 0x00
	modeQuaternion = 0x01
	modeRaw        = 0x03
)

// Calibration stage sentinels, intermediate stages are percents 0..99.
const (
	calStageDone   = 100
	calStageFailed = 255
)

const (
	// DefaultBaudRate is the serial baud rate of the glove.
	DefaultBaudRate = 230400
	// DefaultTimeout is the serial read/write timeout.
	DefaultTimeout = 2 * time.Second
)

// settleDelay is the pause the device needs to quiesce after a
// mode-changing command before it accepts further commands.
const settleDelay = 100 * time.Millisecond

// labelSize is the fixed size of the null padded device label.
const labelSize = 16
