// Package glove implements the serial protocol of the VMG30 data glove
// from Virtual Motion Labs: frame encoding and decoding with checksum
// validation, the device session state machine and the binary sample
// decoder that turns streamed frames into structured sensor data.
package glove
