package glove

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Frame layout: start(0x24) type length payload... checksum end(0x23).
// The length byte counts the payload plus two, the checksum is the sum of
// all bytes from the start marker through the payload modulo 256.

// EncodeFrame wraps a command payload into a wire frame. A nil payload
// encodes an empty frame of the minimal length.
func EncodeFrame(typ byte, payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+5)
	frame = append(frame, frameStart, typ, byte(len(payload)+2))
	frame = append(frame, payload...)

	var sum byte
	for _, b := range frame {
		sum += b
	}
	return append(frame, sum, frameEnd)
}

// DecodeNext scans the byte stream for the next valid frame of the wanted
// type and returns its payload. Bytes before a start marker are discarded,
// valid frames of other types are skipped silently, so unsolicited sample
// frames do not confuse a command response and vice versa. A frame that
// fails checksum or end-marker validation surfaces as a PacketError; the
// broken frame is dropped and the following call resumes scanning.
//
// Read errors from r, including timeouts, propagate unchanged.
func DecodeNext(r io.Reader, want byte) ([]byte, error) {
	var hdr [3]byte
	var tail [2]byte
	for {
		if _, err := io.ReadFull(r, hdr[:1]); err != nil {
			return nil, err
		}
		if hdr[0] != frameStart {
			continue // resync
		}
		if _, err := io.ReadFull(r, hdr[1:]); err != nil {
			return nil, err
		}
		if hdr[2] < 2 {
			log.Debugf("glove: invalid frame length byte %d", hdr[2])
			return nil, &PacketError{Reason: fmt.Sprintf("invalid length byte %d", hdr[2])}
		}
		payload := make([]byte, int(hdr[2])-2)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, tail[:]); err != nil {
			return nil, err
		}

		sum := hdr[0] + hdr[1] + hdr[2]
		for _, b := range payload {
			sum += b
		}
		if tail[0] != sum {
			log.Debugf("glove: checksum error: frame:0x%02X calculate:0x%02X, len:%d", tail[0], sum, hdr[2])
			return nil, &PacketError{Reason: fmt.Sprintf("checksum mismatch: got 0x%02X, want 0x%02X", tail[0], sum)}
		}
		if tail[1] != frameEnd {
			log.Debugf("glove: bad end marker 0x%02X", tail[1])
			return nil, &PacketError{Reason: fmt.Sprintf("bad end marker 0x%02X", tail[1])}
		}

		if hdr[1] == want {
			return payload, nil
		}
	}
}
