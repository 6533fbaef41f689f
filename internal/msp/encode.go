package msp

import (
	"encoding/binary"

	"github.com/sigurn/crc8"
)

// EncodeV1 builds a complete MSP v1 frame. Payloads longer than 255 bytes
// cannot be represented and are truncated by the caller's contract, not here;
// direction is usually '<' (to FC) or '>' (from FC).
func EncodeV1(direction byte, cmd uint16, payload []byte) []byte {
	n := len(payload)
	buf := make([]byte, 6+n)
	buf[0] = '$'
	buf[1] = 'M'
	buf[2] = direction
	buf[3] = byte(n)
	buf[4] = byte(cmd)
	copy(buf[5:], payload)

	ck := byte(0)
	for _, b := range buf[3 : 5+n] {
		ck ^= b
	}
	buf[5+n] = ck
	return buf
}

// EncodeV2 builds a complete MSP v2 frame with a CRC8/DVB-S2 trailer.
func EncodeV2(direction byte, cmd uint16, payload []byte) []byte {
	n := len(payload)
	buf := make([]byte, 9+n)
	buf[0] = '$'
	buf[1] = 'X'
	buf[2] = direction
	buf[3] = 0 // flags
	binary.LittleEndian.PutUint16(buf[4:6], cmd)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(n))
	copy(buf[8:], payload)
	buf[8+n] = crc8.Checksum(buf[3:8+n], crc8Table)
	return buf
}
