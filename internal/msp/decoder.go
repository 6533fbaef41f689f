// Package msp implements a streaming decoder for MultiWii Serial Protocol
// (MSP) v1 and v2 frames.
//
// The decoder is a resumable per-byte state machine: Feed may be called with
// arbitrary chunkings of the input stream, including zero-length slices, and
// frame state persists across calls. Corruption is never fatal; any framing
// or checksum failure drops back to sync-marker hunting.
package msp

import (
	"github.com/sigurn/crc8"
)

// MaxPayload caps the declared payload length. A v2 header declaring more
// than this is treated as corruption and forces a resync.
const MaxPayload = 512

// crc8Table implements CRC8/DVB-S2 as used by MSP v2.
var crc8Table = crc8.MakeTable(crc8.Params{Poly: 0xD5, Init: 0x00, Check: 0xBC, Name: "CRC-8/DVB-S2"})

// Version distinguishes the two MSP framings.
type Version int

// MSP protocol versions.
const (
	V1 Version = 1
	V2 Version = 2
)

type state int

const (
	stateSync   state = iota // hunting for '$'
	stateMarker              // 'M' (v1) or 'X' (v2)
	stateDirection
	stateV1Len
	stateV1Cmd
	stateV1Payload
	stateV1Checksum
	stateV2Flags
	stateV2CmdLo
	stateV2CmdHi
	stateV2LenLo
	stateV2LenHi
	stateV2Payload
	stateV2Checksum
)

// Decoder consumes a raw MSP byte stream and produces validated messages.
// It is not safe for concurrent use; the scheduler owns it.
type Decoder struct {
	state     state
	version   Version
	direction byte
	cmd       uint16
	length    int
	payload   []byte
	xorSum    byte // v1 running checksum
	crc       byte // v2 running CRC8/DVB-S2

	discarded int // bytes dropped since last emitted frame

	// OnResync, if set, is called whenever bytes are discarded on the way
	// back to sync: once per corrupt frame, with the count of bytes lost.
	OnResync func(discarded int, reason string)
}

// NewDecoder returns a decoder hunting for the first sync marker.
func NewDecoder() *Decoder {
	return &Decoder{payload: make([]byte, 0, MaxPayload)}
}

// Feed consumes whatever bytes are currently available (possibly none) and
// returns every message completed by them, in stream order.
func (d *Decoder) Feed(p []byte) []Message {
	var msgs []Message
	for _, b := range p {
		if msg, ok := d.feedByte(b); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// feedByte advances the state machine by one byte.
func (d *Decoder) feedByte(b byte) (Message, bool) {
	switch d.state {
	case stateSync:
		if b == '$' {
			d.state = stateMarker
		} else {
			d.discarded++
		}

	case stateMarker:
		switch b {
		case 'M':
			d.version = V1
			d.state = stateDirection
		case 'X':
			d.version = V2
			d.state = stateDirection
		case '$':
			// stay: this byte may start a real frame
			d.discarded++
		default:
			d.resync(2, "bad version marker")
		}

	case stateDirection:
		// '<' request, '>' response, '!' error reply; anything else is noise
		if b != '<' && b != '>' && b != '!' {
			d.resync(3, "bad direction")
			break
		}
		d.direction = b
		d.payload = d.payload[:0]
		if d.version == V1 {
			d.xorSum = 0
			d.state = stateV1Len
		} else {
			d.crc = 0
			d.state = stateV2Flags
		}

	case stateV1Len:
		d.length = int(b)
		d.xorSum ^= b
		d.state = stateV1Cmd

	case stateV1Cmd:
		d.cmd = uint16(b)
		d.xorSum ^= b
		if d.length == 0 {
			d.state = stateV1Checksum
		} else {
			d.state = stateV1Payload
		}

	case stateV1Payload:
		d.payload = append(d.payload, b)
		d.xorSum ^= b
		if len(d.payload) == d.length {
			d.state = stateV1Checksum
		}

	case stateV1Checksum:
		if b != d.xorSum {
			d.resync(5+len(d.payload), "v1 checksum mismatch")
			break
		}
		return d.emit()

	case stateV2Flags:
		// flags byte is reserved, carried only into the CRC
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		d.state = stateV2CmdLo

	case stateV2CmdLo:
		d.cmd = uint16(b)
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		d.state = stateV2CmdHi

	case stateV2CmdHi:
		d.cmd |= uint16(b) << 8
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		d.state = stateV2LenLo

	case stateV2LenLo:
		d.length = int(b)
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		d.state = stateV2LenHi

	case stateV2LenHi:
		d.length |= int(b) << 8
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		if d.length > MaxPayload {
			d.resync(8, "declared length exceeds cap")
			break
		}
		if d.length == 0 {
			d.state = stateV2Checksum
		} else {
			d.state = stateV2Payload
		}

	case stateV2Payload:
		d.payload = append(d.payload, b)
		d.crc = crc8.Update(d.crc, []byte{b}, crc8Table)
		if len(d.payload) == d.length {
			d.state = stateV2Checksum
		}

	case stateV2Checksum:
		if b != d.crc {
			d.resync(9+len(d.payload), "v2 crc mismatch")
			break
		}
		return d.emit()
	}

	return nil, false
}

// emit dispatches a fully validated frame and resets for the next one.
func (d *Decoder) emit() (Message, bool) {
	msg := dispatch(d.cmd, d.payload)
	d.state = stateSync
	d.discarded = 0
	return msg, true
}

// resync drops the partial frame (frameBytes consumed so far) and returns to
// sync hunting.
func (d *Decoder) resync(frameBytes int, reason string) {
	d.discarded += frameBytes
	if d.OnResync != nil {
		d.OnResync(d.discarded, reason)
	}
	d.discarded = 0
	d.state = stateSync
}
