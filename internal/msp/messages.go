package msp

import (
	"encoding/binary"
)

// MSP command identifiers understood by the dispatch table.
const (
	CmdFCVariant    uint16 = 2
	CmdName         uint16 = 10
	CmdStatus       uint16 = 101
	CmdRawRC        uint16 = 105
	CmdRawGPS       uint16 = 106
	CmdCompGPS      uint16 = 107
	CmdAttitude     uint16 = 108
	CmdAltitude     uint16 = 109
	CmdAnalog       uint16 = 110
	CmdBatteryState uint16 = 130
	CmdStatusEx     uint16 = 150
	CmdDisplayPort  uint16 = 182
)

// DisplayPort subcommands (first payload byte of CmdDisplayPort).
const (
	DisplayPortHeartbeat byte = 0
	DisplayPortRelease   byte = 1
	DisplayPortClear     byte = 2
	DisplayPortWrite     byte = 3
	DisplayPortDraw      byte = 4
)

// Message is a checksum-validated, schema-decoded MSP message.
type Message interface {
	Cmd() uint16
}

// Attitude carries MSP_ATTITUDE: roll/pitch in decidegrees, yaw in degrees.
type Attitude struct {
	RollDeci  int16
	PitchDeci int16
	YawDeg    int16
}

func (Attitude) Cmd() uint16 { return CmdAttitude }

// Analog carries MSP_ANALOG: legacy battery/RSSI block.
type Analog struct {
	VBatDeci uint8 // 0.1V units
	MAhDrawn uint16
	RSSI     uint16 // 0..1023
	AmpCenti int16  // 0.01A units
}

func (Analog) Cmd() uint16 { return CmdAnalog }

// BatteryState carries MSP_BATTERY_STATE. The trailing uint16 voltage has
// 0.01V resolution and supersedes the legacy 0.1V byte when present.
type BatteryState struct {
	CellCount    uint8
	CapacityMAh  uint16
	VBatDeci     uint8
	MAhDrawn     uint16
	AmpCenti     int16
	State        uint8
	VoltageCenti uint16 // 0.01V units
}

func (BatteryState) Cmd() uint16 { return CmdBatteryState }

// RawGPS carries MSP_RAW_GPS.
type RawGPS struct {
	FixType     uint8
	NumSat      uint8
	LatitudeE7  int32 // 1e-7 degrees
	LongitudeE7 int32
	AltitudeM   int16
	SpeedCmS    uint16 // cm/s
	CourseDeci  uint16 // 0.1 degrees
}

func (RawGPS) Cmd() uint16 { return CmdRawGPS }

// CompGPS carries MSP_COMP_GPS: home distance and direction.
type CompGPS struct {
	DistanceM    uint16
	DirectionDeg int16
}

func (CompGPS) Cmd() uint16 { return CmdCompGPS }

// Altitude carries MSP_ALTITUDE.
type Altitude struct {
	EstimatedCm int32
	VarioCmS    int16
}

func (Altitude) Cmd() uint16 { return CmdAltitude }

// Status carries MSP_STATUS / MSP_STATUS_EX. Only the flight mode flags are
// consumed downstream; the arming bit lives in flag bit 0.
type Status struct {
	CycleTimeUs uint16
	I2CErrors   uint16
	Sensors     uint16
	ModeFlags   uint32
}

func (Status) Cmd() uint16 { return CmdStatus }

// Armed reports the arming bit of the flight mode flags.
func (s Status) Armed() bool { return s.ModeFlags&1 != 0 }

// RawRC carries MSP_RC channel values in microseconds (typically 1000..2000).
type RawRC struct {
	Channels []uint16
}

func (RawRC) Cmd() uint16 { return CmdRawRC }

// FCVariant carries the four-character flight controller identifier.
type FCVariant struct {
	Ident string
}

func (FCVariant) Cmd() uint16 { return CmdFCVariant }

// Name carries the craft name.
type Name struct {
	Name string
}

func (Name) Cmd() uint16 { return CmdName }

// DisplayPort carries an MSP DisplayPort canvas operation.
type DisplayPort struct {
	Sub  byte
	Row  byte
	Col  byte
	Attr byte
	Text []byte
}

func (DisplayPort) Cmd() uint16 { return CmdDisplayPort }

// Unhandled is emitted for command IDs with no schema. The payload is kept so
// callers can log or forward it; the telemetry model ignores it.
type Unhandled struct {
	CmdID   uint16
	Payload []byte
}

func (u Unhandled) Cmd() uint16 { return u.CmdID }

// dispatch decodes a validated payload according to the command's schema.
// Payloads shorter than the schema expects are emitted as Unhandled rather
// than partially decoded.
func dispatch(cmd uint16, payload []byte) Message {
	le := binary.LittleEndian

	switch cmd {
	case CmdAttitude:
		if len(payload) < 6 {
			break
		}
		return Attitude{
			RollDeci:  int16(le.Uint16(payload[0:2])),
			PitchDeci: int16(le.Uint16(payload[2:4])),
			YawDeg:    int16(le.Uint16(payload[4:6])),
		}

	case CmdAnalog:
		if len(payload) < 7 {
			break
		}
		return Analog{
			VBatDeci: payload[0],
			MAhDrawn: le.Uint16(payload[1:3]),
			RSSI:     le.Uint16(payload[3:5]),
			AmpCenti: int16(le.Uint16(payload[5:7])),
		}

	case CmdBatteryState:
		if len(payload) < 8 {
			break
		}
		bs := BatteryState{
			CellCount:   payload[0],
			CapacityMAh: le.Uint16(payload[1:3]),
			VBatDeci:    payload[3],
			MAhDrawn:    le.Uint16(payload[4:6]),
			AmpCenti:    int16(le.Uint16(payload[6:8])),
		}
		if len(payload) >= 11 {
			bs.State = payload[8]
			bs.VoltageCenti = le.Uint16(payload[9:11])
		} else {
			bs.VoltageCenti = uint16(bs.VBatDeci) * 10
		}
		return bs

	case CmdRawGPS:
		if len(payload) < 16 {
			break
		}
		return RawGPS{
			FixType:     payload[0],
			NumSat:      payload[1],
			LatitudeE7:  int32(le.Uint32(payload[2:6])),
			LongitudeE7: int32(le.Uint32(payload[6:10])),
			AltitudeM:   int16(le.Uint16(payload[10:12])),
			SpeedCmS:    le.Uint16(payload[12:14]),
			CourseDeci:  le.Uint16(payload[14:16]),
		}

	case CmdCompGPS:
		if len(payload) < 4 {
			break
		}
		return CompGPS{
			DistanceM:    le.Uint16(payload[0:2]),
			DirectionDeg: int16(le.Uint16(payload[2:4])),
		}

	case CmdAltitude:
		if len(payload) < 6 {
			break
		}
		return Altitude{
			EstimatedCm: int32(le.Uint32(payload[0:4])),
			VarioCmS:    int16(le.Uint16(payload[4:6])),
		}

	case CmdStatus, CmdStatusEx:
		if len(payload) < 10 {
			break
		}
		return Status{
			CycleTimeUs: le.Uint16(payload[0:2]),
			I2CErrors:   le.Uint16(payload[2:4]),
			Sensors:     le.Uint16(payload[4:6]),
			ModeFlags:   le.Uint32(payload[6:10]),
		}

	case CmdRawRC:
		if len(payload) < 2 || len(payload)%2 != 0 {
			break
		}
		chans := make([]uint16, len(payload)/2)
		for i := range chans {
			chans[i] = le.Uint16(payload[i*2 : i*2+2])
		}
		return RawRC{Channels: chans}

	case CmdFCVariant:
		return FCVariant{Ident: trimmedString(payload)}

	case CmdName:
		return Name{Name: trimmedString(payload)}

	case CmdDisplayPort:
		if len(payload) < 1 {
			break
		}
		dp := DisplayPort{Sub: payload[0]}
		if dp.Sub == DisplayPortWrite {
			if len(payload) < 4 {
				break
			}
			dp.Row = payload[1]
			dp.Col = payload[2]
			dp.Attr = payload[3]
			dp.Text = append([]byte(nil), payload[4:]...)
		}
		return dp
	}

	return Unhandled{CmdID: cmd, Payload: append([]byte(nil), payload...)}
}

// trimmedString converts a payload to a string, dropping trailing NULs.
func trimmedString(payload []byte) string {
	end := len(payload)
	for end > 0 && payload[end-1] == 0 {
		end--
	}
	return string(payload[:end])
}
