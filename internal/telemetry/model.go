// Package telemetry maintains the live model of last-known telemetry values.
//
// The model is owned by the scheduler goroutine: messages are applied and
// fields are read strictly within one tick, so no locking is needed. Values
// carry a validity flag so consumers can distinguish "fresh", "stopped
// updating" and "never seen" without sentinel values.
package telemetry

import (
	"time"

	"github.com/henkwiedig/msposd/internal/msp"
)

// Validity is a field's freshness state.
type Validity int

// Validity states. A field only leaves NeverReceived when a checksum-valid
// message sets it, and only returns there on a full model reset.
const (
	NeverReceived Validity = iota
	Valid
	Stale
)

// Field is one model entry: the last decoded value plus freshness tracking.
type Field struct {
	Num       float64
	Str       string
	UpdatedAt time.Time
	Validity  Validity
}

// Thresholds configures staleness detection. Zero-duration entries fall back
// to Default; a zero Default disables the sweep for those fields.
type Thresholds struct {
	Default  time.Duration
	PerField map[FieldID]time.Duration
}

// threshold returns the effective staleness threshold for a field.
func (t Thresholds) threshold(id FieldID) time.Duration {
	if d, ok := t.PerField[id]; ok && d > 0 {
		return d
	}
	return t.Default
}

// Model is the full field table.
type Model struct {
	fields     [numFields]Field
	thresholds Thresholds
	version    uint64
}

// NewModel creates an empty model; every field starts NeverReceived.
func NewModel(thresholds Thresholds) *Model {
	return &Model{thresholds: thresholds}
}

// Version increments on every mutation, for change detection.
func (m *Model) Version() uint64 { return m.version }

// Get returns a field snapshot.
func (m *Model) Get(id FieldID) Field {
	if id < 0 || id >= numFields {
		return Field{}
	}
	return m.fields[id]
}

// setNum marks a field valid with a numeric value.
func (m *Model) setNum(id FieldID, v float64, now time.Time) {
	m.fields[id] = Field{Num: v, UpdatedAt: now, Validity: Valid}
}

// setStr marks a field valid with a string value.
func (m *Model) setStr(id FieldID, s string, now time.Time) {
	m.fields[id] = Field{Str: s, UpdatedAt: now, Validity: Valid}
}

// Apply updates exactly the fields named by the message's type. It reports
// whether the message updated any telemetry field; Unhandled and DisplayPort
// messages report false.
func (m *Model) Apply(msg msp.Message, now time.Time) bool {
	switch t := msg.(type) {
	case msp.Attitude:
		m.setNum(FieldRoll, float64(t.RollDeci)/10, now)
		m.setNum(FieldPitch, float64(t.PitchDeci)/10, now)
		m.setNum(FieldHeading, float64(t.YawDeg), now)

	case msp.Analog:
		m.setNum(FieldVoltage, float64(t.VBatDeci)/10, now)
		m.setNum(FieldMAhDrawn, float64(t.MAhDrawn), now)
		m.setNum(FieldRSSI, float64(t.RSSI)*100/1023, now)
		m.setNum(FieldCurrent, float64(t.AmpCenti)/100, now)

	case msp.BatteryState:
		m.setNum(FieldVoltage, float64(t.VoltageCenti)/100, now)
		m.setNum(FieldMAhDrawn, float64(t.MAhDrawn), now)
		m.setNum(FieldCurrent, float64(t.AmpCenti)/100, now)
		m.setNum(FieldCellCount, float64(t.CellCount), now)

	case msp.RawGPS:
		m.setNum(FieldGPSFix, float64(t.FixType), now)
		m.setNum(FieldGPSSats, float64(t.NumSat), now)
		m.setNum(FieldLatitude, float64(t.LatitudeE7)/1e7, now)
		m.setNum(FieldLongitude, float64(t.LongitudeE7)/1e7, now)
		m.setNum(FieldGroundSpeed, float64(t.SpeedCmS)*0.036, now) // km/h
		m.setNum(FieldGroundCourse, float64(t.CourseDeci)/10, now)

	case msp.CompGPS:
		m.setNum(FieldHomeDistance, float64(t.DistanceM), now)
		m.setNum(FieldHomeDirection, float64(t.DirectionDeg), now)

	case msp.Altitude:
		m.setNum(FieldAltitude, float64(t.EstimatedCm)/100, now)
		m.setNum(FieldVario, float64(t.VarioCmS)/100, now)

	case msp.Status:
		armed := 0.0
		if t.Armed() {
			armed = 1.0
		}
		m.setNum(FieldArmed, armed, now)
		m.setNum(FieldModeFlags, float64(t.ModeFlags), now)

	case msp.RawRC:
		for i, v := range t.Channels {
			id := RCChannel(i)
			if id < 0 {
				break
			}
			m.setNum(id, float64(v), now)
		}

	case msp.FCVariant:
		m.setStr(FieldFCVariant, t.Ident, now)

	case msp.Name:
		m.setStr(FieldCraftName, t.Name, now)

	default:
		return false
	}
	m.version++
	return true
}

// Sweep downgrades Valid fields whose last update is older than their
// staleness threshold. Driven by the scheduler, not by message arrival.
func (m *Model) Sweep(now time.Time) {
	changed := false
	for id := FieldID(0); id < numFields; id++ {
		f := &m.fields[id]
		if f.Validity != Valid {
			continue
		}
		threshold := m.thresholds.threshold(id)
		if threshold <= 0 {
			continue
		}
		if now.Sub(f.UpdatedAt) > threshold {
			f.Validity = Stale
			changed = true
		}
	}
	if changed {
		m.version++
	}
}

// Reset atomically clears every field back to NeverReceived. Used on link
// loss.
func (m *Model) Reset() {
	for id := range m.fields {
		m.fields[id] = Field{}
	}
	m.version++
}
