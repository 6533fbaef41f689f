package telemetry

import (
	"testing"
	"time"

	"github.com/henkwiedig/msposd/internal/msp"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel() *Model {
	return NewModel(Thresholds{
		Default: 2 * time.Second,
		PerField: map[FieldID]time.Duration{
			FieldVoltage: 500 * time.Millisecond,
		},
	})
}

func TestApplyBatteryState(t *testing.T) {
	m := newTestModel()

	applied := m.Apply(msp.BatteryState{VoltageCenti: 1480, MAhDrawn: 230, AmpCenti: 1250, CellCount: 4}, t0)
	if !applied {
		t.Fatal("Apply returned false for telemetry message")
	}

	f := m.Get(FieldVoltage)
	if f.Validity != Valid {
		t.Errorf("voltage validity = %v, want Valid", f.Validity)
	}
	if f.Num != 14.80 {
		t.Errorf("voltage = %v, want 14.80", f.Num)
	}
	if got := m.Get(FieldCurrent).Num; got != 12.5 {
		t.Errorf("current = %v, want 12.5", got)
	}

	// Fields not named by the message stay untouched
	if m.Get(FieldRoll).Validity != NeverReceived {
		t.Error("roll should remain never-received")
	}
}

func TestApplyUnhandledDoesNothing(t *testing.T) {
	m := newTestModel()
	before := m.Get(FieldVoltage)

	if m.Apply(msp.Unhandled{CmdID: 250}, t0) {
		t.Error("Apply returned true for Unhandled")
	}
	if m.Get(FieldVoltage) != before {
		t.Error("Unhandled message mutated the model")
	}
}

func TestStalenessSweep(t *testing.T) {
	m := newTestModel()
	m.Apply(msp.BatteryState{VoltageCenti: 1480}, t0)
	m.Apply(msp.Attitude{RollDeci: 100}, t0)

	// Inside both thresholds: nothing changes
	m.Sweep(t0.Add(300 * time.Millisecond))
	if m.Get(FieldVoltage).Validity != Valid || m.Get(FieldRoll).Validity != Valid {
		t.Fatal("sweep inside threshold downgraded a field")
	}

	// Past the per-field voltage threshold but inside the default
	m.Sweep(t0.Add(time.Second))
	if got := m.Get(FieldVoltage).Validity; got != Stale {
		t.Errorf("voltage validity = %v, want Stale", got)
	}
	if got := m.Get(FieldRoll).Validity; got != Valid {
		t.Errorf("roll validity = %v, want Valid", got)
	}

	// Past the default threshold
	m.Sweep(t0.Add(3 * time.Second))
	if got := m.Get(FieldRoll).Validity; got != Stale {
		t.Errorf("roll validity = %v, want Stale", got)
	}

	// Stale never decays to NeverReceived by sweeping
	m.Sweep(t0.Add(time.Hour))
	if got := m.Get(FieldVoltage).Validity; got != Stale {
		t.Errorf("voltage validity = %v, want Stale after long idle", got)
	}
}

func TestStaleFieldRevalidatesOnUpdate(t *testing.T) {
	m := newTestModel()
	m.Apply(msp.BatteryState{VoltageCenti: 1480}, t0)
	m.Sweep(t0.Add(time.Second))
	if m.Get(FieldVoltage).Validity != Stale {
		t.Fatal("setup: voltage should be stale")
	}

	m.Apply(msp.BatteryState{VoltageCenti: 1475}, t0.Add(time.Second))
	f := m.Get(FieldVoltage)
	if f.Validity != Valid || f.Num != 14.75 {
		t.Errorf("got %+v, want valid 14.75", f)
	}
}

func TestReset(t *testing.T) {
	m := newTestModel()
	m.Apply(msp.BatteryState{VoltageCenti: 1480}, t0)
	m.Apply(msp.Name{Name: "QUAD"}, t0)

	m.Reset()

	for id := FieldID(0); id < numFields; id++ {
		if f := m.Get(id); f.Validity != NeverReceived || f.Num != 0 || f.Str != "" {
			t.Errorf("field %s not cleared: %+v", id, f)
		}
	}
}

func TestVersionAdvancesOnMutation(t *testing.T) {
	m := newTestModel()
	v := m.Version()

	m.Apply(msp.Attitude{}, t0)
	if m.Version() == v {
		t.Error("version unchanged after Apply")
	}

	v = m.Version()
	m.Sweep(t0.Add(time.Minute))
	if m.Version() == v {
		t.Error("version unchanged after sweep that downgraded fields")
	}

	v = m.Version()
	m.Sweep(t0.Add(time.Minute))
	if m.Version() != v {
		t.Error("version changed on a sweep with no effect")
	}
}

func TestRCChannelMapping(t *testing.T) {
	m := newTestModel()
	chans := make([]uint16, 16)
	for i := range chans {
		chans[i] = uint16(1000 + i)
	}
	m.Apply(msp.RawRC{Channels: chans}, t0)

	if got := m.Get(FieldRC1).Num; got != 1000 {
		t.Errorf("rc1 = %v, want 1000", got)
	}
	if got := m.Get(RCChannel(7)).Num; got != 1007 {
		t.Errorf("rc8 = %v, want 1007", got)
	}
	// Channels past the tracked block are dropped, not wrapped
	if RCChannel(8) != -1 {
		t.Error("RCChannel(8) should be out of range")
	}
}

func TestFieldByName(t *testing.T) {
	id, ok := FieldByName("battery_voltage")
	if !ok || id != FieldVoltage {
		t.Errorf("FieldByName(battery_voltage) = %v, %v", id, ok)
	}
	if _, ok := FieldByName("no_such_field"); ok {
		t.Error("unknown name resolved")
	}
}
