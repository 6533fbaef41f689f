package telemetry

import "fmt"

// FieldID identifies one field in the telemetry model.
type FieldID int

// Telemetry fields. RC channels occupy a contiguous block starting at
// FieldRC1; use RCChannel to address them by index.
const (
	FieldVoltage FieldID = iota
	FieldCurrent
	FieldMAhDrawn
	FieldCellCount
	FieldRSSI
	FieldRoll
	FieldPitch
	FieldHeading
	FieldAltitude
	FieldVario
	FieldGPSFix
	FieldGPSSats
	FieldLatitude
	FieldLongitude
	FieldGroundSpeed
	FieldGroundCourse
	FieldHomeDistance
	FieldHomeDirection
	FieldArmed
	FieldModeFlags
	FieldCraftName
	FieldFCVariant
	FieldRC1
	FieldRC2
	FieldRC3
	FieldRC4
	FieldRC5
	FieldRC6
	FieldRC7
	FieldRC8

	numFields
)

// NumRCChannels is how many RC channels the model tracks. Extra channels in
// an MSP_RC message are ignored.
const NumRCChannels = 8

// RCChannel returns the FieldID for RC channel i (0-based), or -1 if out of
// range.
func RCChannel(i int) FieldID {
	if i < 0 || i >= NumRCChannels {
		return -1
	}
	return FieldRC1 + FieldID(i)
}

// Kind is a field's semantic value type.
type Kind int

// Field kinds.
const (
	KindNumeric Kind = iota
	KindEnum
	KindCoordinate
	KindString
)

var fieldNames = [numFields]string{
	FieldVoltage:       "battery_voltage",
	FieldCurrent:       "battery_current",
	FieldMAhDrawn:      "mah_drawn",
	FieldCellCount:     "cell_count",
	FieldRSSI:          "rssi",
	FieldRoll:          "roll",
	FieldPitch:         "pitch",
	FieldHeading:       "heading",
	FieldAltitude:      "altitude",
	FieldVario:         "vario",
	FieldGPSFix:        "gps_fix",
	FieldGPSSats:       "gps_sats",
	FieldLatitude:      "latitude",
	FieldLongitude:     "longitude",
	FieldGroundSpeed:   "ground_speed",
	FieldGroundCourse:  "ground_course",
	FieldHomeDistance:  "home_distance",
	FieldHomeDirection: "home_direction",
	FieldArmed:         "armed",
	FieldModeFlags:     "mode_flags",
	FieldCraftName:     "craft_name",
	FieldFCVariant:     "fc_variant",
	FieldRC1:           "rc1",
	FieldRC2:           "rc2",
	FieldRC3:           "rc3",
	FieldRC4:           "rc4",
	FieldRC5:           "rc5",
	FieldRC6:           "rc6",
	FieldRC7:           "rc7",
	FieldRC8:           "rc8",
}

var fieldKinds = [numFields]Kind{
	FieldGPSFix:    KindEnum,
	FieldArmed:     KindEnum,
	FieldModeFlags: KindEnum,
	FieldLatitude:  KindCoordinate,
	FieldLongitude: KindCoordinate,
	FieldCraftName: KindString,
	FieldFCVariant: KindString,
}

var fieldsByName = func() map[string]FieldID {
	m := make(map[string]FieldID, numFields)
	for id := FieldID(0); id < numFields; id++ {
		m[fieldNames[id]] = id
	}
	return m
}()

// String returns the field's configuration name.
func (id FieldID) String() string {
	if id < 0 || id >= numFields {
		return fmt.Sprintf("field(%d)", int(id))
	}
	return fieldNames[id]
}

// Kind returns the field's semantic type.
func (id FieldID) Kind() Kind {
	if id < 0 || id >= numFields {
		return KindNumeric
	}
	return fieldKinds[id]
}

// FieldByName resolves a configuration name to a FieldID.
func FieldByName(name string) (FieldID, bool) {
	id, ok := fieldsByName[name]
	return id, ok
}
