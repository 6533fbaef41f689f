package osd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// layoutFile is the on-disk layout document.
type layoutFile struct {
	Version  int       `toml:"version"`
	Elements []Element `toml:"elements"`
}

// LoadLayout reads, parses and resolves a layout TOML file. Any error means
// the layout is rejected whole; nothing is partially applied.
func LoadLayout(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout parses and resolves a layout document.
func ParseLayout(data []byte) ([]Element, error) {
	var file layoutFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(file.Elements) == 0 {
		return nil, fmt.Errorf("layout defines no elements")
	}
	return Resolve(file.Elements)
}

// DefaultLayout is the embedded layout used when no file is configured:
// battery, attitude, GPS and link basics at standard HUD positions.
func DefaultLayout() []Element {
	elements, err := Resolve([]Element{
		{Name: "voltage", Kind: KindText, Field: "battery_voltage", Row: 16, Col: 2, Format: "%.1fV", HideWhenStale: true},
		{Name: "current", Kind: KindText, Field: "battery_current", Row: 16, Col: 10, Format: "%.1fA", HideWhenStale: true},
		{Name: "mah", Kind: KindText, Field: "mah_drawn", Row: 16, Col: 18, Format: "%.0fMAH", HideWhenStale: true},
		{Name: "rssi", Kind: KindText, Field: "rssi", Row: 0, Col: 2, Format: "%.0f%%", HideWhenStale: true},
		{Name: "altitude", Kind: KindText, Field: "altitude", Row: 2, Col: 24, Format: "%.1fM"},
		{Name: "heading", Kind: KindText, Field: "heading", Row: 0, Col: 13, Format: "%03.0f"},
		{Name: "sats", Kind: KindText, Field: "gps_sats", Row: 0, Col: 24, Format: "%.0f", Require: "gps_fix"},
		{Name: "speed", Kind: KindText, Field: "ground_speed", Row: 14, Col: 24, Format: "%.0fKM/H", Require: "gps_fix"},
		{Name: "home", Kind: KindText, Field: "home_distance", Row: 1, Col: 24, Format: "%.0fM", Require: "gps_fix"},
		{Name: "craft", Kind: KindText, Field: "craft_name", Row: 15, Col: 11, Format: "%s"},
		{Name: "throttle-bar", Kind: KindGauge, Field: "rc3", Row: 13, Col: 2, Min: 1000, Max: 2000, Width: 8, HideWhenStale: true},
	})
	if err != nil {
		// The embedded layout only references registered fields; failing to
		// resolve it is a programming error.
		panic(err)
	}
	return elements
}
