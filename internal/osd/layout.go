package osd

import (
	"fmt"
	"sort"

	"github.com/henkwiedig/msposd/internal/telemetry"
)

// ElementKind selects how a layout element renders its field.
type ElementKind string

// Layout element kinds.
const (
	KindText  ElementKind = "text"  // formatted field value as glyph text
	KindGlyph ElementKind = "glyph" // a single fixed or enum-mapped glyph
	KindGauge ElementKind = "gauge" // horizontal filled bar
	KindLabel ElementKind = "label" // static text, no field
)

// Element is one declarative HUD item. Elements are immutable during a
// session; reload replaces the whole slice.
type Element struct {
	Name     string      `toml:"name"`
	Kind     ElementKind `toml:"kind"`
	Field    string      `toml:"field"`
	Row      int         `toml:"row"`
	Col      int         `toml:"col"`
	Priority int         `toml:"priority"`

	// Text/label rendering
	Text   string  `toml:"text"`   // label text, or printf verb context
	Format string  `toml:"format"` // fmt verb for numeric fields, e.g. "%.1fV"
	Scale  float64 `toml:"scale"`  // multiplier applied before formatting

	// Glyph/enum rendering
	Glyph    byte            `toml:"glyph"`    // fixed glyph for kind=glyph
	EnumMap  map[string]byte `toml:"enum_map"` // value -> glyph for enum fields
	Fallback byte            `toml:"fallback"` // drawn when field never received; 0 = draw nothing
	Blend    string          `toml:"blend"`    // "opaque" (default) or "alpha"

	// Gauge rendering
	Min   float64 `toml:"min"`
	Max   float64 `toml:"max"`
	Width int     `toml:"width"`       // gauge width in cells
	Full  byte    `toml:"gauge_full"`  // glyph for filled cells
	Empty byte    `toml:"gauge_empty"` // glyph for empty cells

	// Visibility
	Require       string `toml:"require"`         // field that must be valid and nonzero
	HideWhenStale bool   `toml:"hide_when_stale"` // hide once the source field goes stale

	fieldID   telemetry.FieldID
	requireID telemetry.FieldID
	hasField  bool
	hasReq    bool
}

// Engine maps the telemetry model plus an element set to draw commands.
type Engine struct {
	cellW, cellH int
}

// NewEngine creates a layout engine for the given glyph cell size.
func NewEngine(cellW, cellH int) *Engine {
	return &Engine{cellW: cellW, cellH: cellH}
}

// Resolve validates elements against the field registry and binds field
// references. It is called once at load time; an unknown field name is a
// configuration error and nothing is partially applied.
func Resolve(elements []Element) ([]Element, error) {
	out := make([]Element, len(elements))
	for i, el := range elements {
		if el.Kind == "" {
			el.Kind = KindText
		}
		if el.Scale == 0 {
			el.Scale = 1
		}

		if el.Kind != KindLabel {
			if el.Field == "" {
				return nil, fmt.Errorf("element %q: missing field", el.Name)
			}
			id, ok := telemetry.FieldByName(el.Field)
			if !ok {
				return nil, fmt.Errorf("element %q: unknown field %q", el.Name, el.Field)
			}
			el.fieldID = id
			el.hasField = true
		}

		if el.Require != "" {
			id, ok := telemetry.FieldByName(el.Require)
			if !ok {
				return nil, fmt.Errorf("element %q: unknown require field %q", el.Name, el.Require)
			}
			el.requireID = id
			el.hasReq = true
		}

		if el.Kind == KindGauge {
			if el.Width <= 0 {
				return nil, fmt.Errorf("element %q: gauge needs width > 0", el.Name)
			}
			if el.Max <= el.Min {
				return nil, fmt.Errorf("element %q: gauge needs max > min", el.Name)
			}
			if el.Full == 0 {
				el.Full = '#'
			}
			if el.Empty == 0 {
				el.Empty = '-'
			}
		}

		out[i] = el
	}
	return out, nil
}

// Render evaluates every visible element against the model and returns draw
// commands in ascending priority order, so higher-priority elements
// overwrite lower ones in the compositor. Declaration order breaks ties.
func (e *Engine) Render(model *telemetry.Model, elements []Element) []DrawCommand {
	idx := make([]int, len(elements))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return elements[idx[a]].Priority < elements[idx[b]].Priority
	})

	var cmds []DrawCommand
	for _, i := range idx {
		cmds = append(cmds, e.renderElement(model, &elements[i])...)
	}
	return cmds
}

func (e *Engine) renderElement(model *telemetry.Model, el *Element) []DrawCommand {
	if el.hasReq {
		req := model.Get(el.requireID)
		if req.Validity != telemetry.Valid || req.Num == 0 {
			return nil
		}
	}

	var f telemetry.Field
	if el.hasField {
		f = model.Get(el.fieldID)
		switch f.Validity {
		case telemetry.NeverReceived:
			if el.Fallback == 0 {
				return nil
			}
			return []DrawCommand{e.glyphAt(el, el.Fallback, 0)}
		case telemetry.Stale:
			if el.HideWhenStale {
				return nil
			}
		}
	}

	switch el.Kind {
	case KindLabel:
		return e.textCmds(el, el.Text)

	case KindText:
		format := el.Format
		if format == "" {
			format = "%v"
		}
		var s string
		if el.fieldID.Kind() == telemetry.KindString {
			s = fmt.Sprintf(format, f.Str)
		} else {
			s = fmt.Sprintf(format, f.Num*el.Scale)
		}
		return e.textCmds(el, s)

	case KindGlyph:
		g := el.Glyph
		if len(el.EnumMap) > 0 {
			mapped, ok := el.EnumMap[fmt.Sprintf("%.0f", f.Num)]
			if !ok {
				return nil
			}
			g = mapped
		}
		return []DrawCommand{e.glyphAt(el, g, 0)}

	case KindGauge:
		norm := (f.Num*el.Scale - el.Min) / (el.Max - el.Min)
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		filled := int(norm*float64(el.Width) + 0.5)

		cmds := make([]DrawCommand, el.Width)
		for c := 0; c < el.Width; c++ {
			g := el.Empty
			if c < filled {
				g = el.Full
			}
			cmds[c] = e.glyphAt(el, g, c)
		}
		return cmds
	}
	return nil
}

// textCmds lays a string out as consecutive glyph cells.
func (e *Engine) textCmds(el *Element, s string) []DrawCommand {
	cmds := make([]DrawCommand, 0, len(s))
	for i := 0; i < len(s); i++ {
		cmds = append(cmds, e.glyphAt(el, s[i], i))
	}
	return cmds
}

// glyphAt positions one glyph at the element's cell plus a column offset.
func (e *Engine) glyphAt(el *Element, g byte, colOffset int) DrawCommand {
	blend := BlendOpaque
	if el.Blend == "alpha" {
		blend = BlendAlpha
	}
	return DrawCommand{
		Glyph: g,
		X:     (el.Col + colOffset) * e.cellW,
		Y:     el.Row * e.cellH,
		Blend: blend,
	}
}
