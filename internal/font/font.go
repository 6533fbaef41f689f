// Package font loads glyph tables for the OSD compositor.
//
// The on-disk format is the MAX7456 .mcm character file shipped with
// Betaflight/INAV OSD fonts: 256 glyphs of 12x18 pixels at 2 bits per pixel.
// The compositor treats the loaded table as an opaque read-only resource.
package font

// Glyph cell dimensions of the MAX7456 character set.
const (
	CellWidth  = 12
	CellHeight = 18
	NumGlyphs  = 256
)

// Glyph is one decoded character bitmap in RGBA order, 4 bytes per pixel.
// OSD glyphs only use black, white and transparent, but the table keeps
// full RGBA so the compositor can blend without a palette lookup.
type Glyph struct {
	Width  int
	Height int
	Pix    []byte
}

// Table maps glyph indices to bitmaps. Indices follow the font file, which
// for the fonts this renderer ships with means ASCII-compatible placement of
// digits and letters.
type Table struct {
	cellW, cellH int
	glyphs       [NumGlyphs]*Glyph
}

// CellSize returns the fixed glyph cell dimensions.
func (t *Table) CellSize() (w, h int) {
	return t.cellW, t.cellH
}

// Glyph returns the bitmap for an index, or nil if the font has no glyph
// there. Callers render nothing for nil glyphs.
func (t *Table) Glyph(idx byte) *Glyph {
	return t.glyphs[idx]
}

// Len reports how many glyph slots are populated.
func (t *Table) Len() int {
	n := 0
	for _, g := range t.glyphs {
		if g != nil {
			n++
		}
	}
	return n
}
