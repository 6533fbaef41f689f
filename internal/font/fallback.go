package font

// Fallback builds a deterministic built-in table so the renderer can start
// without a font file. Printable ASCII glyphs get a distinct block pattern
// derived from the code point; they are legible enough to verify placement
// and perfectly stable for golden-frame tests, but are not a real font.
func Fallback() *Table {
	t := &Table{cellW: CellWidth, cellH: CellHeight}
	for idx := 0x20; idx < 0x7F; idx++ {
		t.glyphs[idx] = fallbackGlyph(byte(idx))
	}
	return t
}

// fallbackGlyph draws a one-pixel border plus an 8-row bit pattern of the
// glyph index, so every index renders differently.
func fallbackGlyph(idx byte) *Glyph {
	g := &Glyph{
		Width:  CellWidth,
		Height: CellHeight,
		Pix:    make([]byte, CellWidth*CellHeight*4),
	}

	set := func(x, y int) {
		off := (y*CellWidth + x) * 4
		g.Pix[off] = 0xFF
		g.Pix[off+1] = 0xFF
		g.Pix[off+2] = 0xFF
		g.Pix[off+3] = 0xFF
	}

	// Space stays blank inside the cell so text reads as text
	if idx == ' ' {
		return g
	}

	for x := 0; x < CellWidth; x++ {
		set(x, 0)
		set(x, CellHeight-1)
	}
	for y := 0; y < CellHeight; y++ {
		set(0, y)
		set(CellWidth-1, y)
	}

	// Index bits as horizontal dashes, MSB at the top
	for bit := 0; bit < 8; bit++ {
		if idx&(1<<(7-bit)) == 0 {
			continue
		}
		y := 2 + bit*2
		for x := 3; x < CellWidth-3; x++ {
			set(x, y)
		}
	}
	return g
}
