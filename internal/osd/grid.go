package osd

// TextGrid is the MSP DisplayPort character canvas: a double-buffered grid
// of glyph indices. Writes land in a pending buffer and become visible only
// on Present, so a frame never shows a half-written screen.
type TextGrid struct {
	Cols, Rows int
	pending    []byte
	presented  []byte
}

// NewTextGrid creates an empty grid. Betaflight DisplayPort uses 30x16 for
// PAL-sized canvases and 50x18 for HD.
func NewTextGrid(cols, rows int) *TextGrid {
	return &TextGrid{
		Cols:      cols,
		Rows:      rows,
		pending:   make([]byte, cols*rows),
		presented: make([]byte, cols*rows),
	}
}

// Write places text into the pending buffer starting at (row, col). Writes
// past the right edge are clipped; out-of-range rows are dropped.
func (g *TextGrid) Write(row, col int, text []byte) {
	if row < 0 || row >= g.Rows {
		return
	}
	for i, b := range text {
		c := col + i
		if c < 0 {
			continue
		}
		if c >= g.Cols {
			break
		}
		g.pending[row*g.Cols+c] = b
	}
}

// Clear empties the pending buffer. The presented grid is untouched until
// the next Present.
func (g *TextGrid) Clear() {
	for i := range g.pending {
		g.pending[i] = 0
	}
}

// Present atomically publishes the pending buffer as the visible grid.
func (g *TextGrid) Present() {
	copy(g.presented, g.pending)
}

// Release blanks both buffers, used when the remote side releases the
// DisplayPort or the link is lost.
func (g *TextGrid) Release() {
	for i := range g.pending {
		g.pending[i] = 0
		g.presented[i] = 0
	}
}

// Cell returns the presented glyph at (row, col); 0 means empty.
func (g *TextGrid) Cell(row, col int) byte {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return 0
	}
	return g.presented[row*g.Cols+col]
}

// RenderGrid converts the presented grid to draw commands. Grid content
// underlays layout elements, so the scheduler prepends these commands.
func (e *Engine) RenderGrid(g *TextGrid) []DrawCommand {
	var cmds []DrawCommand
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			b := g.presented[row*g.Cols+col]
			if b == 0 {
				continue
			}
			cmds = append(cmds, DrawCommand{
				Glyph: b,
				X:     col * e.cellW,
				Y:     row * e.cellH,
				Blend: BlendOpaque,
			})
		}
	}
	return cmds
}
