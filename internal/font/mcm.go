package font

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// mcmHeader is the first line of a MAX7456 character file.
const mcmHeader = "MAX7456"

// bytesPerGlyph is the storage slot per glyph in the file: 54 visible bytes
// (12x18 px, 2 bits each) padded to 64.
const bytesPerGlyph = 64

// visibleBytesPerGlyph is how many of those bytes carry pixels.
const visibleBytesPerGlyph = CellWidth * CellHeight / 4

// LoadMCM reads a .mcm font file from disk.
func LoadMCM(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open font: %w", err)
	}
	defer f.Close()

	t, err := ParseMCM(f)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return t, nil
}

// ParseMCM decodes the MAX7456 character file format: a header line followed
// by one line of eight '0'/'1' characters per byte, 64 bytes per glyph, 256
// glyphs. Fully transparent glyphs are left empty so the layout engine can
// detect missing symbols at load time.
func ParseMCM(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty font file")
	}
	if strings.TrimSpace(scanner.Text()) != mcmHeader {
		return nil, fmt.Errorf("bad header %q, want %q", scanner.Text(), mcmHeader)
	}

	raw := make([]byte, 0, NumGlyphs*bytesPerGlyph)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(line) != 8 {
			return nil, fmt.Errorf("line %d: got %d bits, want 8", len(raw)+2, len(line))
		}
		var b byte
		for _, c := range line {
			b <<= 1
			switch c {
			case '1':
				b |= 1
			case '0':
			default:
				return nil, fmt.Errorf("invalid bit character %q", c)
			}
		}
		raw = append(raw, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(raw) < NumGlyphs*bytesPerGlyph {
		return nil, fmt.Errorf("truncated font: %d bytes, want %d", len(raw), NumGlyphs*bytesPerGlyph)
	}

	t := &Table{cellW: CellWidth, cellH: CellHeight}
	for i := 0; i < NumGlyphs; i++ {
		g := decodeGlyph(raw[i*bytesPerGlyph : i*bytesPerGlyph+visibleBytesPerGlyph])
		if g != nil {
			t.glyphs[i] = g
		}
	}
	return t, nil
}

// decodeGlyph expands 2-bit MAX7456 pixels to RGBA. Pixel values: 00 black,
// 10 white, 01/11 transparent. Returns nil for fully transparent glyphs.
func decodeGlyph(data []byte) *Glyph {
	g := &Glyph{
		Width:  CellWidth,
		Height: CellHeight,
		Pix:    make([]byte, CellWidth*CellHeight*4),
	}
	opaque := false

	for px := 0; px < CellWidth*CellHeight; px++ {
		b := data[px/4]
		shift := uint(6 - (px%4)*2)
		v := (b >> shift) & 0x3

		off := px * 4
		switch v {
		case 0b00: // black
			g.Pix[off+3] = 0xFF
			opaque = true
		case 0b10: // white
			g.Pix[off] = 0xFF
			g.Pix[off+1] = 0xFF
			g.Pix[off+2] = 0xFF
			g.Pix[off+3] = 0xFF
			opaque = true
		default: // transparent
		}
	}

	if !opaque {
		return nil
	}
	return g
}
