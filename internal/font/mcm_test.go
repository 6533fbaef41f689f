package font

import (
	"strings"
	"testing"
)

// buildMCM produces a minimal valid font file. Glyph 0x41 ('A') gets a solid
// white first row; everything else is transparent.
func buildMCM(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("MAX7456\n")
	for glyph := 0; glyph < NumGlyphs; glyph++ {
		for b := 0; b < bytesPerGlyph; b++ {
			switch {
			case glyph == 0x41 && b < 3:
				sb.WriteString("10101010\n") // four white pixels per byte
			default:
				sb.WriteString("01010101\n") // transparent
			}
		}
	}
	return sb.String()
}

func TestParseMCM(t *testing.T) {
	table, err := ParseMCM(strings.NewReader(buildMCM(t)))
	if err != nil {
		t.Fatalf("ParseMCM: %v", err)
	}

	w, h := table.CellSize()
	if w != CellWidth || h != CellHeight {
		t.Errorf("cell size = %dx%d, want %dx%d", w, h, CellWidth, CellHeight)
	}

	g := table.Glyph(0x41)
	if g == nil {
		t.Fatal("glyph 0x41 missing")
	}
	// First row (12 px) came from three 10101010 bytes: all white
	for x := 0; x < CellWidth; x++ {
		off := x * 4
		if g.Pix[off] != 0xFF || g.Pix[off+3] != 0xFF {
			t.Fatalf("pixel %d of first row not white: %v", x, g.Pix[off:off+4])
		}
	}
	// Second row is transparent padding
	off := CellWidth * 4
	if g.Pix[off+3] != 0 {
		t.Error("second row should be transparent")
	}

	// Fully transparent glyphs are absent
	if table.Glyph(0x42) != nil {
		t.Error("transparent glyph should be nil")
	}
	if table.Len() != 1 {
		t.Errorf("Len = %d, want 1", table.Len())
	}
}

func TestParseMCMErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad header", "MAX9999\n"},
		{"short line", "MAX7456\n0101\n"},
		{"bad character", "MAX7456\n0101012x\n"},
		{"truncated", "MAX7456\n01010101\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMCM(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFallbackDeterministic(t *testing.T) {
	a, b := Fallback(), Fallback()

	for idx := 0; idx < NumGlyphs; idx++ {
		ga, gb := a.Glyph(byte(idx)), b.Glyph(byte(idx))
		if (ga == nil) != (gb == nil) {
			t.Fatalf("glyph %#x presence differs", idx)
		}
		if ga == nil {
			continue
		}
		if string(ga.Pix) != string(gb.Pix) {
			t.Fatalf("glyph %#x differs between builds", idx)
		}
	}

	if a.Glyph('0') == nil || a.Glyph('V') == nil {
		t.Error("fallback should cover printable ASCII")
	}
	if a.Glyph(0x01) != nil {
		t.Error("fallback should not cover control characters")
	}

	// Distinct indices render distinctly
	if string(a.Glyph('0').Pix) == string(a.Glyph('1').Pix) {
		t.Error("glyphs '0' and '1' are identical")
	}
}
