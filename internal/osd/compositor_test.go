package osd

import (
	"bytes"
	"testing"

	"github.com/henkwiedig/msposd/internal/font"
)

func testCanvas(format PixelFormat) *Canvas {
	return NewCanvas(Geometry{Width: 120, Height: 72, Format: format})
}

func TestPaintIdempotent(t *testing.T) {
	comp := NewCompositor(font.Fallback(), BackgroundTransparent, RGBA{})
	cmds := []DrawCommand{
		{Glyph: '1', X: 0, Y: 0},
		{Glyph: '4', X: 12, Y: 0},
		{Glyph: 'V', X: 24, Y: 0},
	}

	a, b := testCanvas(ARGB8888), testCanvas(ARGB8888)
	comp.Paint(a, cmds)
	comp.Paint(b, cmds)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical inputs produced different canvases")
	}

	// Repainting the same canvas is also stable
	comp.Paint(a, cmds)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repaint changed pixels")
	}
}

func TestPaintClearsStaleContent(t *testing.T) {
	comp := NewCompositor(font.Fallback(), BackgroundTransparent, RGBA{})

	c := testCanvas(ARGB8888)
	comp.Paint(c, []DrawCommand{{Glyph: '8', X: 0, Y: 0}})
	comp.Paint(c, nil)

	empty := testCanvas(ARGB8888)
	comp.Paint(empty, nil)
	if !bytes.Equal(c.Pix, empty.Pix) {
		t.Error("previous frame leaked into an empty frame")
	}
}

func TestOpaqueBackground(t *testing.T) {
	bg := RGBA{R: 0, G: 0, B: 0, A: 0xFF}
	comp := NewCompositor(font.Fallback(), BackgroundOpaque, bg)

	c := testCanvas(RGBA8888)
	comp.Paint(c, nil)
	if got := c.At(50, 50); got != bg {
		t.Errorf("background pixel = %+v, want %+v", got, bg)
	}
}

func TestClippingNeverRejects(t *testing.T) {
	comp := NewCompositor(font.Fallback(), BackgroundTransparent, RGBA{})
	c := testCanvas(ARGB8888)

	// Partially and fully out of bounds on all sides; must not panic and
	// must still draw the in-bounds part
	comp.Paint(c, []DrawCommand{
		{Glyph: '8', X: -6, Y: -9},
		{Glyph: '8', X: c.Geom.Width - 3, Y: c.Geom.Height - 3},
		{Glyph: '8', X: 10000, Y: 10000},
	})

	// The fallback glyph has a solid border, so its surviving corner pixels
	// are set
	if c.At(0, 0).A == 0 && c.At(5, 0).A == 0 {
		t.Error("clipped glyph drew nothing in bounds")
	}
}

func TestLaterCommandWins(t *testing.T) {
	comp := NewCompositor(font.Fallback(), BackgroundTransparent, RGBA{})

	a, b := testCanvas(ARGB8888), testCanvas(ARGB8888)
	comp.Paint(a, []DrawCommand{{Glyph: '0', X: 0, Y: 0}, {Glyph: '1', X: 0, Y: 0}})
	comp.Paint(b, []DrawCommand{{Glyph: '1', X: 0, Y: 0}})

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("later command did not fully win the overlap")
	}
}

func TestFormatsRenderEquivalentCoverage(t *testing.T) {
	comp := NewCompositor(font.Fallback(), BackgroundTransparent, RGBA{})
	formats := []PixelFormat{ARGB8888, RGBA8888, RGB565, ARGB1555}

	// The same glyph must cover the same pixels in every format; only the
	// packing differs
	var want []bool
	for _, f := range formats {
		c := testCanvas(f)
		comp.Paint(c, []DrawCommand{{Glyph: 'A', X: 3, Y: 5}})

		var got []bool
		for y := 0; y < c.Geom.Height; y++ {
			for x := 0; x < c.Geom.Width; x++ {
				px := c.At(x, y)
				got = append(got, px.R > 0x80 && px.G > 0x80 && px.B > 0x80)
			}
		}
		if want == nil {
			want = got
			continue
		}
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("format %s: white coverage differs at pixel %d", f, i)
			}
		}
	}
}

func TestPixelFormatPacking(t *testing.T) {
	tests := []struct {
		format PixelFormat
		in     RGBA
		want   RGBA
	}{
		{ARGB8888, RGBA{10, 20, 30, 40}, RGBA{10, 20, 30, 40}},
		{RGBA8888, RGBA{200, 100, 50, 255}, RGBA{200, 100, 50, 255}},
		{RGB565, RGBA{255, 255, 255, 255}, RGBA{255, 255, 255, 255}},
		{RGB565, RGBA{0, 0, 0, 0}, RGBA{0, 0, 0, 255}}, // no alpha channel
		{ARGB1555, RGBA{255, 255, 255, 255}, RGBA{255, 255, 255, 255}},
		{ARGB1555, RGBA{255, 255, 255, 0x40}, RGBA{255, 255, 255, 0}},
	}

	for _, tt := range tests {
		c := testCanvas(tt.format)
		c.Set(7, 7, tt.in)
		if got := c.At(7, 7); got != tt.want {
			t.Errorf("%s: Set(%+v) -> At = %+v, want %+v", tt.format, tt.in, got, tt.want)
		}
	}
}

func TestAlphaBlend(t *testing.T) {
	glyphs := font.Fallback()
	comp := NewCompositor(glyphs, BackgroundOpaque, RGBA{R: 0, G: 0, B: 0, A: 0xFF})

	c := testCanvas(ARGB8888)
	comp.Paint(c, []DrawCommand{{Glyph: 'X', X: 0, Y: 0, Blend: BlendAlpha}})

	// Transparent glyph pixels must leave the background intact
	g := glyphs.Glyph('X')
	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			if g.Pix[(gy*g.Width+gx)*4+3] == 0 {
				if got := c.At(gx, gy); got != (RGBA{A: 0xFF}) {
					t.Fatalf("transparent glyph pixel at %d,%d overwrote background: %+v", gx, gy, got)
				}
			}
		}
	}
}
