package osd

import (
	"github.com/henkwiedig/msposd/internal/font"
)

// BlendMode selects how a glyph's pixels combine with the canvas.
type BlendMode int

// Blend modes.
const (
	BlendOpaque BlendMode = iota // overwrite, including alpha
	BlendAlpha                   // source-over using the glyph's alpha
)

// Background selects the per-tick canvas reset policy.
type Background int

// Background policies. Transparent leaves alpha zero so hardware overlay
// planes pass the underlying video through; Opaque clears to a solid color.
const (
	BackgroundTransparent Background = iota
	BackgroundOpaque
)

// DrawCommand is one ephemeral blit instruction: a glyph index and a
// destination position in pixels. Commands are produced fresh each tick and
// consumed in order; later commands legitimately overwrite earlier ones.
type DrawCommand struct {
	Glyph byte
	X, Y  int
	Blend BlendMode
}

// Compositor executes draw commands against a canvas using a read-only
// glyph table. Identical inputs always produce identical pixels.
type Compositor struct {
	font    *font.Table
	bg      Background
	bgColor RGBA
}

// NewCompositor creates a compositor. bgColor is only used with
// BackgroundOpaque.
func NewCompositor(table *font.Table, bg Background, bgColor RGBA) *Compositor {
	return &Compositor{font: table, bg: bg, bgColor: bgColor}
}

// Paint clears the canvas per the background policy, then applies every
// command in order. Out-of-bounds destinations are clipped, never rejected.
func (c *Compositor) Paint(canvas *Canvas, cmds []DrawCommand) {
	switch c.bg {
	case BackgroundOpaque:
		canvas.Fill(c.bgColor)
	default:
		canvas.Fill(RGBA{})
	}

	for _, cmd := range cmds {
		c.blit(canvas, cmd)
	}
}

// blit copies one glyph to the canvas with the command's blend mode.
func (c *Compositor) blit(canvas *Canvas, cmd DrawCommand) {
	g := c.font.Glyph(cmd.Glyph)
	if g == nil {
		return
	}

	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			off := (gy*g.Width + gx) * 4
			src := RGBA{R: g.Pix[off], G: g.Pix[off+1], B: g.Pix[off+2], A: g.Pix[off+3]}

			x, y := cmd.X+gx, cmd.Y+gy
			switch cmd.Blend {
			case BlendAlpha:
				if src.A == 0 {
					continue
				}
				if src.A < 0xFF {
					src = over(src, canvas.At(x, y))
				}
				canvas.Set(x, y, src)
			default:
				canvas.Set(x, y, src)
			}
		}
	}
}

// over composites src over dst with non-premultiplied alpha.
func over(src, dst RGBA) RGBA {
	sa := uint32(src.A)
	da := uint32(dst.A)
	outA := sa + da*(255-sa)/255

	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*sa + uint32(d)*da*(255-sa)/255) / max32(outA, 1))
	}
	return RGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: uint8(outA),
	}
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
