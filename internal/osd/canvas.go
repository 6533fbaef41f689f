// Package osd turns telemetry into pixels: a declarative layout engine
// producing draw commands, and a compositor executing them against a canvas.
package osd

import (
	"fmt"
)

// PixelFormat enumerates the packed formats the supported overlay planes
// expose. The compositor adapts its packing to whatever the backend reports.
type PixelFormat int

// Supported pixel formats.
const (
	ARGB8888 PixelFormat = iota
	RGBA8888
	RGB565
	ARGB1555
)

// BytesPerPixel returns the storage size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case RGB565, ARGB1555:
		return 2
	default:
		return 4
	}
}

// String returns the format name as used in configuration.
func (f PixelFormat) String() string {
	switch f {
	case ARGB8888:
		return "argb8888"
	case RGBA8888:
		return "rgba8888"
	case RGB565:
		return "rgb565"
	case ARGB1555:
		return "argb1555"
	}
	return fmt.Sprintf("pixelformat(%d)", int(f))
}

// ParsePixelFormat resolves a configuration name to a PixelFormat.
func ParsePixelFormat(name string) (PixelFormat, error) {
	switch name {
	case "argb8888", "":
		return ARGB8888, nil
	case "rgba8888":
		return RGBA8888, nil
	case "rgb565":
		return RGB565, nil
	case "argb1555":
		return ARGB1555, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", name)
}

// Geometry describes an output surface: what the backend reports and the
// compositor adapts to.
type Geometry struct {
	Width  int
	Height int
	Stride int // bytes per row; 0 means tightly packed
	Format PixelFormat
}

// RGBA is an unpacked color sample.
type RGBA struct {
	R, G, B, A uint8
}

// Canvas is one mutable output frame. The compositor writes it, then hands
// it to the backend for commit; it must not be written again until the
// backend returns it through Acquire.
type Canvas struct {
	Geom Geometry
	Pix  []byte
}

// NewCanvas allocates a canvas for the given geometry.
func NewCanvas(geom Geometry) *Canvas {
	if geom.Stride == 0 {
		geom.Stride = geom.Width * geom.Format.BytesPerPixel()
	}
	return &Canvas{
		Geom: geom,
		Pix:  make([]byte, geom.Stride*geom.Height),
	}
}

// Fill sets every pixel to a single color.
func (c *Canvas) Fill(col RGBA) {
	for y := 0; y < c.Geom.Height; y++ {
		for x := 0; x < c.Geom.Width; x++ {
			c.Set(x, y, col)
		}
	}
}

// Set writes one pixel, packing to the canvas format. Out-of-bounds
// coordinates are ignored.
func (c *Canvas) Set(x, y int, col RGBA) {
	if x < 0 || y < 0 || x >= c.Geom.Width || y >= c.Geom.Height {
		return
	}
	off := y*c.Geom.Stride + x*c.Geom.Format.BytesPerPixel()

	switch c.Geom.Format {
	case ARGB8888:
		c.Pix[off] = col.B
		c.Pix[off+1] = col.G
		c.Pix[off+2] = col.R
		c.Pix[off+3] = col.A
	case RGBA8888:
		c.Pix[off] = col.R
		c.Pix[off+1] = col.G
		c.Pix[off+2] = col.B
		c.Pix[off+3] = col.A
	case RGB565:
		v := uint16(col.R>>3)<<11 | uint16(col.G>>2)<<5 | uint16(col.B>>3)
		c.Pix[off] = byte(v)
		c.Pix[off+1] = byte(v >> 8)
	case ARGB1555:
		v := uint16(col.R>>3)<<10 | uint16(col.G>>3)<<5 | uint16(col.B>>3)
		if col.A >= 0x80 {
			v |= 0x8000
		}
		c.Pix[off] = byte(v)
		c.Pix[off+1] = byte(v >> 8)
	}
}

// At reads one pixel back, unpacking from the canvas format. Narrow formats
// widen by bit replication so a packed-then-read white stays 0xFF.
func (c *Canvas) At(x, y int) RGBA {
	if x < 0 || y < 0 || x >= c.Geom.Width || y >= c.Geom.Height {
		return RGBA{}
	}
	off := y*c.Geom.Stride + x*c.Geom.Format.BytesPerPixel()

	switch c.Geom.Format {
	case ARGB8888:
		return RGBA{R: c.Pix[off+2], G: c.Pix[off+1], B: c.Pix[off], A: c.Pix[off+3]}
	case RGBA8888:
		return RGBA{R: c.Pix[off], G: c.Pix[off+1], B: c.Pix[off+2], A: c.Pix[off+3]}
	case RGB565:
		v := uint16(c.Pix[off]) | uint16(c.Pix[off+1])<<8
		return RGBA{
			R: expand5(uint8(v >> 11 & 0x1F)),
			G: expand6(uint8(v >> 5 & 0x3F)),
			B: expand5(uint8(v & 0x1F)),
			A: 0xFF,
		}
	case ARGB1555:
		v := uint16(c.Pix[off]) | uint16(c.Pix[off+1])<<8
		a := uint8(0)
		if v&0x8000 != 0 {
			a = 0xFF
		}
		return RGBA{
			R: expand5(uint8(v >> 10 & 0x1F)),
			G: expand5(uint8(v >> 5 & 0x1F)),
			B: expand5(uint8(v & 0x1F)),
			A: a,
		}
	}
	return RGBA{}
}

// expand5 widens a 5-bit channel to 8 bits by bit replication.
func expand5(v uint8) uint8 { return v<<3 | v>>2 }

// expand6 widens a 6-bit channel to 8 bits by bit replication.
func expand6(v uint8) uint8 { return v<<2 | v>>4 }
