package backend

import (
	"fmt"
	"os"
	"time"

	"github.com/henkwiedig/msposd/internal/osd"
)

// Native is the offscreen backend used for development, one-shot rendering
// and tests. Frames go nowhere unless a dump file is configured, but the
// last committed frame stays inspectable.
type Native struct {
	geom     osd.Geometry
	interval time.Duration

	scratch   *osd.Canvas
	committed *osd.Canvas
	frames    uint64

	dump *os.File
}

func newNative(cfg Config) (*Native, error) {
	width, height := cfg.Width, cfg.Height
	if width == 0 {
		width = 720
	}
	if height == 0 {
		height = 576
	}
	format, err := osd.ParsePixelFormat(cfg.Format)
	if err != nil {
		return nil, &InitError{Backend: "native", Call: "format", Err: err}
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}

	geom := osd.Geometry{Width: width, Height: height, Format: format}
	n := &Native{
		geom:      geom,
		interval:  time.Second / time.Duration(fps),
		scratch:   osd.NewCanvas(geom),
		committed: osd.NewCanvas(geom),
	}

	if cfg.DumpPath != "" {
		f, err := os.Create(cfg.DumpPath)
		if err != nil {
			return nil, &InitError{Backend: "native", Call: "open dump", Err: err}
		}
		n.dump = f
	}
	return n, nil
}

// Geometry reports the configured offscreen surface.
func (n *Native) Geometry() osd.Geometry { return n.geom }

// FrameInterval reports the simulated frame period.
func (n *Native) FrameInterval() time.Duration { return n.interval }

// Acquire returns the scratch canvas for the next frame.
func (n *Native) Acquire() *osd.Canvas { return n.scratch }

// Commit swaps the canvas into the committed slot and appends it to the
// dump file when one is configured. Raw pixels, no container; geometry is
// known from the run's configuration.
func (n *Native) Commit(c *osd.Canvas) error {
	n.scratch, n.committed = n.committed, c
	n.frames++
	if n.dump != nil {
		if _, err := n.dump.Write(c.Pix); err != nil {
			return fmt.Errorf("dump frame %d: %w", n.frames, err)
		}
	}
	return nil
}

// LastFrame returns the most recently committed canvas, or nil before the
// first commit. The caller must treat it as read-only.
func (n *Native) LastFrame() *osd.Canvas {
	if n.frames == 0 {
		return nil
	}
	return n.committed
}

// Frames reports how many frames have been committed.
func (n *Native) Frames() uint64 { return n.frames }

// Close flushes and closes the dump file if one is open.
func (n *Native) Close() error {
	if n.dump != nil {
		err := n.dump.Close()
		n.dump = nil
		return err
	}
	return nil
}
