// Package backend delivers composited frames to the display path. A backend
// owns the output surface for the process lifetime: the scheduler acquires a
// writable canvas, the compositor fills it, and Commit hands it back.
package backend

import (
	"fmt"
	"time"

	"github.com/henkwiedig/msposd/internal/osd"
)

// Backend is one output path: a hardware overlay plane or the offscreen
// development surface.
type Backend interface {
	// Geometry reports the output resolution, stride and pixel format. It is
	// fixed for the session; the compositor adapts to it once at startup.
	Geometry() osd.Geometry

	// Acquire returns the canvas to compose the next frame into. The caller
	// must not retain it past the matching Commit.
	Acquire() *osd.Canvas

	// Commit publishes a completed canvas to the display path. It may block
	// until the frame is latched, depending on the backend's sync mode.
	Commit(c *osd.Canvas) error

	// FrameInterval is the output frame period the scheduler should tick at.
	FrameInterval() time.Duration

	// Close releases the underlying surface. The backend is unusable after.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Name is "native" or one of the SoC profile names.
	Name string

	// Device overrides the profile's framebuffer device node.
	Device string

	// Width, Height and Format apply to the native backend; hardware
	// backends report what the plane actually has.
	Width  int
	Height int
	Format string

	// FPS overrides the tick rate. 0 means the backend default.
	FPS int

	// DumpPath makes the native backend append every committed frame as raw
	// pixels, for golden-frame capture.
	DumpPath string
}

// InitError reports a backend that failed to come up. It carries which
// backend and which call failed so startup can tell hardware trouble from
// configuration mistakes.
type InitError struct {
	Backend string
	Call    string
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Call, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// New opens the backend named by cfg. Failure is fatal for the session;
// there is no mid-session backend switching.
func New(cfg Config) (Backend, error) {
	if cfg.Name == "" || cfg.Name == "native" {
		return newNative(cfg)
	}
	profile, ok := ProfileByName(cfg.Name)
	if !ok {
		return nil, &InitError{
			Backend: cfg.Name,
			Call:    "select",
			Err:     fmt.Errorf("unknown backend (have native, %s)", profileNames()),
		}
	}
	return newFBDev(profile, cfg)
}
