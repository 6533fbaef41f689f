// Package scheduler runs the render loop: one goroutine owning the decoder,
// the telemetry model, the canvas and the backend. All mutation happens
// inside a tick, so nothing here needs a lock.
package scheduler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/henkwiedig/msposd/internal/backend"
	"github.com/henkwiedig/msposd/internal/events"
	"github.com/henkwiedig/msposd/internal/font"
	"github.com/henkwiedig/msposd/internal/logging"
	"github.com/henkwiedig/msposd/internal/metrics"
	"github.com/henkwiedig/msposd/internal/msp"
	"github.com/henkwiedig/msposd/internal/osd"
	"github.com/henkwiedig/msposd/internal/source"
	"github.com/henkwiedig/msposd/internal/telemetry"
)

// LinkState is the telemetry link state machine.
type LinkState int

// Link states.
const (
	LinkDown LinkState = iota
	LinkUpSyncing
	LinkUpStreaming
	ShuttingDown
)

// String returns the state name for logs and events.
func (s LinkState) String() string {
	switch s {
	case LinkDown:
		return "link_down"
	case LinkUpSyncing:
		return "link_up_syncing"
	case LinkUpStreaming:
		return "link_up_streaming"
	case ShuttingDown:
		return "shutting_down"
	}
	return "unknown"
}

// Config tunes the scheduler.
type Config struct {
	// LinkTimeout is how long without a checksum-valid message before the
	// link is declared down and the model is cleared. 0 means 2s.
	LinkTimeout time.Duration

	// Thresholds configures the model's staleness sweep.
	Thresholds telemetry.Thresholds

	// Background and BackgroundColor set the compositor's clear policy.
	Background      osd.Background
	BackgroundColor osd.RGBA

	// GridCols and GridRows size the DisplayPort character grid. 0 means
	// 30x16.
	GridCols int
	GridRows int

	// LayoutPath is the watched layout file, reported on reload events.
	// Empty when the layout is fixed for the session.
	LayoutPath string
}

// Deps are the collaborators the scheduler drives. All are required except
// Bus.
type Deps struct {
	Source   source.Source
	Backend  backend.Backend
	Font     *font.Table
	Elements []osd.Element
	Bus      *events.Bus
}

// Scheduler owns the tick loop. Construct with New, drive with Run; the
// only safe cross-goroutine entry points are SwapLayout and ctx
// cancellation.
type Scheduler struct {
	cfg Config
	src source.Source
	bk  backend.Backend
	bus *events.Bus
	log *slog.Logger

	dec      *msp.Decoder
	model    *telemetry.Model
	grid     *osd.TextGrid
	engine   *osd.Engine
	comp     *osd.Compositor
	elements []osd.Element

	reload   chan []osd.Element
	interval time.Duration

	state     LinkState
	lastValid time.Time
	pending   []byte
	srcClosed bool
	frames    uint64
}

// New wires a scheduler. The backend's geometry and frame interval are
// fixed from here on.
func New(deps Deps, cfg Config) *Scheduler {
	if cfg.LinkTimeout == 0 {
		cfg.LinkTimeout = 2 * time.Second
	}
	if cfg.GridCols == 0 {
		cfg.GridCols = 30
	}
	if cfg.GridRows == 0 {
		cfg.GridRows = 16
	}

	cellW, cellH := deps.Font.CellSize()
	s := &Scheduler{
		cfg:      cfg,
		src:      deps.Source,
		bk:       deps.Backend,
		bus:      deps.Bus,
		log:      logging.GetLogger("scheduler"),
		dec:      msp.NewDecoder(),
		model:    telemetry.NewModel(cfg.Thresholds),
		grid:     osd.NewTextGrid(cfg.GridCols, cfg.GridRows),
		engine:   osd.NewEngine(cellW, cellH),
		comp:     osd.NewCompositor(deps.Font, cfg.Background, cfg.BackgroundColor),
		elements: deps.Elements,
		reload:   make(chan []osd.Element, 1),
		interval: deps.Backend.FrameInterval(),
		state:    LinkDown,
	}
	s.dec.OnResync = func(discarded int, reason string) {
		metrics.DecoderResync(reason)
		if s.bus != nil {
			s.bus.Publish(events.DecoderResyncEvent{Discarded: discarded, Reason: reason})
		}
		s.log.Debug("decoder resync", "discarded", discarded, "reason", reason)
	}
	return s
}

// SwapLayout hands a freshly loaded element set to the loop; the swap takes
// effect between ticks, never mid-frame. Safe to call from the watcher
// goroutine.
func (s *Scheduler) SwapLayout(els []osd.Element) {
	for {
		select {
		case s.reload <- els:
			return
		default:
			// Stale pending swap, replace it.
			select {
			case <-s.reload:
			default:
			}
		}
	}
}

// Run drives the loop until ctx is cancelled. It owns the backend from
// here: on every exit path the in-flight tick completes and the backend is
// released.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.bk.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler running",
		"interval", s.interval,
		"link_timeout", s.cfg.LinkTimeout,
		"elements", len(s.elements))

	bytesCh := s.src.Bytes()
	for {
		select {
		case <-ctx.Done():
			s.setState(ShuttingDown, time.Now())
			s.tick(time.Now())
			return nil

		case chunk, ok := <-bytesCh:
			if !ok {
				bytesCh = nil
				s.sourceLost(time.Now())
				continue
			}
			s.ingest(chunk, time.Now())

		case els := <-s.reload:
			s.elements = els
			metrics.LayoutReloaded()
			if s.bus != nil {
				s.bus.Publish(events.LayoutReloadedEvent{
					Path:     s.cfg.LayoutPath,
					Elements: len(els),
				})
			}
			s.log.Info("layout swapped", "elements", len(els))

		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// ingest buffers a chunk for the next tick. Raw bytes wake the link out of
// LinkDown into syncing; only a valid message promotes it to streaming.
func (s *Scheduler) ingest(chunk []byte, now time.Time) {
	s.pending = append(s.pending, chunk...)
	metrics.SourceBytes(len(chunk))
	if s.state == LinkDown {
		s.lastValid = now
		s.setState(LinkUpSyncing, now)
	}
}

// sourceLost handles the byte channel closing under us.
func (s *Scheduler) sourceLost(now time.Time) {
	s.srcClosed = true
	s.log.Warn("telemetry source closed")
	if s.state != LinkDown {
		s.linkDown(now)
	}
}

// tick is one full frame: decode, apply, sweep, render, paint, commit.
func (s *Scheduler) tick(now time.Time) {
	start := time.Now()

	msgs := s.dec.Feed(s.pending)
	s.pending = s.pending[:0]

	for _, m := range msgs {
		s.lastValid = now
		metrics.MessageDecoded(strconv.Itoa(int(m.Cmd())))

		switch t := m.(type) {
		case msp.DisplayPort:
			s.applyDisplayPort(t)
		case msp.Unhandled:
			// Valid frame, unknown schema. Counts as link traffic only.
		default:
			s.model.Apply(m, now)
		}
	}

	if len(msgs) > 0 && s.state != LinkUpStreaming && s.state != ShuttingDown {
		s.setState(LinkUpStreaming, now)
	}
	if (s.state == LinkUpStreaming || s.state == LinkUpSyncing) &&
		now.Sub(s.lastValid) > s.cfg.LinkTimeout {
		s.linkDown(now)
	}

	s.model.Sweep(now)

	cmds := s.engine.RenderGrid(s.grid)
	cmds = append(cmds, s.engine.Render(s.model, s.elements)...)

	canvas := s.bk.Acquire()
	s.comp.Paint(canvas, cmds)
	if err := s.bk.Commit(canvas); err != nil {
		s.log.Error("commit failed", "error", err)
		return
	}
	s.frames++
	metrics.FrameCommitted()

	elapsed := time.Since(start)
	metrics.ObserveTick(elapsed.Seconds())
	if s.bus != nil {
		s.bus.Publish(events.FrameCommittedEvent{Sequence: s.frames, Duration: elapsed})
	}
	if elapsed > s.interval {
		metrics.TickOverrun()
		if s.bus != nil {
			s.bus.Publish(events.TickOverrunEvent{Budget: s.interval, Elapsed: elapsed})
		}
		s.log.Warn("tick overrun", "budget", s.interval, "elapsed", elapsed)
	}
}

// applyDisplayPort feeds one DisplayPort operation into the character grid.
// Writes accumulate in the back buffer; only draw makes them visible, so a
// partially transmitted screen never shows.
func (s *Scheduler) applyDisplayPort(dp msp.DisplayPort) {
	switch dp.Sub {
	case msp.DisplayPortHeartbeat:
		// Link traffic only.
	case msp.DisplayPortRelease:
		s.grid.Release()
	case msp.DisplayPortClear:
		s.grid.Clear()
	case msp.DisplayPortWrite:
		s.grid.Write(int(dp.Row), int(dp.Col), dp.Text)
	case msp.DisplayPortDraw:
		s.grid.Present()
	}
}

// linkDown clears everything the far end was feeding: the model resets
// atomically and the DisplayPort grid blanks. The HUD keeps painting in a
// degraded state.
func (s *Scheduler) linkDown(now time.Time) {
	s.model.Reset()
	s.grid.Release()
	s.setState(LinkDown, now)
}

func (s *Scheduler) setState(to LinkState, now time.Time) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	metrics.SetLinkState(int(to))
	if s.bus != nil {
		s.bus.Publish(events.LinkStateChangedEvent{
			From:      from.String(),
			To:        to.String(),
			Timestamp: now,
		})
	}
	s.log.Info("link state", "from", from.String(), "to", to.String())
}

// State reports the current link state. Only meaningful from the loop
// goroutine or after Run returns; tests use it between hand-driven ticks.
func (s *Scheduler) State() LinkState { return s.state }

// Model exposes the telemetry model for hand-driven tests and one-shot
// rendering.
func (s *Scheduler) Model() *telemetry.Model { return s.model }
