package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeLinkStateChanged uint32 = iota + 1
	TypeLayoutReloaded
	TypeTickOverrun
	TypeDecoderResync
	TypeFrameCommitted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LinkStateChangedEvent is published when the scheduler's link state machine
// transitions, including the initial transition out of LinkDown.
type LinkStateChangedEvent struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for LinkStateChangedEvent.
func (e LinkStateChangedEvent) Type() uint32 { return TypeLinkStateChanged }

// LayoutReloadedEvent is published after the scheduler swaps in a freshly
// loaded element set.
type LayoutReloadedEvent struct {
	Path     string `json:"path"`
	Elements int    `json:"elements"`
}

// Type returns the event type identifier for LayoutReloadedEvent.
func (e LayoutReloadedEvent) Type() uint32 { return TypeLayoutReloaded }

// TickOverrunEvent is published when a frame tick exceeds its interval budget.
type TickOverrunEvent struct {
	Budget  time.Duration `json:"budget"`
	Elapsed time.Duration `json:"elapsed"`
}

// Type returns the event type identifier for TickOverrunEvent.
func (e TickOverrunEvent) Type() uint32 { return TypeTickOverrun }

// DecoderResyncEvent is published when the MSP decoder discards bytes while
// hunting for a sync marker after stream corruption.
type DecoderResyncEvent struct {
	Discarded int    `json:"discarded"`
	Reason    string `json:"reason"`
}

// Type returns the event type identifier for DecoderResyncEvent.
func (e DecoderResyncEvent) Type() uint32 { return TypeDecoderResync }

// FrameCommittedEvent is published once per committed output frame.
type FrameCommittedEvent struct {
	Sequence uint64        `json:"sequence"`
	Duration time.Duration `json:"duration"`
}

// Type returns the event type identifier for FrameCommittedEvent.
func (e FrameCommittedEvent) Type() uint32 { return TypeFrameCommitted }
