// Package metrics exposes Prometheus metrics for the render loop and the
// telemetry link.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "render",
		Name:      "frames_committed_total",
		Help:      "Frames committed to the backend",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "msposd",
		Subsystem: "render",
		Name:      "tick_duration_seconds",
		Help:      "Wall time of one full decode-render-commit tick",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	tickOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "render",
		Name:      "tick_overruns_total",
		Help:      "Ticks that ran longer than the frame interval",
	})

	sourceBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "link",
		Name:      "source_bytes_total",
		Help:      "Raw bytes received from the telemetry source",
	})

	messagesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "link",
		Name:      "messages_total",
		Help:      "Checksum-valid messages decoded, by command id",
	}, []string{"cmd"})

	decoderResyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "link",
		Name:      "decoder_resyncs_total",
		Help:      "Decoder resynchronizations after stream corruption",
	}, []string{"reason"})

	linkState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "msposd",
		Subsystem: "link",
		Name:      "state",
		Help:      "Scheduler link state (0=down 1=syncing 2=streaming 3=shutting_down)",
	})

	layoutReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "msposd",
		Subsystem: "render",
		Name:      "layout_reloads_total",
		Help:      "Successful layout hot-reloads",
	})
)

// FrameCommitted counts one committed frame.
func FrameCommitted() { framesCommitted.Inc() }

// ObserveTick records one tick's duration.
func ObserveTick(seconds float64) { tickDuration.Observe(seconds) }

// TickOverrun counts a tick that blew its frame budget.
func TickOverrun() { tickOverruns.Inc() }

// SourceBytes counts raw link bytes.
func SourceBytes(n int) { sourceBytes.Add(float64(n)) }

// MessageDecoded counts one valid message for a command id.
func MessageDecoded(cmd string) { messagesDecoded.WithLabelValues(cmd).Inc() }

// DecoderResync counts one resynchronization.
func DecoderResync(reason string) { decoderResyncs.WithLabelValues(reason).Inc() }

// SetLinkState publishes the scheduler's link state.
func SetLinkState(state int) { linkState.Set(float64(state)) }

// LayoutReloaded counts one layout hot-reload.
func LayoutReloaded() { layoutReloads.Inc() }
