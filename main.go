package main

import (
	"context"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/henkwiedig/msposd/cmd"
	"github.com/henkwiedig/msposd/internal/backend"
	"github.com/henkwiedig/msposd/internal/config"
	"github.com/henkwiedig/msposd/internal/events"
	"github.com/henkwiedig/msposd/internal/font"
	"github.com/henkwiedig/msposd/internal/logging"
	"github.com/henkwiedig/msposd/internal/metrics"
	"github.com/henkwiedig/msposd/internal/osd"
	"github.com/henkwiedig/msposd/internal/scheduler"
	"github.com/henkwiedig/msposd/internal/source"
	"github.com/henkwiedig/msposd/internal/systemd"
	"github.com/henkwiedig/msposd/internal/telemetry"
	"github.com/henkwiedig/msposd/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Source settings
	SourceKind    string `help:"Telemetry source kind (serial, udp, tcp, websocket, file)" default:"serial" toml:"source.kind" env:"SOURCE_KIND"`
	SourceDevice  string `help:"Serial device" default:"/dev/ttyS2" toml:"source.device" env:"SOURCE_DEVICE"`
	SourceBaud    int    `help:"Serial baud rate" default:"115200" toml:"source.baud" env:"SOURCE_BAUD"`
	SourceAddress string `help:"Address for tcp (host:port) or udp (listen addr)" default:"" toml:"source.address" env:"SOURCE_ADDRESS"`
	SourceURL     string `help:"Websocket URL" default:"" toml:"source.url" env:"SOURCE_URL"`
	SourcePath    string `help:"Capture file for replay" default:"" toml:"source.path" env:"SOURCE_PATH"`

	// Display settings
	DisplayBackend    string `help:"Output backend (native or a SoC family)" default:"native" toml:"display.backend" env:"DISPLAY_BACKEND"`
	DisplayDevice     string `help:"Framebuffer device override" default:"" toml:"display.device" env:"DISPLAY_DEVICE"`
	DisplayWidth      int    `help:"Native backend width" default:"720" toml:"display.width" env:"DISPLAY_WIDTH"`
	DisplayHeight     int    `help:"Native backend height" default:"576" toml:"display.height" env:"DISPLAY_HEIGHT"`
	DisplayFormat     string `help:"Native backend pixel format" default:"argb8888" toml:"display.format" env:"DISPLAY_FORMAT"`
	DisplayFPS        int    `help:"Frame rate override" default:"0" toml:"display.fps" env:"DISPLAY_FPS"`
	DisplayBackground string `help:"Canvas background (transparent, opaque)" default:"transparent" toml:"display.background" env:"DISPLAY_BACKGROUND"`

	// OSD settings
	OSDLayout      string `help:"Layout TOML file (empty uses the built-in layout)" default:"" toml:"osd.layout" env:"OSD_LAYOUT"`
	OSDFont        string `help:"MAX7456 .mcm font file (empty uses the built-in font)" default:"" toml:"osd.font" env:"OSD_FONT"`
	OSDGridCols    int    `help:"DisplayPort grid columns" default:"30" toml:"osd.grid_cols" env:"OSD_GRID_COLS"`
	OSDGridRows    int    `help:"DisplayPort grid rows" default:"16" toml:"osd.grid_rows" env:"OSD_GRID_ROWS"`
	OSDLinkTimeout string `help:"Link-loss timeout" default:"2s" toml:"osd.link_timeout" env:"OSD_LINK_TIMEOUT"`
	OSDStaleness   string `help:"Field staleness threshold" default:"3s" toml:"osd.staleness" env:"OSD_STALENESS"`

	// Metrics settings
	MetricsAddr string `help:"Prometheus listen address (empty disables)" default:"" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingScheduler string `help:"Scheduler logging level" default:"info" toml:"logging.scheduler" env:"LOGGING_SCHEDULER"`
	LoggingSource    string `help:"Source logging level" default:"info" toml:"logging.source" env:"LOGGING_SOURCE"`
	LoggingBackend   string `help:"Backend logging level" default:"info" toml:"logging.backend" env:"LOGGING_BACKEND"`
	LoggingMetrics   string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

// Exit codes. Transient stream trouble never exits; only startup problems
// do, split so supervisors can tell a bad config from dead hardware.
const (
	exitConfigError  = 2
	exitBackendError = 3
)

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"scheduler": opts.LoggingScheduler,
				"source":    opts.LoggingSource,
				"backend":   opts.LoggingBackend,
				"metrics":   opts.LoggingMetrics,
			},
		})
		logger := logging.GetLogger("main")

		linkTimeout, err := time.ParseDuration(opts.OSDLinkTimeout)
		if err != nil {
			logger.Error("Bad link timeout", "value", opts.OSDLinkTimeout, "error", err)
			os.Exit(exitConfigError)
		}
		staleness, err := time.ParseDuration(opts.OSDStaleness)
		if err != nil {
			logger.Error("Bad staleness threshold", "value", opts.OSDStaleness, "error", err)
			os.Exit(exitConfigError)
		}

		var bg osd.Background
		switch opts.DisplayBackground {
		case "transparent", "":
			bg = osd.BackgroundTransparent
		case "opaque":
			bg = osd.BackgroundOpaque
		default:
			logger.Error("Bad background policy", "value", opts.DisplayBackground)
			os.Exit(exitConfigError)
		}

		glyphs := font.Fallback()
		if opts.OSDFont != "" {
			glyphs, err = font.LoadMCM(opts.OSDFont)
			if err != nil {
				logger.Error("Failed to load font", "path", opts.OSDFont, "error", err)
				os.Exit(exitConfigError)
			}
		}

		elements := osd.DefaultLayout()
		if opts.OSDLayout != "" {
			elements, err = osd.LoadLayout(opts.OSDLayout)
			if err != nil {
				logger.Error("Failed to load layout", "path", opts.OSDLayout, "error", err)
				os.Exit(exitConfigError)
			}
		}

		var (
			sched       *scheduler.Scheduler
			schedDone   chan error
			cancelRun   context.CancelFunc
			watcher     *config.Watcher[[]osd.Element]
			stopMetrics func(context.Context) error
		)

		hooks.OnStart(func() {
			bk, err := backend.New(backend.Config{
				Name:   opts.DisplayBackend,
				Device: opts.DisplayDevice,
				Width:  opts.DisplayWidth,
				Height: opts.DisplayHeight,
				Format: opts.DisplayFormat,
				FPS:    opts.DisplayFPS,
			})
			if err != nil {
				logger.Error("Backend initialization failed", "error", err)
				os.Exit(exitBackendError)
			}

			src, err := source.Open(source.Config{
				Kind:    opts.SourceKind,
				Device:  opts.SourceDevice,
				Baud:    opts.SourceBaud,
				Address: opts.SourceAddress,
				URL:     opts.SourceURL,
				Path:    opts.SourcePath,
			})
			if err != nil {
				logger.Error("Failed to open telemetry source", "error", err)
				bk.Close()
				os.Exit(exitConfigError)
			}

			bus := events.New()
			sched = scheduler.New(scheduler.Deps{
				Source:   src,
				Backend:  bk,
				Font:     glyphs,
				Elements: elements,
				Bus:      bus,
			}, scheduler.Config{
				LinkTimeout: linkTimeout,
				Thresholds:  telemetryThresholds(staleness),
				Background:  bg,
				GridCols:    opts.OSDGridCols,
				GridRows:    opts.OSDGridRows,
				LayoutPath:  opts.OSDLayout,
			})

			if opts.OSDLayout != "" {
				watcher = config.NewConfigWatcher(opts.OSDLayout, osd.LoadLayout,
					logging.GetLogger("config"))
				watcher.OnReload(func(els []osd.Element) {
					sched.SwapLayout(els)
				})
				if err := watcher.Start(); err != nil {
					logger.Warn("Layout watcher unavailable", "error", err)
				}
			}

			stopMetrics = metrics.Serve(opts.MetricsAddr)

			var ctx context.Context
			ctx, cancelRun = context.WithCancel(context.Background())
			schedDone = make(chan error, 1)
			go func() {
				schedDone <- sched.Run(ctx)
				_ = src.Close()
			}()

			systemd.NotifyReady()
			systemd.StartWatchdog(ctx)
			logger.Info("msposd running",
				"version", version.String(),
				"source", opts.SourceKind,
				"backend", opts.DisplayBackend)

			// Block until shutdown so humacli keeps the process alive.
			<-schedDone
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping()
			logger.Info("Shutting down")
			if watcher != nil {
				_ = watcher.Stop()
			}
			if cancelRun != nil {
				cancelRun()
			}
			if stopMetrics != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = stopMetrics(shutdownCtx)
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateRenderCmd())
	cli.Root().AddCommand(cmd.CreateFontInfoCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}

func telemetryThresholds(d time.Duration) telemetry.Thresholds {
	return telemetry.Thresholds{Default: d}
}
