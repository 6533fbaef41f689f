// Package cmd holds the auxiliary CLI commands next to the main render
// loop: one-shot frame rendering and font inspection.
package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/henkwiedig/msposd/internal/config"
	"github.com/henkwiedig/msposd/internal/font"
	"github.com/henkwiedig/msposd/internal/logging"
	"github.com/henkwiedig/msposd/internal/msp"
	"github.com/henkwiedig/msposd/internal/osd"
	"github.com/henkwiedig/msposd/internal/telemetry"
)

// CreateRenderCmd builds the one-shot renderer: decode a whole MSP capture,
// apply it to a fresh model and write the resulting frame to a file.
// Deterministic by construction, which makes it the golden-frame tool.
func CreateRenderCmd() *cobra.Command {
	var (
		configPath string
		layoutPath string
		fontPath   string
		output     string
		width      int
		height     int
		format     string
		background string
	)

	cmd := &cobra.Command{
		Use:   "render [capture-file]",
		Short: "Render one frame from a captured MSP stream",
		Long: `Render decodes an entire MSP capture file, applies every message to a
fresh telemetry model and writes the composited frame to a file. The
output is PNG when the target path ends in .png, raw pixels otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logging.Initialize(config.LoadLoggingConfig(configPath))

			glyphs := font.Fallback()
			if fontPath != "" {
				var err error
				glyphs, err = font.LoadMCM(fontPath)
				if err != nil {
					return fmt.Errorf("load font: %w", err)
				}
			}

			elements := osd.DefaultLayout()
			if layoutPath != "" {
				var err error
				elements, err = osd.LoadLayout(layoutPath)
				if err != nil {
					return fmt.Errorf("load layout: %w", err)
				}
			}

			pf, err := osd.ParsePixelFormat(format)
			if err != nil {
				return err
			}
			bg := osd.BackgroundTransparent
			if background == "opaque" {
				bg = osd.BackgroundOpaque
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read capture: %w", err)
			}

			canvas, err := renderFrame(data, glyphs, elements, osd.Geometry{
				Width:  width,
				Height: height,
				Format: pf,
			}, bg)
			if err != nil {
				return err
			}
			return writeFrame(canvas, output)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file for log levels")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout TOML file")
	cmd.Flags().StringVar(&fontPath, "font", "", "MAX7456 .mcm font file")
	cmd.Flags().StringVarP(&output, "output", "o", "frame.png", "output file (.png or raw)")
	cmd.Flags().IntVar(&width, "width", 720, "frame width")
	cmd.Flags().IntVar(&height, "height", 576, "frame height")
	cmd.Flags().StringVar(&format, "format", "argb8888", "pixel format")
	cmd.Flags().StringVar(&background, "background", "opaque", "background policy (transparent, opaque)")
	return cmd
}

// renderFrame is one scheduler tick without the scheduler: decode
// everything, apply, render, paint.
func renderFrame(data []byte, glyphs *font.Table, elements []osd.Element,
	geom osd.Geometry, bg osd.Background) (*osd.Canvas, error) {

	dec := msp.NewDecoder()
	model := telemetry.NewModel(telemetry.Thresholds{})
	grid := osd.NewTextGrid(30, 16)

	now := time.Unix(0, 0)
	msgs := dec.Feed(data)
	if len(msgs) == 0 {
		return nil, fmt.Errorf("capture contains no valid MSP frames")
	}
	for _, m := range msgs {
		switch t := m.(type) {
		case msp.DisplayPort:
			switch t.Sub {
			case msp.DisplayPortRelease:
				grid.Release()
			case msp.DisplayPortClear:
				grid.Clear()
			case msp.DisplayPortWrite:
				grid.Write(int(t.Row), int(t.Col), t.Text)
			case msp.DisplayPortDraw:
				grid.Present()
			}
		case msp.Unhandled:
		default:
			model.Apply(m, now)
		}
	}

	cellW, cellH := glyphs.CellSize()
	engine := osd.NewEngine(cellW, cellH)
	cmds := engine.RenderGrid(grid)
	cmds = append(cmds, engine.Render(model, elements)...)

	canvas := osd.NewCanvas(geom)
	comp := osd.NewCompositor(glyphs, bg, osd.RGBA{A: 255})
	comp.Paint(canvas, cmds)
	return canvas, nil
}

// writeFrame saves a canvas, PNG for .png paths and raw pixels otherwise.
func writeFrame(canvas *osd.Canvas, path string) error {
	if filepath.Ext(path) != ".png" {
		return os.WriteFile(path, canvas.Pix, 0o644)
	}

	img := image.NewNRGBA(image.Rect(0, 0, canvas.Geom.Width, canvas.Geom.Height))
	for y := 0; y < canvas.Geom.Height; y++ {
		for x := 0; x < canvas.Geom.Width; x++ {
			c := canvas.At(x, y)
			off := img.PixOffset(x, y)
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
