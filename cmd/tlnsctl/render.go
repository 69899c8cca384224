package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/tlns/internal/config"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/link"
	"github.com/danmuck/tlns/internal/protocol/frame"
	"github.com/danmuck/tlns/internal/scene"
)

// sceneOptions are shared by render and send.
type sceneOptions struct {
	scene      string
	configPath string
	width      int
	height     int
	fill       int
}

func (o *sceneOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.scene, "scene", "", "standalone figure file ([BOARD.figure.<name>] tables)")
	fs.StringVar(&o.configPath, "config", "", "boardd config; its [board] section and figures are used")
	fs.IntVar(&o.width, "width", grid.DefaultWidth, "board width when no config is given")
	fs.IntVar(&o.height, "height", grid.DefaultHeight, "board height when no config is given")
	fs.IntVar(&o.fill, "fill", -1, "fill every cell with this brightness before drawing figures")
}

// board builds the grid and the board section it was drawn from.
func (o *sceneOptions) board() (*grid.Grid, config.Config, error) {
	cfg := config.Default()
	cfg.Board.Width, cfg.Board.Height = o.width, o.height
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, config.Config{}, err
		}
		cfg = loaded
	}
	if o.scene != "" {
		figs, err := config.LoadScene(o.scene)
		if err != nil {
			return nil, config.Config{}, err
		}
		cfg.Board.Figures = append(cfg.Board.Figures, figs...)
	}

	g, err := grid.New(cfg.Board.Width, cfg.Board.Height)
	if err != nil {
		return nil, config.Config{}, err
	}
	if o.fill >= 0 {
		if o.fill > int(grid.MaxBrightness) {
			return nil, config.Config{}, fmt.Errorf("fill %d: %w", o.fill, grid.ErrInvalidBrightness)
		}
		g.Fill(uint8(o.fill))
	}
	shapes, err := config.Shapes(cfg.Board.Figures)
	if err != nil {
		return nil, config.Config{}, err
	}
	scene.Render(g, shapes...)
	return g, cfg, nil
}

func runRender(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(out)
	var so sceneOptions
	so.register(fs)
	device := fs.String("device", "", "serial device to write to after printing")
	baud := fs.Int("baud", 9600, "serial baud rate")
	raw := fs.Bool("raw", false, "write the bare payload instead of the framed bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, cfg, err := so.board()
	if err != nil {
		return err
	}
	payload := g.Transformed(cfg.Board.Transform())
	wire := frame.Encode(payload)

	fmt.Fprint(out, g.String())
	fmt.Fprintf(out, "Hex: %s\n", hex.EncodeToString(payload))
	fmt.Fprintf(out, "Frame: %s\n", formatBytes(wire))

	if *device == "" {
		return nil
	}
	cfg.Serial.Device = *device
	cfg.Serial.Baud = *baud
	cfg.Serial.Raw = *raw || cfg.Serial.Raw
	return sendOnce(ctx, cfg, g, out)
}

func runSend(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(out)
	var so sceneOptions
	so.register(fs)
	device := fs.String("device", "", "serial device (required unless set in -config)")
	baud := fs.Int("baud", 0, "serial baud rate (default from config)")
	raw := fs.Bool("raw", false, "write the bare payload instead of the framed bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, cfg, err := so.board()
	if err != nil {
		return err
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *baud > 0 {
		cfg.Serial.Baud = *baud
	}
	cfg.Serial.Raw = *raw || cfg.Serial.Raw
	if cfg.Serial.Device == "" {
		return fmt.Errorf("send: -device is required")
	}
	return sendOnce(ctx, cfg, g, out)
}

func sendOnce(ctx context.Context, cfg config.Config, g *grid.Grid, out io.Writer) error {
	drv, err := link.OpenSerial(cfg.Serial.Link())
	if err != nil {
		return err
	}
	tx := link.NewTransmitter(cfg.Transmitter(cfg.Serial.Device), drv, nil)
	defer tx.Close()

	if err := tx.Send(ctx, g); err != nil {
		return err
	}
	// let the device drain before the port closes
	time.Sleep(cfg.Serial.ReadTimeout)
	s := tx.Stats()
	mode := "framed"
	if cfg.Serial.Raw {
		mode = "raw"
	}
	fmt.Fprintf(out, "Sent %d bytes (%s) to %s\n", s.Bytes, mode, cfg.Serial.Device)
	return nil
}

func formatBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%#x", v)
	}
	return strings.Join(parts, ",")
}
