package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/danmuck/tlns/internal/config"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/link"
	"github.com/danmuck/tlns/internal/protocol/frame"
)

func runMonitor(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	fs.SetOutput(out)
	device := fs.String("device", "", "serial device to read frames from")
	baud := fs.Int("baud", link.DefaultBaud, "serial baud rate")
	width := fs.Int("width", grid.DefaultWidth, "expected board width")
	height := fs.Int("height", grid.DefaultHeight, "expected board height")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *device == "" {
		return fmt.Errorf("monitor: -device is required")
	}

	cfg := config.Default()
	cfg.Serial.Device, cfg.Serial.Baud = *device, *baud
	drv, err := link.OpenSerial(cfg.Serial.Link())
	if err != nil {
		return err
	}
	defer drv.Close()

	rx := link.NewReceiver(*device, drv, frame.DefaultLimits(), cfg.Link.PollInterval)
	err = rx.Run(ctx, func(payload []byte) {
		printPayload(out, payload, *width, *height)
	})
	s := rx.Stats()
	fmt.Fprintf(out, "frames=%d errors=%d\n", s.Frames, s.Errors)
	return err
}

func printPayload(out io.Writer, payload []byte, width, height int) {
	g, err := grid.FromBytes(width, height, payload)
	if err != nil {
		fmt.Fprintf(out, "payload %d bytes: %v\n", len(payload), err)
		return
	}
	fmt.Fprint(out, g.String())
	fmt.Fprintln(out)
}
