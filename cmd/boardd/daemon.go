package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/tlns/internal/auth"
	"github.com/danmuck/tlns/internal/config"
	"github.com/danmuck/tlns/internal/ifaces"
	"github.com/danmuck/tlns/internal/link"
	"github.com/danmuck/tlns/internal/logging"
	"github.com/danmuck/tlns/internal/server"
	"github.com/rs/zerolog"
)

// daemon wires config into the board, link, iface updater, and HTTP API.
type daemon struct {
	cfg     config.Config
	logger  zerolog.Logger
	board   *server.Board
	tx      *link.Transmitter
	rx      *link.Receiver
	updater *ifaces.Updater
	api     *server.Server
}

func newDaemon(cfg config.Config, dryRun bool) (*daemon, error) {
	logger := logging.Component("boardd")

	g, err := cfg.Board.NewGrid()
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	mapping, err := cfg.Mapping()
	if err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}

	updater := ifaces.NewUpdater(cfg.Ifaces.Lister(), cfg.Ifaces.Interval)

	d := &daemon{
		cfg:     cfg,
		logger:  logger,
		board:   server.NewBoard(g),
		updater: updater,
	}

	switch {
	case dryRun:
		lb := link.NewLoopback(0)
		d.tx = link.NewTransmitter(cfg.Transmitter("loopback"), lb, nil)
		if !cfg.Serial.Raw {
			d.rx = link.NewReceiver("loopback", lb, cfg.Limits(), cfg.Link.PollInterval)
		}
		logger.Info().Msg("dry run: frames go to an in-memory loopback")
	case cfg.Serial.Device != "":
		open := d.serialOpener()
		// the first connect happens lazily on the first push
		d.tx = link.NewTransmitter(cfg.Transmitter(cfg.Serial.Device), nil, open)
	default:
		logger.Warn().Msg("no serial device configured; push endpoints are disabled")
	}

	opts := server.Options{
		Name:         "boardd",
		Addr:         cfg.HTTP.Addr,
		CorsOrigins:  cfg.HTTP.CorsOrigins,
		TLSCertFile:  cfg.HTTP.CertFile,
		TLSKeyFile:   cfg.HTTP.KeyFile,
		Mapping:      mapping,
		Brush:        cfg.Board.Brush,
		PushOnChange: cfg.Link.PushOnChange,
		Ifaces:       updater,
	}
	if cfg.HTTP.Token != "" {
		opts.Auth = auth.StaticToken{Token: cfg.HTTP.Token}
	}
	if d.tx != nil {
		opts.Pusher = d.tx
	}
	if d.rx != nil {
		opts.Receiver = d.rx
	}
	d.api = server.New(d.board, opts)
	return d, nil
}

// serialOpener resolves the configured device through the latest iface
// snapshot on every dial so a listed alias can move between ports.
func (d *daemon) serialOpener() link.Opener {
	return func() (link.Driver, error) {
		sc := d.cfg.Serial.Link()
		sc.Device = d.updater.Snapshot().Resolve(sc.Device)
		return link.OpenSerial(sc)
	}
}

func (d *daemon) Run(ctx context.Context) error {
	if err := d.updater.Start(ctx); err != nil {
		return err
	}
	defer d.updater.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if d.rx != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.rx.Run(ctx, func(payload []byte) {
				d.logger.Debug().Int("bytes", len(payload)).Msg("loopback frame decoded")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error().Err(err).Msg("receiver stopped")
			}
		}()
	}

	if d.tx != nil {
		if err := d.tx.Send(ctx, d.board.Snapshot().Grid); err != nil {
			d.logger.Warn().Err(err).Msg("initial push failed")
		}
	}

	err := d.api.Serve(ctx)
	cancel()
	wg.Wait()
	if d.tx != nil {
		if cerr := d.tx.Close(); cerr != nil {
			d.logger.Warn().Err(cerr).Msg("link close failed")
		}
	}
	d.logger.Info().Msg("boardd stopped")
	return err
}
