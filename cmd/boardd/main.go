package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tlns/internal/config"
	"github.com/danmuck/tlns/internal/logging"
)

func main() {
	configPath := flag.String("config", "cmd/boardd/config.toml", "boardd config path")
	dryRun := flag.Bool("dry-run", false, "use an in-memory loopback link instead of the serial device")
	flag.Parse()

	logging.ConfigureRuntime("boardd")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(cfg, *dryRun)
	if err != nil {
		fatalf("%v", err)
	}
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "boardd: "+format+"\n", args...)
	os.Exit(1)
}
