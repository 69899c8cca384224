package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tlns/internal/logging"
)

var errUsage = errors.New("usage: tlnsctl render|frame|send|monitor|ifaces [flags]")

func main() {
	logging.ConfigureRuntime("tlnsctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "tlnsctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "render":
		return runRender(ctx, rest, out)
	case "frame":
		return runFrame(rest, out)
	case "send":
		return runSend(ctx, rest, out)
	case "monitor":
		return runMonitor(ctx, rest, out)
	case "ifaces":
		return runIfaces(ctx, rest, out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, errUsage.Error())
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}
