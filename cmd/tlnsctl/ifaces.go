package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/tlns/internal/ifaces"
)

func runIfaces(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ifaces", flag.ContinueOnError)
	fs.SetOutput(out)
	pattern := fs.String("pattern", ifaces.DefaultPattern, "device glob")
	prefer := fs.String("prefer", "", "comma-separated substrings listed first")
	can := fs.Bool("can", true, "include CAN interfaces (Linux)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l := ifaces.NewLister(*pattern, splitList(*prefer))
	l.CAN = *can
	snap, err := l.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range snap {
		fmt.Fprintln(out, e.Name)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
