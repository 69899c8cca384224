package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/tlns/internal/protocol/frame"
)

func runFrame(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("frame", flag.ContinueOnError)
	fs.SetOutput(out)
	decode := fs.Bool("decode", false, "treat the input as a byte stream and print recovered payloads")
	maxPayload := fs.Int("max-payload", frame.DefaultLimits().MaxPayloadBytes, "decoder payload limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("frame: hex input required")
	}
	in, err := parseHex(strings.Join(fs.Args(), ""))
	if err != nil {
		return fmt.Errorf("frame: %w", err)
	}

	if !*decode {
		fmt.Fprintln(out, hex.EncodeToString(frame.Encode(in)))
		return nil
	}

	d := frame.NewDecoder(frame.Limits{MaxPayloadBytes: *maxPayload})
	for _, payload := range d.Feed(in) {
		fmt.Fprintln(out, hex.EncodeToString(payload))
	}
	s := d.Stats()
	fmt.Fprintf(out, "frames=%d errors=%d checksum=%d aborted=%d short=%d overflow=%d pending=%d\n",
		s.Frames, s.Errors, s.Checksum, s.Aborted, s.Short, s.Overflow, d.Pending())
	return nil
}

// parseHex accepts plain hex or separated forms like "7e,0x7d 5e".
func parseHex(s string) ([]byte, error) {
	replacer := strings.NewReplacer("0x", "", "0X", "", ",", "", " ", "", ":", "", "\n", "", "\t", "")
	s = replacer.Replace(s)
	return hex.DecodeString(s)
}
