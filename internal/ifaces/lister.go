// Package ifaces enumerates serial and CAN interfaces a board link can use.
package ifaces

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/danmuck/tlns/internal/tools"
)

const (
	DefaultPattern  = "/dev/tty*"
	DefaultInterval = 500 * time.Millisecond

	ipLinkTimeout = 10 * time.Second
	procNetDev    = "/proc/net/dev"
)

var (
	ErrAlreadyStarted = errors.New("ifaces: updater already started")
	ErrNotFound       = errors.New("ifaces: interface not found")
)

// CAN interfaces that are UP, as printed by `ip link show`.
var ipLinkCAN = regexp.MustCompile(`\d+?: ([a-z0-9]+?): <[^>]*UP[^>]*>.*\n *link/can`)

// Entry maps a display name to the location a driver opens.
type Entry struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Snapshot is an ordered, immutable interface listing.
type Snapshot []Entry

func (s Snapshot) Names() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Name
	}
	return out
}

// Lookup returns the location for name.
func (s Snapshot) Lookup(name string) (string, error) {
	for _, e := range s {
		if e.Name == name {
			return e.Location, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Resolve returns the location for name, or name itself when it is not
// listed so users can type a device path directly.
func (s Snapshot) Resolve(name string) string {
	if loc, err := s.Lookup(name); err == nil {
		return loc
	}
	return name
}

// Lister scans the filesystem and network stack for interfaces.
type Lister struct {
	Pattern string
	// Prefer sorts names containing any of these substrings
	// (case-insensitive) ahead of the rest.
	Prefer []string
	// CAN adds CAN network interfaces ahead of serial devices on Linux.
	CAN bool

	glob    func(pattern string) ([]string, error)
	runner  tools.CommandRunner
	procDev func() (string, error)
	isLinux bool
}

func NewLister(pattern string, prefer []string) *Lister {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Lister{
		Pattern: pattern,
		Prefer:  prefer,
		CAN:     true,
		glob:    filepath.Glob,
		runner:  tools.ExecRunner{Timeout: ipLinkTimeout},
		procDev: readProcNetDev,
		isLinux: runtime.GOOS == "linux",
	}
}

// List returns a fresh snapshot. CAN discovery failures fall back to
// /proc/net/dev and are otherwise ignored; only a bad glob pattern fails.
func (l *Lister) List(ctx context.Context) (Snapshot, error) {
	devices, err := l.glob(l.Pattern)
	if err != nil {
		return nil, fmt.Errorf("ifaces: glob %q: %w", l.Pattern, err)
	}
	sortPreferred(devices, l.Prefer)

	names := devices
	if l.CAN && l.isLinux {
		names = append(l.canInterfaces(ctx), devices...)
	}

	out := make(Snapshot, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Entry{Name: name, Location: name})
	}
	return out, nil
}

func (l *Lister) canInterfaces(ctx context.Context) []string {
	if out, err := runIPLink(ctx, l.runner); err == nil {
		return parseIPLinkCAN(out)
	}
	out, err := l.procDev()
	if err != nil {
		return nil
	}
	return parseProcNetDevCAN(out)
}

func sortPreferred(names []string, prefer []string) {
	rank := func(name string) int {
		lower := strings.ToLower(name)
		for _, p := range prefer {
			if p != "" && strings.Contains(lower, strings.ToLower(p)) {
				return 0
			}
		}
		return 1
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

func parseIPLinkCAN(out string) []string {
	var names []string
	for _, m := range ipLinkCAN.FindAllStringSubmatch(out, -1) {
		names = append(names, m[1])
	}
	return names
}

func parseProcNetDevCAN(out string) []string {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if strings.Contains(name, "can") {
			names = append(names, name)
		}
	}
	return names
}

func runIPLink(ctx context.Context, runner tools.CommandRunner) (string, error) {
	res, err := runner.Run(ctx, "ip", "link", "show")
	if err != nil {
		return "", fmt.Errorf("ifaces: ip link show (exit %d): %w", res.ExitCode, err)
	}
	return string(res.Stdout), nil
}

func readProcNetDev() (string, error) {
	raw, err := os.ReadFile(procNetDev)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
