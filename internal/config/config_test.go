package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/scene"
	"github.com/danmuck/tlns/internal/testutil/testlog"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	testlog.Start(t)
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestTemplateLoads(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "boardd.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyACM0" || cfg.Serial.ReadTimeout != 50*time.Millisecond {
		t.Fatalf("unexpected serial section: %+v", cfg.Serial)
	}
	if got := []string{cfg.Board.Figures[0].Name, cfg.Board.Figures[1].Name}; !reflect.DeepEqual(got, []string{"frame", "core"}) {
		t.Fatalf("figures not in file order: %v", got)
	}
	if cfg.Board.Figures[0].Brightness != 128 || cfg.Board.Figures[1].Brightness != grid.MaxBrightness {
		t.Fatalf("unexpected figure brightness: %+v", cfg.Board.Figures)
	}
	if cfg.HTTP.Token != "" {
		t.Fatalf("template must leave mutations open, token=%q", cfg.HTTP.Token)
	}
	if !reflect.DeepEqual(cfg.Ifaces.Prefer, []string{"ttyACM", "ttyUSB"}) {
		t.Fatalf("unexpected prefer list: %v", cfg.Ifaces.Prefer)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "partial.toml", `
[board]
width = 8
height = 4
mirror_rows = true

[link]
frame_rate = 0.0
reconnect_max = "2s"

[http]
token = " abc "
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Board.Width != 8 || cfg.Board.Height != 4 || !cfg.Board.MirrorRows {
		t.Fatalf("board overrides not applied: %+v", cfg.Board)
	}
	if cfg.Link.FrameRate != 0 || cfg.Link.ReconnectMax != 2*time.Second {
		t.Fatalf("link overrides not applied: %+v", cfg.Link)
	}
	if cfg.HTTP.Token != "abc" {
		t.Fatalf("token not trimmed: %q", cfg.HTTP.Token)
	}
	if cfg.Serial.Baud != def.Serial.Baud || cfg.HTTP.Addr != def.HTTP.Addr || cfg.Link.Burst != def.Link.Burst {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if tr := cfg.Board.Transform(); !tr.MirrorRows || tr.MirrorColumns || tr.SwapAxes {
		t.Fatalf("unexpected transform: %+v", tr)
	}
}

func TestLoadAcceptsLegacyWidthSpelling(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "legacy.toml", `
[board]
width = 6
height = 5

[board.figure.box]
type = "rect"
widht = 4
height = 3
thickness = 1
filled = false
center = { x = 1, y = 1 }
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Board.Figures) != 1 || cfg.Board.Figures[0].Width != 4 {
		t.Fatalf("legacy width not applied: %+v", cfg.Board.Figures)
	}
	g, err := cfg.Board.NewGrid()
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	want := "4:\t------\n" +
		"3:\t-oooo-\n" +
		"2:\t-o--o-\n" +
		"1:\t-oooo-\n" +
		"0:\t------\n"
	if got := g.String(); got != want {
		t.Fatalf("rendered board:\n%s\nwant:\n%s", got, want)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name string
		body string
	}{
		{"zero width", "[board]\nwidth = 0\n"},
		{"bad duration", "[serial]\nread_timeout = \"soon\"\n"},
		{"brush out of range", "[board]\nbrush = 300\n"},
		{"payload limit below board", "[link]\nmax_payload = 10\n"},
		{"unknown figure", "[board.figure.x]\ntype = \"circle\"\nwidth = 1\nheight = 1\n"},
		{"outline without thickness", "[board.figure.x]\ntype = \"rect\"\nwidth = 3\nheight = 3\n"},
		{"empty pattern", "[ifaces]\npattern = \"\"\n"},
		{"cert without key", "[http]\ncert_file = \"tls.crt\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.toml", tt.body)
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadScene(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "serial_test.toml", `
[BOARD.figure.b_inner]
type = "rect"
widht = 3
height = 3
thickness = 1
filled = true
[BOARD.figure.b_inner.center]
x = 9
y = 9

[BOARD.figure.a_outer]
type = "rect"
widht = 21
height = 21
thickness = 2
filled = false
[BOARD.figure.a_outer.center]
x = 0
y = 0
`)
	figs, err := LoadScene(path)
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if len(figs) != 2 || figs[0].Name != "a_outer" || figs[1].Name != "b_inner" {
		t.Fatalf("unexpected figures: %+v", figs)
	}
	shapes, err := Shapes(figs)
	if err != nil {
		t.Fatalf("shapes: %v", err)
	}
	inner, ok := shapes[1].(scene.Rectangle)
	if !ok || inner.OriginColumn != 9 || inner.Width != 3 || !inner.Filled {
		t.Fatalf("unexpected inner shape: %#v", shapes[1])
	}
}

func TestConversions(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	cfg.Serial.Device = "/dev/ttyUSB0"
	cfg.Serial.Raw = true
	cfg.Board.SwapAxes = true

	tx := cfg.Transmitter("serial")
	if !tx.Raw || !tx.Transform.SwapAxes || tx.Limits.MaxPayloadBytes != cfg.Link.MaxPayload {
		t.Fatalf("unexpected transmitter config: %+v", tx)
	}
	if tx.Backoff.MaxAttempts != cfg.Link.ReconnectAttempts {
		t.Fatalf("backoff attempts not carried: %+v", tx.Backoff)
	}
	if sc := cfg.Serial.Link(); sc.Device != "/dev/ttyUSB0" || sc.Baud != cfg.Serial.Baud {
		t.Fatalf("unexpected serial config: %+v", sc)
	}
	m, err := cfg.Mapping()
	if err != nil {
		t.Fatalf("mapping: %v", err)
	}
	if m.Columns != cfg.Board.Width || m.CellWidth != cfg.Display.CellWidth {
		t.Fatalf("unexpected mapping: %+v", m)
	}
	if l := cfg.Ifaces.Lister(); l.Pattern != cfg.Ifaces.Pattern || !l.CAN {
		t.Fatalf("unexpected lister: %+v", l)
	}
}
