package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/ifaces"
	"github.com/danmuck/tlns/internal/link"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Serial  SerialConfig
	Board   BoardConfig
	Display DisplayConfig
	Link    LinkConfig
	HTTP    HTTPConfig
	Ifaces  IfacesConfig
}

type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
	// Raw writes unframed payloads, matching receivers that read a fixed
	// byte count.
	Raw bool
}

type BoardConfig struct {
	Width         int
	Height        int
	MirrorRows    bool
	MirrorColumns bool
	SwapAxes      bool
	// Brush is the brightness painted by pointer hits.
	Brush   uint8
	Figures []FigureConfig
}

// FigureConfig is one [board.figure.<name>] table.
type FigureConfig struct {
	Name       string
	Type       string
	Width      int
	Height     int
	Thickness  int
	Filled     bool
	Brightness uint8
	X          int
	Y          int
}

type DisplayConfig struct {
	CellWidth  float64
	CellHeight float64
}

type LinkConfig struct {
	FrameRate           float64
	Burst               int
	MaxPayload          int
	PushOnChange        bool
	PollInterval        time.Duration
	ReconnectInitial    time.Duration
	ReconnectMax        time.Duration
	ReconnectMultiplier float64
	ReconnectAttempts   int
}

type HTTPConfig struct {
	Addr        string
	CorsOrigins []string
	CertFile    string
	KeyFile     string
	// Token guards mutating routes; empty leaves them open.
	Token       string
}

type IfacesConfig struct {
	Pattern  string
	Prefer   []string
	CAN      bool
	Interval time.Duration
}

func Default() Config {
	backoff := link.DefaultBackoff()
	return Config{
		Serial: SerialConfig{
			Baud:        link.DefaultBaud,
			ReadTimeout: link.DefaultReadTimeout,
		},
		Board: BoardConfig{
			Width:  grid.DefaultWidth,
			Height: grid.DefaultHeight,
			Brush:  grid.MaxBrightness,
		},
		Display: DisplayConfig{
			CellWidth:  20,
			CellHeight: 20,
		},
		Link: LinkConfig{
			FrameRate:           30,
			Burst:               1,
			MaxPayload:          4096,
			PushOnChange:        true,
			PollInterval:        link.DefaultPollInterval,
			ReconnectInitial:    backoff.InitialDelay,
			ReconnectMax:        backoff.MaxDelay,
			ReconnectMultiplier: backoff.Multiplier,
			ReconnectAttempts:   backoff.MaxAttempts,
		},
		HTTP: HTTPConfig{
			Addr:        ":9300",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Ifaces: IfacesConfig{
			Pattern:  ifaces.DefaultPattern,
			CAN:      true,
			Interval: ifaces.DefaultInterval,
		},
	}
}

type fileConfig struct {
	Serial struct {
		Device      string `toml:"device"`
		Baud        int    `toml:"baud"`
		ReadTimeout string `toml:"read_timeout"`
		Raw         bool   `toml:"raw"`
	} `toml:"serial"`
	Board struct {
		Width         int                   `toml:"width"`
		Height        int                   `toml:"height"`
		MirrorRows    bool                  `toml:"mirror_rows"`
		MirrorColumns bool                  `toml:"mirror_columns"`
		SwapAxes      bool                  `toml:"swap_axes"`
		Brush         int                   `toml:"brush"`
		Figure        map[string]figureFile `toml:"figure"`
	} `toml:"board"`
	Display struct {
		CellWidth  float64 `toml:"cell_width"`
		CellHeight float64 `toml:"cell_height"`
	} `toml:"display"`
	Link struct {
		FrameRate           float64 `toml:"frame_rate"`
		Burst               int     `toml:"burst"`
		MaxPayload          int     `toml:"max_payload"`
		PushOnChange        bool    `toml:"push_on_change"`
		PollInterval        string  `toml:"poll_interval"`
		ReconnectInitial    string  `toml:"reconnect_initial"`
		ReconnectMax        string  `toml:"reconnect_max"`
		ReconnectMultiplier float64 `toml:"reconnect_multiplier"`
		ReconnectAttempts   int     `toml:"reconnect_attempts"`
	} `toml:"link"`
	HTTP struct {
		Addr        string   `toml:"addr"`
		CorsOrigins []string `toml:"cors_origins"`
		Token       string   `toml:"token"`
		CertFile    string   `toml:"cert_file"`
		KeyFile     string   `toml:"key_file"`
	} `toml:"http"`
	Ifaces struct {
		Pattern  string   `toml:"pattern"`
		Prefer   []string `toml:"prefer"`
		CAN      bool     `toml:"can"`
		Interval string   `toml:"interval"`
	} `toml:"ifaces"`
}

// figureFile accepts both "width" and the legacy "widht" spelling.
type figureFile struct {
	Type       string `toml:"type"`
	Width      *int   `toml:"width"`
	Widht      *int   `toml:"widht"`
	Height     int    `toml:"height"`
	Thickness  int    `toml:"thickness"`
	Filled     bool   `toml:"filled"`
	Brightness *int   `toml:"brightness"`
	Center     struct {
		X int `toml:"x"`
		Y int `toml:"y"`
	} `toml:"center"`
}

// Load reads path on top of Default and validates the result. Keys absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := apply(&cfg, raw, meta); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func apply(cfg *Config, raw fileConfig, meta toml.MetaData) error {
	var err error

	if meta.IsDefined("serial", "device") {
		cfg.Serial.Device = strings.TrimSpace(raw.Serial.Device)
	}
	if meta.IsDefined("serial", "baud") {
		cfg.Serial.Baud = raw.Serial.Baud
	}
	if meta.IsDefined("serial", "read_timeout") {
		if cfg.Serial.ReadTimeout, err = parseDuration("serial.read_timeout", raw.Serial.ReadTimeout); err != nil {
			return err
		}
	}
	if meta.IsDefined("serial", "raw") {
		cfg.Serial.Raw = raw.Serial.Raw
	}

	if meta.IsDefined("board", "width") {
		cfg.Board.Width = raw.Board.Width
	}
	if meta.IsDefined("board", "height") {
		cfg.Board.Height = raw.Board.Height
	}
	if meta.IsDefined("board", "mirror_rows") {
		cfg.Board.MirrorRows = raw.Board.MirrorRows
	}
	if meta.IsDefined("board", "mirror_columns") {
		cfg.Board.MirrorColumns = raw.Board.MirrorColumns
	}
	if meta.IsDefined("board", "swap_axes") {
		cfg.Board.SwapAxes = raw.Board.SwapAxes
	}
	if meta.IsDefined("board", "brush") {
		if cfg.Board.Brush, err = brightness("board.brush", raw.Board.Brush); err != nil {
			return err
		}
	}
	if cfg.Board.Figures, err = figures(raw.Board.Figure, figureOrder(meta, "board")); err != nil {
		return err
	}

	if meta.IsDefined("display", "cell_width") {
		cfg.Display.CellWidth = raw.Display.CellWidth
	}
	if meta.IsDefined("display", "cell_height") {
		cfg.Display.CellHeight = raw.Display.CellHeight
	}

	if meta.IsDefined("link", "frame_rate") {
		cfg.Link.FrameRate = raw.Link.FrameRate
	}
	if meta.IsDefined("link", "burst") {
		cfg.Link.Burst = raw.Link.Burst
	}
	if meta.IsDefined("link", "max_payload") {
		cfg.Link.MaxPayload = raw.Link.MaxPayload
	}
	if meta.IsDefined("link", "push_on_change") {
		cfg.Link.PushOnChange = raw.Link.PushOnChange
	}
	if meta.IsDefined("link", "poll_interval") {
		if cfg.Link.PollInterval, err = parseDuration("link.poll_interval", raw.Link.PollInterval); err != nil {
			return err
		}
	}
	if meta.IsDefined("link", "reconnect_initial") {
		if cfg.Link.ReconnectInitial, err = parseDuration("link.reconnect_initial", raw.Link.ReconnectInitial); err != nil {
			return err
		}
	}
	if meta.IsDefined("link", "reconnect_max") {
		if cfg.Link.ReconnectMax, err = parseDuration("link.reconnect_max", raw.Link.ReconnectMax); err != nil {
			return err
		}
	}
	if meta.IsDefined("link", "reconnect_multiplier") {
		cfg.Link.ReconnectMultiplier = raw.Link.ReconnectMultiplier
	}
	if meta.IsDefined("link", "reconnect_attempts") {
		cfg.Link.ReconnectAttempts = raw.Link.ReconnectAttempts
	}

	if meta.IsDefined("http", "addr") {
		cfg.HTTP.Addr = strings.TrimSpace(raw.HTTP.Addr)
	}
	if meta.IsDefined("http", "cors_origins") {
		cfg.HTTP.CorsOrigins = normalizeList(raw.HTTP.CorsOrigins)
	}
	if meta.IsDefined("http", "token") {
		cfg.HTTP.Token = strings.TrimSpace(raw.HTTP.Token)
	}
	if meta.IsDefined("http", "cert_file") {
		cfg.HTTP.CertFile = strings.TrimSpace(raw.HTTP.CertFile)
	}
	if meta.IsDefined("http", "key_file") {
		cfg.HTTP.KeyFile = strings.TrimSpace(raw.HTTP.KeyFile)
	}

	if meta.IsDefined("ifaces", "pattern") {
		cfg.Ifaces.Pattern = strings.TrimSpace(raw.Ifaces.Pattern)
	}
	if meta.IsDefined("ifaces", "prefer") {
		cfg.Ifaces.Prefer = normalizeList(raw.Ifaces.Prefer)
	}
	if meta.IsDefined("ifaces", "can") {
		cfg.Ifaces.CAN = raw.Ifaces.CAN
	}
	if meta.IsDefined("ifaces", "interval") {
		if cfg.Ifaces.Interval, err = parseDuration("ifaces.interval", raw.Ifaces.Interval); err != nil {
			return err
		}
	}
	return nil
}

// figureOrder returns figure names in file order.
func figureOrder(meta toml.MetaData, section string) []string {
	var names []string
	for _, key := range meta.Keys() {
		if len(key) == 3 && key[0] == section && key[1] == "figure" {
			names = append(names, key[2])
		}
	}
	return names
}

func figures(in map[string]figureFile, order []string) ([]FigureConfig, error) {
	out := make([]FigureConfig, 0, len(in))
	for _, name := range order {
		raw, ok := in[name]
		if !ok {
			continue
		}
		fig, err := raw.toFigure(name)
		if err != nil {
			return nil, err
		}
		out = append(out, fig)
	}
	return out, nil
}

func (f figureFile) toFigure(name string) (FigureConfig, error) {
	fig := FigureConfig{
		Name:       name,
		Type:       strings.ToLower(strings.TrimSpace(f.Type)),
		Height:     f.Height,
		Thickness:  f.Thickness,
		Filled:     f.Filled,
		Brightness: grid.MaxBrightness,
		X:          f.Center.X,
		Y:          f.Center.Y,
	}
	switch {
	case f.Width != nil:
		fig.Width = *f.Width
	case f.Widht != nil:
		fig.Width = *f.Widht
	}
	if f.Brightness != nil {
		b, err := brightness("figure "+name+" brightness", *f.Brightness)
		if err != nil {
			return FigureConfig{}, err
		}
		fig.Brightness = b
	}
	return fig, nil
}

// Validate reports the first invalid field.
func Validate(cfg Config) error {
	if cfg.Board.Width <= 0 || cfg.Board.Height <= 0 {
		return fmt.Errorf("%w: board %dx%d: %w", ErrInvalid, cfg.Board.Width, cfg.Board.Height, grid.ErrInvalidDimensions)
	}
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("%w: serial.baud must be positive", ErrInvalid)
	}
	if cfg.Display.CellWidth <= 0 || cfg.Display.CellHeight <= 0 {
		return fmt.Errorf("%w: display cell size must be positive", ErrInvalid)
	}
	if cfg.Link.FrameRate < 0 {
		return fmt.Errorf("%w: link.frame_rate must not be negative", ErrInvalid)
	}
	if cfg.Link.MaxPayload < cfg.Board.Width*cfg.Board.Height {
		return fmt.Errorf("%w: link.max_payload %d smaller than board payload %d",
			ErrInvalid, cfg.Link.MaxPayload, cfg.Board.Width*cfg.Board.Height)
	}
	if cfg.Link.ReconnectMultiplier != 0 && cfg.Link.ReconnectMultiplier < 1 {
		return fmt.Errorf("%w: link.reconnect_multiplier must be >= 1", ErrInvalid)
	}
	if (cfg.HTTP.CertFile == "") != (cfg.HTTP.KeyFile == "") {
		return fmt.Errorf("%w: http.cert_file and http.key_file must be set together", ErrInvalid)
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("%w: http.addr is required", ErrInvalid)
	}
	if strings.TrimSpace(cfg.Ifaces.Pattern) == "" {
		return fmt.Errorf("%w: ifaces.pattern is required", ErrInvalid)
	}
	for _, fig := range cfg.Board.Figures {
		if _, err := fig.Shape(); err != nil {
			return fmt.Errorf("%w: figure %q: %w", ErrInvalid, fig.Name, err)
		}
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %v", ErrInvalid, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalid, key)
	}
	return d, nil
}

func brightness(key string, v int) (uint8, error) {
	if v < 0 || v > int(grid.MaxBrightness) {
		return 0, fmt.Errorf("%w: %s %d outside [0,255]", ErrInvalid, key, v)
	}
	return uint8(v), nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
