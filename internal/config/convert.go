package config

import (
	"fmt"

	"github.com/danmuck/tlns/internal/geometry"
	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/ifaces"
	"github.com/danmuck/tlns/internal/link"
	"github.com/danmuck/tlns/internal/plugins"
	"github.com/danmuck/tlns/internal/protocol/frame"
	"github.com/danmuck/tlns/internal/scene"
)

// Shape builds the figure through its registered type. The figure's x/y
// is the shape's lowest column and row.
func (f FigureConfig) Shape() (scene.Shape, error) {
	return plugins.Build(f.Type, plugins.FigureSpec{
		Column:     f.X,
		Row:        f.Y,
		Width:      f.Width,
		Height:     f.Height,
		Thickness:  f.Thickness,
		Filled:     f.Filled,
		Brightness: f.Brightness,
	})
}

func Shapes(figs []FigureConfig) ([]scene.Shape, error) {
	out := make([]scene.Shape, 0, len(figs))
	for _, f := range figs {
		s, err := f.Shape()
		if err != nil {
			return nil, fmt.Errorf("figure %q: %w", f.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (b BoardConfig) Transform() grid.Transform {
	return grid.Transform{
		MirrorRows:    b.MirrorRows,
		MirrorColumns: b.MirrorColumns,
		SwapAxes:      b.SwapAxes,
	}
}

// NewGrid returns an empty board with the configured figures drawn.
func (b BoardConfig) NewGrid() (*grid.Grid, error) {
	g, err := grid.New(b.Width, b.Height)
	if err != nil {
		return nil, err
	}
	shapes, err := Shapes(b.Figures)
	if err != nil {
		return nil, err
	}
	scene.Render(g, shapes...)
	return g, nil
}

func (c Config) Mapping() (geometry.Mapping, error) {
	return geometry.NewMapping(c.Display.CellWidth, c.Display.CellHeight, c.Board.Width, c.Board.Height)
}

func (s SerialConfig) Link() link.SerialConfig {
	return link.SerialConfig{
		Device:      s.Device,
		Baud:        s.Baud,
		ReadTimeout: s.ReadTimeout,
	}
}

func (c Config) Transmitter(name string) link.TransmitterConfig {
	return link.TransmitterConfig{
		Name:      name,
		Transform: c.Board.Transform(),
		Raw:       c.Serial.Raw,
		Limits:    c.Limits(),
		FrameRate: c.Link.FrameRate,
		Burst:     c.Link.Burst,
		Backoff: link.BackoffConfig{
			InitialDelay: c.Link.ReconnectInitial,
			Multiplier:   c.Link.ReconnectMultiplier,
			MaxDelay:     c.Link.ReconnectMax,
			Jitter:       true,
			MaxAttempts:  c.Link.ReconnectAttempts,
		},
	}
}

func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxPayloadBytes: c.Link.MaxPayload}
}

func (i IfacesConfig) Lister() *ifaces.Lister {
	l := ifaces.NewLister(i.Pattern, i.Prefer)
	l.CAN = i.CAN
	return l
}
