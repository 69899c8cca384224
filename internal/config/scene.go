package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// sceneFile is the standalone figure file read by the serial test tool:
//
//	[BOARD.figure.frame]
//	type = "rect"
//	widht = 21
//	...
type sceneFile struct {
	Board struct {
		Figure map[string]figureFile `toml:"figure"`
	} `toml:"BOARD"`
}

// LoadScene reads a standalone figure file. Figures are returned sorted by
// name.
func LoadScene(path string) ([]FigureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene load failed (%s): %w", path, err)
	}
	var raw sceneFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene parse failed (%s): %w", path, err)
	}

	names := make([]string, 0, len(raw.Board.Figure))
	for name := range raw.Board.Figure {
		names = append(names, name)
	}
	sort.Strings(names)

	figs, err := figures(raw.Board.Figure, names)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	for _, fig := range figs {
		if _, err := fig.Shape(); err != nil {
			return nil, fmt.Errorf("scene %s: figure %q: %w", path, fig.Name, err)
		}
	}
	return figs, nil
}
