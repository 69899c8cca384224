package plugins

import "github.com/danmuck/tlns/internal/scene"

func init() {
	Register(BuilderFunc{Type: "rect", Fn: buildRectangle})
	Register(BuilderFunc{Type: "rectangle", Fn: buildRectangle})
	Register(BuilderFunc{Type: "point", Fn: buildPoint})
}

func buildRectangle(spec FigureSpec) (scene.Shape, error) {
	r := scene.Rectangle{
		OriginColumn: spec.Column,
		OriginRow:    spec.Row,
		Width:        spec.Width,
		Height:       spec.Height,
		Thickness:    spec.Thickness,
		Filled:       spec.Filled,
		Brightness:   spec.Brightness,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// buildPoint lights a single cell; size fields are ignored.
func buildPoint(spec FigureSpec) (scene.Shape, error) {
	return buildRectangle(FigureSpec{
		Column:     spec.Column,
		Row:        spec.Row,
		Width:      1,
		Height:     1,
		Filled:     true,
		Brightness: spec.Brightness,
	})
}
