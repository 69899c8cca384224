// Package plugins holds the figure builders scene files can name by type.
package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/tlns/internal/scene"
)

// FigureSpec is the type-independent description of one figure.
type FigureSpec struct {
	Column     int
	Row        int
	Width      int
	Height     int
	Thickness  int
	Filled     bool
	Brightness uint8
}

// Builder turns a FigureSpec into a shape for one figure type.
type Builder interface {
	Name() string
	Build(spec FigureSpec) (scene.Shape, error)
}

// BuilderFunc adapts a function into a Builder.
type BuilderFunc struct {
	Type string
	Fn   func(spec FigureSpec) (scene.Shape, error)
}

func (b BuilderFunc) Name() string { return b.Type }

func (b BuilderFunc) Build(spec FigureSpec) (scene.Shape, error) { return b.Fn(spec) }

var (
	mu       sync.RWMutex
	registry = map[string]Builder{}
)

// Register adds b under its lowercased name, replacing any previous entry.
func Register(b Builder) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(b.Name())] = b
}

func Get(name string) (Builder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Names lists registered figure types in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build resolves the builder for kind and runs it.
func Build(kind string, spec FigureSpec) (scene.Shape, error) {
	b, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown figure type %q", scene.ErrInvalidShape, kind)
	}
	return b.Build(spec)
}
