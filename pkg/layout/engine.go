package layout

import (
	"context"
	"errors"
	"fmt"
)

// Box is a node to be positioned.
type Box struct {
	ID            string
	Width, Height float64
}

// Point is a node centre.
type Point struct {
	X, Y float64
}

// Input is one flat layout problem.
type Input struct {
	Nodes   []Box
	Edges   [][2]string
	Options Options
}

// Result holds node centres. Every node lies fully inside
// [0, Width] × [0, Height].
type Result struct {
	Positions     map[string]Point
	Width, Height float64
}

// Engine positions one flat sub-graph.
type Engine interface {
	Name() string
	Layout(ctx context.Context, in Input) (Result, error)
}

// ErrUnknownEngine is returned for an unrecognized engine name.
var ErrUnknownEngine = errors.New("unknown layout engine")

// NewEngine returns the engine registered under name.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineLayered:
		return Layered{}, nil
	case EngineDot:
		return Dot{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
