// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/interp"
)

// Grid1D is a function tabulated on a single axis.
type Grid1D struct {
	x    Axis
	opts Options

	mu     sync.RWMutex
	values []float64
	gen    uint64

	cacheMu sync.Mutex
	cache   atomic.Pointer[curveSpline]
}

type curveSpline struct {
	gen uint64
	fn  *interp.NaturalCubic
}

// NewGrid1D builds a 1D grid; values are deep-copied.
func NewGrid1D(x Axis, values []float64, opts Options) (*Grid1D, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if x.Len() == 0 {
		return nil, ErrEmptyAxis
	}
	if err = checkValues(values, x.Len(), o.MaxNodes); err != nil {
		return nil, fmt.Errorf("NewGrid1D: %w", err)
	}
	cp := make([]float64, len(values))
	copy(cp, values)

	return &Grid1D{x: x, opts: o, values: cp, gen: 1}, nil
}

// X returns the axis.
func (g *Grid1D) X() Axis { return g.x }

// Generation returns the current data generation.
func (g *Grid1D) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gen
}

// At returns node value i.
func (g *Grid1D) At(i int) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[i]
}

// Replace swaps in new values and invalidates the spline cache.
func (g *Grid1D) Replace(values []float64) error {
	if err := checkValues(values, g.x.Len(), g.opts.MaxNodes); err != nil {
		return fmt.Errorf("Grid1D.Replace: %w", err)
	}
	cp := make([]float64, len(values))
	copy(cp, values)

	g.mu.Lock()
	g.values = cp
	g.gen++
	g.mu.Unlock()

	return nil
}

// Eval returns the interpolated value at x.
func (g *Grid1D) Eval(x float64) (float64, error) {
	v, _, err := g.EvalDeriv(x)
	return v, err
}

// EvalDeriv returns the interpolated value and dv/dx at x.
func (g *Grid1D) EvalDeriv(x float64) (float64, float64, error) {
	x, err := g.x.resolve(x, g.opts.Edge, "x")
	if err != nil {
		return 0, 0, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.x.Len()
	if n == 1 {
		return g.values[0], 0, nil
	}
	if g.opts.Mode == Spline {
		fn, err := g.spline()
		if err != nil {
			return 0, 0, err
		}
		return fn.Predict(x), fn.PredictDerivative(x), nil
	}

	i, t := g.x.Locate(x)
	v0, v1 := g.values[i], g.values[i+1]

	return (1-t)*v0 + t*v1, (v1 - v0) / (g.x.At(i+1) - g.x.At(i)), nil
}

func (g *Grid1D) spline() (*interp.NaturalCubic, error) {
	if cs := g.cache.Load(); cs != nil && cs.gen == g.gen {
		return cs.fn, nil
	}
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	if cs := g.cache.Load(); cs != nil && cs.gen == g.gen {
		return cs.fn, nil
	}
	fn := &interp.NaturalCubic{}
	if err := fn.Fit(g.x.nodes, g.values); err != nil {
		return nil, fmt.Errorf("Grid1D: spline: %w", err)
	}
	g.cache.Store(&curveSpline{gen: g.gen, fn: fn})

	return fn, nil
}
