// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Grid2D is a surface tabulated on an (x, y) axis pair.
// Values are stored x-major: v[ix*ny+iy].
type Grid2D struct {
	x, y Axis
	opts Options

	mu     sync.RWMutex // guards values and gen
	values []float64
	gen    uint64

	cacheMu sync.Mutex // serializes spline builds
	cache   atomic.Pointer[tensorSpline]
}

// NewGrid2D builds a grid from axes and x-major values.
// Stage 1 (Validate): options, shape, capacity, finiteness.
// Stage 2 (Finalize): deep-copy values; generation starts at 1.
// Complexity: O(nx·ny).
func NewGrid2D(x, y Axis, values []float64, opts Options) (*Grid2D, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if x.Len() == 0 || y.Len() == 0 {
		return nil, ErrEmptyAxis
	}
	if err = checkValues(values, x.Len()*y.Len(), o.MaxNodes); err != nil {
		return nil, fmt.Errorf("NewGrid2D: %w", err)
	}
	cp := make([]float64, len(values))
	copy(cp, values)

	return &Grid2D{x: x, y: y, opts: o, values: cp, gen: 1}, nil
}

// X returns the x axis.
func (g *Grid2D) X() Axis { return g.x }

// Y returns the y axis.
func (g *Grid2D) Y() Axis { return g.y }

// Options returns the effective options.
func (g *Grid2D) Options() Options { return g.opts }

// Generation returns the current data generation; it grows on every Replace.
func (g *Grid2D) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gen
}

// At returns the stored node value (ix, iy).
func (g *Grid2D) At(ix, iy int) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[ix*g.y.Len()+iy]
}

// Replace swaps in a new set of values on the same axes.
// Readers never observe a half-written table: the copy is prepared first and
// installed under the write lock together with the new generation.
func (g *Grid2D) Replace(values []float64) error {
	if err := checkValues(values, g.x.Len()*g.y.Len(), g.opts.MaxNodes); err != nil {
		return fmt.Errorf("Grid2D.Replace: %w", err)
	}
	cp := make([]float64, len(values))
	copy(cp, values)

	g.mu.Lock()
	g.values = cp
	g.gen++
	g.mu.Unlock()

	return nil
}

// Eval returns the interpolated value at (x, y).
func (g *Grid2D) Eval(x, y float64) (float64, error) {
	v, _, _, err := g.eval(x, y, false)
	return v, err
}

// EvalDeriv returns the interpolated value and its partials ∂v/∂x, ∂v/∂y.
// Partials along a single-node axis are zero.
func (g *Grid2D) EvalDeriv(x, y float64) (v, dx, dy float64, err error) {
	return g.eval(x, y, true)
}

func (g *Grid2D) eval(x, y float64, wantDeriv bool) (float64, float64, float64, error) {
	var err error
	if x, err = g.x.resolve(x, g.opts.Edge, "x"); err != nil {
		return 0, 0, 0, err
	}
	if y, err = g.y.resolve(y, g.opts.Edge, "y"); err != nil {
		return 0, 0, 0, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.opts.Mode == Spline {
		return g.evalSpline(x, y, wantDeriv)
	}
	v, dx, dy := g.evalLinear(x, y)

	return v, dx, dy, nil
}

// evalLinear performs bilinear interpolation. Caller holds mu (read).
func (g *Grid2D) evalLinear(x, y float64) (float64, float64, float64) {
	nx, ny := g.x.Len(), g.y.Len()
	ix, tx := g.x.Locate(x)
	iy, ty := g.y.Locate(y)
	ix1, iy1 := min(ix+1, nx-1), min(iy+1, ny-1)

	v00 := g.values[ix*ny+iy]
	v01 := g.values[ix*ny+iy1]
	v10 := g.values[ix1*ny+iy]
	v11 := g.values[ix1*ny+iy1]

	v := (1-tx)*(1-ty)*v00 + (1-tx)*ty*v01 + tx*(1-ty)*v10 + tx*ty*v11

	var dx, dy float64
	if hx := g.x.At(ix1) - g.x.At(ix); hx > 0 {
		dx = ((1-ty)*(v10-v00) + ty*(v11-v01)) / hx
	}
	if hy := g.y.At(iy1) - g.y.At(iy); hy > 0 {
		dy = ((1-tx)*(v01-v00) + tx*(v11-v10)) / hy
	}

	return v, dx, dy
}

// evalSpline evaluates the cached natural bicubic at (x, y) without
// fitting or allocating. Caller holds mu (read).
func (g *Grid2D) evalSpline(x, y float64, wantDeriv bool) (float64, float64, float64, error) {
	ts, err := g.splines()
	if err != nil {
		return 0, 0, 0, err
	}
	nx, ny := g.x.Len(), g.y.Len()
	ix, tx := g.x.Locate(x)
	iy, ty := g.y.Locate(y)
	ix1, iy1 := min(ix+1, nx-1), min(iy+1, ny-1)
	wx, dwx := segmentWeights(g.x.At(ix1)-g.x.At(ix), tx)
	wy, dwy := segmentWeights(g.y.At(iy1)-g.y.At(iy), ty)

	v0, vxx0 := ts.rowAt(wy, ix, ny, iy, iy1)
	v1, vxx1 := ts.rowAt(wy, ix1, ny, iy, iy1)
	v := wx.apply(v0, v1, vxx0, vxx1)
	if !wantDeriv {
		return v, 0, 0, nil
	}
	dx := dwx.apply(v0, v1, vxx0, vxx1)
	d0, dxx0 := ts.rowAt(dwy, ix, ny, iy, iy1)
	d1, dxx1 := ts.rowAt(dwy, ix1, ny, iy, iy1)
	dy := wx.apply(d0, d1, dxx0, dxx1)

	return v, dx, dy, nil
}

// splines returns the spline coefficients of the current generation,
// building them on first use. Caller holds mu (read), so gen and values are
// stable.
func (g *Grid2D) splines() (*tensorSpline, error) {
	if ts := g.cache.Load(); ts != nil && ts.gen == g.gen {
		return ts, nil
	}
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	if ts := g.cache.Load(); ts != nil && ts.gen == g.gen {
		return ts, nil
	}

	ts, err := newTensorSpline(g.x, g.y, g.values, g.gen)
	if err != nil {
		return nil, fmt.Errorf("Grid2D: %w", err)
	}
	g.cache.Store(ts)

	return ts, nil
}

// checkValues validates length, capacity and finiteness.
func checkValues(values []float64, want, maxNodes int) error {
	if want > maxNodes {
		return fmt.Errorf("%d values > %d: %w", want, maxNodes, ErrTooLarge)
	}
	if len(values) != want {
		return fmt.Errorf("got %d values, want %d: %w", len(values), want, ErrShape)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %d: %w", i, ErrNaNInf)
		}
	}
	return nil
}
