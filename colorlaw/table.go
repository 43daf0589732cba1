// SPDX-License-Identifier: MIT

package colorlaw

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/katalvlaran/snsed/grid"
)

// Default color grid of the correction table.
const (
	DefaultCMin  = -1.0
	DefaultCMax  = 3.0
	DefaultCStep = 0.01
)

// DispMaxDefault caps the color dispersion so extrapolated dispersion cannot
// produce run-away flux errors.
const DispMaxDefault = 2.0

// Table holds 10^(−0.4·c·CL(λ)) on a color × wavelength grid. It is built once
// from an immutable law and never invalidated.
type Table struct {
	law *Law
	g   *grid.Grid2D
}

// NewTable precomputes the correction for every (color, λ) node.
// Complexity: O(nc·nλ) time and memory.
func NewTable(law *Law, colors, lams grid.Axis) (*Table, error) {
	vals := make([]float64, 0, colors.Len()*lams.Len())
	for ic := 0; ic < colors.Len(); ic++ {
		c := colors.At(ic)
		for il := 0; il < lams.Len(); il++ {
			vals = append(vals, law.Correction(lams.At(il), c))
		}
	}
	opts := grid.DefaultOptions()
	opts.MaxNodes = math.MaxInt32
	g, err := grid.NewGrid2D(colors, lams, vals, opts)
	if err != nil {
		return nil, fmt.Errorf("colorlaw.NewTable: %w", err)
	}
	return &Table{law: law, g: g}, nil
}

// DefaultColors returns the default color axis.
func DefaultColors() grid.Axis {
	n := int(math.Round((DefaultCMax-DefaultCMin)/DefaultCStep)) + 1
	a, _ := grid.UniformAxis(DefaultCMin, DefaultCStep, n)
	return a
}

// Law returns the underlying law.
func (t *Table) Law() *Law { return t.law }

// Lookup returns the correction at (c, λ). Inside the table it interpolates
// linearly along color; outside it falls back to the exact law.
func (t *Table) Lookup(c, lam float64) float64 {
	if !t.g.X().Contains(c) || !t.g.Y().Contains(lam) {
		return t.law.Correction(lam, c)
	}
	v, _ := t.g.Eval(c, lam) // in range, cannot fail
	return v
}

// Dispersion caps a tabulated color-dispersion curve at max.
type Dispersion struct {
	lookup  func(lam float64) (float64, error)
	max     float64
	nCapped atomic.Int64
}

// NewDispersion wraps lookup; limit <= 0 selects DispMaxDefault.
func NewDispersion(lookup func(lam float64) (float64, error), limit float64) *Dispersion {
	if limit <= 0 {
		limit = DispMaxDefault
	}
	return &Dispersion{lookup: lookup, max: limit}
}

// At returns min(dispersion(λ), max).
func (d *Dispersion) At(lam float64) (float64, error) {
	v, err := d.lookup(lam)
	if err != nil {
		return 0, err
	}
	if v > d.max {
		d.nCapped.Add(1)
		return d.max, nil
	}
	return v, nil
}

// Max returns the cap.
func (d *Dispersion) Max() float64 { return d.max }

// Capped returns how many lookups hit the cap.
func (d *Dispersion) Capped() int64 { return d.nCapped.Load() }
