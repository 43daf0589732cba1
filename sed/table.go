// SPDX-License-Identifier: MIT

package sed

import (
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/snsed/grid"
)

// MaxSurfaces is the nominal surface plus three higher-order terms.
const MaxSurfaces = 4

// DefaultRV is the Milky-Way R_V used when Options.RV is zero.
const DefaultRV = 3.1

// Options configures a Table.
type Options struct {
	Grid grid.Options // interpolation mode, edge policy, capacity
	RV   float64      // Milky-Way R_V; 0 means DefaultRV
}

// DefaultOptions returns linear clamped interpolation and R_V = 3.1.
func DefaultOptions() Options {
	return Options{Grid: grid.DefaultOptions(), RV: DefaultRV}
}

// Table is the set of flux surfaces plus the Milky-Way transmission cache.
type Table struct {
	days, lams grid.Axis
	surf       []*grid.Grid2D
	rv         float64

	mu sync.RWMutex
	mw *mwState
}

// mwState is one immutable-once-published extinction build.
type mwState struct {
	ebv   float64
	gen   uint64
	trans map[string][]float64
}

// NewTable validates the surfaces and builds one grid per surface.
// Each surface is day-major: surfaces[k][iday*len(lams)+ilam].
// Complexity: O(S·D·L).
func NewTable(days, lams grid.Axis, surfaces [][]float64, opts Options) (*Table, error) {
	if len(surfaces) == 0 {
		return nil, ErrNoSurfaces
	}
	if len(surfaces) > MaxSurfaces {
		return nil, fmt.Errorf("NewTable: %d surfaces > %d: %w", len(surfaces), MaxSurfaces, ErrTooManySurfaces)
	}
	if opts.RV == 0 {
		opts.RV = DefaultRV
	}
	if !(opts.RV > 0) || math.IsInf(opts.RV, 0) {
		return nil, fmt.Errorf("NewTable: RV=%g: %w", opts.RV, ErrBadExtinction)
	}
	want := days.Len() * lams.Len()
	t := &Table{days: days, lams: lams, rv: opts.RV, mw: &mwState{trans: map[string][]float64{}}}
	for k, vals := range surfaces {
		if len(vals) != want {
			return nil, fmt.Errorf("NewTable: surface %d has %d cells, want %d×%d: %w",
				k, len(vals), days.Len(), lams.Len(), ErrIncomplete)
		}
		for i, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("NewTable: surface %d day=%g lam=%g: %w",
					k, days.At(i/lams.Len()), lams.At(i%lams.Len()), ErrNaNInf)
			}
		}
		g, err := grid.NewGrid2D(days, lams, vals, opts.Grid)
		if err != nil {
			return nil, fmt.Errorf("NewTable: surface %d: %w", k, err)
		}
		t.surf = append(t.surf, g)
	}

	return t, nil
}

// Days returns the phase axis.
func (t *Table) Days() grid.Axis { return t.days }

// Lams returns the rest-wavelength axis.
func (t *Table) Lams() grid.Axis { return t.lams }

// Surfaces returns the number of flux surfaces.
func (t *Table) Surfaces() int { return len(t.surf) }

// RV returns the Milky-Way R_V.
func (t *Table) RV() float64 { return t.rv }

// Flux returns surface isurf at (day, λ).
func (t *Table) Flux(isurf int, day, lam float64) (float64, error) {
	if isurf < 0 || isurf >= len(t.surf) {
		return 0, fmt.Errorf("Flux(%d): %w", isurf, ErrSurfaceIndex)
	}
	return t.surf[isurf].Eval(day, lam)
}

// FluxAll returns Σ_k weights[k]·S_k(day, λ). Weights beyond the last surface
// are rejected; missing weights count as zero.
func (t *Table) FluxAll(day, lam float64, weights []float64) (float64, error) {
	if len(weights) > len(t.surf) {
		return 0, fmt.Errorf("FluxAll: %d weights for %d surfaces: %w", len(weights), len(t.surf), ErrSurfaceIndex)
	}
	var sum float64
	for k, w := range weights {
		if w == 0 {
			continue
		}
		v, err := t.surf[k].Eval(day, lam)
		if err != nil {
			return 0, err
		}
		sum += w * v
	}
	return sum, nil
}
