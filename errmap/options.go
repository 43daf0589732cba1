package errmap

import (
	"math"

	"github.com/katalvlaran/snsed/grid"
)

// Defaults. Tolerance is zero: any bad value aborts the load unless the
// caller explicitly relaxes it.
const (
	DefaultAbortOnBadValue = true
	DefaultTolerance       = 0
	DefaultMaxMaps         = 10
	DefaultMaxCells        = grid.DefaultMaxNodes
)

// defaultValidRange is the acceptable value range per map kind.
var defaultValidRange = map[Kind][2]float64{
	KindVariance:   {0, 1},
	KindCovariance: {-1, 1},
	KindErrScale:   {0, 50},
	KindColorDisp:  {0, 5},
}

// Option configures a Store. Constructors panic on nonsensical values.
type Option func(*Options)

// Options is the resolved store configuration.
type Options struct {
	mode       grid.Mode
	edge       grid.EdgePolicy
	abortOnBad bool
	tolerance  int
	maxMaps    int
	maxCells   int
	valid      map[Kind][2]float64
}

func defaultOptions() Options {
	valid := make(map[Kind][2]float64, len(defaultValidRange))
	for k, r := range defaultValidRange {
		valid[k] = r
	}
	return Options{
		mode:       grid.Linear,
		edge:       grid.EdgeClamp,
		abortOnBad: DefaultAbortOnBadValue,
		tolerance:  DefaultTolerance,
		maxMaps:    DefaultMaxMaps,
		maxCells:   DefaultMaxCells,
		valid:      valid,
	}
}

// WithInterp selects linear (decoded values) or spline (log10 space) lookup.
func WithInterp(mode grid.Mode) Option {
	if mode != grid.Linear && mode != grid.Spline {
		panic("errmap: WithInterp: unknown mode")
	}
	return func(o *Options) { o.mode = mode }
}

// WithEdge sets the out-of-range query policy.
func WithEdge(edge grid.EdgePolicy) Option {
	return func(o *Options) { o.edge = edge }
}

// WithAbortOnBadValue toggles aborting on bad values beyond the tolerance.
func WithAbortOnBadValue(abort bool) Option {
	return func(o *Options) { o.abortOnBad = abort }
}

// WithTolerance sets how many bad values per map are accepted before aborting.
func WithTolerance(n int) Option {
	if n < 0 {
		panic("errmap: WithTolerance: n must be >= 0")
	}
	return func(o *Options) { o.tolerance = n }
}

// WithMaxMaps caps the number of maps a store may hold.
func WithMaxMaps(n int) Option {
	if n <= 0 {
		panic("errmap: WithMaxMaps: n must be > 0")
	}
	return func(o *Options) { o.maxMaps = n }
}

// WithMaxCells caps the number of cells per map.
func WithMaxCells(n int) Option {
	if n <= 0 {
		panic("errmap: WithMaxCells: n must be > 0")
	}
	return func(o *Options) { o.maxCells = n }
}

// WithValidRange overrides the acceptable value range for a kind.
func WithValidRange(kind Kind, lo, hi float64) Option {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		panic("errmap: WithValidRange: need lo < hi")
	}
	return func(o *Options) { o.valid[kind] = [2]float64{lo, hi} }
}
