// SPDX-License-Identifier: MIT

package model

import (
	"io"
	"log/slog"
	"math"

	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/sed"
)

// Legacy option-mask bits.
const (
	MaskDisableMagShift  = 4
	MaskDisableWaveShift = 8
	MaskAbortLamRange    = 64
	MaskVerbose          = 1024
)

// Defaults.
const (
	// DefaultMBOffset converts x0 to a rest-frame B magnitude: mB = offset − 2.5·log10(x0).
	DefaultMBOffset = 10.635

	// RefAbsMag is the rest-frame B absolute magnitude of a standard
	// (x1 = c = 0) supernova, used by X0Calc.
	RefAbsMag = -19.365

	// DefaultPSDTolerance is the relative eigenvalue slack of the PSD check.
	DefaultPSDTolerance = 1e-10

	// DefaultMaxCells bounds the cells of any single table.
	DefaultMaxCells = grid.DefaultMaxNodes
)

// Option configures a Model. Constructors panic on nonsensical values.
type Option func(*Options)

// Options is the resolved model configuration.
type Options struct {
	sedMode, mapMode grid.Mode
	abortLamRange    bool
	abortOnBad       bool
	tolerance        int
	disableMagShift  bool
	disableWaveShift bool
	verbose          bool
	logger           *slog.Logger

	colorDispErr  bool // color-dispersion term in magnitude errors
	colorDispMax  float64
	rvMW          float64
	restLamCen    [2]float64 // filter mean rest λ must lie inside; zero means no cut
	forceZero     [2]float64 // rest λ range forced to zero flux; zero means off
	magErrFloor   float64
	magErrLamObs  [3]float64 // {magerr, lo, hi}
	magErrLamRest [3]float64
	waveShiftErr  float64 // filter wavelength calibration uncertainty (Å)
	magOffset     float64
	colorOffset   float64
	mbOffset      float64
	psdTolerance  float64
	maxMaps       int
	maxCells      int
}

func defaultOptions() Options {
	return Options{
		sedMode:      grid.Linear,
		mapMode:      grid.Linear,
		abortOnBad:   errmap.DefaultAbortOnBadValue,
		tolerance:    errmap.DefaultTolerance,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		colorDispErr: true,
		colorDispMax: colorlaw.DispMaxDefault,
		rvMW:         sed.DefaultRV,
		mbOffset:     DefaultMBOffset,
		psdTolerance: DefaultPSDTolerance,
		maxMaps:      errmap.DefaultMaxMaps,
		maxCells:     DefaultMaxCells,
	}
}

// OptionsFromMask translates the legacy integer mask into options.
// Unknown bits are ignored.
func OptionsFromMask(mask int) []Option {
	var opts []Option
	if mask&MaskDisableMagShift != 0 {
		opts = append(opts, WithDisableMagShift(true))
	}
	if mask&MaskDisableWaveShift != 0 {
		opts = append(opts, WithDisableWaveShift(true))
	}
	if mask&MaskAbortLamRange != 0 {
		opts = append(opts, WithAbortOnLamRange(true))
	}
	if mask&MaskVerbose != 0 {
		opts = append(opts, WithVerbose(true))
	}
	return opts
}

// WithSEDInterp selects the SED flux interpolation mode.
func WithSEDInterp(mode grid.Mode) Option {
	if mode != grid.Linear && mode != grid.Spline {
		panic("model: WithSEDInterp: unknown mode")
	}
	return func(o *Options) { o.sedMode = mode }
}

// WithErrMapInterp selects the error-map interpolation mode.
func WithErrMapInterp(mode grid.Mode) Option {
	if mode != grid.Linear && mode != grid.Spline {
		panic("model: WithErrMapInterp: unknown mode")
	}
	return func(o *Options) { o.mapMode = mode }
}

// WithAbortOnLamRange makes rest wavelengths outside the SED range fatal.
func WithAbortOnLamRange(abort bool) Option {
	return func(o *Options) { o.abortLamRange = abort }
}

// WithAbortOnBadValue toggles aborting the load on bad training values.
func WithAbortOnBadValue(abort bool) Option {
	return func(o *Options) { o.abortOnBad = abort }
}

// WithBadValueTolerance sets how many bad values per map are accepted.
func WithBadValueTolerance(n int) Option {
	if n < 0 {
		panic("model: WithBadValueTolerance: n must be >= 0")
	}
	return func(o *Options) { o.tolerance = n }
}

// WithDisableMagShift ignores MAGSHIFT calibration entries.
func WithDisableMagShift(disable bool) Option {
	return func(o *Options) { o.disableMagShift = disable }
}

// WithDisableWaveShift ignores WAVESHIFT calibration entries.
func WithDisableWaveShift(disable bool) Option {
	return func(o *Options) { o.disableWaveShift = disable }
}

// WithVerbose enables diagnostic events on the logger.
func WithVerbose(v bool) Option {
	return func(o *Options) { o.verbose = v }
}

// WithLogger sets the logger used for diagnostic events.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("model: WithLogger: nil logger")
	}
	return func(o *Options) { o.logger = l }
}

// WithColorDispErr toggles the color-dispersion term of magnitude errors
// and covariances. It is on by default.
func WithColorDispErr(on bool) Option {
	return func(o *Options) { o.colorDispErr = on }
}

// WithColorDispMax caps the color dispersion.
func WithColorDispMax(v float64) Option {
	if !(v > 0) || math.IsInf(v, 0) {
		panic("model: WithColorDispMax: need finite v > 0")
	}
	return func(o *Options) { o.colorDispMax = v }
}

// WithRVMW sets the Milky-Way R_V.
func WithRVMW(rv float64) Option {
	if !(rv > 0) || math.IsInf(rv, 0) {
		panic("model: WithRVMW: need finite rv > 0")
	}
	return func(o *Options) { o.rvMW = rv }
}

// WithRestLamFilterCen marks magnitudes undefined for filters whose mean rest
// wavelength falls outside [lo, hi].
func WithRestLamFilterCen(lo, hi float64) Option {
	mustRange("WithRestLamFilterCen", lo, hi)
	return func(o *Options) { o.restLamCen = [2]float64{lo, hi} }
}

// WithForceZeroFlux forces zero flux for filters whose whole rest-frame
// support lies inside [lo, hi].
func WithForceZeroFlux(lo, hi float64) Option {
	mustRange("WithForceZeroFlux", lo, hi)
	return func(o *Options) { o.forceZero = [2]float64{lo, hi} }
}

// WithMagErrFloor sets the minimum magnitude error.
func WithMagErrFloor(v float64) Option {
	if v < 0 || math.IsNaN(v) {
		panic("model: WithMagErrFloor: need v >= 0")
	}
	return func(o *Options) { o.magErrFloor = v }
}

// WithMagErrLamObs replaces the magnitude error by magerr for filters whose
// observer-frame mean wavelength lies in (lo, hi).
func WithMagErrLamObs(magerr, lo, hi float64) Option {
	mustRange("WithMagErrLamObs", lo, hi)
	return func(o *Options) { o.magErrLamObs = [3]float64{magerr, lo, hi} }
}

// WithMagErrLamRest is WithMagErrLamObs for the rest-frame mean wavelength.
func WithMagErrLamRest(magerr, lo, hi float64) Option {
	mustRange("WithMagErrLamRest", lo, hi)
	return func(o *Options) { o.magErrLamRest = [3]float64{magerr, lo, hi} }
}

// WithWaveShiftErr sets the per-filter wavelength calibration uncertainty in Å.
// It enters the covariance through the color-law slope and is fully
// correlated between observations in the same filter.
func WithWaveShiftErr(sigma float64) Option {
	if sigma < 0 || math.IsNaN(sigma) {
		panic("model: WithWaveShiftErr: need sigma >= 0")
	}
	return func(o *Options) { o.waveShiftErr = sigma }
}

// WithMagOffset adds a global magnitude offset.
func WithMagOffset(v float64) Option {
	return func(o *Options) { o.magOffset = v }
}

// WithColorOffset adds a fixed offset to every color parameter.
func WithColorOffset(v float64) Option {
	return func(o *Options) { o.colorOffset = v }
}

// WithMBOffset sets the x0 ↔ mB conversion offset.
func WithMBOffset(v float64) Option {
	return func(o *Options) { o.mbOffset = v }
}

// WithPSDTolerance sets the relative eigenvalue slack of the PSD check.
func WithPSDTolerance(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) {
		panic("model: WithPSDTolerance: need eps >= 0")
	}
	return func(o *Options) { o.psdTolerance = eps }
}

// WithMaxErrMaps caps the number of error maps.
func WithMaxErrMaps(n int) Option {
	if n <= 0 {
		panic("model: WithMaxErrMaps: n must be > 0")
	}
	return func(o *Options) { o.maxMaps = n }
}

// WithMaxCells caps the cells of any SED surface or error map.
func WithMaxCells(n int) Option {
	if n <= 0 {
		panic("model: WithMaxCells: n must be > 0")
	}
	return func(o *Options) { o.maxCells = n }
}

func mustRange(name string, lo, hi float64) {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		panic("model: " + name + ": need lo < hi")
	}
}
