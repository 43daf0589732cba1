// Package filter holds observer-frame filter transmission curves and the
// quadrature used to integrate spectra through them.
//
// Quadrature is the trapezoidal rule on the curve's own wavelength samples
// (gonum integrate.Trapezoidal); it is exact for piecewise-linear integrands,
// so a flat spectrum through a top-hat filter integrates to value × width.
package filter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

var (
	// ErrTooFewPoints indicates a curve with fewer than two samples.
	ErrTooFewPoints = errors.New("filter: need at least two samples")

	// ErrNonIncreasing indicates wavelengths that are not strictly increasing.
	ErrNonIncreasing = errors.New("filter: wavelengths must be strictly increasing")

	// ErrBadTransmission indicates a negative or non-finite throughput.
	ErrBadTransmission = errors.New("filter: throughput must be finite and >= 0")

	// ErrLengthMismatch indicates lambda and throughput slices of different length.
	ErrLengthMismatch = errors.New("filter: lambda/throughput length mismatch")

	// ErrZeroThroughput indicates a curve that integrates to zero.
	ErrZeroThroughput = errors.New("filter: curve has zero integrated throughput")
)

// Transmission is an observer-frame filter curve.
type Transmission struct {
	Name      string // full filter identity, e.g. "SDSS-r"
	Band      string // single-character band, e.g. "r"
	Survey    string // survey that owns the filter, e.g. "SDSS"
	ZeroPoint float64

	lam, trans []float64
	norm       float64 // ∫T dλ
	mean       float64 // ∫λT dλ / ∫T dλ
}

// New validates and copies a transmission curve.
// zeroPoint is the magnitude of unit integrated flux in this filter.
func New(name, band, survey string, lam, trans []float64, zeroPoint float64) (*Transmission, error) {
	if len(lam) != len(trans) {
		return nil, fmt.Errorf("filter %s: %w", name, ErrLengthMismatch)
	}
	if len(lam) < 2 {
		return nil, fmt.Errorf("filter %s: %w", name, ErrTooFewPoints)
	}
	for i := range lam {
		if math.IsNaN(lam[i]) || math.IsInf(lam[i], 0) || (i > 0 && lam[i] <= lam[i-1]) {
			return nil, fmt.Errorf("filter %s: sample %d: %w", name, i, ErrNonIncreasing)
		}
		if math.IsNaN(trans[i]) || math.IsInf(trans[i], 0) || trans[i] < 0 {
			return nil, fmt.Errorf("filter %s: sample %d: %w", name, i, ErrBadTransmission)
		}
	}
	f := &Transmission{
		Name: name, Band: band, Survey: survey, ZeroPoint: zeroPoint,
		lam:   append([]float64(nil), lam...),
		trans: append([]float64(nil), trans...),
	}
	f.norm = Integrate(f.lam, f.trans)
	if f.norm <= 0 {
		return nil, fmt.Errorf("filter %s: %w", name, ErrZeroThroughput)
	}
	lt := make([]float64, len(lam))
	floats.MulTo(lt, f.lam, f.trans)
	f.mean = Integrate(f.lam, lt) / f.norm

	return f, nil
}

// TopHat builds a unit-throughput curve on [lo, hi] sampled every step.
func TopHat(name, band, survey string, lo, hi, step, zeroPoint float64) (*Transmission, error) {
	if !(hi > lo) || !(step > 0) {
		return nil, fmt.Errorf("filter %s: [%g,%g] step %g: %w", name, lo, hi, step, ErrNonIncreasing)
	}
	n := int(math.Round((hi-lo)/step)) + 1
	if n < 2 {
		n = 2
	}
	lam := make([]float64, n)
	floats.Span(lam, lo, hi)
	trans := make([]float64, n)
	for i := range trans {
		trans[i] = 1
	}
	return New(name, band, survey, lam, trans, zeroPoint)
}

// Lambda returns a copy of the wavelength samples.
func (f *Transmission) Lambda() []float64 { return append([]float64(nil), f.lam...) }

// Throughput returns a copy of the throughput samples.
func (f *Transmission) Throughput() []float64 { return append([]float64(nil), f.trans...) }

// Len returns the number of samples.
func (f *Transmission) Len() int { return len(f.lam) }

// Sample returns wavelength and throughput i without copying.
func (f *Transmission) Sample(i int) (lam, trans float64) { return f.lam[i], f.trans[i] }

// Support returns the observer-frame wavelength range.
func (f *Transmission) Support() (lo, hi float64) { return f.lam[0], f.lam[len(f.lam)-1] }

// RestSupport returns the rest-frame wavelength range at redshift z.
func (f *Transmission) RestSupport(z float64) (lo, hi float64) {
	lo, hi = f.Support()
	return lo / (1 + z), hi / (1 + z)
}

// MeanLambda returns the throughput-weighted mean wavelength.
func (f *Transmission) MeanLambda() float64 { return f.mean }

// Width returns ∫T dλ (equal to hi−lo for a unit top-hat).
func (f *Transmission) Width() float64 { return f.norm }

// Shifted returns a copy with every wavelength moved by dlam.
func (f *Transmission) Shifted(dlam float64) *Transmission {
	if dlam == 0 {
		return f
	}
	lam := make([]float64, len(f.lam))
	copy(lam, f.lam)
	floats.AddConst(dlam, lam)
	g := *f
	g.lam = lam
	g.trans = append([]float64(nil), f.trans...)
	g.mean = f.mean + dlam
	return &g
}

// Integrate applies the trapezoidal rule to samples f on strictly increasing x.
func Integrate(x, f []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return integrate.Trapezoidal(x, f)
}
