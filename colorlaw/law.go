// SPDX-License-Identifier: MIT

package colorlaw

import (
	"fmt"
	"math"
)

// Reference wavelengths (Angstroms).
const (
	UWavelength = 3500.0
	BWavelength = 4302.57
	VWavelength = 5428.55
	RWavelength = 6500.0
)

// MaxParams bounds the full parameter vector (5 header values + coefficients).
const MaxParams = 20

// Parameter-vector layout, as read after the COLORCOR_PARAMS key.
const (
	idxRefB   = 0
	idxRefV   = 1
	idxLamMin = 2
	idxLamMax = 3
	idxNPoly  = 4
	idxPoly   = 5
)

// Version selects the polynomial form.
type Version int

const (
	// Law0 is the legacy form without α normalization.
	Law0 Version = 0
	// Law1 is the default normalized form.
	Law1 Version = 1
)

// Params are the immutable inputs of a color law.
type Params struct {
	RefB, RefV     float64 // anchor wavelengths
	LamMin, LamMax float64 // trained wavelength range
	Coeffs         []float64
}

// DefaultParams returns the identity-shaped law anchored at BWavelength and
// VWavelength with no higher-order coefficients.
func DefaultParams() Params {
	return Params{RefB: BWavelength, RefV: VWavelength, LamMin: 2000, LamMax: 9200}
}

// ParseVector reads [refB, refV, lamMin, lamMax, npoly, p0, p1, ...].
func ParseVector(v []float64) (Params, error) {
	if len(v) < idxPoly {
		return Params{}, fmt.Errorf("ParseVector: %d values, need at least %d: %w", len(v), idxPoly, ErrConfig)
	}
	if len(v) > MaxParams {
		return Params{}, fmt.Errorf("ParseVector: %d values > %d: %w", len(v), MaxParams, ErrConfig)
	}
	npoly := v[idxNPoly]
	if npoly != math.Trunc(npoly) || npoly < 0 || int(npoly) != len(v)-idxPoly {
		return Params{}, fmt.Errorf("ParseVector: npoly=%g but %d coefficients: %w", npoly, len(v)-idxPoly, ErrConfig)
	}
	p := Params{
		RefB:   v[idxRefB],
		RefV:   v[idxRefV],
		LamMin: v[idxLamMin],
		LamMax: v[idxLamMax],
		Coeffs: append([]float64(nil), v[idxPoly:]...),
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Vector is the inverse of ParseVector.
func (p Params) Vector() []float64 {
	v := []float64{p.RefB, p.RefV, p.LamMin, p.LamMax, float64(len(p.Coeffs))}
	return append(v, p.Coeffs...)
}

// Validate checks finiteness and ordering.
func (p Params) Validate() error {
	all := append([]float64{p.RefB, p.RefV, p.LamMin, p.LamMax}, p.Coeffs...)
	for i, x := range all {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("Params: value %d not finite: %w", i, ErrConfig)
		}
	}
	if !(p.RefB < p.RefV) {
		return fmt.Errorf("Params: refB=%g must be < refV=%g: %w", p.RefB, p.RefV, ErrConfig)
	}
	if !(p.LamMin < p.LamMax) {
		return fmt.Errorf("Params: lamMin=%g must be < lamMax=%g: %w", p.LamMin, p.LamMax, ErrConfig)
	}
	if len(p.Coeffs)+idxPoly > MaxParams {
		return fmt.Errorf("Params: %d coefficients: %w", len(p.Coeffs), ErrConfig)
	}
	return nil
}

// Law is an evaluated color law. It is immutable and safe for concurrent use.
type Law struct {
	version    Version
	p          Params
	alpha      float64
	rMin, rMax float64
}

// New builds a law of the given version.
func New(version Version, p Params) (*Law, error) {
	if version != Law0 && version != Law1 {
		return nil, fmt.Errorf("New(%d): %w", version, ErrVersion)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Coeffs = append([]float64(nil), p.Coeffs...)
	l := &Law{version: version, p: p, alpha: 1}
	if version == Law1 {
		for _, c := range p.Coeffs {
			l.alpha -= c
		}
	}
	l.rMin = l.reduced(p.LamMin)
	l.rMax = l.reduced(p.LamMax)

	return l, nil
}

// Version returns the law version.
func (l *Law) Version() Version { return l.version }

// Params returns a copy of the parameters.
func (l *Law) Params() Params {
	p := l.p
	p.Coeffs = append([]float64(nil), l.p.Coeffs...)
	return p
}

func (l *Law) reduced(lam float64) float64 {
	return (lam - l.p.RefB) / (l.p.RefV - l.p.RefB)
}

// Eval returns CL(λ) in magnitudes per unit color.
func (l *Law) Eval(lam float64) float64 {
	r := l.reduced(lam)
	switch {
	case r < l.rMin:
		r = l.rMin
	case r > l.rMax:
		r = l.rMax
	}
	return -Pol(r, l.p.Coeffs, l.alpha)
}

// Deriv returns dCL/dλ; zero on the flat extensions.
func (l *Law) Deriv(lam float64) float64 {
	r := l.reduced(lam)
	if r < l.rMin || r > l.rMax {
		return 0
	}
	return -DPol(r, l.p.Coeffs, l.alpha) / (l.p.RefV - l.p.RefB)
}

// Correction returns the multiplicative flux factor 10^(−0.4·c·CL(λ)).
func (l *Law) Correction(lam, c float64) float64 {
	return math.Pow(10, -0.4*c*l.Eval(lam))
}

// Pol evaluates α·r + Σ p_i·r^(i+2).
func Pol(r float64, coeffs []float64, alpha float64) float64 {
	v := alpha * r
	rk := r
	for _, p := range coeffs {
		rk *= r
		v += p * rk
	}
	return v
}

// DPol evaluates dPol/dr = α + Σ (i+2)·p_i·r^(i+1).
func DPol(r float64, coeffs []float64, alpha float64) float64 {
	v := alpha
	rk := 1.0
	for i, p := range coeffs {
		rk *= r
		v += float64(i+2) * p * rk
	}
	return v
}
