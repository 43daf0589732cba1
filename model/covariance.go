package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Observation is one (filter, epoch) pair of a covariance request.
type Observation struct {
	Filter string
	Tobs   float64
}

// Covariance returns the N×N magnitude covariance of obs.
//
// Every entry is filled once through SetSym, so the result is symmetric by
// construction. Terms, with k = 2.5/ln 10:
//
//	all pairs:                 σc² · CL_i · CL_j
//	same filter:               k² · disp_i · disp_j  +  w_i · w_j   (w: wavelength-shift slope)
//	same filter and epoch:     k² · snake variance
//
// Observations with forced-zero or non-positive flux, or whose filter mean
// rest wavelength lies outside the filter-center range, contribute zero rows.
// A matrix that fails the positive semi-definite check is returned together
// with ErrIllConditioned.
func (m *Model) Covariance(obs []Observation, z float64, sn SNParams, host HostParams, mwebv float64) (*mat.SymDense, error) {
	n := len(obs)
	if n == 0 {
		return &mat.SymDense{}, nil
	}
	terms := make([]obsTerms, n)
	for i, o := range obs {
		f, err := m.lookupFilter(o.Filter)
		if err != nil {
			return nil, err
		}
		if err = validateQuery(z, o.Tobs, sn, host, mwebv); err != nil {
			return nil, fmt.Errorf("Covariance: %w", err)
		}
		integ, err := m.integrate(f, z, o.Tobs, sn, host, mwebv, false)
		if err != nil {
			return nil, wrap(fmt.Sprintf("Covariance(%s, t=%g)", o.Filter, o.Tobs), err)
		}
		if !m.insideFilterCen(integ.LamRestMean) {
			continue
		}
		if terms[i], err = m.terms(integ, sn); err != nil {
			return nil, wrap(fmt.Sprintf("Covariance(%s, t=%g)", o.Filter, o.Tobs), err)
		}
	}

	k2 := magPerFrac * magPerFrac
	sigC2 := sn.CErr * sn.CErr
	c := m.color(sn)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := terms[i], terms[j]
			v := sigC2 * a.cl * b.cl
			if obs[i].Filter == obs[j].Filter {
				v += k2*a.disp*b.disp + a.waveSlope(c, m.opts.waveShiftErr)*b.waveSlope(c, m.opts.waveShiftErr)
				if obs[i].Tobs == obs[j].Tobs {
					v += k2 * a.snakeVar
				}
			}
			cov.SetSym(i, j, v)
		}
	}

	if err := m.checkPSD(cov); err != nil {
		return cov, err
	}
	return cov, nil
}

// checkPSD accepts eigenvalues down to −tol·max(1, |λ|max).
func (m *Model) checkPSD(cov *mat.SymDense) error {
	n := cov.SymmetricDim()
	for i := 0; i < n; i++ {
		if d := cov.At(i, i); math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("Covariance: diagonal %d = %g: %w", i, d, ErrIllConditioned)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return fmt.Errorf("Covariance: eigendecomposition failed: %w", ErrIllConditioned)
	}
	vals := eig.Values(nil)
	lo := floats.Min(vals)
	scale := math.Max(1, math.Max(math.Abs(lo), math.Abs(floats.Max(vals))))
	if lo < -m.opts.psdTolerance*scale {
		if m.opts.verbose {
			m.log.Warn("covariance not positive semi-definite")
		}
		return fmt.Errorf("Covariance: min eigenvalue %g: %w", lo, ErrIllConditioned)
	}
	return nil
}
