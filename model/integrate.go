package model

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/sed"
)

// Integration is the result of integrating the model through one filter at
// one epoch.
type Integration struct {
	Flux        float64 // observer-frame flux through the filter
	FluxErrPar  float64 // throughput-weighted mean of Σ x_k·S_k, the error-map normalization
	TRest       float64 // rest-frame phase
	LamObsMean  float64 // filter mean wavelength, after any wavelength shift
	LamRestMean float64
	ForcedZero  bool // flux forced to zero by coverage policy
	Spectrum    []SpectrumBin
}

// SpectrumBin is one wavelength bin of the redshifted, extincted model.
type SpectrumBin struct {
	LamObs  float64
	LamRest float64
	Flux    float64 // observer-frame flux density per Å
}

// Integrate returns the observer-frame flux of sn at redshift z and observer
// time tobs through the registered filter name.
//
// Flux is the trapezoidal integral over the filter samples of
//
//	x0 · Σ x_k S_k(t/(1+z), λ/(1+z)) · 10^(−0.4 c CL) · host(λ/(1+z)) · MW(λ) / (1+z) · T(λ)
//
// Samples whose rest wavelength falls outside the SED grid contribute zero,
// unless the model aborts on out-of-range wavelengths.
func (m *Model) Integrate(name string, z, tobs float64, sn SNParams, host HostParams, mwebv float64, wantSpectrum bool) (Integration, error) {
	f, err := m.lookupFilter(name)
	if err != nil {
		return Integration{}, err
	}
	if err = validateQuery(z, tobs, sn, host, mwebv); err != nil {
		return Integration{}, fmt.Errorf("Integrate(%s): %w", name, err)
	}
	res, err := m.integrate(f, z, tobs, sn, host, mwebv, wantSpectrum)
	if err != nil {
		return res, wrap(fmt.Sprintf("Integrate(%s)", name), err)
	}
	return res, nil
}

func (m *Model) lookupFilter(name string) (*filter.Transmission, error) {
	f, ok := m.filters[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownFilter)
	}
	return f, nil
}

func validateQuery(z, tobs float64, sn SNParams, host HostParams, mwebv float64) error {
	for _, v := range []float64{z, tobs, sn.X0, sn.X1, sn.X2, sn.C, sn.CErr, host.RV, host.AV, mwebv} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite parameter: %w", ErrInvalidQuery)
		}
	}
	switch {
	case z < 0:
		return fmt.Errorf("z=%g: %w", z, ErrInvalidQuery)
	case sn.X0 < 0:
		return fmt.Errorf("x0=%g: %w", sn.X0, ErrInvalidQuery)
	case sn.CErr < 0:
		return fmt.Errorf("cerr=%g: %w", sn.CErr, ErrInvalidQuery)
	case mwebv < 0:
		return fmt.Errorf("mwebv=%g: %w", mwebv, ErrInvalidQuery)
	case host.AV != 0 && !(host.RV > 0):
		return fmt.Errorf("host RV=%g with AV=%g: %w", host.RV, host.AV, ErrInvalidQuery)
	}
	return nil
}

// shifted applies the WAVESHIFT calibration entry of f, if any.
func (m *Model) shifted(f *filter.Transmission) (*filter.Transmission, float64) {
	if m.opts.disableWaveShift {
		return f, 0
	}
	shift, ok := m.shifts.Lookup(f.Survey, f.Name, calib.WaveShift)
	if !ok {
		return f, 0
	}
	return f.Shifted(shift), shift
}

// weights returns the surface weights {1, x1, x2} trimmed to the surface count.
func (m *Model) weights(sn SNParams) []float64 {
	w := []float64{1, sn.X1, sn.X2}
	if n := m.sed.Surfaces(); n < len(w) {
		w = w[:n]
	}
	return w
}

func (m *Model) colorCorrection(c, lamRest float64) float64 {
	c += m.opts.colorOffset
	if c == 0 {
		return 1
	}
	return m.colors.Lookup(c, lamRest)
}

func hostTransmission(lamRest float64, host HostParams) float64 {
	if host.AV == 0 {
		return 1
	}
	return math.Pow(10, -0.4*host.AV*sed.CCM89(lamRest, host.RV))
}

func (m *Model) forcedZero(restLo, restHi float64) bool {
	fz := m.opts.forceZero
	return fz[1] > fz[0] && restLo >= fz[0] && restHi <= fz[1]
}

// mwTransmission fetches the cached MW transmission of f and logs rebuilds.
func (m *Model) mwTransmission(f *filter.Transmission, shift, mwebv float64) ([]float64, error) {
	key := f.Name
	if shift != 0 {
		key = fmt.Sprintf("%s%+g", f.Name, shift)
	}
	_, before := m.sed.MWState()
	mw, err := m.sed.MWTransmission(key, f.Lambda(), mwebv)
	if err != nil {
		return nil, err
	}
	if m.opts.verbose {
		if ebv, after := m.sed.MWState(); after != before {
			m.log.Info("mw extinction table rebuilt", slog.Float64("mwebv", ebv), slog.Uint64("generation", after))
		}
	}
	return mw, nil
}

func (m *Model) integrate(f *filter.Transmission, z, tobs float64, sn SNParams, host HostParams, mwebv float64, wantSpectrum bool) (Integration, error) {
	f, shift := m.shifted(f)
	zp1 := 1 + z
	res := Integration{TRest: tobs / zp1, LamObsMean: f.MeanLambda(), LamRestMean: f.MeanLambda() / zp1}

	lams := m.sed.Lams()
	restLo, restHi := f.RestSupport(z)
	outside := restHi < lams.Min() || restLo > lams.Max()
	partial := restLo < lams.Min() || restHi > lams.Max()
	switch {
	case m.forcedZero(restLo, restHi):
		res.ForcedZero = true
	case m.opts.abortLamRange && partial:
		return res, fmt.Errorf("%s at z=%g: rest [%g, %g] vs SED [%g, %g]: %w",
			f.Name, z, restLo, restHi, lams.Min(), lams.Max(), grid.ErrOutOfRange)
	case outside:
		res.ForcedZero = true
	}
	if res.ForcedZero {
		if m.opts.verbose {
			m.log.Info("forced zero flux",
				slog.String("filter", f.Name), slog.Float64("z", z),
				slog.Float64("rest_lo", restLo), slog.Float64("rest_hi", restHi))
		}
		return res, nil
	}

	mw, err := m.mwTransmission(f, shift, mwebv)
	if err != nil {
		return res, err
	}
	w := m.weights(sn)
	n := f.Len()
	lamObs := make([]float64, n)
	flux := make([]float64, n)
	errPar := make([]float64, n)
	if wantSpectrum {
		res.Spectrum = make([]SpectrumBin, 0, n)
	}
	for i := 0; i < n; i++ {
		lo, tr := f.Sample(i)
		lr := lo / zp1
		lamObs[i] = lo
		if !lams.Contains(lr) {
			if wantSpectrum {
				res.Spectrum = append(res.Spectrum, SpectrumBin{LamObs: lo, LamRest: lr})
			}
			continue
		}
		s, err := m.sed.FluxAll(res.TRest, lr, w)
		if err != nil {
			return res, err
		}
		dens := sn.X0 * s * m.colorCorrection(sn.C, lr) * hostTransmission(lr, host) * mw[i] / zp1
		flux[i] = dens * tr
		errPar[i] = s * tr
		if wantSpectrum {
			res.Spectrum = append(res.Spectrum, SpectrumBin{LamObs: lo, LamRest: lr, Flux: dens})
		}
	}
	res.Flux = filter.Integrate(lamObs, flux)
	res.FluxErrPar = filter.Integrate(lamObs, errPar) / f.Width()

	return res, nil
}

// Spectrum returns the model flux density at each observer-frame wavelength,
// for spectrograph-style callers. Bins outside the SED rest range are zero,
// or fail under the abort-on-lamrange policy.
func (m *Model) Spectrum(z, tobs float64, lamObs []float64, sn SNParams, host HostParams, mwebv float64) ([]SpectrumBin, error) {
	if err := validateQuery(z, tobs, sn, host, mwebv); err != nil {
		return nil, fmt.Errorf("Spectrum: %w", err)
	}
	zp1 := 1 + z
	trest := tobs / zp1
	lams := m.sed.Lams()
	rv := m.sed.RV()
	w := m.weights(sn)
	out := make([]SpectrumBin, len(lamObs))
	for i, lo := range lamObs {
		lr := lo / zp1
		out[i] = SpectrumBin{LamObs: lo, LamRest: lr}
		if !lams.Contains(lr) {
			if m.opts.abortLamRange {
				return nil, wrap("Spectrum", fmt.Errorf("rest λ=%g outside [%g, %g]: %w", lr, lams.Min(), lams.Max(), grid.ErrOutOfRange))
			}
			continue
		}
		s, err := m.sed.FluxAll(trest, lr, w)
		if err != nil {
			return nil, wrap("Spectrum", err)
		}
		mw := math.Pow(10, -0.4*rv*mwebv*sed.CCM89(lo, rv))
		out[i].Flux = sn.X0 * s * m.colorCorrection(sn.C, lr) * hostTransmission(lr, host) * mw / zp1
	}
	return out, nil
}
