package model

import (
	"fmt"
	"math"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/filter"
)

// MagUndefined is reported for magnitudes and errors without a defined flux.
const MagUndefined = 99.0

// magPerFrac converts a fractional flux error into magnitudes: 2.5/ln 10.
var magPerFrac = 2.5 / math.Ln10

// Magnitude is the synthetic observation of one epoch.
type Magnitude struct {
	Tobs       float64
	Mag        float64
	MagErr     float64
	Flux       float64
	ForcedZero bool
}

// Defined reports whether Mag carries a real value.
func (mg Magnitude) Defined() bool { return mg.Mag != MagUndefined }

// obsTerms are the per-observation ingredients of magnitude errors.
type obsTerms struct {
	snakeVar float64 // fractional flux variance from the error maps, × errscale²
	disp     float64 // fractional color dispersion
	cl, dcl  float64 // color law and slope at the rest-frame mean wavelength
	zp1      float64
}

// variance is the magnitude variance of one observation on its own.
// c is the color after the global offset.
func (t obsTerms) variance(c, cErr, waveErr float64) float64 {
	k2 := magPerFrac * magPerFrac
	ws := t.waveSlope(c, waveErr)
	return k2*(t.snakeVar+t.disp*t.disp) + cErr*cErr*t.cl*t.cl + ws*ws
}

// waveSlope is the magnitude change per waveErr shift of the filter.
func (t obsTerms) waveSlope(c, waveErr float64) float64 {
	if waveErr == 0 || t.zp1 == 0 {
		return 0
	}
	return c * t.dcl / t.zp1 * waveErr
}

// color is sn.C with the global color offset applied.
func (m *Model) color(sn SNParams) float64 { return sn.C + m.opts.colorOffset }

// terms evaluates the error maps, color dispersion and color law for integ.
func (m *Model) terms(integ Integration, sn SNParams) (obsTerms, error) {
	t := obsTerms{zp1: integ.LamObsMean / integ.LamRestMean}
	if integ.ForcedZero || !(integ.Flux > 0) {
		return obsTerms{}, nil
	}
	day, lam := integ.TRest, integ.LamRestMean

	w := m.weights(sn)
	var v float64
	for a := range w {
		for b := range w {
			id, ok := m.maps.CovarianceID(a, b)
			if !ok {
				continue
			}
			q, err := m.queryMap(id, day, lam)
			if err != nil {
				return t, err
			}
			v += w[a] * w[b] * q
		}
	}
	scale := 1.0
	if m.maps.Has(errmap.ErrScale()) {
		q, err := m.queryMap(errmap.ErrScale(), day, lam)
		if err != nil {
			return t, err
		}
		scale = q
	}
	if integ.FluxErrPar != 0 {
		t.snakeVar = scale * scale * v / (integ.FluxErrPar * integ.FluxErrPar)
	}
	if m.disp != nil && m.opts.colorDispErr {
		d, err := m.disp.At(lam)
		if err != nil {
			return t, err
		}
		t.disp = d
	}
	t.cl = m.law.Eval(lam)
	t.dcl = m.law.Deriv(lam)

	return t, nil
}

// queryMap interpolates map id at (day, lam). Phases clamp to the map's
// day range; wavelengths follow the store's edge policy.
func (m *Model) queryMap(id errmap.MapID, day, lam float64) (float64, error) {
	mp, ok := m.maps.Map(id)
	if !ok {
		return m.maps.Query(id, day, lam)
	}
	days := mp.Days()
	v, err := mp.Query(math.Min(math.Max(day, days.Min()), days.Max()), lam)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", id, err)
	}
	return v, nil
}

// Magnitudes returns the synthetic magnitude and error of sn in the filter
// name at every observer time in tobs.
//
// Mag = ZP − 2.5·log10(flux) + mag offset + MAGSHIFT. Epochs with forced-zero
// or non-positive flux, or whose filter mean rest wavelength lies outside the
// configured filter-center range, get MagUndefined for both values.
func (m *Model) Magnitudes(name string, z float64, tobs []float64, sn SNParams, host HostParams, mwebv float64) ([]Magnitude, error) {
	f, err := m.lookupFilter(name)
	if err != nil {
		return nil, err
	}
	out := make([]Magnitude, len(tobs))
	for i, t := range tobs {
		if err = validateQuery(z, t, sn, host, mwebv); err != nil {
			return nil, fmt.Errorf("Magnitudes(%s): %w", name, err)
		}
		if out[i], err = m.magnitude(f, z, t, sn, host, mwebv); err != nil {
			return nil, wrap(fmt.Sprintf("Magnitudes(%s) t=%g", name, t), err)
		}
	}
	return out, nil
}

func (m *Model) magnitude(f *filter.Transmission, z, tobs float64, sn SNParams, host HostParams, mwebv float64) (Magnitude, error) {
	res := Magnitude{Tobs: tobs, Mag: MagUndefined, MagErr: MagUndefined}
	integ, err := m.integrate(f, z, tobs, sn, host, mwebv, false)
	if err != nil {
		return res, err
	}
	res.Flux, res.ForcedZero = integ.Flux, integ.ForcedZero
	if integ.ForcedZero || !(integ.Flux > 0) || !m.insideFilterCen(integ.LamRestMean) {
		return res, nil
	}
	t, err := m.terms(integ, sn)
	if err != nil {
		return res, err
	}

	res.Mag = f.ZeroPoint - 2.5*math.Log10(integ.Flux) + m.opts.magOffset + m.magShift(f)
	res.MagErr = m.fudgeMagErr(math.Sqrt(math.Max(t.variance(m.color(sn), sn.CErr, m.opts.waveShiftErr), 0)), integ)

	return res, nil
}

func (m *Model) magShift(f *filter.Transmission) float64 {
	if m.opts.disableMagShift {
		return 0
	}
	s, _ := m.shifts.Lookup(f.Survey, f.Name, calib.MagShift)
	return s
}

func (m *Model) insideFilterCen(lamRest float64) bool {
	r := m.opts.restLamCen
	if !(r[1] > r[0]) {
		return true
	}
	return lamRest >= r[0] && lamRest <= r[1]
}

// fudgeMagErr applies the wavelength overrides, then the floor.
func (m *Model) fudgeMagErr(magerr float64, integ Integration) float64 {
	if o := m.opts.magErrLamObs; o[2] > o[1] && integ.LamObsMean > o[1] && integ.LamObsMean < o[2] {
		magerr = o[0]
	}
	if r := m.opts.magErrLamRest; r[2] > r[1] && integ.LamRestMean > r[1] && integ.LamRestMean < r[2] {
		magerr = r[0]
	}
	return math.Max(magerr, m.opts.magErrFloor)
}
