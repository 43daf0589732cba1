package sed

import (
	"fmt"
	"math"
)

// CCM89 returns A_λ/A_V for wavelength lam (Å) following Cardelli, Clayton &
// Mathis (1989) with the O'Donnell (1994) optical coefficients.
// Inverse wavelengths above 10 µm⁻¹ are held at 10.
func CCM89(lam, rv float64) float64 {
	x := 1e4 / lam
	var a, b float64
	switch {
	case x < 1.1:
		xp := math.Pow(x, 1.61)
		a, b = 0.574*xp, -0.527*xp
	case x < 3.3:
		y := x - 1.82
		a = horner(y, 1, 0.104, -0.609, 0.701, 1.137, -1.718, -0.827, 1.647, -0.505)
		b = horner(y, 0, 1.952, 2.908, -3.989, -7.985, 11.102, 5.491, -10.805, 3.347)
	case x < 8:
		var fa, fb float64
		if x >= 5.9 {
			d := x - 5.9
			fa = -0.04473*d*d - 0.009779*d*d*d
			fb = 0.2130*d*d + 0.1207*d*d*d
		}
		a = 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341) + fa
		b = -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263) + fb
	default:
		d := math.Min(x, 10) - 8
		a = horner(d, -1.073, -0.628, 0.137, -0.070)
		b = horner(d, 13.670, 4.257, -0.420, 0.374)
	}
	return a + b/rv
}

// horner evaluates c0 + c1·y + c2·y² + ...
func horner(y float64, c ...float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*y + c[i]
	}
	return v
}

// MWTransmission returns 10^(−0.4·R_V·E(B−V)·A_λ/A_V) for each observer-frame
// wavelength of the filter registered under key. The result is shared and
// must not be modified.
//
// The cache holds one extinction value at a time. A call with a different
// ebv builds a fresh state and swaps it in; all previously cached filters
// are dropped with it.
func (t *Table) MWTransmission(key string, lamObs []float64, ebv float64) ([]float64, error) {
	if math.IsNaN(ebv) || math.IsInf(ebv, 0) || ebv < 0 {
		return nil, fmt.Errorf("MWTransmission(%s): ebv=%g: %w", key, ebv, ErrBadExtinction)
	}

	t.mu.RLock()
	st := t.mw
	cached, ok := st.trans[key]
	t.mu.RUnlock()
	if ok && st.ebv == ebv && len(cached) == len(lamObs) {
		return cached, nil
	}

	av := t.rv * ebv
	built := make([]float64, len(lamObs))
	for i, lam := range lamObs {
		built[i] = math.Pow(10, -0.4*av*CCM89(lam, t.rv))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mw.ebv != ebv || t.mw.gen == 0 {
		t.mw = &mwState{ebv: ebv, gen: t.mw.gen + 1, trans: map[string][]float64{}}
	}
	t.mw.trans[key] = built

	return built, nil
}

// MWState reports the E(B−V) of the current extinction build and how many
// builds have happened. Generation 0 means no build yet.
func (t *Table) MWState() (ebv float64, generation uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mw.ebv, t.mw.gen
}
