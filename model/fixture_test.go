package model_test

import (
	"testing"

	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
	"github.com/stretchr/testify/require"
)

var salt2Like = colorlaw.Params{
	RefB: colorlaw.BWavelength, RefV: colorlaw.VWavelength,
	LamMin: 2800, LamMax: 7000,
	Coeffs: []float64{-0.504294, 0.787691, -0.461715, 0.0815619},
}

// flatInputs is a one-surface model with constant flux k on -20..40 d and
// 2000..9000 Å, and top-hat u, g, r filters with zero point 25.
func flatInputs(t testing.TB, k float64) model.Inputs {
	t.Helper()
	days, err := grid.UniformAxis(-20, 5, 13)
	require.NoError(t, err)
	lams, err := grid.UniformAxis(2000, 100, 71)
	require.NoError(t, err)

	surf := make([]float64, days.Len()*lams.Len())
	for i := range surf {
		surf[i] = k
	}

	in := model.Inputs{
		Version:         "TEST.flat",
		Days:            days,
		Lams:            lams,
		Surfaces:        [][]float64{surf},
		ColorLawVersion: colorlaw.Law1,
		ColorLaw:        salt2Like,
	}
	for _, b := range []struct {
		band   string
		lo, hi float64
	}{{"u", 3000, 3500}, {"g", 4000, 5000}, {"r", 5500, 6800}} {
		f, err := filter.TopHat("SDSS-"+b.band, b.band, "SDSS", b.lo, b.hi, 10, 25)
		require.NoError(t, err)
		in.Filters = append(in.Filters, f)
	}
	return in
}

// withSecondSurface appends a constant surface s1.
func withSecondSurface(in model.Inputs, s1 float64) model.Inputs {
	surf := make([]float64, len(in.Surfaces[0]))
	for i := range surf {
		surf[i] = s1
	}
	in.Surfaces = append(in.Surfaces, surf)
	return in
}

// constMap is a 2×2 error map with value v covering the whole SED range.
func constMap(v float64) []errmap.Point {
	var pts []errmap.Point
	for _, d := range []float64{-20, 40} {
		for _, l := range []float64{2000, 9000} {
			pts = append(pts, errmap.Point{Day: d, Lam: l, Value: v})
		}
	}
	return pts
}

func newModel(t testing.TB, in model.Inputs, opts ...model.Option) *model.Model {
	t.Helper()
	m, err := model.New(in, opts...)
	require.NoError(t, err)
	return m
}
