package model_test

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var magK = 2.5 / math.Ln10

// mapInputs is flatInputs(2) with two surfaces and a full set of error maps.
func mapInputs(t testing.TB) model.Inputs {
	in := withSecondSurface(flatInputs(t, 2), 0.5)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{
		errmap.Variance(0):      constMap(0.01),
		errmap.Variance(1):      constMap(0.004),
		errmap.Covariance(0, 1): constMap(0.001),
		errmap.ErrScale():       constMap(1.5),
		errmap.ColorDisp():      {{Day: 0, Lam: 2000, Value: 0.02}, {Day: 0, Lam: 9000, Value: 0.02}},
	}
	return in
}

func TestMagnitudes(t *testing.T) {
	in := flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{
		errmap.Variance(0): constMap(0.01),
		errmap.ErrScale():  constMap(1.5),
	}
	in.Calib = []calib.Entry{{Kind: calib.MagShift, Surveys: []string{"SDSS"}, Filter: "SDSS-g", Shift: 0.05}}
	m := newModel(t, in, model.WithMagOffset(0.1))

	mags, err := m.Magnitudes("SDSS-g", 0, []float64{-5, 0, 12.5}, model.SNParams{X0: 1}, model.HostParams{}, 0)
	require.NoError(t, err)
	require.Len(t, mags, 3)
	// snake: errscale² · var / F² = 2.25 · 0.01 / 4
	wantErr := magK * math.Sqrt(2.25*0.01/4)
	for _, mg := range mags {
		assert.True(t, mg.Defined())
		assert.InDelta(t, 25-2.5*math.Log10(2000)+0.1+0.05, mg.Mag, 1e-9)
		assert.InDelta(t, wantErr, mg.MagErr, 1e-9)
	}
	assert.Equal(t, 12.5, mags[2].Tobs)
}

func TestMagnitudes_ErrFudges(t *testing.T) {
	in := flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(0): constMap(0.0001)}
	sn := model.SNParams{X0: 1}

	floor := newModel(t, in, model.WithMagErrFloor(0.03))
	mg, err := floor.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.03, mg[0].MagErr)

	obs := newModel(t, in, model.WithMagErrLamObs(0.2, 4400, 4600))
	mg, err = obs.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.2, mg[0].MagErr)
	mg, err = obs.Magnitudes("SDSS-r", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.Less(t, mg[0].MagErr, 0.2, "outside the override window")

	rest := newModel(t, in, model.WithMagErrLamRest(0.3, 3000, 4200))
	mg, err = rest.Magnitudes("SDSS-g", 0.1, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.3, mg[0].MagErr, "4500/1.1 ≈ 4091 Å rest")

	cen := newModel(t, in, model.WithRestLamFilterCen(5000, 8000))
	mg, err = cen.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.False(t, mg[0].Defined())
	assert.False(t, mg[0].ForcedZero)
}

// TestCovariance_Properties: symmetric, non-negative diagonal, and the
// diagonal equals the single-epoch magnitude variance.
func TestCovariance_Properties(t *testing.T) {
	m := newModel(t, mapInputs(t))
	sn := model.SNParams{X0: 1, X1: 0.7, C: 0.1, CErr: 0.05}
	obs := []model.Observation{
		{Filter: "SDSS-g", Tobs: -5}, {Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-r", Tobs: 0},
		{Filter: "SDSS-r", Tobs: 20}, {Filter: "SDSS-g", Tobs: 0},
	}
	cov, err := m.Covariance(obs, 0.05, sn, model.HostParams{}, 0.02)
	require.NoError(t, err)
	require.Equal(t, len(obs), cov.SymmetricDim())

	for i := range obs {
		assert.GreaterOrEqual(t, cov.At(i, i), 0.0)
		for j := range obs {
			assert.Equal(t, cov.At(i, j), cov.At(j, i))
		}
		mg, err := m.Magnitudes(obs[i].Filter, 0.05, []float64{obs[i].Tobs}, sn, model.HostParams{}, 0.02)
		require.NoError(t, err)
		assert.InDelta(t, mg[0].MagErr*mg[0].MagErr, cov.At(i, i), 1e-12)
	}
	// repeated (filter, epoch) is perfectly correlated
	assert.InDelta(t, cov.At(1, 1), cov.At(1, 4), 1e-15)
	// same filter, different epoch shares dispersion and color terms only
	assert.Less(t, cov.At(0, 1), cov.At(1, 1))
	assert.Greater(t, cov.At(0, 1), 0.0)
}

func TestCovariance_ColorUncertaintyOnly(t *testing.T) {
	m := newModel(t, flatInputs(t, 2))
	sn := model.SNParams{X0: 1, CErr: 0.1}
	obs := []model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-r", Tobs: 3}, {Filter: "SDSS-u", Tobs: 7}}
	cov, err := m.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)

	cl := []float64{m.ColorLaw().Eval(4500), m.ColorLaw().Eval(6150), m.ColorLaw().Eval(3250)}
	for i := range obs {
		for j := range obs {
			assert.InDelta(t, 0.01*cl[i]*cl[j], cov.At(i, j), 1e-12, "(%d,%d)", i, j)
		}
	}

	empty, err := m.Covariance(nil, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.SymmetricDim())
}

func TestCovariance_WaveShiftErr(t *testing.T) {
	sn := model.SNParams{X0: 1, C: 0.2}
	obs := []model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-g", Tobs: 10}, {Filter: "SDSS-r", Tobs: 0}}
	m := newModel(t, flatInputs(t, 2), model.WithWaveShiftErr(10))
	cov, err := m.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)

	w := 0.2 * m.ColorLaw().Deriv(4500) * 10
	assert.InDelta(t, w*w, cov.At(0, 1), 1e-15)
	assert.InDelta(t, w*w, cov.At(0, 0), 1e-15)
	assert.Equal(t, 0.0, cov.At(0, 2), "different filters")
}

func TestCovariance_WaveShiftWithColorOffset(t *testing.T) {
	sn := model.SNParams{X0: 1, C: 0.2}
	obs := []model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-g", Tobs: 10}}
	m := newModel(t, flatInputs(t, 2), model.WithWaveShiftErr(10), model.WithColorOffset(0.1))
	cov, err := m.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)

	w := (0.2 + 0.1) * m.ColorLaw().Deriv(4500) * 10
	assert.InDelta(t, w*w, cov.At(0, 1), 1e-15)

	mg, err := m.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Abs(w), mg[0].MagErr, 1e-12)
}

func TestCovariance_RestLamFilterCen(t *testing.T) {
	m := newModel(t, mapInputs(t), model.WithRestLamFilterCen(5000, 8000))
	sn := model.SNParams{X0: 1, C: 0.1, CErr: 0.05}
	obs := []model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-r", Tobs: 0}, {Filter: "SDSS-r", Tobs: 5}}
	cov, err := m.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)

	for j := range obs {
		assert.Equal(t, 0.0, cov.At(0, j), "g is outside the filter-center range")
	}
	mg, err := m.Magnitudes("SDSS-r", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, mg[0].MagErr*mg[0].MagErr, cov.At(1, 1), 1e-12)
	assert.Greater(t, cov.At(1, 2), 0.0)
}

func TestColorDispErr(t *testing.T) {
	sn := model.SNParams{X0: 1, X1: 0.3}
	obs := []model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-g", Tobs: 10}}
	on := newModel(t, mapInputs(t))
	off := newModel(t, mapInputs(t), model.WithColorDispErr(false))

	covOn, err := on.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	covOff, err := off.Covariance(obs, 0, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	dispVar := magK * magK * 0.02 * 0.02
	assert.InDelta(t, dispVar, covOn.At(0, 1), 1e-12)
	assert.Equal(t, 0.0, covOff.At(0, 1))
	assert.InDelta(t, dispVar, covOn.At(0, 0)-covOff.At(0, 0), 1e-12)

	mOn, err := on.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	mOff, err := off.Magnitudes("SDSS-g", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, dispVar, mOn[0].MagErr*mOn[0].MagErr-mOff[0].MagErr*mOff[0].MagErr, 1e-12)
	assert.Equal(t, mOn[0].Mag, mOff[0].Mag)
}

// TestCovariance_IllConditioned: a covariance map that overwhelms the
// variances makes the snake variance negative.
func TestCovariance_IllConditioned(t *testing.T) {
	in := withSecondSurface(flatInputs(t, 2), 0.5)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{
		errmap.Variance(0):      constMap(0.001),
		errmap.Variance(1):      constMap(0.001),
		errmap.Covariance(0, 1): constMap(-0.5),
	}
	m := newModel(t, in)
	cov, err := m.Covariance([]model.Observation{{Filter: "SDSS-g", Tobs: 0}, {Filter: "SDSS-r", Tobs: 0}},
		0, model.SNParams{X0: 1, X1: 1}, model.HostParams{}, 0)
	assert.ErrorIs(t, err, model.ErrIllConditioned)
	require.NotNil(t, cov)
	assert.Less(t, cov.At(0, 0), 0.0)
}

func TestCovariance_UnknownFilter(t *testing.T) {
	m := newModel(t, flatInputs(t, 2))
	_, err := m.Covariance([]model.Observation{{Filter: "nope"}}, 0, model.SNParams{X0: 1}, model.HostParams{}, 0)
	assert.ErrorIs(t, err, model.ErrUnknownFilter)
}

// TestModel_ConcurrentQueries: queries with changing MW extinction from many
// goroutines match the serial results exactly.
func TestModel_ConcurrentQueries(t *testing.T) {
	m := newModel(t, mapInputs(t))
	sn := model.SNParams{X0: 1e-3, X1: -0.4, C: 0.05, CErr: 0.02}
	epochs := []float64{-10, 0, 10, 25}
	ebvs := []float64{0, 0.03, 0.12}
	filters := []string{"SDSS-g", "SDSS-r"}

	want := map[string][]model.Magnitude{}
	for _, f := range filters {
		for _, e := range ebvs {
			mags, err := m.Magnitudes(f, 0.2, epochs, sn, model.HostParams{}, e)
			require.NoError(t, err)
			want[fmt.Sprintf("%s/%g", f, e)] = mags
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				f, e := filters[(w+i)%2], ebvs[(w+i)%3]
				got, err := m.Magnitudes(f, 0.2, epochs, sn, model.HostParams{}, e)
				if err != nil {
					errs <- err
					return
				}
				exp := want[fmt.Sprintf("%s/%g", f, e)]
				for k := range got {
					if got[k] != exp[k] {
						errs <- fmt.Errorf("%s ebv=%g t=%g: got %+v want %+v", f, e, epochs[k], got[k], exp[k])
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
