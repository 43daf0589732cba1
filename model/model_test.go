package model_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BadTrainingData(t *testing.T) {
	in := flatInputs(t, 2)
	pts := constMap(0.01)
	pts[2].Value = math.NaN()
	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(0): pts}

	_, err := model.New(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBadTrainingData)
	var bad *errmap.BadValueError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, 1, bad.NaN)

	m, err := model.New(in, model.WithAbortOnBadValue(false))
	require.NoError(t, err)
	d := m.Diagnostics()
	assert.Equal(t, 1, d.BadValues)
	require.Len(t, d.Maps, 1)
	assert.Equal(t, 1, d.Maps[0].NaN)

	_, err = model.New(in, model.WithBadValueTolerance(1))
	assert.NoError(t, err, "one bad value within tolerance")
}

func TestNew_ConfigErrors(t *testing.T) {
	in := flatInputs(t, 2)
	in.ColorLaw.RefB, in.ColorLaw.RefV = in.ColorLaw.RefV, in.ColorLaw.RefB
	_, err := model.New(in)
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorIs(t, err, colorlaw.ErrConfig)

	in = flatInputs(t, 2)
	in.Calib = []calib.Entry{{Kind: calib.MagShift, Filter: "g"}}
	_, err = model.New(in)
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorIs(t, err, calib.ErrConfig)

	in = flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(1): constMap(0.01)}
	_, err = model.New(in)
	assert.ErrorIs(t, err, model.ErrConfig, "variance map for a missing surface")

	in = flatInputs(t, 2)
	in.Filters = append(in.Filters, in.Filters[0])
	_, err = model.New(in)
	assert.ErrorIs(t, err, model.ErrConfig, "duplicate filter")

	in = flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{
		errmap.Variance(0): constMap(0.01),
		errmap.ErrScale():  constMap(1),
	}
	_, err = model.New(in, model.WithMaxErrMaps(1))
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorIs(t, err, errmap.ErrCapacity)
}

func TestOptionsFromMask(t *testing.T) {
	assert.Empty(t, model.OptionsFromMask(0))
	all := model.MaskDisableMagShift | model.MaskDisableWaveShift | model.MaskAbortLamRange | model.MaskVerbose
	assert.Len(t, model.OptionsFromMask(all), 4)
	assert.Len(t, model.OptionsFromMask(model.MaskAbortLamRange|2), 1, "unknown bits ignored")

	in := flatInputs(t, 2)
	in.Calib = []calib.Entry{{Kind: calib.MagShift, Surveys: []string{"SDSS"}, Filter: "SDSS-g", Shift: 0.1}}
	strict := newModel(t, in, model.OptionsFromMask(model.MaskAbortLamRange|model.MaskDisableMagShift)...)
	_, err := strict.Integrate("SDSS-g", 1.1, 0, model.SNParams{X0: 1}, model.HostParams{}, 0, false)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	mags, err := strict.Magnitudes("SDSS-g", 0, []float64{0}, model.SNParams{X0: 1}, model.HostParams{}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 25-2.5*math.Log10(2000), mags[0].Mag, 1e-9, "mag shift disabled")
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { model.WithSEDInterp(grid.Mode(7)) })
	assert.Panics(t, func() { model.WithBadValueTolerance(-1) })
	assert.Panics(t, func() { model.WithForceZeroFlux(2000, 1000) })
	assert.Panics(t, func() { model.WithColorDispMax(0) })
	assert.Panics(t, func() { model.WithLogger(nil) })
}

func TestMBFromX0(t *testing.T) {
	m := newModel(t, flatInputs(t, 1))
	assert.InDelta(t, 10.635, m.MBFromX0(1), 1e-12)
	assert.InDelta(t, 10.635+5, m.MBFromX0(0.01), 1e-12)
	assert.InDelta(t, 3.2e-5, m.X0FromMB(m.MBFromX0(3.2e-5)), 1e-17)

	off := newModel(t, flatInputs(t, 1), model.WithMBOffset(10))
	assert.InDelta(t, 10.0, off.MBFromX0(1), 1e-12)
}

func TestX0Calc(t *testing.T) {
	m := newModel(t, flatInputs(t, 1))
	// mB = -19.365 + 40 = 20.635 = 10.635 + 10
	assert.InDelta(t, 1e-4, m.X0Calc(0.14, 3.1, 0, 0, 40), 1e-16)

	x0 := m.X0Calc(0.14, 3.1, 1.2, -0.05, 38.2)
	wantMB := model.RefAbsMag + 38.2 - 0.14*1.2 + 3.1*(-0.05)
	assert.InDelta(t, wantMB, m.MBFromX0(x0), 1e-12)
	assert.Greater(t, x0, m.X0Calc(0.14, 3.1, 0, 0, 38.2), "stretch brightens")
	assert.Less(t, m.X0Calc(0.14, 3.1, 0, 0.1, 38.2), m.X0Calc(0.14, 3.1, 0, 0, 38.2), "red is fainter")
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	in := flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(0): constMap(0.01)}
	m := newModel(t, in, model.WithVerbose(true), model.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	out := buf.String()
	assert.Contains(t, out, "error map loaded")
	assert.Contains(t, out, "map=VAR0")
	assert.Contains(t, out, "version=TEST.flat")

	buf.Reset()
	_, err := m.Integrate("SDSS-g", 0, 0, model.SNParams{X0: 1}, model.HostParams{}, 0.05, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mw extinction table rebuilt")

	quiet := newModel(t, in, model.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	buf.Reset()
	_, err = quiet.Integrate("SDSS-g", 0, 0, model.SNParams{X0: 1}, model.HostParams{}, 0.05, false)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

// narrowMap spans the SED phases but only 4000..5000 Å.
func narrowMap(v float64) []errmap.Point {
	var pts []errmap.Point
	for _, d := range []float64{-20, 40} {
		for _, l := range []float64{4000, 5000} {
			pts = append(pts, errmap.Point{Day: d, Lam: l, Value: v})
		}
	}
	return pts
}

func TestErrMapRange(t *testing.T) {
	in := flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{
		errmap.Variance(0): narrowMap(0.01),
		errmap.ErrScale():  constMap(1),
	}
	sn := model.SNParams{X0: 1}

	m := newModel(t, in)
	assert.Equal(t, []errmap.MapID{errmap.Variance(0)}, m.Diagnostics().BadRange)
	mags, err := m.Magnitudes("SDSS-r", 0, []float64{0}, sn, model.HostParams{}, 0)
	require.NoError(t, err, "clamped at the map edge")
	assert.True(t, mags[0].Defined())

	strict := newModel(t, in, model.WithAbortOnLamRange(true))
	_, err = strict.Magnitudes("SDSS-r", 0, []float64{0}, sn, model.HostParams{}, 0)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	assert.ErrorIs(t, err, grid.ErrOutOfRange)
	_, err = strict.Covariance([]model.Observation{{Filter: "SDSS-r", Tobs: 0}}, 0, sn, model.HostParams{}, 0)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = strict.Magnitudes("SDSS-g", 0, []float64{0, 80}, sn, model.HostParams{}, 0)
	assert.NoError(t, err, "inside the map wavelengths; late phases clamp")

	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(0): constMap(0.01)}
	assert.Empty(t, newModel(t, in).Diagnostics().BadRange)
}

func TestErrMapRange_Verbose(t *testing.T) {
	var buf bytes.Buffer
	in := flatInputs(t, 2)
	in.ErrMaps = map[errmap.MapID][]errmap.Point{errmap.Variance(0): narrowMap(0.01)}
	newModel(t, in, model.WithVerbose(true), model.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	assert.Contains(t, buf.String(), "error map does not cover the sed range")
}
