package report_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
	"github.com/katalvlaran/snsed/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// gaussModel peaks at day 0 with a flat spectrum on 2500..8000 Å.
func gaussModel(t *testing.T) *model.Model {
	t.Helper()
	days, err := grid.UniformAxis(-20, 2, 31)
	require.NoError(t, err)
	lams, err := grid.UniformAxis(2500, 50, 111)
	require.NoError(t, err)
	surf := make([]float64, days.Len()*lams.Len())
	for i := 0; i < days.Len(); i++ {
		g := math.Exp(-days.At(i) * days.At(i) / 200)
		for j := 0; j < lams.Len(); j++ {
			surf[i*lams.Len()+j] = g
		}
	}
	in := model.Inputs{
		Version:         "TEST.gauss",
		Days:            days,
		Lams:            lams,
		Surfaces:        [][]float64{surf},
		ColorLawVersion: colorlaw.Law1,
		ColorLaw:        colorlaw.DefaultParams(),
	}
	for _, b := range []struct {
		name   string
		lo, hi float64
	}{{"B", 3900, 4900}, {"V", 5000, 6000}} {
		f, err := filter.TopHat(b.name, b.name, "TEST", b.lo, b.hi, 10, 25)
		require.NoError(t, err)
		in.Filters = append(in.Filters, f)
	}
	m, err := model.New(in)
	require.NoError(t, err)
	return m
}

func TestLightCurves(t *testing.T) {
	m := gaussModel(t)
	q := report.Query{Z: 0.02, SN: model.SNParams{X0: 1e-4}}
	curves, err := report.LightCurves(m, nil, []float64{-10, 0, 10}, q)
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, "B", curves[0].Filter)
	require.Len(t, curves[0].Points, 3)
	assert.Less(t, curves[0].Points[1].Mag, curves[0].Points[0].Mag, "brighter at peak")

	rows := report.Rows(curves)
	assert.Len(t, rows, 6)
	assert.Equal(t, "V", rows[5].Filter)

	_, err = report.LightCurves(m, []string{"nope"}, []float64{0}, q)
	assert.ErrorIs(t, err, model.ErrUnknownFilter)
}

func TestLightCurvePNG(t *testing.T) {
	m := gaussModel(t)
	curves, err := report.LightCurves(m, nil, []float64{-10, -5, 0, 5, 10}, report.Query{SN: model.SNParams{X0: 1e-4}})
	require.NoError(t, err)

	img, err := report.LightCurvePNG("test", curves)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	undefined := []report.Curve{{Filter: "B", Points: []model.Magnitude{{Mag: model.MagUndefined, MagErr: model.MagUndefined}}}}
	_, err = report.LightCurvePNG("empty", undefined)
	assert.ErrorIs(t, err, report.ErrEmpty)
}

func TestSEDSlices(t *testing.T) {
	m := gaussModel(t)
	q := report.Query{Z: 0.1, SN: model.SNParams{X0: 1}}
	slices, err := report.SEDSlices(m, []float64{0, 10}, q)
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, "day +0", slices[0].Label)
	require.NotEmpty(t, slices[0].Bins)
	mid := slices[0].Bins[len(slices[0].Bins)/2]
	assert.InDelta(t, 1/1.1, mid.Flux, 1e-9)
	assert.Greater(t, mid.Flux, slices[1].Bins[len(slices[1].Bins)/2].Flux)

	img, err := report.SpectrumPNG("sed", slices)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = report.SpectrumPNG("none", nil)
	assert.ErrorIs(t, err, report.ErrEmpty)
}

func TestWritePDF(t *testing.T) {
	m := gaussModel(t)
	q := report.Query{SN: model.SNParams{X0: 1e-4}}
	curves, err := report.LightCurves(m, nil, []float64{-5, 0, 5}, q)
	require.NoError(t, err)
	img, err := report.LightCurvePNG("lc", curves)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "summary.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	err = report.WritePDF(f, report.Summary{
		Title:   "TEST.gauss",
		Lines:   []string{"z=0 x0=1e-4"},
		Rows:    report.Rows(curves),
		Figures: []report.Figure{{Name: "lc", PNG: img, Caption: "light curve"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	var buf bytes.Buffer
	err = report.WritePDF(&buf, report.Summary{Title: "bad", Figures: []report.Figure{{Name: "x", PNG: []byte("not a png")}}})
	assert.Error(t, err)
}
