package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/config"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
mask: 64
sed_interp: spline
errmap_interp: linear
abort_on_bad_value: false
color_disp_err: false
restlam_forcezeroflux: [1000, 2500]
magerr_floor: 0.01
mb_offset: 10.5
calib:
  - "MAGSHIFT: CFA3,CFA3S SDSS-r 0.01"
  - "# retired"
  - "WAVESHIFT: * SDSS-g 5"
synthetic:
  version: SYNTH.test
  days: {start: -20, step: 2, n: 31}
  lams: {start: 2000, step: 100, n: 73}
  peak: 2
  width: 10
  stretch: 0.5
  errmaps:
    VAR0: 0.01
    ERRSCALE: 1.2
  filters:
    - {name: SDSS-g, band: g, survey: SDSS, lo: 4000, hi: 5000, zp: 25}
    - {name: SDSS-r, band: r, survey: SDSS, lo: 5500, hi: 6800, step: 20, zp: 25}
plot:
  z: 0.05
  x0: 0.001
  from: -10
  to: 30
  step: 5
  sed_days: [0, 15]
  output: out.pdf
`

func TestLoad_Missing(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, c)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.MaskAbortLamRange, c.Mask)
	assert.Equal(t, "spline", c.SEDInterp)
	require.NotNil(t, c.AbortOnBadValue)
	assert.False(t, *c.AbortOnBadValue)
	require.NotNil(t, c.ColorDispErr)
	assert.False(t, *c.ColorDispErr)
	require.NotNil(t, c.MBOffset)
	assert.Equal(t, 10.5, *c.MBOffset)
	assert.Nil(t, c.PSDTolerance)
	require.NotNil(t, c.Synthetic)
	assert.Len(t, c.Synthetic.Filters, 2)
	require.NotNil(t, c.Plot)
	assert.Equal(t, []float64{0, 15}, c.Plot.SEDDays)

	opts, err := c.Options()
	require.NoError(t, err)
	// mask bit, two interp modes, abort flag, disp toggle, force-zero, floor, mB offset
	assert.Len(t, opts, 8)
}

func TestParse_Strict(t *testing.T) {
	_, err := config.Parse([]byte("mask: 4\nunknown_key: 1\n"))
	assert.Error(t, err)

	c, err := config.Parse(nil)
	require.NoError(t, err, "an empty document is a zero config")
	assert.Equal(t, config.Config{}, *c)
}

func TestOptions_Invalid(t *testing.T) {
	neg := -1.0
	cases := []struct {
		name string
		c    config.Config
	}{
		{"interp", config.Config{SEDInterp: "cubic"}},
		{"tolerance", config.Config{BadValueTolerance: -2}},
		{"disp max", config.Config{ColorDispMax: -1}},
		{"rv", config.Config{RVMW: -3.1}},
		{"filtercen order", config.Config{RestLamFilterCen: []float64{5000, 3000}}},
		{"forcezero length", config.Config{RestLamForceZero: []float64{1000}}},
		{"lamobs length", config.Config{MagErrLamObs: []float64{4000, 5000}}},
		{"floor", config.Config{MagErrFloor: -0.1}},
		{"psd", config.Config{PSDTolerance: &neg}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.c.Options()
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestCalib(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	entries, err := c.Calib()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, calib.MagShift, entries[0].Kind)
	assert.Equal(t, []string{"CFA3", "CFA3S"}, entries[0].Surveys)
	assert.Equal(t, calib.WaveShift, entries[1].Kind)
	assert.Equal(t, 5.0, entries[1].Shift)

	bad := config.Config{CalibrationShifts: []string{"MAGSHIFT: CFA3 SDSS-r"}}
	_, err = bad.Calib()
	assert.ErrorIs(t, err, calib.ErrConfig)
}

func TestSynthetic_Inputs(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	in, err := c.Synthetic.Inputs()
	require.NoError(t, err)

	assert.Equal(t, "SYNTH.test", in.Version)
	require.Len(t, in.Surfaces, 2)
	assert.Equal(t, 31*73, len(in.Surfaces[0]))
	assert.Contains(t, in.ErrMaps, errmap.Variance(0))
	assert.Contains(t, in.ErrMaps, errmap.ErrScale())
	require.Len(t, in.Filters, 2)
	assert.Equal(t, "SDSS-r", in.Filters[1].Name)

	opts, err := c.Options()
	require.NoError(t, err)
	m, err := model.New(in, opts...)
	require.NoError(t, err)

	// flat spectrum at peak: 2 × 1000 Å, and x1 = 0 drops surface 1
	res, err := m.Integrate("SDSS-g", 0, 0, model.SNParams{X0: 1}, model.HostParams{}, 0, false)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, res.Flux, 1e-6)
}

func TestSynthetic_Invalid(t *testing.T) {
	var nilSynth *config.Synthetic
	_, err := nilSynth.Inputs()
	assert.ErrorIs(t, err, config.ErrInvalid)

	s := config.Synthetic{
		Days:    config.AxisSpec{Start: 0, Step: 1, N: 5},
		Lams:    config.AxisSpec{Start: 3000, Step: 100, N: 5},
		ErrMaps: map[string]float64{"VAR9": 1},
	}
	_, err = s.Inputs()
	assert.ErrorIs(t, err, errmap.ErrBadMapID)

	s.ErrMaps = nil
	s.Filters = []config.FilterSpec{{Name: "x", Lo: 3500, Hi: 3400, ZeroPoint: 25}}
	_, err = s.Inputs()
	assert.Error(t, err)
}

func TestPlot_Epochs(t *testing.T) {
	p := &config.Plot{From: -10, To: 30, Step: 5}
	ep, err := p.Epochs()
	require.NoError(t, err)
	assert.Equal(t, []float64{-10, -5, 0, 5, 10, 15, 20, 25, 30}, ep)
	assert.Equal(t, 1.0, p.SN().X0)

	_, err = (&config.Plot{From: 0, To: 10}).Epochs()
	assert.ErrorIs(t, err, config.ErrInvalid)
}
