// Package config reads the YAML run configuration of a model: option mask,
// option values, calibration-shift lines and an optional synthetic model
// definition used by the plotting tool.
//
//	mask: 64
//	sed_interp: spline
//	restlam_forcezeroflux: [1000, 2500]
//	calib:
//	  - "MAGSHIFT: CFA3,CFA3S SDSS-r 0.01"
//	synthetic:
//	  days: {start: -20, step: 2, n: 41}
//	  ...
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
)

// ErrInvalid marks a configuration value that cannot be turned into an option.
var ErrInvalid = errors.New("config: invalid value")

// Config is the top-level YAML document.
type Config struct {
	Mask int `yaml:"mask"`

	SEDInterp    string `yaml:"sed_interp"`    // "linear" | "spline"
	ErrMapInterp string `yaml:"errmap_interp"` // "linear" | "spline"

	AbortOnBadValue   *bool `yaml:"abort_on_bad_value"`
	BadValueTolerance int   `yaml:"bad_value_tolerance"`

	ColorDispErr *bool   `yaml:"color_disp_err"` // nil keeps the default (on)
	ColorDispMax float64 `yaml:"color_disp_max"`
	RVMW         float64 `yaml:"rv_mw"`

	RestLamFilterCen []float64 `yaml:"restlam_filtercen"`     // [lo, hi]
	RestLamForceZero []float64 `yaml:"restlam_forcezeroflux"` // [lo, hi]
	MagErrFloor      float64   `yaml:"magerr_floor"`
	MagErrLamObs     []float64 `yaml:"magerr_lamobs"`         // [magerr, lo, hi]
	MagErrLamRest    []float64 `yaml:"magerr_lamrest"`        // [magerr, lo, hi]
	WaveShiftErr     float64   `yaml:"wave_shift_err"`
	MagOffset        float64   `yaml:"mag_offset"`
	ColorOffset      float64   `yaml:"color_offset"`
	MBOffset         *float64  `yaml:"mb_offset"`
	PSDTolerance     *float64  `yaml:"psd_tolerance"`
	MaxErrMaps       int       `yaml:"max_errmaps"`
	MaxCells         int       `yaml:"max_cells"`
	Verbose          bool      `yaml:"verbose"`

	CalibrationShifts []string   `yaml:"calib"`
	Synthetic         *Synthetic `yaml:"synthetic"`
	Plot              *Plot      `yaml:"plot"`
}

// Load reads path. A missing file returns (nil, nil).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML document; unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &c, nil
}

// Options converts the configuration into model options. The mask bits are
// applied first, explicit keys after. A nil Config yields no options.
func (c *Config) Options() ([]model.Option, error) {
	if c == nil {
		return nil, nil
	}
	opts := model.OptionsFromMask(c.Mask)

	for _, m := range []struct {
		key, val string
		fn       func(grid.Mode) model.Option
	}{
		{"sed_interp", c.SEDInterp, model.WithSEDInterp},
		{"errmap_interp", c.ErrMapInterp, model.WithErrMapInterp},
	} {
		if m.val == "" {
			continue
		}
		mode, err := parseMode(m.val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.key, err)
		}
		opts = append(opts, m.fn(mode))
	}

	if c.AbortOnBadValue != nil {
		opts = append(opts, model.WithAbortOnBadValue(*c.AbortOnBadValue))
	}
	if c.BadValueTolerance < 0 {
		return nil, fmt.Errorf("bad_value_tolerance=%d: %w", c.BadValueTolerance, ErrInvalid)
	}
	if c.BadValueTolerance > 0 {
		opts = append(opts, model.WithBadValueTolerance(c.BadValueTolerance))
	}
	if c.ColorDispErr != nil {
		opts = append(opts, model.WithColorDispErr(*c.ColorDispErr))
	}
	if c.ColorDispMax < 0 {
		return nil, fmt.Errorf("color_disp_max=%g: %w", c.ColorDispMax, ErrInvalid)
	}
	if c.ColorDispMax > 0 {
		opts = append(opts, model.WithColorDispMax(c.ColorDispMax))
	}
	if c.RVMW < 0 {
		return nil, fmt.Errorf("rv_mw=%g: %w", c.RVMW, ErrInvalid)
	}
	if c.RVMW > 0 {
		opts = append(opts, model.WithRVMW(c.RVMW))
	}

	if r, err := span("restlam_filtercen", c.RestLamFilterCen, 2); err != nil {
		return nil, err
	} else if r != nil {
		opts = append(opts, model.WithRestLamFilterCen(r[0], r[1]))
	}
	if r, err := span("restlam_forcezeroflux", c.RestLamForceZero, 2); err != nil {
		return nil, err
	} else if r != nil {
		opts = append(opts, model.WithForceZeroFlux(r[0], r[1]))
	}
	if r, err := span("magerr_lamobs", c.MagErrLamObs, 3); err != nil {
		return nil, err
	} else if r != nil {
		opts = append(opts, model.WithMagErrLamObs(r[0], r[1], r[2]))
	}
	if r, err := span("magerr_lamrest", c.MagErrLamRest, 3); err != nil {
		return nil, err
	} else if r != nil {
		opts = append(opts, model.WithMagErrLamRest(r[0], r[1], r[2]))
	}

	if c.MagErrFloor < 0 || c.WaveShiftErr < 0 || c.MaxErrMaps < 0 || c.MaxCells < 0 {
		return nil, fmt.Errorf("negative magerr_floor, wave_shift_err, max_errmaps or max_cells: %w", ErrInvalid)
	}
	if c.MagErrFloor > 0 {
		opts = append(opts, model.WithMagErrFloor(c.MagErrFloor))
	}
	if c.WaveShiftErr > 0 {
		opts = append(opts, model.WithWaveShiftErr(c.WaveShiftErr))
	}
	if c.MagOffset != 0 {
		opts = append(opts, model.WithMagOffset(c.MagOffset))
	}
	if c.ColorOffset != 0 {
		opts = append(opts, model.WithColorOffset(c.ColorOffset))
	}
	if c.MBOffset != nil {
		opts = append(opts, model.WithMBOffset(*c.MBOffset))
	}
	if c.PSDTolerance != nil {
		if *c.PSDTolerance < 0 {
			return nil, fmt.Errorf("psd_tolerance=%g: %w", *c.PSDTolerance, ErrInvalid)
		}
		opts = append(opts, model.WithPSDTolerance(*c.PSDTolerance))
	}
	if c.MaxErrMaps > 0 {
		opts = append(opts, model.WithMaxErrMaps(c.MaxErrMaps))
	}
	if c.MaxCells > 0 {
		opts = append(opts, model.WithMaxCells(c.MaxCells))
	}
	if c.Verbose {
		opts = append(opts, model.WithVerbose(true))
	}

	return opts, nil
}

// Calib parses the calibration-shift lines.
func (c *Config) Calib() ([]calib.Entry, error) {
	if c == nil {
		return nil, nil
	}
	t, err := calib.ParseLines(c.CalibrationShifts)
	if err != nil {
		return nil, err
	}
	return t.Entries(), nil
}

func parseMode(s string) (grid.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "1":
		return grid.Linear, nil
	case "spline", "2":
		return grid.Spline, nil
	}
	return 0, fmt.Errorf("interp %q: %w", s, ErrInvalid)
}

// span checks an optional fixed-length list whose last two values form an
// increasing [lo, hi] range. An empty list returns nil.
func span(key string, v []float64, n int) ([]float64, error) {
	if len(v) == 0 {
		return nil, nil
	}
	if len(v) != n || !(v[n-2] < v[n-1]) {
		return nil, fmt.Errorf("%s=%v: want %d values ending in lo < hi: %w", key, v, n, ErrInvalid)
	}
	return v, nil
}
