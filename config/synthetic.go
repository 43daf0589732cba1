package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
)

// Reference wavelength of the synthetic power law, Å.
const synthRefLam = 4000.0

// AxisSpec is a uniform axis: n nodes from start spaced by step.
type AxisSpec struct {
	Start float64 `yaml:"start"`
	Step  float64 `yaml:"step"`
	N     int     `yaml:"n"`
}

// Axis builds the grid axis.
func (a AxisSpec) Axis() (grid.Axis, error) { return grid.UniformAxis(a.Start, a.Step, a.N) }

// FilterSpec is a top-hat transmission curve.
type FilterSpec struct {
	Name      string  `yaml:"name"`
	Band      string  `yaml:"band"`
	Survey    string  `yaml:"survey"`
	Lo        float64 `yaml:"lo"`
	Hi        float64 `yaml:"hi"`
	Step      float64 `yaml:"step"`
	ZeroPoint float64 `yaml:"zp"`
}

// Synthetic describes an analytic model used for smoke runs and plots.
// Surface 0 is a Gaussian in phase times a power law in wavelength,
//
//	S0(t, λ) = peak · exp(-t²/2w²) · (λ/4000)^slope
//
// and surface 1 (present when stretch != 0) is its phase-odd partner
// stretch · (t/w) · S0(t, λ).
type Synthetic struct {
	Version string   `yaml:"version"`
	Days    AxisSpec `yaml:"days"`
	Lams    AxisSpec `yaml:"lams"`
	Peak    float64  `yaml:"peak"`
	Width   float64  `yaml:"width"`
	Slope   float64  `yaml:"slope"`
	Stretch float64  `yaml:"stretch"`

	ColorLawVersion *int      `yaml:"color_law_version"`
	ColorLaw        []float64 `yaml:"color_law"` // [refB, refV, lamMin, lamMax, npoly, p...]

	// ErrMaps maps a map name (VAR0, COVAR01, ERRSCALE, COLORDISP) to a
	// constant value over the whole SED range.
	ErrMaps map[string]float64 `yaml:"errmaps"`
	Filters []FilterSpec       `yaml:"filters"`
}

// Inputs builds the model inputs.
func (s *Synthetic) Inputs() (model.Inputs, error) {
	if s == nil {
		return model.Inputs{}, fmt.Errorf("synthetic: missing: %w", ErrInvalid)
	}
	days, err := s.Days.Axis()
	if err != nil {
		return model.Inputs{}, fmt.Errorf("synthetic.days: %w", err)
	}
	lams, err := s.Lams.Axis()
	if err != nil {
		return model.Inputs{}, fmt.Errorf("synthetic.lams: %w", err)
	}
	peak, width := s.Peak, s.Width
	if peak == 0 {
		peak = 1
	}
	if width == 0 {
		width = 10
	}
	if width < 0 {
		return model.Inputs{}, fmt.Errorf("synthetic.width=%g: %w", width, ErrInvalid)
	}

	s0 := make([]float64, days.Len()*lams.Len())
	var s1 []float64
	if s.Stretch != 0 {
		s1 = make([]float64, len(s0))
	}
	for i := 0; i < days.Len(); i++ {
		t := days.At(i)
		g := peak * math.Exp(-t*t/(2*width*width))
		for j := 0; j < lams.Len(); j++ {
			k := i*lams.Len() + j
			s0[k] = g * math.Pow(lams.At(j)/synthRefLam, s.Slope)
			if s1 != nil {
				s1[k] = s.Stretch * t / width * s0[k]
			}
		}
	}
	surfaces := [][]float64{s0}
	if s1 != nil {
		surfaces = append(surfaces, s1)
	}

	in := model.Inputs{
		Version:         s.Version,
		Days:            days,
		Lams:            lams,
		Surfaces:        surfaces,
		ColorLawVersion: colorlaw.Law1,
		ColorLaw:        colorlaw.DefaultParams(),
	}
	if in.Version == "" {
		in.Version = "SYNTHETIC"
	}
	if s.ColorLawVersion != nil {
		in.ColorLawVersion = colorlaw.Version(*s.ColorLawVersion)
	}
	if len(s.ColorLaw) > 0 {
		if in.ColorLaw, err = colorlaw.ParseVector(s.ColorLaw); err != nil {
			return model.Inputs{}, fmt.Errorf("synthetic.color_law: %w", err)
		}
	}

	if len(s.ErrMaps) > 0 {
		in.ErrMaps = make(map[errmap.MapID][]errmap.Point, len(s.ErrMaps))
		names := make([]string, 0, len(s.ErrMaps))
		for name := range s.ErrMaps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			id, err := errmap.ParseMapID(name)
			if err != nil {
				return model.Inputs{}, fmt.Errorf("synthetic.errmaps: %w", err)
			}
			in.ErrMaps[id] = constantMap(days, lams, s.ErrMaps[name])
		}
	}

	for i, fs := range s.Filters {
		step := fs.Step
		if step == 0 {
			step = 10
		}
		f, err := filter.TopHat(fs.Name, fs.Band, fs.Survey, fs.Lo, fs.Hi, step, fs.ZeroPoint)
		if err != nil {
			return model.Inputs{}, fmt.Errorf("synthetic.filters[%d] %q: %w", i, fs.Name, err)
		}
		in.Filters = append(in.Filters, f)
	}
	return in, nil
}

// constantMap covers the corners of the SED grid with v.
func constantMap(days, lams grid.Axis, v float64) []errmap.Point {
	pts := make([]errmap.Point, 0, 4)
	for _, d := range []float64{days.Min(), days.Max()} {
		for _, l := range []float64{lams.Min(), lams.Max()} {
			pts = append(pts, errmap.Point{Day: d, Lam: l, Value: v})
		}
	}
	return pts
}

// Plot selects what the plotting tool draws.
type Plot struct {
	Z     float64 `yaml:"z"`
	MWEBV float64 `yaml:"mwebv"`

	X0   float64 `yaml:"x0"`
	X1   float64 `yaml:"x1"`
	X2   float64 `yaml:"x2"`
	C    float64 `yaml:"c"`
	CErr float64 `yaml:"cerr"`

	HostRV float64 `yaml:"host_rv"`
	HostAV float64 `yaml:"host_av"`

	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`

	Filters []string  `yaml:"filters"`   // empty: every filter
	SEDDays []float64 `yaml:"sed_days"`  // rest-frame phases of the SED panel
	Output  string    `yaml:"output"`    // PDF path
	Dir     string    `yaml:"image_dir"` // PNG directory
}

// SN returns the supernova parameters; a zero X0 becomes 1.
func (p *Plot) SN() model.SNParams {
	x0 := p.X0
	if x0 == 0 {
		x0 = 1
	}
	return model.SNParams{X0: x0, X1: p.X1, X2: p.X2, C: p.C, CErr: p.CErr}
}

// Host returns the host-dust parameters.
func (p *Plot) Host() model.HostParams { return model.HostParams{RV: p.HostRV, AV: p.HostAV} }

// Epochs lists the observer-frame epochs From, From+Step, ... up to To.
func (p *Plot) Epochs() ([]float64, error) {
	if !(p.Step > 0) || p.To < p.From {
		return nil, fmt.Errorf("plot: from=%g to=%g step=%g: %w", p.From, p.To, p.Step, ErrInvalid)
	}
	n := int(math.Floor((p.To-p.From)/p.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = p.From + float64(i)*p.Step
	}
	return out, nil
}
