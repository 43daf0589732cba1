package model

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/sed"
)

// Inputs is the already-parsed training data of one model version.
type Inputs struct {
	Version string // model identifier, e.g. "SALT2.JLA-B14"

	// SED flux surfaces on Days × Lams, day-major. Surface 0 is nominal.
	Days, Lams grid.Axis
	Surfaces   [][]float64

	// Error-map training triples per map.
	ErrMaps map[errmap.MapID][]errmap.Point

	ColorLawVersion colorlaw.Version
	ColorLaw        colorlaw.Params

	Calib   []calib.Entry
	Filters []*filter.Transmission
}

// SNParams are the per-supernova model parameters.
type SNParams struct {
	X0   float64 // flux normalization
	X1   float64 // first shape parameter (stretch)
	X2   float64 // optional second shape parameter
	C    float64 // color
	CErr float64 // color uncertainty, enters the covariance only
}

// HostParams describe host-galaxy dust.
type HostParams struct {
	RV float64
	AV float64
}

// Model is one fully initialized model instance. After New it is read-only
// except for the Milky-Way extinction cache and is safe for concurrent use.
type Model struct {
	version string
	opts    Options
	log     *slog.Logger

	sed      *sed.Table
	maps     *errmap.Store
	badRange []errmap.MapID // maps narrower than the SED range
	law      *colorlaw.Law
	colors   *colorlaw.Table
	disp     *colorlaw.Dispersion // nil without a color-dispersion map
	shifts   *calib.Table
	filters  map[string]*filter.Transmission
}

// New builds every table from in. Any failure aborts the whole build.
//
// Stage 1 (SED): flux surfaces on the shared grid.
// Stage 2 (Error maps): load in MapID order; bad values abort or clamp.
// Stage 3 (Color law): exact law plus the color × λ correction table.
// Stage 4 (Calibration, filters): shift table and filter registry.
func New(in Inputs, opts ...Option) (*Model, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	m := &Model{
		version: in.Version,
		opts:    o,
		log:     o.logger.With(slog.String("component", "model"), slog.String("version", in.Version)),
		filters: make(map[string]*filter.Transmission, len(in.Filters)),
	}

	var err error
	sopts := sed.Options{
		Grid: grid.Options{Mode: o.sedMode, Edge: grid.EdgeClamp, MaxNodes: o.maxCells},
		RV:   o.rvMW,
	}
	if m.sed, err = sed.NewTable(in.Days, in.Lams, in.Surfaces, sopts); err != nil {
		return nil, wrap("New: sed", err)
	}

	mopts := []errmap.Option{
		errmap.WithInterp(o.mapMode),
		errmap.WithAbortOnBadValue(o.abortOnBad),
		errmap.WithTolerance(o.tolerance),
		errmap.WithMaxMaps(o.maxMaps),
		errmap.WithMaxCells(o.maxCells),
	}
	if o.abortLamRange {
		mopts = append(mopts, errmap.WithEdge(grid.EdgeAbort))
	}
	m.maps = errmap.NewStore(mopts...)
	ids := make([]errmap.MapID, 0, len(in.ErrMaps))
	for id := range in.ErrMaps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	for _, id := range ids {
		if (id.Kind == errmap.KindVariance && id.I >= m.sed.Surfaces()) ||
			(id.Kind == errmap.KindCovariance && id.J >= m.sed.Surfaces()) {
			return nil, wrap("New: errmap", fmt.Errorf("%s with %d surfaces: %w", id, m.sed.Surfaces(), errmap.ErrBadMapID))
		}
		if err = m.maps.Load(id, in.ErrMaps[id]); err != nil {
			return nil, wrap("New: errmap", err)
		}
		m.checkMapRange(id)
	}
	if m.maps.Has(errmap.ColorDisp()) {
		m.disp = colorlaw.NewDispersion(func(lam float64) (float64, error) {
			return m.queryMap(errmap.ColorDisp(), 0, lam)
		}, o.colorDispMax)
	}

	if m.law, err = colorlaw.New(in.ColorLawVersion, in.ColorLaw); err != nil {
		return nil, wrap("New: colorlaw", err)
	}
	if m.colors, err = colorlaw.NewTable(m.law, colorlaw.DefaultColors(), in.Lams); err != nil {
		return nil, wrap("New: colorlaw table", err)
	}

	if m.shifts, err = calib.NewTable(in.Calib); err != nil {
		return nil, wrap("New: calib", err)
	}
	for _, f := range in.Filters {
		if f == nil {
			return nil, wrap("New: filters", fmt.Errorf("nil filter: %w", ErrConfig))
		}
		if _, dup := m.filters[f.Name]; dup {
			return nil, wrap("New: filters", fmt.Errorf("duplicate filter %q: %w", f.Name, ErrConfig))
		}
		m.filters[f.Name] = f
	}

	if o.verbose {
		m.logLoadSummary()
	}

	return m, nil
}

// checkMapRange records map id if it does not span the SED phase and
// wavelength range. Such maps clamp at their edge, or fail queries outside
// their wavelengths under the abort-on-lamrange policy.
func (m *Model) checkMapRange(id errmap.MapID) {
	mp, ok := m.maps.Map(id)
	if !ok {
		return
	}
	days, lams := m.sed.Days(), m.sed.Lams()
	md, ml := mp.Days(), mp.Lams()
	if md.Min() <= days.Min() && md.Max() >= days.Max() && ml.Min() <= lams.Min() && ml.Max() >= lams.Max() {
		return
	}
	m.badRange = append(m.badRange, id)
	if m.opts.verbose {
		m.log.Warn("error map does not cover the sed range",
			slog.String("map", id.String()),
			slog.Float64("day_min", md.Min()), slog.Float64("day_max", md.Max()),
			slog.Float64("lam_min", ml.Min()), slog.Float64("lam_max", ml.Max()))
	}
}

func (m *Model) logLoadSummary() {
	lams := m.sed.Lams()
	days := m.sed.Days()
	m.log.Info("sed table built",
		slog.Int("surfaces", m.sed.Surfaces()),
		slog.Int("ndays", days.Len()), slog.Float64("day_min", days.Min()), slog.Float64("day_max", days.Max()),
		slog.Int("nlams", lams.Len()), slog.Float64("lam_min", lams.Min()), slog.Float64("lam_max", lams.Max()),
		slog.String("interp", m.opts.sedMode.String()))
	for _, d := range m.maps.Summary() {
		m.log.Info("error map loaded",
			slog.String("map", d.ID.String()),
			slog.Int("nday", d.NDay), slog.Int("nlam", d.NLam),
			slog.Int("nan", d.NaN), slog.Int("crazy", d.Crazy),
			slog.Float64("valid_min", d.Valid[0]), slog.Float64("valid_max", d.Valid[1]),
			slog.Float64("found_min", d.Found[0]), slog.Float64("found_max", d.Found[1]))
	}
	m.log.Info("color law ready",
		slog.Int("law", int(m.law.Version())),
		slog.Int("ncoeff", len(m.law.Params().Coeffs)),
		slog.Int("calib_shifts", m.shifts.Len()),
		slog.Int("filters", len(m.filters)))
}

// Version returns the model identifier.
func (m *Model) Version() string { return m.version }

// SED returns the flux table.
func (m *Model) SED() *sed.Table { return m.sed }

// ErrMaps returns the error-map store.
func (m *Model) ErrMaps() *errmap.Store { return m.maps }

// ColorLaw returns the exact color law.
func (m *Model) ColorLaw() *colorlaw.Law { return m.law }

// Calib returns the calibration-shift table.
func (m *Model) Calib() *calib.Table { return m.shifts }

// Filter returns the registered filter name.
func (m *Model) Filter(name string) (*filter.Transmission, bool) {
	f, ok := m.filters[name]
	return f, ok
}

// FilterNames returns the registered filter names, sorted.
func (m *Model) FilterNames() []string {
	names := make([]string, 0, len(m.filters))
	for n := range m.filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MBFromX0 returns the rest-frame B magnitude of normalization x0.
func (m *Model) MBFromX0(x0 float64) float64 {
	return m.opts.mbOffset - 2.5*math.Log10(x0)
}

// X0FromMB is the inverse of MBFromX0.
func (m *Model) X0FromMB(mB float64) float64 {
	return math.Pow(10, -0.4*(mB-m.opts.mbOffset))
}

// X0Calc returns the x0 of a supernova at distance modulus dlmag with
// stretch x1 and color c, from the standardization
//
//	mB = RefAbsMag + dlmag − alpha·x1 + beta·c.
func (m *Model) X0Calc(alpha, beta, x1, c, dlmag float64) float64 {
	return m.X0FromMB(RefAbsMag + dlmag - alpha*x1 + beta*c)
}

// Diagnostics is the accounting surfaced to the caller after load and queries.
type Diagnostics struct {
	Version      string
	Maps         []errmap.Diagnostics
	BadValues    int            // bad training values retained after clamping
	DispCapped   int64          // color-dispersion lookups that hit the cap
	BadRange     []errmap.MapID // maps that do not span the SED phase and wavelength range
	MWEBV        float64
	MWGeneration uint64
}

// Diagnostics returns a snapshot of the model accounting.
func (m *Model) Diagnostics() Diagnostics {
	d := Diagnostics{
		Version:   m.version,
		Maps:      m.maps.Summary(),
		BadValues: m.maps.BadValues(),
		BadRange:  append([]errmap.MapID(nil), m.badRange...),
	}
	if m.disp != nil {
		d.DispCapped = m.disp.Capped()
	}
	d.MWEBV, d.MWGeneration = m.sed.MWState()
	return d
}
