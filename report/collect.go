package report

import (
	"fmt"

	"github.com/katalvlaran/snsed/model"
)

// Curve is one filter's light curve.
type Curve struct {
	Filter string
	Points []model.Magnitude
}

// Spectrum is one labelled SED slice.
type Spectrum struct {
	Label string
	Bins  []model.SpectrumBin
}

// Query fixes everything except filter and epoch.
type Query struct {
	Z     float64
	SN    model.SNParams
	Host  model.HostParams
	MWEBV float64
}

// LightCurves evaluates m for every filter at every epoch. An empty filter
// list means all registered filters.
func LightCurves(m *model.Model, filters []string, epochs []float64, q Query) ([]Curve, error) {
	if len(filters) == 0 {
		filters = m.FilterNames()
	}
	out := make([]Curve, 0, len(filters))
	for _, name := range filters {
		mags, err := m.Magnitudes(name, q.Z, epochs, q.SN, q.Host, q.MWEBV)
		if err != nil {
			return nil, fmt.Errorf("LightCurves %s: %w", name, err)
		}
		out = append(out, Curve{Filter: name, Points: mags})
	}
	return out, nil
}

// SEDSlices samples the model spectrum on the SED wavelength grid at each
// rest-frame phase.
func SEDSlices(m *model.Model, days []float64, q Query) ([]Spectrum, error) {
	lams := m.SED().Lams()
	lamObs := make([]float64, 0, lams.Len())
	for _, l := range lams.Nodes() {
		// rounding may push an edge node just outside the rest range
		if lo := l * (1 + q.Z); lams.Contains(lo / (1 + q.Z)) {
			lamObs = append(lamObs, lo)
		}
	}
	out := make([]Spectrum, 0, len(days))
	for _, d := range days {
		bins, err := m.Spectrum(q.Z, d*(1+q.Z), lamObs, q.SN, q.Host, q.MWEBV)
		if err != nil {
			return nil, fmt.Errorf("SEDSlices day %g: %w", d, err)
		}
		out = append(out, Spectrum{Label: fmt.Sprintf("day %+g", d), Bins: bins})
	}
	return out, nil
}

// Rows flattens curves into summary table rows, filter-major.
func Rows(curves []Curve) []Row {
	var rows []Row
	for _, c := range curves {
		for _, mg := range c.Points {
			rows = append(rows, Row{Filter: c.Filter, Mag: mg})
		}
	}
	return rows
}
