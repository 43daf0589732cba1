package model_test

import (
	"testing"

	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
)

func BenchmarkIntegrate(b *testing.B) {
	for _, mode := range []grid.Mode{grid.Linear, grid.Spline} {
		b.Run(mode.String(), func(b *testing.B) {
			m := newModel(b, mapInputs(b), model.WithSEDInterp(mode), model.WithErrMapInterp(mode))
			sn := model.SNParams{X0: 1e-3, X1: 0.3, C: 0.05}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.Integrate("SDSS-r", 0.3, 12, sn, model.HostParams{}, 0.05, false); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCovariance(b *testing.B) {
	m := newModel(b, mapInputs(b))
	sn := model.SNParams{X0: 1e-3, X1: 0.3, C: 0.05, CErr: 0.03}
	var obs []model.Observation
	for _, f := range []string{"SDSS-g", "SDSS-r"} {
		for t := -10.0; t <= 30; t += 4 {
			obs = append(obs, model.Observation{Filter: f, Tobs: t})
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Covariance(obs, 0.3, sn, model.HostParams{}, 0.05); err != nil {
			b.Fatal(err)
		}
	}
}
