package model_test

import (
	"fmt"

	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/model"
)

// ExampleModel_Integrate integrates a flat SED through a top-hat filter.
func ExampleModel_Integrate() {
	days, _ := grid.UniformAxis(-20, 10, 7)
	lams, _ := grid.UniformAxis(2000, 500, 15)
	flat := make([]float64, days.Len()*lams.Len())
	for i := range flat {
		flat[i] = 3
	}
	g, _ := filter.TopHat("SDSS-g", "g", "SDSS", 4000, 5000, 10, 25)

	m, err := model.New(model.Inputs{
		Version:         "EXAMPLE",
		Days:            days,
		Lams:            lams,
		Surfaces:        [][]float64{flat},
		ColorLawVersion: colorlaw.Law1,
		ColorLaw:        colorlaw.DefaultParams(),
		Filters:         []*filter.Transmission{g},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	res, _ := m.Integrate("SDSS-g", 0, 0, model.SNParams{X0: 1}, model.HostParams{}, 0, false)
	mags, _ := m.Magnitudes("SDSS-g", 0, []float64{0}, model.SNParams{X0: 1}, model.HostParams{}, 0)
	fmt.Printf("flux=%.1f mag=%.3f\n", res.Flux, mags[0].Mag)

	// Output:
	// flux=3000.0 mag=16.307
}
