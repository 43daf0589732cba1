// Package snsed evaluates parametrized supernova spectral-energy-distribution
// models of the SALT2 family: tabulated rest-frame flux surfaces, error maps
// and a polynomial color law turned into observed-frame fluxes, magnitudes,
// magnitude errors and magnitude covariance matrices.
//
// Everything is organized under subpackages:
//
//	grid/     1D and 2D table interpolation (linear or cached cubic spline)
//	errmap/   variance, covariance, error-scale and color-dispersion maps
//	colorlaw/ color-law polynomial, derivative and correction table
//	sed/      flux surfaces and Milky-Way extinction cache
//	filter/   transmission curves and trapezoidal quadrature
//	calib/    survey/filter magnitude and wavelength shifts
//	model/    the model instance: Integrate, Magnitudes, Covariance, Spectrum
//	config/   YAML run configuration and synthetic model definitions
//	report/   light-curve and SED plots, PDF summaries
//
// Quick start:
//
//	m, err := model.New(inputs, model.WithSEDInterp(grid.Spline))
//	if err != nil {
//		log.Fatal(err)
//	}
//	mags, err := m.Magnitudes("SDSS-r", 0.05, []float64{-5, 0, 10},
//		model.SNParams{X0: 1e-4, X1: 0.3, C: 0.02}, model.HostParams{}, 0.03)
//
// A model is read-only after New except for its extinction cache and is safe
// for concurrent queries.
//
// See cmd/sedplot for a command-line front end driven by examples/synthetic.yaml.
package snsed
