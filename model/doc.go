// Package model is a fully initialized supernova SED model instance: the
// flux surfaces, error maps, color law and calibration shifts of one trained
// model version, plus the registered filters it is evaluated through.
//
// A Model is built once by New from already-parsed Inputs and is then
// queried concurrently:
//
//	m, err := model.New(in, model.OptionsFromMask(mask)...)
//	integ, err := m.Integrate("SDSS-r", z, tobs, sn, host, mwebv, false)
//	mags, err := m.Magnitudes("SDSS-r", z, epochs, sn, host, mwebv)
//	cov, err := m.Covariance(obs, z, sn, host, mwebv)
//
// Errors match one of ErrConfig, ErrBadTrainingData, ErrOutOfRange or
// ErrIllConditioned, and also the leaf error of the package that raised it.
// Forced-zero flux is a normal result, not an error.
//
// Diagnostic events are written to a log/slog logger when WithVerbose is set.
package model
