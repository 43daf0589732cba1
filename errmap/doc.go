// Package errmap stores the tabulated model-uncertainty surfaces of a
// supernova SED model: one variance map per flux surface, covariance maps
// between surface pairs, an overall error-scale map and a color-dispersion map.
//
// Each map is loaded from (day, lambda, value) triples, validated against an
// acceptable range (NaN and "crazy" values are counted, then either abort the
// load or are clamped), and stored as sign-tagged log10 magnitudes so that
// negative covariances survive log-space interpolation.
//
//	store := errmap.NewStore(errmap.WithInterp(grid.Spline))
//	err := store.Load(errmap.Variance(0), points)
//	v, err := store.Query(errmap.Variance(0), day, lam)
package errmap
