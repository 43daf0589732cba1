// Package report renders model output: light-curve and SED-slice PNGs drawn
// with gonum/plot and a PDF summary assembled with gofpdf.
//
// The collectors (LightCurves, SEDSlices) only call the public model API, so
// a report never changes model state beyond the Milky-Way extinction cache.
package report
