// SPDX-License-Identifier: MIT

// Package grid provides table lookup over tabulated 1D and 2D surfaces with
// linear or cubic-spline evaluation.
//
// What is inside?
//
//	Axis    a strictly increasing list of nodes (phase, wavelength, color).
//	Grid1D  values on one Axis.
//	Grid2D  values on an (x, y) Axis pair, stored x-major: v[ix*ny+iy].
//
// Interpolation modes:
//   - Linear: bilinear (2D) or linear (1D) interpolation between the nearest
//     nodes. O(1) per query after an O(log n) node search.
//   - Spline: natural cubic splines (gonum interp.NaturalCubic in 1D). 2D
//     grids build the natural bicubic lazily: second derivatives along y,
//     along x, and the mixed fourth, each from one tridiagonal solve
//     (gonum lapack Dgtsv) per generation. A query then combines the four
//     corner cells of its patch, O(log nx + log ny) with no allocation.
//     Values equal fitting a spline along y at every x node and then one
//     along x through the results.
//
// Both modes reproduce stored values at grid nodes.
//
// Edge policy:
//
//	Queries outside [Min, Max] of an axis are clamped to the boundary node
//	(EdgeClamp, default) or rejected with ErrOutOfRange (EdgeAbort).
//
// Caching and concurrency:
//
//	Spline coefficients are cached per grid generation. Replace swaps the
//	stored values under a write lock and bumps the generation, which
//	invalidates the cache. All query methods are safe for concurrent use.
package grid
