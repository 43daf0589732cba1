// SPDX-License-Identifier: MIT

package sed

import "errors"

var (
	// ErrNoSurfaces indicates NewTable was given zero flux surfaces.
	ErrNoSurfaces = errors.New("sed: at least one flux surface required")

	// ErrTooManySurfaces indicates more than MaxSurfaces flux surfaces.
	ErrTooManySurfaces = errors.New("sed: too many flux surfaces")

	// ErrIncomplete indicates a surface that does not cover every grid cell.
	ErrIncomplete = errors.New("sed: flux surface not fully populated")

	// ErrNaNInf indicates a non-finite flux value.
	ErrNaNInf = errors.New("sed: NaN or Inf flux value")

	// ErrSurfaceIndex indicates a surface index outside [0, Surfaces()).
	ErrSurfaceIndex = errors.New("sed: surface index out of range")

	// ErrBadExtinction indicates a non-finite or negative E(B−V), or a bad R_V.
	ErrBadExtinction = errors.New("sed: invalid extinction parameters")
)
