// SPDX-License-Identifier: MIT

package grid

import "errors"

// Every message is prefixed with "grid: ..." so callers can grep logs.
// Wrap with fmt.Errorf("ctx: %w", ErrX) at boundaries; match via errors.Is.
var (
	// ErrEmptyAxis is returned when an axis has no nodes.
	ErrEmptyAxis = errors.New("grid: axis must have at least one node")

	// ErrNonIncreasing is returned when axis nodes are not strictly increasing.
	ErrNonIncreasing = errors.New("grid: axis nodes must be strictly increasing")

	// ErrShape is returned when the value slice length does not match the axes.
	ErrShape = errors.New("grid: value count does not match axis lengths")

	// ErrNaNInf is returned when a node or value is NaN or ±Inf.
	ErrNaNInf = errors.New("grid: NaN or Inf encountered")

	// ErrOutOfRange is returned by queries outside the axis bounds under EdgeAbort.
	ErrOutOfRange = errors.New("grid: query outside grid bounds")

	// ErrTooLarge is returned when a grid exceeds Options.MaxNodes.
	ErrTooLarge = errors.New("grid: grid exceeds configured capacity")

	// ErrSingular is returned when a spline system cannot be solved.
	ErrSingular = errors.New("grid: singular spline system")

	// ErrBadMode is returned for an unknown interpolation mode or edge policy.
	ErrBadMode = errors.New("grid: unknown interpolation mode")
)
