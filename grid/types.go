// SPDX-License-Identifier: MIT

package grid

import "fmt"

// Mode selects the interpolation scheme.
// The numeric values follow the legacy model-file convention (1=linear, 2=spline).
type Mode int

const (
	// Linear selects (bi)linear interpolation.
	Linear Mode = 1

	// Spline selects natural cubic spline interpolation with cached coefficients.
	Spline Mode = 2
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Spline:
		return "spline"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts the integer option used in model info files into a Mode.
func ParseMode(v int) (Mode, error) {
	switch Mode(v) {
	case Linear, Spline:
		return Mode(v), nil
	default:
		return 0, fmt.Errorf("ParseMode(%d): %w", v, ErrBadMode)
	}
}

// EdgePolicy controls queries that fall outside an axis range.
type EdgePolicy int

const (
	// EdgeClamp moves out-of-range coordinates onto the nearest boundary node.
	EdgeClamp EdgePolicy = iota

	// EdgeAbort rejects out-of-range coordinates with ErrOutOfRange.
	EdgeAbort
)

// DefaultMaxNodes bounds the number of stored values per grid.
const DefaultMaxNodes = 200000

// Options configures a grid.
//
// Fields:
//   - Mode: Linear or Spline (zero value means Linear).
//   - Edge: EdgeClamp or EdgeAbort.
//   - MaxNodes: capacity ceiling on stored values; 0 means DefaultMaxNodes.
type Options struct {
	Mode     Mode
	Edge     EdgePolicy
	MaxNodes int
}

// DefaultOptions returns Linear, EdgeClamp, DefaultMaxNodes.
func DefaultOptions() Options {
	return Options{Mode: Linear, Edge: EdgeClamp, MaxNodes: DefaultMaxNodes}
}

// normalize fills zero values with defaults and validates enums.
func (o Options) normalize() (Options, error) {
	if o.Mode == 0 {
		o.Mode = Linear
	}
	if o.Mode != Linear && o.Mode != Spline {
		return o, fmt.Errorf("Options.Mode=%d: %w", int(o.Mode), ErrBadMode)
	}
	if o.Edge != EdgeClamp && o.Edge != EdgeAbort {
		return o, fmt.Errorf("Options.Edge=%d: %w", int(o.Edge), ErrBadMode)
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o, nil
}
