// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"math"
	"sort"
)

// Axis is an immutable, strictly increasing list of grid nodes.
// The zero Axis is empty and unusable; build axes with NewAxis or UniformAxis.
type Axis struct {
	nodes []float64
}

// NewAxis validates and deep-copies nodes.
// Stage 1 (Validate): non-empty, finite, strictly increasing.
// Stage 2 (Finalize): copy so later caller mutation cannot leak in.
// Complexity: O(n).
func NewAxis(nodes []float64) (Axis, error) {
	if len(nodes) == 0 {
		return Axis{}, ErrEmptyAxis
	}
	for i, v := range nodes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Axis{}, fmt.Errorf("NewAxis: node %d: %w", i, ErrNaNInf)
		}
		if i > 0 && v <= nodes[i-1] {
			return Axis{}, fmt.Errorf("NewAxis: node %d (%g <= %g): %w", i, v, nodes[i-1], ErrNonIncreasing)
		}
	}
	cp := make([]float64, len(nodes))
	copy(cp, nodes)

	return Axis{nodes: cp}, nil
}

// UniformAxis builds n nodes starting at start with the given step.
func UniformAxis(start, step float64, n int) (Axis, error) {
	if n <= 0 {
		return Axis{}, ErrEmptyAxis
	}
	if n > 1 && !(step > 0) {
		return Axis{}, fmt.Errorf("UniformAxis: step=%g: %w", step, ErrNonIncreasing)
	}
	nodes := make([]float64, n)
	for i := range nodes {
		nodes[i] = start + float64(i)*step
	}

	return NewAxis(nodes)
}

// Len returns the number of nodes.
func (a Axis) Len() int { return len(a.nodes) }

// Min returns the first node.
func (a Axis) Min() float64 { return a.nodes[0] }

// Max returns the last node.
func (a Axis) Max() float64 { return a.nodes[len(a.nodes)-1] }

// At returns node i.
func (a Axis) At(i int) float64 { return a.nodes[i] }

// Nodes returns a copy of the nodes.
func (a Axis) Nodes() []float64 {
	cp := make([]float64, len(a.nodes))
	copy(cp, a.nodes)
	return cp
}

// Step returns the mean node spacing, or 0 for a single-node axis.
func (a Axis) Step() float64 {
	if len(a.nodes) < 2 {
		return 0
	}
	return (a.Max() - a.Min()) / float64(len(a.nodes)-1)
}

// Contains reports whether x lies within [Min, Max].
func (a Axis) Contains(x float64) bool {
	return x >= a.Min() && x <= a.Max()
}

// Locate returns the segment index i and fractional offset t in [0,1] such
// that x = nodes[i] + t*(nodes[i+1]-nodes[i]). x must already be within the
// axis range. At an exact node t is exactly 0 (or 1 for the last node), so
// linear weights reproduce stored values without rounding.
// A single-node axis always yields (0, 0).
// Complexity: O(log n).
func (a Axis) Locate(x float64) (int, float64) {
	n := len(a.nodes)
	if n == 1 {
		return 0, 0
	}
	k := sort.SearchFloat64s(a.nodes, x) // first node >= x
	switch {
	case k <= 0:
		return 0, 0
	case k >= n:
		return n - 2, 1
	case a.nodes[k] == x:
		if k == n-1 {
			return n - 2, 1
		}
		return k, 0
	}
	i := k - 1

	return i, (x - a.nodes[i]) / (a.nodes[k] - a.nodes[i])
}

// Nearest returns the index of the node closest to x.
func (a Axis) Nearest(x float64) int {
	i, t := a.Locate(a.clamp(x))
	if t > 0.5 && i+1 < len(a.nodes) {
		return i + 1
	}
	return i
}

// clamp moves x into [Min, Max].
func (a Axis) clamp(x float64) float64 {
	if x < a.Min() {
		return a.Min()
	}
	if x > a.Max() {
		return a.Max()
	}
	return x
}

// resolve applies the edge policy to x; name labels the axis in errors.
func (a Axis) resolve(x float64, edge EdgePolicy, name string) (float64, error) {
	if math.IsNaN(x) {
		return 0, fmt.Errorf("%s: %w", name, ErrNaNInf)
	}
	if a.Contains(x) {
		return x, nil
	}
	if edge == EdgeAbort {
		return 0, fmt.Errorf("%w: %s=%g outside [%g, %g]", ErrOutOfRange, name, x, a.Min(), a.Max())
	}
	return a.clamp(x), nil
}
