// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"

	"gonum.org/v1/gonum/lapack/gonum"
)

// tensorSpline holds the natural bicubic coefficients of one grid
// generation. All slices are x-major like the values they derive from.
type tensorSpline struct {
	gen   uint64
	f     []float64 // node values
	fyy   []float64 // ∂²f/∂y² of each x row
	fxx   []float64 // ∂²f/∂x² of each y column
	fxxyy []float64 // ∂²fxx/∂y² of each x row
}

// newTensorSpline solves the natural spline systems along both axes.
// Evaluating it equals fitting natural splines along y at every x node and
// then a natural spline along x through their values.
// Complexity: O(nx·ny).
func newTensorSpline(x, y Axis, f []float64, gen uint64) (*tensorSpline, error) {
	nx, ny := x.Len(), y.Len()
	ts := &tensorSpline{gen: gen, f: f}
	var err error
	if ts.fyy, err = alongY(y.nodes, f, nx, ny); err != nil {
		return nil, err
	}
	if ts.fxx, err = naturalM(x.nodes, f, ny); err != nil {
		return nil, err
	}
	if ts.fxxyy, err = alongY(y.nodes, ts.fxx, nx, ny); err != nil {
		return nil, err
	}
	return ts, nil
}

// alongY is naturalM for the rows of an x-major nx×ny table.
func alongY(y []float64, f []float64, nx, ny int) ([]float64, error) {
	tr := transpose(f, nx, ny)
	m, err := naturalM(y, tr, nx)
	if err != nil {
		return nil, err
	}
	return transpose(m, ny, nx), nil
}

// transpose returns the c×r transpose of the row-major r×c matrix a.
func transpose(a []float64, r, c int) []float64 {
	out := make([]float64, len(a))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j*r+i] = a[i*c+j]
		}
	}
	return out
}

// naturalM returns the second derivatives of the natural cubic splines
// through the k columns of the row-major n×k table f sampled at nodes t.
// End rows are zero; all rows are zero when n <= 2.
func naturalM(t []float64, f []float64, k int) ([]float64, error) {
	n := len(t)
	out := make([]float64, n*k)
	if n <= 2 {
		return out, nil
	}
	m := n - 2
	d := make([]float64, m)
	dl := make([]float64, m-1)
	du := make([]float64, m-1)
	b := out[k : (n-1)*k]
	for r := 0; r < m; r++ {
		i := r + 1
		h0, h1 := t[i]-t[i-1], t[i+1]-t[i]
		d[r] = (h0 + h1) / 3
		if r < m-1 {
			dl[r], du[r] = h1/6, h1/6
		}
		for c := 0; c < k; c++ {
			b[r*k+c] = (f[(i+1)*k+c]-f[i*k+c])/h1 - (f[i*k+c]-f[(i-1)*k+c])/h0
		}
	}
	if !(gonum.Implementation{}).Dgtsv(m, k, dl, d, du, b, k) {
		return nil, fmt.Errorf("natural spline on %d nodes: %w", n, ErrSingular)
	}
	return out, nil
}

// cubicWeights are the natural cubic spline weights of one segment:
// s = a·v0 + b·v1 + c·m0 + d·m1 for node values v and second derivatives m.
type cubicWeights struct{ a, b, c, d float64 }

func (w cubicWeights) apply(v0, v1, m0, m1 float64) float64 {
	return w.a*v0 + w.b*v1 + w.c*m0 + w.d*m1
}

// segmentWeights returns the value and derivative weights at offset t of a
// segment of width h. A zero-width segment (single-node axis) is constant.
func segmentWeights(h, t float64) (w, dw cubicWeights) {
	if h == 0 {
		return cubicWeights{a: 1}, cubicWeights{}
	}
	a, b := 1-t, t
	w = cubicWeights{a: a, b: b, c: (a*a*a - a) * h * h / 6, d: (b*b*b - b) * h * h / 6}
	dw = cubicWeights{a: -1 / h, b: 1 / h, c: -(3*a*a - 1) * h / 6, d: (3*b*b - 1) * h / 6}
	return w, dw
}

// rowAt evaluates row ix along y on segment (iy, iy1): the value spline and
// the spline of its x second derivatives.
func (ts *tensorSpline) rowAt(w cubicWeights, ix, ny, iy, iy1 int) (v, vxx float64) {
	p0, p1 := ix*ny+iy, ix*ny+iy1
	v = w.apply(ts.f[p0], ts.f[p1], ts.fyy[p0], ts.fyy[p1])
	vxx = w.apply(ts.fxx[p0], ts.fxx[p1], ts.fxxyy[p0], ts.fxxyy[p1])
	return v, vxx
}
