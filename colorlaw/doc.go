// SPDX-License-Identifier: MIT

// Package colorlaw evaluates the polynomial color law of a supernova SED model
// and the multiplicative flux correction it implies.
//
// Reduced wavelength:
//
//	r(λ) = (λ − λB) / (λV − λB)
//
// with λB, λV the two reference wavelengths (nominal B and V band centers).
//
// Law 1 (default):
//
//	P(r)  = α·r + Σ_i p_i·r^(i+2),   α = 1 − Σ_i p_i
//	CL(λ) = −P(r(λ))
//
// so CL(λB) = 0 and CL(λV) = −1 for every coefficient vector: the color
// parameter c is the B−V excess implied by the law.
//
// Law 0 (legacy): the same polynomial without the α normalization
// (α = 1), so only the λB anchor is fixed.
//
// Correction:
//
//	flux'(λ) = flux(λ) · 10^(−0.4 · c · CL(λ))
//
// Outside the trained wavelength range [LamMin, LamMax] the law is extended
// flat from its boundary value (and its derivative is zero) instead of
// extrapolating the polynomial.
//
// Table precomputes the correction on a color × wavelength grid for the
// filter integrator; Dispersion caps the tabulated color dispersion.
package colorlaw
