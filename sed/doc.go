// Package sed holds the rest-frame spectral energy distribution of a
// parametrized supernova model: one to four flux surfaces on a shared
// phase × rest-wavelength grid.
//
// Surface 0 is the nominal flux; surfaces 1..3 are the higher-order terms
// weighted by the shape parameters x1, x2, ... so that the model flux is
//
//	F(day, λ) = Σ_k x_k · S_k(day, λ)    with x_0 = 1.
//
// The table also owns the Milky-Way extinction transmission per registered
// filter. That cache is keyed by the E(B−V) value it was built for and is
// rebuilt only when a query arrives with a different value. Rebuilds are
// build-then-swap under a sync.RWMutex, so a reader observes either the old
// or the new extinction and never a half-built one.
//
// Flux surfaces are immutable after NewTable and safe for concurrent use.
package sed
