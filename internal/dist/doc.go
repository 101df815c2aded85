// Package dist provides the source distributions whose sums the
// laboratory studies.
//
// Each source implements the [Source] interface: a seeded draw plus the
// closed-form mean and variance that fix the limit normal.
//
//   - [Coin]: the classic ±1 step (the original demo's source)
//   - [Uniform]: continuous uniform on a half-open interval
//   - [Die]: uniform integer die roll
//   - [Exponential]: heavily skewed, the most instructive input
//   - [Bimodal]: two separated uniform lobes
//
// Discrete sources additionally implement [Discrete] so histograms can
// lay out one bucket per achievable sum, and bounded sources implement
// [Support] so layouts never extend past values a trial can produce.
// Sources with tunable parameters implement [Configurable] for live
// adjustment and parameter sweeps.
//
// # Determinism
//
// Sample draws only from the *rand.Rand it is handed. Two runners seeded
// identically produce identical trial streams, which the tests and the
// parallel ensemble rely on.
package dist
