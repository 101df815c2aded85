// Package trial drives the laboratory's core loop: sum a fixed number
// of random draws per trial, bucket each sum, and keep running
// statistics.
//
//   - [Histogram]: fixed-layout bucket counts with under/overflow
//   - [LayoutFor]: picks bucket edges from a source's moments, exact
//     to the lattice for discrete sources
//   - [Runner]: sequential trial loop with observers and snapshots
//   - [Ensemble]: the same trial budget split across seeded workers
//   - [Pool]: bounded worker pool backing ensembles and sweeps
//
// # Example
//
//	cfg := trial.DefaultConfig()
//	cfg.Source = dist.NewCoin()
//	r, _ := trial.New(cfg)
//	result, _ := r.Run(ctx)
//
// # Thread Safety
//
// Runner instances are NOT thread-safe. For parallel trial generation
// use [Ensemble], which gives each worker its own seeded runner and
// merges histograms and moments afterwards.
package trial
