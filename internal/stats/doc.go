// Package stats accumulates running statistics over trial sums and
// scores how normal they look.
//
//   - [Moments]: single-pass central moments through the fourth, with
//     an exact pairwise Merge for combining parallel workers
//   - [Quantiles]: streaming approximate quantiles (p50/p90/p99)
//   - [NormalCDF], [ExpectedCounts], [ChiSquare]: goodness of fit
//     against the limit normal
//
// Skewness, excess kurtosis, and the Jarque-Bera statistic are the
// package's convergence readouts: all three head to zero as the
// Central Limit Theorem takes hold.
package stats
