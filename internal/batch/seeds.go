package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/logging"
	"github.com/san-kum/cltlab/internal/stats"
	"github.com/san-kum/cltlab/internal/trial"
)

// SeedStudy repeats one experiment across consecutive seeds to show
// how much of a finished histogram's statistics is stream luck.
type SeedStudy struct {
	Source   string
	Params   map[string]float64
	Samples  int
	Trials   int
	BaseSeed int64
	Runs     int
	Workers  int
}

// SeedResult is one seed's final summary.
type SeedResult struct {
	Seed    int64
	Summary trial.Summary
}

// SeedSpread aggregates a study: how far the per-seed statistics
// scatter around each other.
type SeedSpread struct {
	Runs         int
	MeanOfMeans  float64
	StdOfMeans   float64
	MeanVariance float64
	MeanJB       float64
	MaxJB        float64
}

// RunSeedStudy runs the study with up to Workers runs in flight at
// once. Results come back ordered by seed regardless of which worker
// finished first.
func RunSeedStudy(ctx context.Context, study *SeedStudy, reg *experiment.Registry, logger log.Logger) ([]SeedResult, error) {
	if study.Runs < 1 {
		return nil, fmt.Errorf("seed study needs at least 1 run, got %d", study.Runs)
	}
	base := study.BaseSeed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	results := make([]SeedResult, study.Runs)
	pool := trial.NewPool(study.Workers)
	err := pool.Map(ctx, study.Runs, func(i int) error {
		seed := base + int64(i)
		exp := experiment.New(experiment.Config{
			Source:  study.Source,
			Params:  study.Params,
			Samples: study.Samples,
			Trials:  study.Trials,
			Seed:    seed,
		})
		if err := exp.Setup(reg); err != nil {
			return fmt.Errorf("seed %d: %w", seed, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("seed %d run: %w", seed, err)
		}
		results[i] = SeedResult{Seed: seed, Summary: res.Summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	spread := Summarize(results)
	logger.Log("event", logging.EventSeedsDone,
		"runs", spread.Runs, "mean_of_means", spread.MeanOfMeans,
		"std_of_means", spread.StdOfMeans, "max_jb", spread.MaxJB)
	return results, nil
}

// Summarize computes the spread of a finished study.
func Summarize(results []SeedResult) SeedSpread {
	var means, variances, jbs stats.Moments
	maxJB := 0.0
	for _, r := range results {
		means.Observe(r.Summary.Mean)
		variances.Observe(r.Summary.Variance)
		jbs.Observe(r.Summary.JarqueBera)
		if r.Summary.JarqueBera > maxJB {
			maxJB = r.Summary.JarqueBera
		}
	}
	return SeedSpread{
		Runs:         len(results),
		MeanOfMeans:  means.Mean(),
		StdOfMeans:   means.StdDev(),
		MeanVariance: variances.Mean(),
		MeanJB:       jbs.Mean(),
		MaxJB:        maxJB,
	}
}
