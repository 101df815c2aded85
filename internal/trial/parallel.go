package trial

import (
	"context"
	"time"
)

// Ensemble splits one trial budget across parallel workers. Worker i
// runs an independent Runner seeded seed+i, so a fixed seed gives a
// reproducible merged result no matter how the workers were scheduled.
// Snapshot series are not recorded; workers' interleaving would make
// one meaningless.
type Ensemble struct {
	cfg     Config
	workers int
}

func NewEnsemble(cfg Config, workers int) *Ensemble {
	p := NewPool(workers)
	return &Ensemble{cfg: cfg, workers: p.Workers()}
}

func (e *Ensemble) Workers() int {
	return e.workers
}

func (e *Ensemble) Run(ctx context.Context) (*Result, error) {
	if err := e.cfg.validate(); err != nil {
		return nil, err
	}
	if e.cfg.Trials < 1 {
		return nil, ErrBadTrials
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := e.workers
	if workers > e.cfg.Trials {
		workers = e.cfg.Trials
	}

	share := e.cfg.Trials / workers
	extra := e.cfg.Trials % workers

	runners := make([]*Runner, workers)
	for i := range runners {
		cfg := e.cfg
		cfg.Trials = share
		if i < extra {
			cfg.Trials++
		}
		cfg.Seed = seed + int64(i)
		cfg.SnapshotEvery = 0

		r, err := New(cfg)
		if err != nil {
			return nil, err
		}
		runners[i] = r
	}

	start := time.Now()
	err := NewPool(workers).Map(ctx, workers, func(i int) error {
		_, runErr := runners[i].Run(ctx)
		return runErr
	})
	elapsed := time.Since(start)

	if err != nil && err != ctx.Err() {
		return nil, err
	}

	// Merge in worker order so float rounding is reproducible.
	merged := runners[0]
	for _, r := range runners[1:] {
		if mergeErr := merged.hist.Merge(r.hist); mergeErr != nil {
			return nil, mergeErr
		}
		merged.moments.Merge(r.moments)
	}

	res := merged.result(elapsed)
	res.Seed = seed
	return res, err
}
