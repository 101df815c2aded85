package trial

import (
	"context"
	"math/rand"
	"time"

	"github.com/san-kum/cltlab/internal/dist"
	"github.com/san-kum/cltlab/internal/stats"
)

// Runner owns one sequential trial loop: a source, a seeded rng, a
// histogram, and running moments. The live UI drives it a batch at a
// time; headless commands call Run.
type Runner struct {
	cfg       Config
	src       dist.Source
	rng       *rand.Rand
	hist      *Histogram
	moments   *stats.Moments
	observers []Observer
}

func New(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxBuckets == 0 {
		cfg.MaxBuckets = DefaultConfig().MaxBuckets
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Runner{
		cfg:     cfg,
		src:     cfg.Source,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		hist:    NewHistogram(LayoutFor(cfg.Source, cfg.Samples, cfg.MaxBuckets)),
		moments: stats.NewMoments(),
	}, nil
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Config() Config { return r.cfg }

func (r *Runner) Histogram() *Histogram { return r.hist }

func (r *Runner) Moments() *stats.Moments { return r.moments }

// Trial draws, sums, and records one trial, returning the sum.
func (r *Runner) Trial() float64 {
	sum := 0.0
	for i := 0; i < r.cfg.Samples; i++ {
		sum += r.src.Sample(r.rng)
	}

	r.hist.Add(sum)
	r.moments.Observe(sum)
	for _, o := range r.observers {
		o.Observe(sum)
	}
	return sum
}

// RunBatch performs k trials back to back.
func (r *Runner) RunBatch(k int) {
	for i := 0; i < k; i++ {
		r.Trial()
	}
}

// Reset clears the histogram, moments, and any resettable observers.
// The rng keeps rolling so a reset does not replay the same stream.
func (r *Runner) Reset() {
	r.hist.Reset()
	r.moments.Reset()
	for _, o := range r.observers {
		if res, ok := o.(Resettable); ok {
			res.Reset()
		}
	}
}

func (r *Runner) snapshot() Snapshot {
	return Snapshot{
		Trials:         uint64(r.moments.Count()),
		Mean:           r.moments.Mean(),
		Variance:       r.moments.Variance(),
		Skewness:       r.moments.Skewness(),
		ExcessKurtosis: r.moments.ExcessKurtosis(),
		JarqueBera:     r.moments.JarqueBera(),
	}
}

func (r *Runner) summary() Summary {
	return Summary{
		Trials:         uint64(r.moments.Count()),
		Mean:           r.moments.Mean(),
		Variance:       r.moments.Variance(),
		StdDev:         r.moments.StdDev(),
		Skewness:       r.moments.Skewness(),
		ExcessKurtosis: r.moments.ExcessKurtosis(),
		JarqueBera:     r.moments.JarqueBera(),
	}
}

func (r *Runner) result(elapsed time.Duration) *Result {
	res := &Result{
		Source:    r.src.Name(),
		Samples:   r.cfg.Samples,
		Seed:      r.cfg.Seed,
		Histogram: r.hist,
		Summary:   r.summary(),
		Elapsed:   elapsed,
	}
	if elapsed > 0 {
		res.TrialsPerSec = r.moments.Count() / elapsed.Seconds()
	}
	return res
}

// Run performs the configured trial budget, checking for cancellation
// and recording a convergence snapshot every SnapshotEvery trials.
// On cancellation the partial result is returned alongside the
// context's error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.cfg.Trials < 1 {
		return nil, ErrBadTrials
	}

	batch := r.cfg.SnapshotEvery
	if batch <= 0 {
		batch = 1000
	}

	var series []Snapshot
	if r.cfg.SnapshotEvery > 0 {
		series = make([]Snapshot, 0, r.cfg.Trials/r.cfg.SnapshotEvery+1)
	}

	start := time.Now()
	done := 0
	for done < r.cfg.Trials {
		select {
		case <-ctx.Done():
			res := r.result(time.Since(start))
			res.Series = series
			return res, ctx.Err()
		default:
		}

		k := batch
		if left := r.cfg.Trials - done; left < k {
			k = left
		}
		r.RunBatch(k)
		done += k

		if r.cfg.SnapshotEvery > 0 {
			series = append(series, r.snapshot())
		}
	}

	res := r.result(time.Since(start))
	res.Series = series
	return res, nil
}
