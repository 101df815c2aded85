package trial

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/cltlab/internal/dist"
)

func coinConfig(trials int, seed int64) Config {
	cfg := DefaultConfig()
	cfg.Source = dist.NewCoin()
	cfg.Trials = trials
	cfg.Seed = seed
	return cfg
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Samples: 19}); err != ErrNoSource {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := New(Config{Source: dist.NewCoin(), Samples: 0}); err != ErrBadSamples {
		t.Errorf("expected ErrBadSamples, got %v", err)
	}

	r, err := New(coinConfig(0, 1))
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if _, err := r.Run(context.Background()); err != ErrBadTrials {
		t.Errorf("expected ErrBadTrials for zero budget, got %v", err)
	}
}

func TestTrialSumStaysOnLattice(t *testing.T) {
	r, err := New(coinConfig(1, 9))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		sum := r.Trial()
		// 19 ±1 steps always land on an odd integer in [-19, 19].
		if sum < -19 || sum > 19 || math.Mod(math.Abs(sum), 2) != 1 {
			t.Fatalf("impossible trial sum %f", sum)
		}
	}

	if r.Histogram().Underflow() != 0 || r.Histogram().Overflow() != 0 {
		t.Errorf("coin sums escaped the lattice layout")
	}
}

func TestRunnerDeterminism(t *testing.T) {
	run := func() *Result {
		r, err := New(coinConfig(5000, 42))
		if err != nil {
			t.Fatal(err)
		}
		res, err := r.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b := run(), run()

	if a.Summary != b.Summary {
		t.Errorf("same seed produced different summaries:\n%+v\n%+v", a.Summary, b.Summary)
	}
	ac, bc := a.Histogram.Counts(), b.Histogram.Counts()
	for i := range ac {
		if ac[i] != bc[i] {
			t.Errorf("bucket %d differs: %d vs %d", i, ac[i], bc[i])
		}
	}
}

func TestRunRecordsSeries(t *testing.T) {
	cfg := coinConfig(5000, 3)
	cfg.SnapshotEvery = 1000

	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Summary.Trials != 5000 {
		t.Errorf("expected 5000 trials, got %d", res.Summary.Trials)
	}
	if len(res.Series) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(res.Series))
	}
	for i, s := range res.Series {
		if want := uint64((i + 1) * 1000); s.Trials != want {
			t.Errorf("snapshot %d at %d trials, expected %d", i, s.Trials, want)
		}
	}
	if res.Elapsed <= 0 {
		t.Errorf("expected positive elapsed time")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(coinConfig(1000000, 4))
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Run(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil {
		t.Fatal("expected a partial result on cancellation")
	}
	if res.Summary.Trials >= 1000000 {
		t.Errorf("expected an interrupted run, got %d trials", res.Summary.Trials)
	}
}

// The demonstration itself: sums of many independent draws approach
// the normal with mean n*mu and variance n*sigma^2.
func TestCoinSumsConverge(t *testing.T) {
	cfg := coinConfig(20000, 42)
	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	s := res.Summary
	if math.Abs(s.Mean) > 0.2 {
		t.Errorf("mean %f too far from 0", s.Mean)
	}
	if math.Abs(s.Variance-19) > 1.9 {
		t.Errorf("variance %f too far from 19", s.Variance)
	}
	if math.Abs(s.Skewness) > 0.15 {
		t.Errorf("skewness %f too far from 0", s.Skewness)
	}
	// A finite-n coin sum has excess kurtosis -2/n, not exactly 0.
	if math.Abs(s.ExcessKurtosis-(-2.0/19)) > 0.35 {
		t.Errorf("excess kurtosis %f too far from -2/19", s.ExcessKurtosis)
	}
}

func TestUniformSumsConverge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = dist.NewUniform()
	cfg.Samples = 12
	cfg.Trials = 20000
	cfg.Seed = 7

	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Twelve uniforms: mean 6, variance 1.
	s := res.Summary
	if math.Abs(s.Mean-6) > 0.05 {
		t.Errorf("mean %f too far from 6", s.Mean)
	}
	if math.Abs(s.Variance-1) > 0.1 {
		t.Errorf("variance %f too far from 1", s.Variance)
	}
	if math.Abs(s.Skewness) > 0.1 {
		t.Errorf("skewness %f too far from 0", s.Skewness)
	}
}

func TestResetClearsAccumulators(t *testing.T) {
	r, err := New(coinConfig(100, 5))
	if err != nil {
		t.Fatal(err)
	}
	r.RunBatch(100)
	r.Reset()

	if r.Histogram().Total() != 0 {
		t.Errorf("expected empty histogram after reset")
	}
	if r.Moments().Count() != 0 {
		t.Errorf("expected zeroed moments after reset")
	}
}

func TestEnsembleMergesWorkers(t *testing.T) {
	cfg := coinConfig(8000, 42)
	e := NewEnsemble(cfg, 4)

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Summary.Trials != 8000 {
		t.Errorf("expected 8000 merged trials, got %d", res.Summary.Trials)
	}
	if res.Histogram.Total() != 8000 {
		t.Errorf("expected 8000 bucketed sums, got %d", res.Histogram.Total())
	}
	if res.Series != nil {
		t.Errorf("ensemble runs must not record series")
	}
	if math.Abs(res.Summary.Mean) > 0.5 {
		t.Errorf("merged mean %f too far from 0", res.Summary.Mean)
	}
	if math.Abs(res.Summary.Variance-19) > 3 {
		t.Errorf("merged variance %f too far from 19", res.Summary.Variance)
	}
}

func TestEnsembleDeterminism(t *testing.T) {
	run := func() *Result {
		res, err := NewEnsemble(coinConfig(4000, 11), 4).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b := run(), run()
	if a.Summary != b.Summary {
		t.Errorf("seeded ensembles disagree:\n%+v\n%+v", a.Summary, b.Summary)
	}
}

func TestPoolMapRunsAllJobs(t *testing.T) {
	p := NewPool(3)
	hits := make([]int, 10)

	err := p.Map(context.Background(), len(hits), func(i int) error {
		hits[i]++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range hits {
		if h != 1 {
			t.Errorf("job %d ran %d times", i, h)
		}
	}
}

func TestPoolMapStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	err := NewPool(2).Map(ctx, 1000, func(i int) error {
		ran.Add(1)
		return nil
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if ran.Load() >= 1000 {
		t.Errorf("expected the feed to stop early, ran %d", ran.Load())
	}
}

func TestPoolMapReportsFirstError(t *testing.T) {
	boom := errors.New("boom")

	err := NewPool(2).Map(context.Background(), 50, func(i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	if err != boom {
		t.Errorf("expected the job error, got %v", err)
	}
}
