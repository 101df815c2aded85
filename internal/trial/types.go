package trial

import (
	"time"

	"github.com/san-kum/cltlab/internal/dist"
)

// Observer watches every trial sum as it is produced.
type Observer interface {
	Observe(sum float64)
}

// Resettable observers are cleared when the runner resets.
type Resettable interface {
	Reset()
}

type Config struct {
	Source        dist.Source
	Samples       int
	Trials        int
	Seed          int64
	SnapshotEvery int
	MaxBuckets    int
}

func DefaultConfig() Config {
	return Config{
		Samples:       19,
		Trials:        50000,
		SnapshotEvery: 1000,
		MaxBuckets:    41,
	}
}

func (c Config) validate() error {
	if c.Source == nil {
		return ErrNoSource
	}
	if c.Samples < 1 {
		return ErrBadSamples
	}
	return nil
}

// Snapshot is one point of the convergence series: the running moments
// after a given number of trials.
type Snapshot struct {
	Trials         uint64  `json:"trials"`
	Mean           float64 `json:"mean"`
	Variance       float64 `json:"variance"`
	Skewness       float64 `json:"skewness"`
	ExcessKurtosis float64 `json:"ex_kurtosis"`
	JarqueBera     float64 `json:"jarque_bera"`
}

// Summary holds the final moments of a completed run.
type Summary struct {
	Trials         uint64  `json:"trials"`
	Mean           float64 `json:"mean"`
	Variance       float64 `json:"variance"`
	StdDev         float64 `json:"std_dev"`
	Skewness       float64 `json:"skewness"`
	ExcessKurtosis float64 `json:"ex_kurtosis"`
	JarqueBera     float64 `json:"jarque_bera"`
}

// Result is everything a completed run produced.
type Result struct {
	Source       string
	Samples      int
	Seed         int64
	Histogram    *Histogram
	Summary      Summary
	Series       []Snapshot
	Elapsed      time.Duration
	TrialsPerSec float64
}
