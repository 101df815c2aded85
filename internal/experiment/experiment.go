package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/cltlab/internal/trial"
)

// ParamSamples is the pseudo-parameter sweeps and searches use to
// vary the per-trial sample count alongside real source parameters.
const ParamSamples = "samples"

type Config struct {
	Source        string
	Params        map[string]float64
	Samples       int
	Trials        int
	Seed          int64
	SnapshotEvery int
	MaxBuckets    int
	Workers       int
}

// Experiment is the headless counterpart of the live view: resolve a
// source by name, run a trial budget, hand back the result. Workers
// above 1 switch the run to an ensemble.
type Experiment struct {
	cfg      Config
	runner   *trial.Runner
	ensemble *trial.Ensemble
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(reg *Registry, observers ...trial.Observer) error {
	src, err := reg.NewSource(e.cfg.Source, e.cfg.Params)
	if err != nil {
		return err
	}

	tcfg := trial.Config{
		Source:        src,
		Samples:       e.cfg.Samples,
		Trials:        e.cfg.Trials,
		Seed:          e.cfg.Seed,
		SnapshotEvery: e.cfg.SnapshotEvery,
		MaxBuckets:    e.cfg.MaxBuckets,
	}

	if e.cfg.Workers > 1 {
		e.ensemble = trial.NewEnsemble(tcfg, e.cfg.Workers)
		return nil
	}

	runner, err := trial.New(tcfg)
	if err != nil {
		return err
	}
	for _, o := range observers {
		runner.AddObserver(o)
	}
	e.runner = runner
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*trial.Result, error) {
	switch {
	case e.ensemble != nil:
		return e.ensemble.Run(ctx)
	case e.runner != nil:
		return e.runner.Run(ctx)
	default:
		return nil, fmt.Errorf("experiment not set up")
	}
}

// Runner exposes the underlying runner for observer access after the
// run; nil for ensemble experiments.
func (e *Experiment) Runner() *trial.Runner {
	return e.runner
}
