package batch

import (
	"context"
	"fmt"
	"math"

	"github.com/go-kit/kit/log"

	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/logging"
	"github.com/san-kum/cltlab/internal/trial"
)

// Sweep runs the same experiment across evenly spaced values of one
// knob, either a named source parameter or the sample count
// (experiment.ParamSamples), the axis convergence actually rides on.
type Sweep struct {
	Source  string
	Param   string
	Min     float64
	Max     float64
	Points  int
	Params  map[string]float64
	Samples int
	Trials  int
	Seed    int64
	Workers int
}

// SweepPoint is the outcome at one knob value.
type SweepPoint struct {
	Value   float64
	Summary trial.Summary
}

// RunSweep executes the sweep in order of increasing value. Every
// point reuses the same seed so differences between points come from
// the knob, not the stream.
func RunSweep(ctx context.Context, sweep *Sweep, reg *experiment.Registry, logger log.Logger) ([]SweepPoint, error) {
	if sweep.Points < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.Points)
	}

	step := (sweep.Max - sweep.Min) / float64(sweep.Points-1)
	points := make([]SweepPoint, 0, sweep.Points)

	for i := 0; i < sweep.Points; i++ {
		value := sweep.Min + float64(i)*step

		cfg := experiment.Config{
			Source:  sweep.Source,
			Samples: sweep.Samples,
			Trials:  sweep.Trials,
			Seed:    sweep.Seed,
			Workers: sweep.Workers,
		}
		if sweep.Param == experiment.ParamSamples {
			samples := int(math.Round(value))
			if samples < 1 {
				return nil, fmt.Errorf("sweep point %d: %g is not a valid sample count", i+1, value)
			}
			cfg.Samples = samples
			cfg.Params = sweep.Params
		} else {
			params := make(map[string]float64, len(sweep.Params)+1)
			for k, v := range sweep.Params {
				params[k] = v
			}
			params[sweep.Param] = value
			cfg.Params = params
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return points, fmt.Errorf("sweep point %d: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return points, fmt.Errorf("sweep point %d run: %w", i+1, err)
		}

		logger.Log("event", logging.EventSweepPoint,
			"param", sweep.Param, "value", value,
			"mean", res.Summary.Mean, "variance", res.Summary.Variance,
			"skewness", res.Summary.Skewness, "ex_kurtosis", res.Summary.ExcessKurtosis,
			"jarque_bera", res.Summary.JarqueBera)

		points = append(points, SweepPoint{Value: value, Summary: res.Summary})
	}

	return points, nil
}
