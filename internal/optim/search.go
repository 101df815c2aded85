package optim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/logging"
	"github.com/san-kum/cltlab/internal/trial"
)

// SearchSource grid-searches a source's parameters, running one
// headless experiment per grid point. The pseudo-parameter
// experiment.ParamSamples routes to the sample count instead of the
// source. A zero base seed is pinned once up front so every point
// sees the same stream.
func SearchSource(ctx context.Context, reg *experiment.Registry, base experiment.Config, grid *GridSearch, obj Objective, logger log.Logger) (*SearchResult, error) {
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}

	eval := func(ctx context.Context, point map[string]float64) (trial.Summary, error) {
		cfg := base
		params := make(map[string]float64, len(base.Params)+len(point))
		for k, v := range base.Params {
			params[k] = v
		}
		for k, v := range point {
			if k == experiment.ParamSamples {
				samples := int(math.Round(v))
				if samples < 1 {
					return trial.Summary{}, fmt.Errorf("%g is not a valid sample count", v)
				}
				cfg.Samples = samples
				continue
			}
			params[k] = v
		}
		cfg.Params = params

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return trial.Summary{}, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return trial.Summary{}, err
		}
		return res.Summary, nil
	}

	res, err := grid.Search(ctx, eval, obj)
	if err != nil {
		return nil, err
	}

	logger.Log("event", logging.EventSearchDone,
		"source", base.Source, "objective", string(obj),
		"score", res.Score, "evals", res.Evals, "skipped", res.Skipped)
	return res, nil
}
