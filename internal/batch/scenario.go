// Package batch runs scripted sequences of headless experiments:
// YAML scenarios, parameter sweeps, and multi-seed studies.
package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cltlab/internal/experiment"
	"github.com/san-kum/cltlab/internal/logging"
	"github.com/san-kum/cltlab/internal/storage"
	"github.com/san-kum/cltlab/internal/trial"
)

// Scenario is a scripted sequence of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run in a scenario.
type ScenarioStep struct {
	Source  string             `yaml:"source"`
	Params  map[string]float64 `yaml:"params"`
	Samples int                `yaml:"samples"`
	Trials  int                `yaml:"trials"`
	Seed    int64              `yaml:"seed"`
	Workers int                `yaml:"workers"`
	Save    bool               `yaml:"save"`
}

// StepResult pairs a finished step with the run ID it was saved
// under, if the step asked to be saved.
type StepResult struct {
	Step   int
	Source string
	RunID  string
	Result *trial.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load scenario %s", path)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// RunScenario executes every step in order, saving the steps that ask
// for it. Results for completed steps are returned even when a later
// step fails.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, store *storage.Store, logger log.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Log("event", logging.EventRunStarted,
			"scenario", scenario.Name, "step", i+1,
			"source", step.Source, "samples", step.Samples, "trials", step.Trials)

		exp := experiment.New(experiment.Config{
			Source:  step.Source,
			Params:  step.Params,
			Samples: step.Samples,
			Trials:  step.Trials,
			Seed:    step.Seed,
			Workers: step.Workers,
		})
		if err := exp.Setup(reg); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			logger.Log("event", logging.EventRunCanceled, "step", i+1, "err", err)
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Source: step.Source, Result: res}
		if step.Save && store != nil {
			runID, err := store.Save(res, step.Params)
			if err != nil {
				logger.Log("event", logging.EventSaveFailed, "step", i+1, "err", err)
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = runID
		}

		logger.Log("event", logging.EventRunCompleted,
			"step", i+1, "trials", res.Summary.Trials,
			"mean", res.Summary.Mean, "jarque_bera", res.Summary.JarqueBera)
		results = append(results, sr)
	}

	return results, nil
}
