// Package optim searches source parameters for the configuration
// whose trial sums sit closest to a normal distribution.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/cltlab/internal/trial"
)

// Objective selects which diagnostic a search minimizes.
type Objective string

const (
	ObjectiveJB   Objective = "jarque_bera"
	ObjectiveSkew Objective = "abs_skewness"
	ObjectiveKurt Objective = "abs_ex_kurtosis"
)

// ParseObjective accepts the short spellings used on the command line.
func ParseObjective(s string) (Objective, error) {
	switch s {
	case "jb", "jarque_bera", "jarque-bera":
		return ObjectiveJB, nil
	case "skew", "skewness":
		return ObjectiveSkew, nil
	case "kurt", "kurtosis":
		return ObjectiveKurt, nil
	}
	return "", fmt.Errorf("unknown objective %q (want jb, skew, or kurt)", s)
}

// Score evaluates a finished run under an objective. Lower is more
// normal for every objective.
func Score(obj Objective, s trial.Summary) (float64, error) {
	switch obj {
	case ObjectiveJB:
		return s.JarqueBera, nil
	case ObjectiveSkew:
		return math.Abs(s.Skewness), nil
	case ObjectiveKurt:
		return math.Abs(s.ExcessKurtosis), nil
	}
	return 0, fmt.Errorf("unknown objective %q", obj)
}

// GridSearch enumerates the cartesian product of per-parameter value
// lists.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// SearchResult is the best point found, with bookkeeping on how many
// grid points were evaluated or skipped because their run failed.
type SearchResult struct {
	Params  map[string]float64
	Score   float64
	Evals   int
	Skipped int
}

// Search evaluates every grid point and keeps the lowest score.
// Points whose evaluation fails are skipped; cancellation aborts the
// whole search.
func (g *GridSearch) Search(ctx context.Context, eval func(context.Context, map[string]float64) (trial.Summary, error), obj Objective) (*SearchResult, error) {
	if len(g.paramNames) == 0 {
		return nil, fmt.Errorf("grid search has no parameters")
	}
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid search has %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, r := range g.ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", g.paramNames[i])
		}
	}

	res := &SearchResult{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, obj, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return nil, fmt.Errorf("all %d grid points failed", res.Skipped)
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, eval func(context.Context, map[string]float64) (trial.Summary, error), obj Objective, res *SearchResult) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		summary, err := eval(ctx, current)
		if err != nil {
			res.Skipped++
			return nil
		}
		val, err := Score(obj, summary)
		if err != nil {
			return err
		}

		res.Evals++
		if val < res.Score {
			res.Score = val
			best := make(map[string]float64, len(current))
			for k, v := range current {
				best[k] = v
			}
			res.Params = best
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, eval, obj, res); err != nil {
			return err
		}
	}
	return nil
}
