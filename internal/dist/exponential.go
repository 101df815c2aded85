package dist

import (
	"fmt"
	"math"
	"math/rand"
)

// Exponential draws from an exponential distribution with the given
// Rate. Strongly right-skewed, so sums of it show the theorem working
// hardest: the bell emerges only as the per-trial draw count grows.
type Exponential struct {
	Rate float64
}

func NewExponential() *Exponential {
	return &Exponential{Rate: 1}
}

func (e *Exponential) Name() string {
	return "exponential"
}

func (e *Exponential) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / e.Rate
}

func (e *Exponential) Mean() float64 {
	return 1 / e.Rate
}

func (e *Exponential) Variance() float64 {
	return 1 / (e.Rate * e.Rate)
}

func (e *Exponential) Bounds() (float64, float64) {
	return 0, math.Inf(1)
}

func (e *Exponential) GetParams() map[string]float64 {
	return map[string]float64{
		"rate": e.Rate,
	}
}

func (e *Exponential) SetParam(name string, value float64) error {
	switch name {
	case "rate":
		if value <= 0 {
			return fmt.Errorf("%w: rate %g must be positive", ErrParamBounds, value)
		}
		e.Rate = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
