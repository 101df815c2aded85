package dist

import (
	"fmt"
	"math/rand"
)

// Coin is a ±1 step: +1 with probability Bias, otherwise -1. With the
// default fair bias this is the original demo's source; 19 draws summed
// per trial walk the odd lattice -19..19.
type Coin struct {
	Bias float64
}

func NewCoin() *Coin {
	return &Coin{Bias: 0.5}
}

func (c *Coin) Name() string {
	return "coin"
}

func (c *Coin) Sample(rng *rand.Rand) float64 {
	if rng.Float64() < c.Bias {
		return 1
	}
	return -1
}

func (c *Coin) Mean() float64 {
	return 2*c.Bias - 1
}

func (c *Coin) Variance() float64 {
	return 4 * c.Bias * (1 - c.Bias)
}

func (c *Coin) Step() float64 {
	return 2
}

func (c *Coin) Bounds() (float64, float64) {
	return -1, 1
}

func (c *Coin) GetParams() map[string]float64 {
	return map[string]float64{
		"bias": c.Bias,
	}
}

func (c *Coin) SetParam(name string, value float64) error {
	switch name {
	case "bias":
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: bias %g not in [0,1]", ErrParamBounds, value)
		}
		c.Bias = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
