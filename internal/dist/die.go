package dist

import (
	"fmt"
	"math"
	"math/rand"
)

// Die is a uniform integer roll 1..Sides.
type Die struct {
	Sides int
}

func NewDie() *Die {
	return &Die{Sides: 6}
}

func (d *Die) Name() string {
	return "die"
}

func (d *Die) Sample(rng *rand.Rand) float64 {
	return float64(1 + rng.Intn(d.Sides))
}

func (d *Die) Mean() float64 {
	return float64(d.Sides+1) / 2
}

func (d *Die) Variance() float64 {
	s := float64(d.Sides)
	return (s*s - 1) / 12
}

func (d *Die) Step() float64 {
	return 1
}

func (d *Die) Bounds() (float64, float64) {
	return 1, float64(d.Sides)
}

func (d *Die) GetParams() map[string]float64 {
	return map[string]float64{
		"sides": float64(d.Sides),
	}
}

func (d *Die) SetParam(name string, value float64) error {
	switch name {
	case "sides":
		sides := int(math.Round(value))
		if sides < 2 {
			return fmt.Errorf("%w: sides %g must be at least 2", ErrParamBounds, value)
		}
		d.Sides = sides
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
