package dist

import (
	"fmt"
	"math/rand"
)

// Uniform draws from the half-open interval [Lo, Hi).
type Uniform struct {
	Lo float64
	Hi float64
}

func NewUniform() *Uniform {
	return &Uniform{Lo: 0, Hi: 1}
}

func (u *Uniform) Name() string {
	return "uniform"
}

func (u *Uniform) Sample(rng *rand.Rand) float64 {
	return u.Lo + rng.Float64()*(u.Hi-u.Lo)
}

func (u *Uniform) Mean() float64 {
	return (u.Lo + u.Hi) / 2
}

func (u *Uniform) Variance() float64 {
	w := u.Hi - u.Lo
	return w * w / 12
}

func (u *Uniform) Bounds() (float64, float64) {
	return u.Lo, u.Hi
}

func (u *Uniform) GetParams() map[string]float64 {
	return map[string]float64{
		"lo": u.Lo,
		"hi": u.Hi,
	}
}

func (u *Uniform) SetParam(name string, value float64) error {
	switch name {
	case "lo":
		if value >= u.Hi {
			return fmt.Errorf("%w: lo %g must be below hi %g", ErrParamBounds, value, u.Hi)
		}
		u.Lo = value
	case "hi":
		if value <= u.Lo {
			return fmt.Errorf("%w: hi %g must be above lo %g", ErrParamBounds, value, u.Lo)
		}
		u.Hi = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
