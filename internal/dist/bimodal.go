package dist

import (
	"fmt"
	"math/rand"
)

// Bimodal is an equal mixture of two uniform lobes of width Width
// centered at ±Gap/2. About as far from normal as a bounded source
// gets, yet its sums still converge.
type Bimodal struct {
	Gap   float64
	Width float64
}

func NewBimodal() *Bimodal {
	return &Bimodal{Gap: 4, Width: 1}
}

func (b *Bimodal) Name() string {
	return "bimodal"
}

func (b *Bimodal) Sample(rng *rand.Rand) float64 {
	center := b.Gap / 2
	if rng.Intn(2) == 0 {
		center = -center
	}
	return center + (rng.Float64()-0.5)*b.Width
}

func (b *Bimodal) Mean() float64 {
	return 0
}

// Variance of center (±Gap/2 equally likely) plus variance of the
// independent uniform offset.
func (b *Bimodal) Variance() float64 {
	return b.Gap*b.Gap/4 + b.Width*b.Width/12
}

func (b *Bimodal) Bounds() (float64, float64) {
	half := b.Gap/2 + b.Width/2
	return -half, half
}

func (b *Bimodal) GetParams() map[string]float64 {
	return map[string]float64{
		"gap":   b.Gap,
		"width": b.Width,
	}
}

func (b *Bimodal) SetParam(name string, value float64) error {
	switch name {
	case "gap":
		if value < 0 {
			return fmt.Errorf("%w: gap %g must be non-negative", ErrParamBounds, value)
		}
		b.Gap = value
	case "width":
		if value <= 0 {
			return fmt.Errorf("%w: width %g must be positive", ErrParamBounds, value)
		}
		b.Width = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
