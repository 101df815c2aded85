package dist

import (
	"errors"
	"math/rand"
)

// Domain errors for source parameters.
var (
	// ErrUnknownParam indicates a parameter name the source does not have.
	ErrUnknownParam = errors.New("dist: unknown parameter")

	// ErrParamBounds indicates a parameter value outside its valid range.
	ErrParamBounds = errors.New("dist: parameter out of valid bounds")
)

// Source is a random value generator with known first and second moments.
// Mean and Variance are exact closed forms, not estimates; the limit
// normal for sums of n draws is N(n*Mean, n*Variance).
type Source interface {
	Name() string
	Sample(rng *rand.Rand) float64
	Mean() float64
	Variance() float64
}

// Discrete marks sources whose samples lie on a lattice. Step is the
// spacing between achievable values (coin: 2, die: 1), which lets
// histogram layouts give every achievable sum its own bucket.
type Discrete interface {
	Step() float64
}

// Support marks sources with hard sample bounds. Layouts clip their
// ranges to n*lo..n*hi so no bucket covers impossible sums.
type Support interface {
	Bounds() (lo, hi float64)
}

// Configurable sources expose tunable parameters for live adjustment
// and sweeps.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
