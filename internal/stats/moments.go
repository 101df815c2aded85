package stats

import "math"

// Moments tracks count, mean, and the second through fourth central
// moments of a stream in one pass. Updates use the standard stable
// recurrences, so 100 million trial sums accumulate without the
// catastrophic cancellation a naive sum-of-powers approach hits.
type Moments struct {
	n    float64
	mean float64
	m2   float64
	m3   float64
	m4   float64
}

func NewMoments() *Moments {
	return &Moments{}
}

// Observe folds one value into the running moments.
func (m *Moments) Observe(x float64) {
	n1 := m.n
	m.n++
	delta := x - m.mean
	deltaN := delta / m.n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1

	m.mean += deltaN
	m.m4 += term1*deltaN2*(m.n*m.n-3*m.n+3) + 6*deltaN2*m.m2 - 4*deltaN*m.m3
	m.m3 += term1*deltaN*(m.n-2) - 3*deltaN*m.m2
	m.m2 += term1
}

// Merge folds another accumulator into this one. The result is exactly
// what a single pass over both streams would have produced, which is
// what lets ensemble workers each keep their own accumulator.
func (m *Moments) Merge(other *Moments) {
	if other.n == 0 {
		return
	}
	if m.n == 0 {
		*m = *other
		return
	}

	na, nb := m.n, other.n
	n := na + nb
	delta := other.mean - m.mean
	delta2 := delta * delta

	mean := m.mean + delta*nb/n
	m2 := m.m2 + other.m2 + delta2*na*nb/n
	m3 := m.m3 + other.m3 +
		delta*delta2*na*nb*(na-nb)/(n*n) +
		3*delta*(na*other.m2-nb*m.m2)/n
	m4 := m.m4 + other.m4 +
		delta2*delta2*na*nb*(na*na-na*nb+nb*nb)/(n*n*n) +
		6*delta2*(na*na*other.m2+nb*nb*m.m2)/(n*n) +
		4*delta*(na*other.m3-nb*m.m3)/n

	m.n = n
	m.mean = mean
	m.m2 = m2
	m.m3 = m3
	m.m4 = m4
}

func (m *Moments) Reset() {
	*m = Moments{}
}

func (m *Moments) Count() float64 {
	return m.n
}

func (m *Moments) Mean() float64 {
	return m.mean
}

// Variance is the population variance of everything observed so far.
func (m *Moments) Variance() float64 {
	if m.n == 0 {
		return 0
	}
	return m.m2 / m.n
}

func (m *Moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// Skewness is the standardized third moment. Zero for symmetric data.
func (m *Moments) Skewness() float64 {
	if m.n == 0 || m.m2 == 0 {
		return 0
	}
	return math.Sqrt(m.n) * m.m3 / math.Pow(m.m2, 1.5)
}

// ExcessKurtosis is the standardized fourth moment minus 3, so the
// normal distribution sits at zero.
func (m *Moments) ExcessKurtosis() float64 {
	if m.n == 0 || m.m2 == 0 {
		return 0
	}
	return m.n*m.m4/(m.m2*m.m2) - 3
}

// JarqueBera combines skewness and excess kurtosis into one normality
// statistic. Under normality it is chi-squared with 2 degrees of
// freedom; values past ~6 reject at the 5% level.
func (m *Moments) JarqueBera() float64 {
	if m.n == 0 {
		return 0
	}
	s := m.Skewness()
	k := m.ExcessKurtosis()
	return m.n / 6 * (s*s + k*k/4)
}
