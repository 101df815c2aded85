package stats

import "math"

// NormalCDF is the cumulative distribution of N(mu, sigma²) at x.
// A degenerate sigma collapses to a step at mu.
func NormalCDF(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		if x < mu {
			return 0
		}
		return 1
	}
	return 0.5 * math.Erfc(-(x-mu)/(sigma*math.Sqrt2))
}

// NormalPDF is the density of N(mu, sigma²) at x.
func NormalPDF(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	z := (x - mu) / sigma
	return math.Exp(-z*z/2) / (sigma * math.Sqrt(2*math.Pi))
}

// Acklam's rational approximation to the inverse normal CDF, with
// relative error below 1.15e-9 across (0, 1).
var (
	probitA = [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	probitB = [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	probitC = [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	probitD = [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}
)

// NormalQuantile returns z with NormalCDF(z, 0, 1) == p. Probability
// 0 and 1 map to the infinities; anything outside [0, 1] is NaN.
func NormalQuantile(p float64) float64 {
	switch {
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	case math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	}

	const pLow = 0.02425
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((probitC[0]*q+probitC[1])*q+probitC[2])*q+probitC[3])*q+probitC[4])*q + probitC[5]) /
			((((probitD[0]*q+probitD[1])*q+probitD[2])*q+probitD[3])*q + 1)
	case p > 1-pLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((probitC[0]*q+probitC[1])*q+probitC[2])*q+probitC[3])*q+probitC[4])*q + probitC[5]) /
			((((probitD[0]*q+probitD[1])*q+probitD[2])*q+probitD[3])*q + 1)
	}

	q := p - 0.5
	r := q * q
	return (((((probitA[0]*r+probitA[1])*r+probitA[2])*r+probitA[3])*r+probitA[4])*r + probitA[5]) * q /
		(((((probitB[0]*r+probitB[1])*r+probitB[2])*r+probitB[3])*r+probitB[4])*r + 1)
}

// ExpectedCounts returns, for each bucket between consecutive edges,
// the count the limit normal N(mu, sigma²) predicts out of total
// observations. edges must be ascending with len(edges) == buckets+1.
func ExpectedCounts(edges []float64, total, mu, sigma float64) []float64 {
	if len(edges) < 2 {
		return nil
	}
	expected := make([]float64, len(edges)-1)
	prev := NormalCDF(edges[0], mu, sigma)
	for i := 1; i < len(edges); i++ {
		cur := NormalCDF(edges[i], mu, sigma)
		expected[i-1] = total * (cur - prev)
		prev = cur
	}
	return expected
}

// minExpected is the classic floor for a valid chi-square cell.
const minExpected = 5

// ChiSquare computes the goodness-of-fit statistic between observed
// bucket counts and expected counts, pooling adjacent buckets until
// every pooled cell's expectation reaches the validity floor. The mu
// and sigma behind expected are the theoretical limit values, not
// fitted ones, so degrees of freedom are cells-1.
func ChiSquare(observed []uint64, expected []float64) (chi2 float64, dof int) {
	if len(observed) != len(expected) || len(observed) == 0 {
		return 0, 0
	}

	type cell struct {
		obs float64
		exp float64
	}
	var cells []cell
	var cur cell
	for i := range expected {
		cur.obs += float64(observed[i])
		cur.exp += expected[i]
		if cur.exp >= minExpected {
			cells = append(cells, cur)
			cur = cell{}
		}
	}
	// Leftover tail folds into the last closed cell.
	if cur.exp > 0 || cur.obs > 0 {
		if len(cells) == 0 {
			cells = append(cells, cur)
		} else {
			cells[len(cells)-1].obs += cur.obs
			cells[len(cells)-1].exp += cur.exp
		}
	}

	for _, c := range cells {
		if c.exp <= 0 {
			continue
		}
		d := c.obs - c.exp
		chi2 += d * d / c.exp
	}
	dof = len(cells) - 1
	if dof < 1 {
		dof = 1
	}
	return chi2, dof
}
