package stats_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cltlab/internal/stats"
)

// twoPass computes reference moments the textbook way: mean first,
// then centered power sums.
func twoPass(data []float64) (mean, variance, skew, exKurt float64) {
	n := float64(len(data))
	for _, x := range data {
		mean += x
	}
	mean /= n

	var m2, m3, m4 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	variance = m2 / n
	skew = math.Sqrt(n) * m3 / math.Pow(m2, 1.5)
	exKurt = n*m4/(m2*m2) - 3
	return
}

var _ = Describe("Moments", func() {
	var data []float64

	BeforeEach(func() {
		rng := rand.New(rand.NewSource(11))
		data = make([]float64, 5000)
		for i := range data {
			data[i] = rng.NormFloat64()*2 + 5
		}
	})

	It("matches a two-pass reference after one pass", func() {
		m := stats.NewMoments()
		for _, x := range data {
			m.Observe(x)
		}

		mean, variance, skew, exKurt := twoPass(data)
		Expect(m.Count()).To(Equal(5000.0))
		Expect(m.Mean()).To(BeNumerically("~", mean, 1e-9))
		Expect(m.Variance()).To(BeNumerically("~", variance, 1e-9))
		Expect(m.Skewness()).To(BeNumerically("~", skew, 1e-9))
		Expect(m.ExcessKurtosis()).To(BeNumerically("~", exKurt, 1e-9))
	})

	It("merges two halves into exactly the single-pass result", func() {
		whole := stats.NewMoments()
		left := stats.NewMoments()
		right := stats.NewMoments()

		for i, x := range data {
			whole.Observe(x)
			if i < len(data)/2 {
				left.Observe(x)
			} else {
				right.Observe(x)
			}
		}
		left.Merge(right)

		Expect(left.Count()).To(Equal(whole.Count()))
		Expect(left.Mean()).To(BeNumerically("~", whole.Mean(), 1e-9))
		Expect(left.Variance()).To(BeNumerically("~", whole.Variance(), 1e-9))
		Expect(left.Skewness()).To(BeNumerically("~", whole.Skewness(), 1e-9))
		Expect(left.ExcessKurtosis()).To(BeNumerically("~", whole.ExcessKurtosis(), 1e-9))
	})

	It("treats merging an empty accumulator as a no-op", func() {
		m := stats.NewMoments()
		m.Observe(1)
		m.Observe(3)

		m.Merge(stats.NewMoments())
		Expect(m.Count()).To(Equal(2.0))
		Expect(m.Mean()).To(Equal(2.0))

		empty := stats.NewMoments()
		empty.Merge(m)
		Expect(empty.Count()).To(Equal(2.0))
		Expect(empty.Mean()).To(Equal(2.0))
	})

	It("scores a pure ±1 stream with the closed-form Jarque-Bera", func() {
		m := stats.NewMoments()
		n := 1000
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				m.Observe(1)
			} else {
				m.Observe(-1)
			}
		}

		// Symmetric two-point mass: skew 0, excess kurtosis -2,
		// so JB = n/6 · (0 + 4/4) = n/6.
		Expect(m.Skewness()).To(BeNumerically("~", 0, 1e-9))
		Expect(m.ExcessKurtosis()).To(BeNumerically("~", -2, 1e-9))
		Expect(m.JarqueBera()).To(BeNumerically("~", float64(n)/6, 1e-6))
	})

	It("returns zeros before any observation and after Reset", func() {
		m := stats.NewMoments()
		Expect(m.Variance()).To(BeZero())
		Expect(m.Skewness()).To(BeZero())
		Expect(m.JarqueBera()).To(BeZero())

		m.Observe(4)
		m.Reset()
		Expect(m.Count()).To(BeZero())
		Expect(m.Mean()).To(BeZero())
	})
})

var _ = Describe("Quantiles", func() {
	It("tracks the middle and tails of a uniform stream", func() {
		q := stats.NewQuantiles()
		rng := rand.New(rand.NewSource(12))
		for i := 0; i < 10000; i++ {
			q.Observe(rng.Float64() * 100)
		}

		Expect(q.Count()).To(Equal(10000.0))
		Expect(q.P50()).To(BeNumerically("~", 50, 5))
		Expect(q.P90()).To(BeNumerically("~", 90, 5))
		Expect(q.CDF(50)).To(BeNumerically("~", 0.5, 0.05))
	})

	It("starts over after Reset", func() {
		q := stats.NewQuantiles()
		q.Observe(10)
		q.Reset()
		Expect(q.Count()).To(BeZero())
	})
})
