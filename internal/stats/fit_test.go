package stats_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cltlab/internal/stats"
)

var _ = Describe("NormalCDF", func() {
	It("is one half at the mean", func() {
		Expect(stats.NormalCDF(0, 0, 1)).To(BeNumerically("~", 0.5, 1e-12))
		Expect(stats.NormalCDF(7, 7, 3)).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("hits the one-sigma table value", func() {
		Expect(stats.NormalCDF(1, 0, 1)).To(BeNumerically("~", 0.8413447460, 1e-6))
	})

	It("is symmetric about the mean", func() {
		for _, x := range []float64{0.3, 1.7, 4.2} {
			sum := stats.NormalCDF(-x, 0, 1) + stats.NormalCDF(x, 0, 1)
			Expect(sum).To(BeNumerically("~", 1, 1e-12))
		}
	})

	It("collapses to a step for degenerate sigma", func() {
		Expect(stats.NormalCDF(-0.001, 0, 0)).To(BeZero())
		Expect(stats.NormalCDF(0.001, 0, 0)).To(Equal(1.0))
	})
})

var _ = Describe("NormalPDF", func() {
	It("peaks at 1/sqrt(2*pi*sigma^2)", func() {
		Expect(stats.NormalPDF(0, 0, 1)).To(BeNumerically("~", 1/math.Sqrt(2*math.Pi), 1e-12))
		Expect(stats.NormalPDF(3, 3, 2)).To(BeNumerically("~", 1/(2*math.Sqrt(2*math.Pi)), 1e-12))
	})

	It("vanishes for degenerate sigma", func() {
		Expect(stats.NormalPDF(1, 0, 0)).To(BeZero())
	})
})

var _ = Describe("NormalQuantile", func() {
	It("is zero at the median", func() {
		Expect(stats.NormalQuantile(0.5)).To(BeNumerically("~", 0, 1e-9))
	})

	It("hits the table values", func() {
		Expect(stats.NormalQuantile(0.975)).To(BeNumerically("~", 1.959964, 1e-5))
		Expect(stats.NormalQuantile(0.8413447460)).To(BeNumerically("~", 1, 1e-6))
		Expect(stats.NormalQuantile(0.99)).To(BeNumerically("~", 2.326348, 1e-5))
	})

	It("is antisymmetric about one half", func() {
		for _, p := range []float64{0.01, 0.2, 0.45} {
			Expect(stats.NormalQuantile(p)).To(BeNumerically("~", -stats.NormalQuantile(1-p), 1e-9))
		}
	})

	It("round-trips through the CDF", func() {
		for _, p := range []float64{0.001, 0.05, 0.3, 0.7, 0.95, 0.999} {
			z := stats.NormalQuantile(p)
			Expect(stats.NormalCDF(z, 0, 1)).To(BeNumerically("~", p, 1e-8))
		}
	})

	It("handles the boundaries", func() {
		Expect(math.IsInf(stats.NormalQuantile(0), -1)).To(BeTrue())
		Expect(math.IsInf(stats.NormalQuantile(1), 1)).To(BeTrue())
		Expect(math.IsNaN(stats.NormalQuantile(-0.1))).To(BeTrue())
		Expect(math.IsNaN(stats.NormalQuantile(1.1))).To(BeTrue())
	})
})

var _ = Describe("ExpectedCounts", func() {
	It("distributes the whole total across wide edges", func() {
		edges := []float64{-40, -2, -1, 0, 1, 2, 40}
		expected := stats.ExpectedCounts(edges, 10000, 0, 1)

		Expect(expected).To(HaveLen(6))
		var sum float64
		for _, e := range expected {
			sum += e
		}
		Expect(sum).To(BeNumerically("~", 10000, 1e-3))
	})

	It("matches the central band of the standard normal", func() {
		edges := []float64{-1, 1}
		expected := stats.ExpectedCounts(edges, 1000, 0, 1)
		Expect(expected[0]).To(BeNumerically("~", 682.689, 0.01))
	})

	It("returns nil without at least two edges", func() {
		Expect(stats.ExpectedCounts([]float64{1}, 100, 0, 1)).To(BeNil())
	})
})

var _ = Describe("ChiSquare", func() {
	It("is zero when observed equals expected", func() {
		observed := []uint64{10, 20, 40, 20, 10}
		expected := []float64{10, 20, 40, 20, 10}

		chi2, dof := stats.ChiSquare(observed, expected)
		Expect(chi2).To(BeNumerically("~", 0, 1e-12))
		Expect(dof).To(Equal(4))
	})

	It("pools sparse edge buckets before scoring", func() {
		observed := []uint64{2, 4, 30, 30, 2, 4}
		expected := []float64{2, 4, 30, 30, 2, 4}

		chi2, dof := stats.ChiSquare(observed, expected)
		Expect(chi2).To(BeNumerically("~", 0, 1e-12))
		// 2+4 pools twice, so six buckets score as four cells.
		Expect(dof).To(Equal(3))
	})

	It("grows with disagreement", func() {
		expected := []float64{25, 25, 25, 25}
		close := []uint64{24, 26, 25, 25}
		far := []uint64{5, 45, 25, 25}

		chiClose, _ := stats.ChiSquare(close, expected)
		chiFar, _ := stats.ChiSquare(far, expected)
		Expect(chiClose).To(BeNumerically("<", chiFar))
	})

	It("rejects mismatched inputs", func() {
		chi2, dof := stats.ChiSquare([]uint64{1}, []float64{1, 2})
		Expect(chi2).To(BeZero())
		Expect(dof).To(BeZero())
	})
})
