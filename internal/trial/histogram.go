package trial

import (
	"math"
	"strconv"

	"github.com/san-kum/cltlab/internal/dist"
)

// Layout fixes a histogram's bucket geometry: Buckets uniform buckets
// of Width covering [Lo, Hi).
type Layout struct {
	Lo      float64
	Hi      float64
	Buckets int
	Width   float64
}

// LayoutFor chooses bucket edges for sums of samples draws.
//
// Discrete bounded sources get a lattice-exact layout: achievable sums
// sit on a grid of the source's step, and each grid point is centered
// in its own bucket (a fair coin over 19 draws lands on the odd grid
// -19..19, twenty buckets of width 2). When the grid has more points
// than maxBuckets allows, whole grid points are grouped per bucket so
// edges never split a lattice point.
//
// Continuous sources cover mean ± 4 sigma of the limit normal, clipped
// to the source's hard support.
func LayoutFor(src dist.Source, samples, maxBuckets int) Layout {
	if maxBuckets < 3 {
		maxBuckets = 3
	}
	n := float64(samples)

	if d, ok := src.(dist.Discrete); ok {
		if sup, ok := src.(dist.Support); ok {
			step := d.Step()
			lo, hi := sup.Bounds()
			if step > 0 && !math.IsInf(lo, 0) && !math.IsInf(hi, 0) {
				return latticeLayout(n*lo, n*hi, step, maxBuckets)
			}
		}
	}

	mu := n * src.Mean()
	sigma := math.Sqrt(n * src.Variance())
	if sigma == 0 {
		return Layout{Lo: mu - 0.5, Hi: mu + 0.5, Buckets: 1, Width: 1}
	}

	lo, hi := mu-4*sigma, mu+4*sigma
	if sup, ok := src.(dist.Support); ok {
		blo, bhi := sup.Bounds()
		if !math.IsInf(blo, 0) && n*blo > lo {
			lo = n * blo
		}
		if !math.IsInf(bhi, 0) && n*bhi < hi {
			hi = n * bhi
		}
	}

	return Layout{
		Lo:      lo,
		Hi:      hi,
		Buckets: maxBuckets,
		Width:   (hi - lo) / float64(maxBuckets),
	}
}

func latticeLayout(sumLo, sumHi, step float64, maxBuckets int) Layout {
	points := int(math.Round((sumHi-sumLo)/step)) + 1
	perBucket := 1
	if points > maxBuckets {
		perBucket = (points + maxBuckets - 1) / maxBuckets
	}
	buckets := (points + perBucket - 1) / perBucket
	width := float64(perBucket) * step

	lo := sumLo - step/2
	return Layout{
		Lo:      lo,
		Hi:      lo + float64(buckets)*width,
		Buckets: buckets,
		Width:   width,
	}
}

// Center is the midpoint value of bucket i.
func (l Layout) Center(i int) float64 {
	return l.Lo + (float64(i)+0.5)*l.Width
}

// Edges returns the Buckets+1 bucket boundaries.
func (l Layout) Edges() []float64 {
	edges := make([]float64, l.Buckets+1)
	for i := range edges {
		edges[i] = l.Lo + float64(i)*l.Width
	}
	return edges
}

// Label formats bucket i's center for an axis.
func (l Layout) Label(i int) string {
	c := l.Center(i)
	if math.Abs(c-math.Round(c)) < 1e-9 {
		return strconv.FormatFloat(math.Round(c), 'f', 0, 64)
	}
	return strconv.FormatFloat(c, 'g', 3, 64)
}

// Histogram counts trial sums per bucket. Sums outside [Lo, Hi) land
// in the underflow or overflow counter instead of a bucket; NaN counts
// as overflow.
type Histogram struct {
	layout    Layout
	counts    []uint64
	underflow uint64
	overflow  uint64
	total     uint64
}

func NewHistogram(layout Layout) *Histogram {
	return &Histogram{
		layout: layout,
		counts: make([]uint64, layout.Buckets),
	}
}

func (h *Histogram) Add(sum float64) {
	if math.IsNaN(sum) {
		h.overflow++
		return
	}
	// Range-check on the float side so ±Inf never reaches the int
	// conversion below.
	if sum < h.layout.Lo {
		h.underflow++
		return
	}
	if sum >= h.layout.Hi {
		h.overflow++
		return
	}

	idx := int((sum - h.layout.Lo) / h.layout.Width)
	if idx >= h.layout.Buckets {
		idx = h.layout.Buckets - 1
	}
	h.counts[idx]++
	h.total++
}

// Observe makes a Histogram usable anywhere an Observer is.
func (h *Histogram) Observe(sum float64) { h.Add(sum) }

// Merge folds another histogram's counts into this one. Layouts must
// be identical.
func (h *Histogram) Merge(other *Histogram) error {
	if h.layout != other.layout {
		return ErrLayoutMismatch
	}
	for i, c := range other.counts {
		h.counts[i] += c
	}
	h.underflow += other.underflow
	h.overflow += other.overflow
	h.total += other.total
	return nil
}

func (h *Histogram) Reset() {
	for i := range h.counts {
		h.counts[i] = 0
	}
	h.underflow = 0
	h.overflow = 0
	h.total = 0
}

func (h *Histogram) Layout() Layout {
	return h.layout
}

// Counts returns a copy of the per-bucket counts.
func (h *Histogram) Counts() []uint64 {
	c := make([]uint64, len(h.counts))
	copy(c, h.counts)
	return c
}

func (h *Histogram) Count(i int) uint64 {
	return h.counts[i]
}

// Total is the number of sums that landed inside the layout.
func (h *Histogram) Total() uint64 {
	return h.total
}

func (h *Histogram) Underflow() uint64 { return h.underflow }

func (h *Histogram) Overflow() uint64 { return h.overflow }

func (h *Histogram) MaxCount() uint64 {
	var max uint64
	for _, c := range h.counts {
		if c > max {
			max = c
		}
	}
	return max
}
