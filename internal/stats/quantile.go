package stats

import "github.com/VividCortex/gohistogram"

// quantileBins trades memory for accuracy; 64 keeps p99 within a
// fraction of a bucket width at the trial volumes the UI reaches.
const quantileBins = 64

// Quantiles tracks streaming approximate quantiles of trial sums using
// a fixed-size bin-merging histogram.
type Quantiles struct {
	h *gohistogram.NumericHistogram
}

func NewQuantiles() *Quantiles {
	return &Quantiles{h: gohistogram.NewHistogram(quantileBins)}
}

func (q *Quantiles) Observe(x float64) {
	q.h.Add(x)
}

func (q *Quantiles) Reset() {
	q.h = gohistogram.NewHistogram(quantileBins)
}

func (q *Quantiles) Count() float64 {
	return q.h.Count()
}

func (q *Quantiles) Quantile(p float64) float64 {
	return q.h.Quantile(p)
}

func (q *Quantiles) P50() float64 { return q.h.Quantile(0.50) }
func (q *Quantiles) P90() float64 { return q.h.Quantile(0.90) }
func (q *Quantiles) P99() float64 { return q.h.Quantile(0.99) }

// CDF reports the approximate fraction of observed sums at or below x.
func (q *Quantiles) CDF(x float64) float64 {
	return q.h.CDF(x)
}
