package viz

import (
	"github.com/san-kum/cltlab/internal/stats"
)

const qqProbes = 99

// QQ draws a normal quantile-quantile plot on a braille canvas. Sample
// quantiles are standardized by mu and sigma and plotted against the
// standard normal quantiles over [-3, 3] on both axes, with the
// identity line dotted underneath. Points hugging the line mean the
// sums look normal; tails peeling away mean they do not yet.
func QQ(q *stats.Quantiles, mu, sigma float64, width, height int) string {
	c := qqCanvas(q, mu, sigma, width, height)
	if c == nil {
		return ""
	}
	return c.String()
}

func qqCanvas(q *stats.Quantiles, mu, sigma float64, width, height int) *Canvas {
	if width < 2 || height < 2 {
		return nil
	}

	canvas := NewCanvas(width, height)
	pw := width * 2
	ph := height * 4

	toPx := func(z float64) int {
		return int((z + 3) / 6 * float64(pw-1))
	}
	toPy := func(z float64) int {
		return (ph - 1) - int((z+3)/6*float64(ph-1))
	}

	canvas.DrawDottedLine(toPx(-3), toPy(-3), toPx(3), toPy(3), 2)

	if q == nil || q.Count() < 8 || sigma <= 0 {
		return canvas
	}

	for k := 1; k <= qqProbes; k++ {
		p := float64(k) / (qqProbes + 1)
		z := stats.NormalQuantile(p)
		emp := (q.Quantile(p) - mu) / sigma
		if emp < -3 || emp > 3 {
			continue
		}
		canvas.Set(toPx(z), toPy(emp))
	}

	return canvas
}
