package viz

import (
	"github.com/san-kum/cltlab/internal/stats"
)

// Curve draws the empirical density of a histogram as a braille
// polyline. When sigma is positive the matching normal density is
// dotted on top at the same scale, so convergence shows as the two
// shapes merging. The returned string is unstyled.
func Curve(edges []float64, counts []uint64, mu, sigma float64, width, height int) string {
	c := curveCanvas(edges, counts, mu, sigma, width, height)
	if c == nil {
		return ""
	}
	return c.String()
}

func curveCanvas(edges []float64, counts []uint64, mu, sigma float64, width, height int) *Canvas {
	if len(counts) == 0 || len(edges) != len(counts)+1 || width < 2 || height < 2 {
		return nil
	}

	canvas := NewCanvas(width, height)
	pw := width * 2
	ph := height * 4

	var total uint64
	for _, c := range counts {
		total += c
	}
	xMin := edges[0]
	xMax := edges[len(edges)-1]
	if total == 0 || xMax <= xMin {
		return canvas
	}

	densities := make([]float64, len(counts))
	yMax := 0.0
	for i, c := range counts {
		binWidth := edges[i+1] - edges[i]
		if binWidth > 0 {
			densities[i] = float64(c) / (float64(total) * binWidth)
		}
		if densities[i] > yMax {
			yMax = densities[i]
		}
	}
	if sigma > 0 {
		if peak := stats.NormalPDF(mu, mu, sigma); peak > yMax {
			yMax = peak
		}
	}
	if yMax == 0 {
		return canvas
	}

	toPx := func(x float64) int {
		return int((x - xMin) / (xMax - xMin) * float64(pw-1))
	}
	toPy := func(y float64) int {
		return (ph - 1) - int(y/yMax*float64(ph-1))
	}

	prevSet := false
	var prevX, prevY int
	for i, d := range densities {
		center := (edges[i] + edges[i+1]) / 2
		px := toPx(center)
		py := toPy(d)
		if prevSet {
			canvas.DrawLine(prevX, prevY, px, py)
		} else {
			canvas.Set(px, py)
		}
		prevX, prevY = px, py
		prevSet = true
	}

	if sigma > 0 {
		for px := 0; px < pw; px += 2 {
			x := xMin + (xMax-xMin)*float64(px)/float64(pw-1)
			canvas.Set(px, toPy(stats.NormalPDF(x, mu, sigma)))
		}
	}

	return canvas
}
