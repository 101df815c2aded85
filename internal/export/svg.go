package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cltlab/internal/stats"
)

const (
	svgBackground = "#0a0a0a"
	svgLabel      = "#888888"
)

// HistogramSVG renders bucket counts as an SVG bar chart. When sigma
// is positive the normal curve with the given moments is dashed over
// the bars at the same count scale.
func HistogramSVG(edges []float64, counts []uint64, mu, sigma float64, width, height int, barColor, curveColor string) string {
	if len(counts) == 0 || len(edges) != len(counts)+1 || width < 10 || height < 10 {
		return ""
	}

	var maxCount uint64
	var total float64
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
		total += float64(c)
	}

	var expected []float64
	yMax := float64(maxCount)
	if sigma > 0 && total > 0 {
		expected = stats.ExpectedCounts(edges, total, mu, sigma)
		for _, e := range expected {
			if e > yMax {
				yMax = e
			}
		}
	}
	if yMax == 0 {
		return ""
	}

	w := float64(width)
	h := float64(height)
	slot := w / float64(len(counts))
	barW := slot - 1
	if barW < 1 {
		barW = slot
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, svgBackground, barColor))

	for i, c := range counts {
		barH := float64(c) / yMax * h
		if barH == 0 {
			continue
		}
		x := float64(i) * slot
		y := h - barH
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, x, y, barW, barH))
	}
	sb.WriteString("</g>\n")

	if len(expected) > 0 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3" d="M`, curveColor))
		for i, e := range expected {
			x := (float64(i) + 0.5) * slot
			y := h - e/yMax*h
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString(fmt.Sprintf(`<g fill="%s" font-family="monospace" font-size="10">
<text x="2" y="11">%d</text>
<text x="2" y="%.1f">%g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%g</text>
</g>
`, svgLabel, maxCount, h-3, edges[0], w-2, h-3, edges[len(edges)-1]))

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasSVG converts a braille cell grid to SVG, one circle per set
// dot. The grid is the raw rune grid of a canvas; scale is the pixel
// size of one braille dot.
func CanvasSVG(grid [][]rune, scale float64, fg string) string {
	if len(grid) == 0 || len(grid[0]) == 0 || scale <= 0 {
		return ""
	}

	rows := len(grid)
	cols := len(grid[0])
	width := float64(cols) * scale * 2
	height := float64(rows) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, svgBackground, fg))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < rows; row++ {
		for col := 0; col < len(grid[row]); col++ {
			r := grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG draws one metric series as a polyline over its index, with
// vertical padding so flat series stay visible.
func SeriesSVG(values []float64, width, height int, stroke string) string {
	if len(values) < 2 || width < 10 || height < 10 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgBackground, stroke))

	for i, v := range values {
		x := float64(i) / float64(len(values)-1) * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
