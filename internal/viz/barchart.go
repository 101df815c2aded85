package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Cell classes used when styling the rendered grid.
const (
	cellSpace = iota
	cellBar
	cellCount
	cellOverlay
	cellLabel
)

var eighths = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇'}

// Bars renders a histogram as a vertical bar chart fitted to width x
// height terminal cells. Each bucket gets a column of block runes with
// its count printed above the top and the bucket center printed below
// the baseline. When overlay is non-nil its values are drawn as dotted
// markers at the matching heights.
func Bars(edges []float64, counts []uint64, overlay []float64, width, height int) string {
	chars, classes := barGrid(edges, counts, overlay, width, height)
	if chars == nil {
		return ""
	}
	return styleGrid(chars, classes)
}

func barGrid(edges []float64, counts []uint64, overlay []float64, width, height int) ([][]rune, [][]byte) {
	if len(counts) == 0 || len(edges) != len(counts)+1 || width < 3 || height < 4 {
		return nil, nil
	}

	// Merge adjacent buckets when even one-cell bars overflow the width.
	if len(counts) > width {
		factor := (len(counts) + width - 1) / width
		edges, counts, overlay = mergeBuckets(edges, counts, overlay, factor)
	}

	barWidth, gap := barLayout(len(counts), width)

	chars := make([][]rune, height)
	classes := make([][]byte, height)
	for i := range chars {
		chars[i] = make([]rune, width)
		classes[i] = make([]byte, width)
		for j := range chars[i] {
			chars[i][j] = ' '
		}
	}

	var max uint64
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	plotRows := height - 2
	labelRow := height - 1
	lastLabelEnd := -2

	for i, c := range counts {
		x0 := i * (barWidth + gap)
		if x0+barWidth > width {
			break
		}

		var he int
		if max > 0 {
			he = int(math.Round(float64(c) / float64(max) * float64(plotRows*8)))
			if c > 0 && he == 0 {
				he = 1
			}
		}
		fullRows := he / 8
		rem := he % 8

		for r := 0; r < fullRows; r++ {
			row := height - 2 - r
			for x := x0; x < x0+barWidth; x++ {
				chars[row][x] = '█'
				classes[row][x] = cellBar
			}
		}
		topRow := height - 2 - fullRows
		countRow := topRow
		if rem > 0 && topRow >= 0 {
			for x := x0; x < x0+barWidth; x++ {
				chars[topRow][x] = eighths[rem-1]
				classes[topRow][x] = cellBar
			}
			countRow = topRow - 1
		}

		if label := countLabel(c, barWidth); label != "" && countRow >= 0 {
			writeCentered(chars[countRow], classes[countRow], label, x0, barWidth, cellCount)
		}

		if label := bucketLabel(edges[i], edges[i+1], barWidth); label != "" {
			start := x0 + (barWidth-len(label))/2
			if start > lastLabelEnd+1 && start+len(label) <= width {
				writeCentered(chars[labelRow], classes[labelRow], label, x0, barWidth, cellLabel)
				lastLabelEnd = start + len(label) - 1
			}
		}

		if overlay != nil && i < len(overlay) && max > 0 {
			rows := int(math.Round(overlay[i] / float64(max) * float64(plotRows)))
			row := height - 2 - rows
			if row < 0 {
				row = 0
			}
			if row <= height-2 {
				for x := x0; x < x0+barWidth; x++ {
					chars[row][x] = '┈'
					classes[row][x] = cellOverlay
				}
			}
		}
	}

	return chars, classes
}

// barLayout picks a bar width and gap so all buckets fit. Bars start
// at seven cells wide with a one cell gap and shrink as needed.
func barLayout(buckets, width int) (barWidth, gap int) {
	barWidth, gap = 7, 1
	for barWidth > 1 && buckets*barWidth+(buckets-1)*gap > width {
		barWidth--
	}
	if buckets*barWidth+(buckets-1)*gap > width {
		gap = 0
	}
	return
}

func mergeBuckets(edges []float64, counts []uint64, overlay []float64, factor int) ([]float64, []uint64, []float64) {
	n := (len(counts) + factor - 1) / factor
	mergedCounts := make([]uint64, n)
	mergedEdges := make([]float64, 0, n+1)
	var mergedOverlay []float64
	if overlay != nil {
		mergedOverlay = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		mergedEdges = append(mergedEdges, edges[i*factor])
		for j := i * factor; j < (i+1)*factor && j < len(counts); j++ {
			mergedCounts[i] += counts[j]
			if mergedOverlay != nil && j < len(overlay) {
				mergedOverlay[i] += overlay[j]
			}
		}
	}
	mergedEdges = append(mergedEdges, edges[len(edges)-1])

	return mergedEdges, mergedCounts, mergedOverlay
}

// countLabel formats a bar's count to fit the bar width, falling back
// from comma grouping to a short suffix form and then to nothing.
func countLabel(c uint64, width int) string {
	full := humanize.Comma(int64(c))
	if len(full) <= width {
		return full
	}
	short := shortCount(c)
	if len(short) <= width {
		return short
	}
	return ""
}

func shortCount(c uint64) string {
	switch {
	case c < 1000:
		return strconv.FormatUint(c, 10)
	case c < 1000000:
		return trimZero(fmt.Sprintf("%.1fk", float64(c)/1000))
	default:
		return trimZero(fmt.Sprintf("%.1fM", float64(c)/1000000))
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

func bucketLabel(lo, hi float64, width int) string {
	if width < 2 {
		return ""
	}
	center := (lo + hi) / 2
	s := strconv.FormatFloat(center, 'f', 1, 64)
	if center == math.Trunc(center) || len(s) > width {
		s = strconv.FormatFloat(center, 'f', 0, 64)
	}
	if len(s) > width {
		return ""
	}
	return s
}

func writeCentered(chars []rune, classes []byte, s string, x0, fieldWidth int, class byte) {
	start := x0 + (fieldWidth-len(s))/2
	if start < 0 {
		start = 0
	}
	for i, c := range s {
		x := start + i
		if x >= len(chars) {
			break
		}
		chars[x] = c
		classes[x] = class
	}
}

// styleGrid colors a rendered grid row by row, grouping runs of cells
// that share a class.
func styleGrid(chars [][]rune, classes [][]byte) string {
	barSt := primaryStyle()
	countSt := textStyle()
	overlaySt := accentStyle()
	labelSt := mutedStyle()

	var b strings.Builder
	for row := range chars {
		col := 0
		for col < len(chars[row]) {
			class := classes[row][col]
			end := col
			for end < len(chars[row]) && classes[row][end] == class {
				end++
			}
			seg := string(chars[row][col:end])
			switch class {
			case cellBar:
				b.WriteString(barSt.Render(seg))
			case cellCount:
				b.WriteString(countSt.Render(seg))
			case cellOverlay:
				b.WriteString(overlaySt.Render(seg))
			case cellLabel:
				b.WriteString(labelSt.Render(seg))
			default:
				b.WriteString(seg)
			}
			col = end
		}
		if row < len(chars)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
