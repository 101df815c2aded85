package export

import (
	"strings"
	"testing"
)

func TestHistogramSVGBars(t *testing.T) {
	edges := []float64{0, 1, 2, 3}
	counts := []uint64{10, 20, 5}

	doc := HistogramSVG(edges, counts, 1.5, 0.8, 640, 360, "#00ff00", "#ffaa00")
	if doc == "" {
		t.Fatal("valid histogram produced no svg")
	}
	if !strings.HasPrefix(doc, `<?xml version="1.0"`) {
		t.Fatal("missing xml declaration")
	}
	// Background rect plus one per nonzero bucket.
	if got := strings.Count(doc, "<rect"); got != 4 {
		t.Fatalf("expected 4 rects, got %d", got)
	}
	if !strings.Contains(doc, `fill="#00ff00"`) {
		t.Fatal("bar color missing")
	}
	if !strings.Contains(doc, `stroke="#ffaa00"`) {
		t.Fatal("curve overlay missing")
	}
	if !strings.Contains(doc, "stroke-dasharray") {
		t.Fatal("overlay should be dashed")
	}
	if got := strings.Count(doc, "<text"); got != 3 {
		t.Fatalf("expected 3 axis labels, got %d", got)
	}
	if !strings.Contains(doc, ">20</text>") {
		t.Fatal("peak count label missing")
	}
	if strings.Contains(doc, "NaN") {
		t.Fatal("svg contains NaN coordinates")
	}
}

func TestHistogramSVGNoCurveWithoutSigma(t *testing.T) {
	edges := []float64{0, 1, 2}
	counts := []uint64{3, 7}

	doc := HistogramSVG(edges, counts, 1, 0, 640, 360, "#00ff00", "#ffaa00")
	if strings.Contains(doc, "<path") {
		t.Fatal("sigma 0 should skip the curve")
	}
}

func TestHistogramSVGSkipsZeroBars(t *testing.T) {
	edges := []float64{0, 1, 2, 3}
	counts := []uint64{0, 9, 0}

	doc := HistogramSVG(edges, counts, 1.5, 0, 640, 360, "#00ff00", "#ffaa00")
	if got := strings.Count(doc, "<rect"); got != 2 {
		t.Fatalf("zero buckets should draw nothing: %d rects", got)
	}
}

func TestHistogramSVGRejectsBadInput(t *testing.T) {
	if HistogramSVG(nil, nil, 0, 0, 640, 360, "a", "b") != "" {
		t.Fatal("empty input should produce no svg")
	}
	if HistogramSVG([]float64{0, 1}, []uint64{1, 2}, 0, 0, 640, 360, "a", "b") != "" {
		t.Fatal("mismatched edges should produce no svg")
	}
	if HistogramSVG([]float64{0, 1}, []uint64{0}, 0, 0, 640, 360, "a", "b") != "" {
		t.Fatal("all zero counts with no curve should produce no svg")
	}
}

func TestCanvasSVGDots(t *testing.T) {
	// One cell with the top-left and bottom-right dots set.
	grid := [][]rune{{0x2800 | 0x01 | 0x80}}

	doc := CanvasSVG(grid, 4, "#00ff00")
	if got := strings.Count(doc, "<circle"); got != 2 {
		t.Fatalf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(doc, `width="8"`) || !strings.Contains(doc, `height="16"`) {
		t.Fatal("svg dimensions should scale dots by 4")
	}
}

func TestCanvasSVGEmptyGrid(t *testing.T) {
	if CanvasSVG(nil, 4, "#fff") != "" {
		t.Fatal("nil grid should produce no svg")
	}
	doc := CanvasSVG([][]rune{{0x2800, 0x2800}}, 4, "#fff")
	if strings.Count(doc, "<circle") != 0 {
		t.Fatal("blank cells should draw no circles")
	}
}

func TestSeriesSVGPath(t *testing.T) {
	doc := SeriesSVG([]float64{1, 4, 2, 8, 5}, 400, 200, "#00ffff")
	if doc == "" {
		t.Fatal("valid series produced no svg")
	}
	if got := strings.Count(doc, " L"); got != 4 {
		t.Fatalf("expected 4 line segments, got %d", got)
	}
	if !strings.Contains(doc, `stroke="#00ffff"`) {
		t.Fatal("stroke color missing")
	}
}

func TestSeriesSVGFlatSeries(t *testing.T) {
	doc := SeriesSVG([]float64{3, 3, 3}, 400, 200, "#fff")
	if doc == "" {
		t.Fatal("flat series should still render")
	}
	if strings.Contains(doc, "NaN") {
		t.Fatal("flat series produced NaN coordinates")
	}
}

func TestSeriesSVGRejectsBadInput(t *testing.T) {
	if SeriesSVG([]float64{1}, 400, 200, "#fff") != "" {
		t.Fatal("single point should produce no svg")
	}
	if SeriesSVG(nil, 400, 200, "#fff") != "" {
		t.Fatal("nil series should produce no svg")
	}
}
