package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/cltlab/internal/stats"
)

func TestCanvasSetAt(t *testing.T) {
	c := NewCanvas(10, 8)
	if c.At(3, 5) {
		t.Fatal("dot set on a fresh canvas")
	}
	c.Set(3, 5)
	if !c.At(3, 5) {
		t.Fatal("Set(3,5) not visible through At")
	}
	c.Unset(3, 5)
	if c.At(3, 5) {
		t.Fatal("Unset left the dot set")
	}

	c.Set(-1, 2)
	c.Set(100, 100)
	if c.At(-1, 2) || c.At(100, 100) {
		t.Fatal("out of range Set should be a no-op")
	}
}

func TestCanvasStringDims(t *testing.T) {
	c := NewCanvas(10, 8)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("10x8 cell canvas should render 8 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 10 {
			t.Fatalf("row %d has %d cells, want 10", i, n)
		}
	}

	c.Set(19, 31)
	if !c.At(19, 31) {
		t.Fatal("dot space should cover 2x4 dots per cell")
	}
	c.Set(20, 31)
	if c.At(20, 31) {
		t.Fatal("dot past the last column should be ignored")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(8, 8)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.At(i, i) {
			t.Fatalf("diagonal missing dot at (%d,%d)", i, i)
		}
	}
}

func TestCanvasDottedLine(t *testing.T) {
	c := NewCanvas(8, 4)
	c.DrawDottedLine(0, 0, 7, 0, 2)
	if !c.At(0, 0) || !c.At(2, 0) || !c.At(4, 0) {
		t.Fatal("stride 2 should keep even dots")
	}
	if c.At(1, 0) || c.At(3, 0) {
		t.Fatal("stride 2 should skip odd dots")
	}
}

func TestCanvasFillColumn(t *testing.T) {
	c := NewCanvas(8, 8)
	c.FillColumn(2, 6, 1)
	for y := 1; y <= 6; y++ {
		if !c.At(2, y) {
			t.Fatalf("column dot (2,%d) not set", y)
		}
	}
	if c.At(2, 0) || c.At(2, 7) {
		t.Fatal("fill leaked past the endpoints")
	}
}

func TestBarLayout(t *testing.T) {
	cases := []struct {
		buckets, width   int
		wantBar, wantGap int
	}{
		{5, 80, 7, 1},
		{20, 80, 3, 1},
		{41, 74, 1, 0},
		{3, 200, 7, 1},
	}
	for _, tc := range cases {
		bar, gap := barLayout(tc.buckets, tc.width)
		if bar != tc.wantBar || gap != tc.wantGap {
			t.Errorf("barLayout(%d, %d) = %d,%d want %d,%d",
				tc.buckets, tc.width, bar, gap, tc.wantBar, tc.wantGap)
		}
		if need := tc.buckets*bar + (tc.buckets-1)*gap; need > tc.width {
			t.Errorf("layout %d,%d does not fit %d buckets in %d cells", bar, gap, tc.buckets, tc.width)
		}
	}
}

func barCellHeight(chars [][]rune, classes [][]byte, col int) int {
	h := 0
	for row := range chars {
		if classes[row][col] == cellBar {
			h++
		}
	}
	return h
}

func TestBarGridHeights(t *testing.T) {
	edges := []float64{0, 1, 2, 3}
	counts := []uint64{1, 4, 2}
	chars, classes := barGrid(edges, counts, nil, 40, 12)
	if chars == nil {
		t.Fatal("barGrid returned nil for valid input")
	}
	if len(chars) != 12 || len(chars[0]) != 40 {
		t.Fatalf("grid is %dx%d, want 12x40", len(chars), len(chars[0]))
	}

	h0 := barCellHeight(chars, classes, 0)
	h1 := barCellHeight(chars, classes, 8)
	h2 := barCellHeight(chars, classes, 16)
	if h1 <= h0 || h1 <= h2 {
		t.Fatalf("tallest count should give the tallest bar: got %d %d %d", h0, h1, h2)
	}
	if h0 == 0 || h2 == 0 {
		t.Fatal("nonzero counts should draw at least one cell")
	}
	if h1 != 10 {
		t.Fatalf("max bar should fill the %d plot rows, got %d", 10, h1)
	}
}

func TestBarGridCountLabels(t *testing.T) {
	edges := []float64{0, 1, 2}
	counts := []uint64{1000, 500}
	chars, _ := barGrid(edges, counts, nil, 40, 12)

	var flat strings.Builder
	for _, row := range chars {
		flat.WriteString(string(row))
	}
	if !strings.Contains(flat.String(), "1,000") {
		t.Fatal("wide bars should carry comma grouped counts")
	}
	if !strings.Contains(flat.String(), "500") {
		t.Fatal("missing count label for second bar")
	}
}

func TestBarGridCenterLabels(t *testing.T) {
	edges := []float64{-0.5, 0.5, 1.5, 2.5}
	counts := []uint64{5, 5, 5}
	chars, classes := barGrid(edges, counts, nil, 40, 12)

	bottom := len(chars) - 1
	var labels strings.Builder
	for col := range chars[bottom] {
		if classes[bottom][col] == cellLabel {
			labels.WriteRune(chars[bottom][col])
		}
	}
	for _, want := range []string{"0", "1", "2"} {
		if !strings.Contains(labels.String(), want) {
			t.Fatalf("baseline labels %q missing center %s", labels.String(), want)
		}
	}
}

func TestBarGridOverlayMarkers(t *testing.T) {
	edges := []float64{0, 1, 2}
	counts := []uint64{100, 100}
	overlay := []float64{50, 100}
	chars, classes := barGrid(edges, counts, overlay, 40, 12)

	found := false
	for row := range chars {
		for col := range chars[row] {
			if classes[row][col] == cellOverlay {
				if chars[row][col] != '┈' {
					t.Fatalf("overlay cell holds %q", chars[row][col])
				}
				found = true
			}
		}
	}
	if !found {
		t.Fatal("overlay values drew no markers")
	}
}

func TestBarGridRejectsBadInput(t *testing.T) {
	if c, _ := barGrid(nil, nil, nil, 40, 12); c != nil {
		t.Fatal("empty histogram should render nothing")
	}
	if c, _ := barGrid([]float64{0, 1}, []uint64{1, 2}, nil, 40, 12); c != nil {
		t.Fatal("mismatched edges should render nothing")
	}
	if c, _ := barGrid([]float64{0, 1}, []uint64{1}, nil, 2, 12); c != nil {
		t.Fatal("tiny width should render nothing")
	}
}

func TestMergeBuckets(t *testing.T) {
	edges := []float64{0, 1, 2, 3, 4, 5, 6}
	counts := []uint64{1, 2, 3, 4, 5, 6}
	overlay := []float64{1, 1, 1, 1, 1, 1}

	me, mc, mo := mergeBuckets(edges, counts, overlay, 2)
	if len(mc) != 3 {
		t.Fatalf("merge by 2 of 6 buckets should give 3, got %d", len(mc))
	}
	if mc[0] != 3 || mc[1] != 7 || mc[2] != 11 {
		t.Fatalf("merged counts wrong: %v", mc)
	}
	if len(me) != 4 || me[0] != 0 || me[3] != 6 {
		t.Fatalf("merged edges wrong: %v", me)
	}
	if mo[0] != 2 || mo[1] != 2 || mo[2] != 2 {
		t.Fatalf("merged overlay wrong: %v", mo)
	}

	var total, mergedTotal uint64
	for _, c := range counts {
		total += c
	}
	for _, c := range mc {
		mergedTotal += c
	}
	if total != mergedTotal {
		t.Fatalf("merging lost counts: %d vs %d", total, mergedTotal)
	}
}

func TestBarsEmptyInput(t *testing.T) {
	if s := Bars(nil, nil, nil, 40, 10); s != "" {
		t.Fatal("Bars should return empty for no data")
	}
}

func TestCountLabel(t *testing.T) {
	cases := []struct {
		c     uint64
		width int
		want  string
	}{
		{1234567, 9, "1,234,567"},
		{1234567, 7, "1.2M"},
		{1234567, 3, ""},
		{950, 3, "950"},
		{12, 2, "12"},
		{1500, 4, "1.5k"},
	}
	for _, tc := range cases {
		if got := countLabel(tc.c, tc.width); got != tc.want {
			t.Errorf("countLabel(%d, %d) = %q want %q", tc.c, tc.width, got, tc.want)
		}
	}
}

func TestBlockEighths(t *testing.T) {
	if blockEighths('█') != 8 {
		t.Fatal("full block should be 8 eighths")
	}
	if blockEighths('▃') != 3 {
		t.Fatal("▃ should be 3 eighths")
	}
	if blockEighths('x') != 0 {
		t.Fatal("non block rune should be 0")
	}
}

func TestCurveDims(t *testing.T) {
	edges := make([]float64, 11)
	for i := range edges {
		edges[i] = float64(i)
	}
	counts := []uint64{1, 3, 8, 15, 22, 22, 15, 8, 3, 1}

	s := Curve(edges, counts, 5, 2, 30, 8)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("curve has %d rows, want 8", len(lines))
	}
	if n := len([]rune(lines[0])); n != 30 {
		t.Fatalf("curve row has %d cells, want 30", n)
	}

	drawn := false
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			drawn = true
			break
		}
	}
	if !drawn {
		t.Fatal("curve drew no dots")
	}
}

func TestCurveEmptyData(t *testing.T) {
	edges := []float64{0, 1, 2}
	s := Curve(edges, []uint64{0, 0}, 1, 0, 20, 6)
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			t.Fatal("empty histogram should leave a blank canvas")
		}
	}
}

func TestQQNormalSamplesHugDiagonal(t *testing.T) {
	q := stats.NewQuantiles()
	for k := 1; k < 2000; k++ {
		q.Observe(stats.NormalQuantile(float64(k) / 2000))
	}

	s := QQ(q, 0, 1, 30, 15)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 15 {
		t.Fatalf("qq has %d rows, want 15", len(lines))
	}

	dots := 0
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			dots++
		}
	}
	if dots < 20 {
		t.Fatalf("qq plot looks empty: %d cells with dots", dots)
	}
}

func TestQQWithoutData(t *testing.T) {
	s := QQ(nil, 0, 0, 20, 10)
	if s == "" {
		t.Fatal("qq should still draw the reference line without data")
	}
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme("matrix")

	SetTheme("matrix")
	seen := map[string]bool{"matrix": true}
	for i := 1; i < len(Themes); i++ {
		seen[NextTheme()] = true
	}
	if len(seen) != len(Themes) {
		t.Fatalf("cycling visited %d themes, want %d", len(seen), len(Themes))
	}
	if name := NextTheme(); name != "matrix" {
		t.Fatalf("full cycle should wrap to matrix, got %s", name)
	}
}

func TestGetThemeFallback(t *testing.T) {
	if GetTheme("nope").Name != "matrix" {
		t.Fatal("unknown theme should fall back to matrix")
	}
}

func TestParseHex(t *testing.T) {
	r, g, b := parseHex("#00ff00")
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("parseHex(#00ff00) = %d,%d,%d", r, g, b)
	}
	r, g, b = parseHex("bogus")
	if r != 255 || g != 255 || b != 255 {
		t.Fatal("bad hex should fall back to white")
	}
}
