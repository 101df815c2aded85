package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cltlab/internal/stats"
)

// Pixel scales for rasterized frames. Braille dots become dotPx blocks;
// bar chart cells become cellPxW x cellPxH blocks.
const (
	dotPx   = 2
	cellPxW = 4
	cellPxH = 8
)

// Palette indices used by the rasterizers.
const (
	pxBackground = iota
	pxPrimary
	pxAccent
)

func themePalette() color.Palette {
	return color.Palette{
		hexRGBA(CurrentTheme.Background),
		hexRGBA(CurrentTheme.Primary),
		hexRGBA(CurrentTheme.Accent),
	}
}

func hexRGBA(c lipgloss.Color) color.RGBA {
	r, g, b := parseHex(string(c))
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// captureFrame rasterizes the current plot into one paletted gif frame
// at the size locked in when recording started.
func (m *Model) captureFrame() *image.Paletted {
	hist := m.runner.Histogram()
	edges := hist.Layout().Edges()
	counts := hist.Counts()
	moments := m.runner.Moments()
	sigma := overlaySigma(m.overlay, moments)

	switch m.view {
	case viewCurve:
		return rasterCanvas(curveCanvas(edges, counts, moments.Mean(), sigma, m.recW, m.recH))
	case viewQQ:
		return rasterCanvas(qqCanvas(m.quantiles, moments.Mean(), moments.StdDev(), m.recW, m.recH))
	default:
		var overlay []float64
		if sigma > 0 {
			overlay = stats.ExpectedCounts(edges, moments.Count(), moments.Mean(), sigma)
		}
		chars, classes := barGrid(edges, counts, overlay, m.recW, m.recH)
		return rasterCells(chars, classes)
	}
}

func rasterCanvas(c *Canvas) *image.Paletted {
	pal := themePalette()
	if c == nil {
		return image.NewPaletted(image.Rect(0, 0, 1, 1), pal)
	}

	dotsW, dotsH := c.Width*2, c.Height*4
	img := image.NewPaletted(image.Rect(0, 0, dotsW*dotPx, dotsH*dotPx), pal)
	for y := 0; y < dotsH; y++ {
		for x := 0; x < dotsW; x++ {
			if !c.At(x, y) {
				continue
			}
			fillBlock(img, x*dotPx, y*dotPx, dotPx, dotPx, pxPrimary)
		}
	}
	return img
}

func rasterCells(chars [][]rune, classes [][]byte) *image.Paletted {
	pal := themePalette()
	if len(chars) == 0 || len(chars[0]) == 0 {
		return image.NewPaletted(image.Rect(0, 0, 1, 1), pal)
	}

	w := len(chars[0])
	h := len(chars)
	img := image.NewPaletted(image.Rect(0, 0, w*cellPxW, h*cellPxH), pal)

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			x0 := col * cellPxW
			y0 := row * cellPxH
			switch classes[row][col] {
			case cellBar:
				filled := cellPxH * blockEighths(chars[row][col]) / 8
				fillBlock(img, x0, y0+cellPxH-filled, cellPxW, filled, pxPrimary)
			case cellOverlay:
				fillBlock(img, x0, y0+cellPxH/2, cellPxW, 1, pxAccent)
			}
		}
	}
	return img
}

func blockEighths(r rune) int {
	if r == '█' {
		return 8
	}
	for i, e := range eighths {
		if r == e {
			return i + 1
		}
	}
	return 0
}

func fillBlock(img *image.Paletted, x0, y0, w, h int, idx uint8) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			img.SetColorIndex(x0+dx, y0+dy, idx)
		}
	}
}

// saveGIF encodes the captured frames into an animated gif in the
// working directory, looping forever, and returns the file name. The
// frame delay mirrors the live frame interval.
func saveGIF(frames []*image.Paletted, frameMs int) (string, error) {
	if len(frames) == 0 {
		return "", fmt.Errorf("no frames captured")
	}

	delay := frameMs / 10
	if delay < 2 {
		delay = 2
	}

	g := &gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, delay)
	}

	name := fmt.Sprintf("cltlab_%d.gif", time.Now().Unix())
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return "", err
	}
	return name, nil
}
