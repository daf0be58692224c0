package grounding

import (
	"image"
	"os"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

func uniformGray(width, height int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(g.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[y*g.Stride+x] = v
		}
	}
}

// drawChecker paints a size x size checkerboard of cell x cell squares with
// its top-left corner at (x0, y0).
func drawChecker(g *image.Gray, x0, y0, size, cell int, a, b uint8) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := a
			if (x/cell+y/cell)%2 == 1 {
				v = b
			}
			g.Pix[(y0+y)*g.Stride+x0+x] = v
		}
	}
}

// drawStrokes paints count vertical bars width pixels wide, spacing pixels
// apart, starting at column x0 and covering rows [y0, y1).
func drawStrokes(g *image.Gray, x0, count, spacing, width, y0, y1 int, v uint8) {
	for k := 0; k < count; k++ {
		fillRect(g, image.Rect(x0+k*spacing, y0, x0+k*spacing+width, y1), v)
	}
}

// textured fills a frame with blocks of pseudo-random gray values.
func textured(width, height, block int, seed uint32) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	state := seed
	values := make([]uint8, 0)
	for by := 0; by < (height+block-1)/block; by++ {
		for bx := 0; bx < (width+block-1)/block; bx++ {
			state = state*1664525 + 1013904223
			values = append(values, uint8(40+(state>>24)%180))
		}
	}
	cols := (width + block - 1) / block
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Pix[y*g.Stride+x] = values[(y/block)*cols+x/block]
		}
	}
	return g
}

func subGray(g *image.Gray, r image.Rectangle) *image.Gray {
	return imaging.ToGray(g.SubImage(r))
}

// iconScene is an 800x600 desktop with one textured icon centered near
// (400, 300) and a 20 px tall block of glyph-like strokes centered at
// (390, 360) where its label would be.
func iconScene() *imaging.Frame {
	g := uniformGray(800, 600, 175)
	drawChecker(g, 368, 268, 64, 16, 100, 250)
	drawStrokes(g, 358, 7, 10, 5, 350, 370, 110)
	return imaging.NewFrameFromGray(g)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Retry.DelayMs = 0
	cfg.Template.Path = "testdata/does-not-exist.png"
	return cfg
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
