package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// renderLabel draws text in basicfont, enlarged by scale with nearest
// neighbour sampling, dark on a light background.
func renderLabel(text string, scale int) *image.Gray {
	small := image.NewGray(image.Rect(0, 0, len(text)*7+20, 30))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.Gray{Y: 235}), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Gray{Y: 10}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 20),
	}
	d.DrawString(text)

	b := small.Bounds()
	big := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < big.Rect.Dy(); y++ {
		for x := 0; x < big.Rect.Dx(); x++ {
			big.Pix[y*big.Stride+x] = small.Pix[(y/scale)*small.Stride+x/scale]
		}
	}
	return big
}

func TestTesseract_CanceledContext(t *testing.T) {
	tess := NewTesseract("eng", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tess.Recognize(ctx, renderLabel("Notepad", 2)); !errors.Is(err, context.Canceled) {
		t.Errorf("Recognize with canceled context: got %v, want context.Canceled", err)
	}
}

func TestTesseract_Recognize(t *testing.T) {
	tess := NewTesseract("eng", "")
	if !tess.Available() {
		t.Skip("tesseract not available in this build")
	}

	text, err := tess.Recognize(context.Background(), renderLabel("Notepad", 3))
	if errors.Is(err, ErrUnavailable) {
		t.Skipf("tesseract could not initialize: %v", err)
	}
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	t.Logf("recognized %q", text)
	if text != strings.TrimSpace(text) {
		t.Errorf("text should be trimmed: %q", text)
	}
}

func TestTesseract_Read(t *testing.T) {
	tess := NewTesseract("eng", "")
	if !tess.Available() {
		if _, err := tess.Read(context.Background(), renderLabel("x", 1)); !errors.Is(err, ErrUnavailable) {
			t.Errorf("unavailable Read: got %v, want ErrUnavailable", err)
		}
		return
	}

	img := renderLabel("Notepad", 3)
	result, err := tess.Read(context.Background(), img)
	if errors.Is(err, ErrUnavailable) {
		t.Skipf("tesseract could not initialize: %v", err)
	}
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for _, w := range result.Words {
		if w.Bounds.X2 > img.Bounds().Dx() || w.Bounds.Y2 > img.Bounds().Dy() {
			t.Errorf("word %q bounds %+v outside source image", w.Text, w.Bounds)
		}
	}
}
