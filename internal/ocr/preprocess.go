package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	iimaging "github.com/ironsheep/icon-locator/internal/imaging"
)

// UpscaleFactor is the enlargement applied before recognition; small label
// glyphs read far better at twice their screen size.
const UpscaleFactor = 2

// Otsu returns the threshold t that maximizes the between-class variance of
// the histogram split into values <= t and values > t.
func Otsu(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	var sumAll float64
	for v, n := range hist {
		sumAll += float64(v * n)
	}

	var (
		best      uint8
		bestScore float64
		weightLow int
		sumLow    float64
	)
	for t := 0; t < 256; t++ {
		weightLow += hist[t]
		if weightLow == 0 {
			continue
		}
		weightHigh := total - weightLow
		if weightHigh == 0 {
			break
		}
		sumLow += float64(t * hist[t])

		meanLow := sumLow / float64(weightLow)
		meanHigh := (sumAll - sumLow) / float64(weightHigh)
		d := meanLow - meanHigh
		score := float64(weightLow) * float64(weightHigh) * d * d
		if score > bestScore {
			bestScore = score
			best = uint8(t)
		}
	}
	return best
}

// Binarize maps values above t to white and the rest to black.
func Binarize(img image.Image, t uint8) *image.Gray {
	if t == 255 {
		out := image.NewGray(img.Bounds())
		return out
	}
	return segment.Threshold(img, t+1)
}

// Preprocess prepares a label region for recognition: grayscale, Otsu
// binarization and a cubic upscale by UpscaleFactor. The result is anchored
// at (0,0).
func Preprocess(img image.Image) *image.NRGBA {
	gray := iimaging.ToGray(img)
	binary := Binarize(gray, Otsu(gray))
	b := binary.Bounds()
	return imaging.Resize(binary, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor, imaging.CatmullRom)
}
