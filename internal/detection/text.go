package detection

import "image"

// ColumnProfile returns, for every column of gray, how many pixels are
// darker than dark.
func ColumnProfile(gray *image.Gray, dark uint8) []int {
	b := gray.Bounds()
	profile := make([]int, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] < dark {
				profile[x]++
			}
		}
	}
	return profile
}

// StrokeRuns counts glyph strokes in a label region: maximal runs of columns
// whose dark pixel count exceeds coverage times the region height. A run
// still open at the right edge counts.
func StrokeRuns(gray *image.Gray, dark uint8, coverage float64) int {
	limit := coverage * float64(gray.Bounds().Dy())

	runs := 0
	inRun := false
	for _, n := range ColumnProfile(gray, dark) {
		if float64(n) > limit {
			if !inRun {
				runs++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	return runs
}

// RunBand returns the inclusive stroke-count range expected for a label of
// n characters: [max(1, n-2), n+3].
func RunBand(n int) (lo, hi int) {
	return maxInt(1, n-2), n + 3
}
