package detection

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/segment"
)

// Blob is a connected region of dark pixels.
type Blob struct {
	Bounds Bounds `json:"bounds"`
	Center Point  `json:"center"`

	// Area is the number of pixels in the region.
	Area int `json:"area"`

	// Fill is Area divided by the bounding box area.
	Fill float64 `json:"fill"`

	// Squareness is min(width, height) / max(width, height).
	Squareness float64 `json:"squareness"`

	// Level is the binarization threshold the blob was found at.
	Level uint8 `json:"level"`
}

// Score rates how icon-like the blob is: compact and roughly square.
func (b Blob) Score() float64 {
	return b.Fill * b.Squareness
}

// BlobOptions configures FindDarkBlobs.
type BlobOptions struct {
	// Levels are the binarization thresholds; pixels below a level are dark.
	Levels  []uint8
	MinArea int
	MaxArea int
}

// FindDarkBlobs binarizes gray at each level and returns the 8-connected
// dark regions whose pixel count lies in [MinArea, MaxArea].
//
// The same object usually survives several levels; only the best scoring
// detection per location is kept, where two blobs share a location when each
// center lies inside the other's bounds. Results are sorted by Score, then by
// area, then top-to-bottom and left-to-right.
func FindDarkBlobs(gray *image.Gray, opts BlobOptions) []Blob {
	all := make([]Blob, 0)
	for _, level := range opts.Levels {
		all = append(all, blobsAtLevel(gray, level, opts.MinArea, opts.MaxArea)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		si, sj := all[i].Score(), all[j].Score()
		if si != sj {
			return si > sj
		}
		if all[i].Area != all[j].Area {
			return all[i].Area > all[j].Area
		}
		if all[i].Center.Y != all[j].Center.Y {
			return all[i].Center.Y < all[j].Center.Y
		}
		return all[i].Center.X < all[j].Center.X
	})

	kept := make([]Blob, 0, len(all))
	for _, b := range all {
		duplicate := false
		for _, k := range kept {
			if sameLocation(b, k) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, b)
		}
	}
	return kept
}

func blobsAtLevel(gray *image.Gray, level uint8, minArea, maxArea int) []Blob {
	// The thresholded copy is rebased to the origin.
	binary := segment.Threshold(gray, level)
	origin := gray.Bounds().Min
	width, height := binary.Bounds().Dx(), binary.Bounds().Dy()

	dark := func(x, y int) bool {
		return binary.Pix[y*binary.Stride+x] == 0
	}

	blobs := make([]Blob, 0)
	for _, region := range findContours(dark, width, height, minArea) {
		if len(region) > maxArea {
			continue
		}
		b := contourBounds(region)
		w := b.X2 - b.X1
		h := b.Y2 - b.Y1
		b.X1 += origin.X
		b.X2 += origin.X
		b.Y1 += origin.Y
		b.Y2 += origin.Y

		blobs = append(blobs, Blob{
			Bounds:     b,
			Center:     Point{X: b.X1 + w/2, Y: b.Y1 + h/2},
			Area:       len(region),
			Fill:       float64(len(region)) / float64(w*h),
			Squareness: float64(minInt(w, h)) / float64(maxInt(w, h)),
			Level:      level,
		})
	}
	return blobs
}

func sameLocation(a, b Blob) bool {
	return image.Pt(a.Center.X, a.Center.Y).In(b.Bounds.Rect()) &&
		image.Pt(b.Center.X, b.Center.Y).In(a.Bounds.Rect())
}
