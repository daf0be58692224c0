// Package imaging provides the pixel-level building blocks for icon detection.
//
// The central type is Frame: one captured screen image normalized to an
// NRGBA color view anchored at (0,0), plus a grayscale view. Frames are
// immutable once built. Derived data that several detectors share (Canny edge
// maps and summed-area tables for mean and variance) is computed lazily on
// first request and cached on the Frame, so a detection attempt pays for each
// at most once.
//
// # Coordinate System
//
// All coordinates are 0-based pixels with X to the right and Y downward.
// Rectangles follow image.Rectangle semantics: Min is inclusive, Max is
// exclusive.
//
// # Contents
//
//   - Frame, NewFrame, NewFrameFromGray: capture normalization
//   - Canny, EdgeMap: binary edge maps with constant-time region counts
//   - Integral, RegionStats: region mean, variance and standard deviation
//   - ClampRect, CropRegion, Crop: region arithmetic and extraction
//   - FrameCache, Open, Save: file I/O for offline detection; Watch evicts
//     frames whose files change
//   - Annotator: diagnostic markers, candidate boxes and coordinate grids
//     drawn on frame copies
//
// # Thread Safety
//
// Frame and FrameCache are safe for concurrent use. Annotator methods only
// read the Frame and draw on fresh copies.
package imaging
