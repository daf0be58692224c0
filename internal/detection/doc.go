// Package detection provides the shape and texture detectors used by the
// icon strategies.
//
//   - FindDarkBlobs: connected dark regions across several binarization
//     levels, ranked by how compact and square they are
//   - FindIconShapes: bounding boxes of Canny edge contours filtered to
//     icon-sized, roughly square outlines
//   - StrokeRuns and ColumnProfile: glyph-stroke counting in a label region
//   - CountLines: ruled-line counting from per-row edge counts
//
// All coordinates use the standard image convention: origin at the top-left,
// X to the right, Y downward. The functions are pure and safe for concurrent
// use.
package detection
