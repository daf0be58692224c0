// Package grounding locates a desktop icon in a screen frame.
//
// A Chain captures a frame and runs a fixed list of strategies in priority
// order, returning the first candidate any of them accepts:
//
//   - template: normalized cross-correlation against a reference image
//   - label_verified: multi-scale feature candidates whose label text checks out
//   - characteristic: candidates re-ranked by document-like features
//   - grid_verified: the best candidate with a fixed-geometry label check
//   - generic: dark blobs or icon-shaped edge contours, unverified
//
// When no strategy succeeds the chain waits and captures again, up to the
// configured number of attempts, then returns ErrNotFound.
//
// Coordinates are frame pixels with the origin at the top-left. Every
// strategy reads the frame and never modifies it.
package grounding
