// Package server exposes the icon locator as tools, over MCP on stdio and
// over a small HTTP API.
//
// # Protocol
//
// The MCP transport is JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// The HTTP transport serves the same tools: POST /tools/{name} with the
// tool arguments as the JSON body returns the tool result as JSON.
//
// # Available Tools
//
// Grounding:
//   - icon_locate: Run the strategy chain on the screen or a screenshot
//   - icon_candidates: List deduplicated icon candidates
//   - icon_match_template: Correlate the reference icon with a screenshot
//   - icon_verify_label: Judge the label under a candidate
//   - icon_read_label: OCR a region
//
// Diagnostics:
//   - icon_edge_map: Canny edge map as PNG
//   - icon_crop: Square crop around a point
//   - icon_annotate: Mark a point on a copy of a screenshot
//   - icon_grid: Coordinate grid over a copy of a screenshot
//   - icon_history: Recent locate runs and per-strategy success counts
//
// # Concurrency
//
// Tool calls are serialized. Decoded screenshots are cached by path for the
// life of the server, so repeated calls on one file decode it once.
//
// # Coordinates
//
// All coordinates are in screenshot pixels with the origin at the top-left.
// Detection results report the icon center.
package server
