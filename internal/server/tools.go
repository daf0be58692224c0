package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

const pathDescription = "Absolute path to a screenshot image file"

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Grounding
		{
			Name:        "icon_locate",
			Description: "Locate the icon on screen (or in a screenshot file) by running the detection strategies in priority order: template match, label-verified candidates, document-like characteristics, grid label scan, generic shape fallback. Returns the icon center, the strategy that found it and a confidence. A miss is reported as found=false, not as an error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label":         stringProp("Expected label text under the icon. Defaults to the configured label"),
					"path":          stringProp("Screenshot to search instead of capturing the screen. A file is searched once, without retries"),
					"template_path": stringProp("Reference icon image overriding the configured template"),
					"annotate_path": stringProp("Where to save a copy of the frame with the detection marked"),
				},
			},
		},
		{
			Name:        "icon_candidates",
			Description: "List the deduplicated icon candidates of a screenshot: square windows with icon-like texture and edge density, best first. Use this to see what the label and characteristic strategies choose from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  stringProp(pathDescription),
					"limit": intProp("Maximum candidates to return (default: 20)"),
					"sizes": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Window sizes in pixels (default: configured sizes)",
					},
					"annotate_path": stringProp("Where to save a copy of the screenshot with the returned candidates boxed and numbered"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "icon_match_template",
			Description: "Correlate the reference icon with a screenshot and return the best match above the threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          stringProp(pathDescription),
					"template_path": stringProp("Reference icon image (default: configured template)"),
					"threshold":     numberProp("Minimum normalized correlation, 0.0-1.0 (default: configured threshold)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "icon_verify_label",
			Description: "Check whether the label under a candidate icon matches the expected text. Reports the region inspected, OCR text if any, and the glyph stroke count against its expected range.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  stringProp(pathDescription),
					"x":     intProp("Candidate center X coordinate"),
					"y":     intProp("Candidate center Y coordinate"),
					"size":  intProp("Candidate window size in pixels"),
					"label": stringProp("Expected label text (default: configured label)"),
				},
				"required": []string{"path", "x", "y", "size"},
			},
		},
		{
			Name:        "icon_read_label",
			Description: "Run OCR on a rectangular region and return the recognized words with bounding boxes. Requires a build with Tesseract support.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp(pathDescription),
					"x1":   intProp("Left edge X coordinate"),
					"y1":   intProp("Top edge Y coordinate"),
					"x2":   intProp("Right edge X coordinate"),
					"y2":   intProp("Bottom edge Y coordinate"),
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Diagnostics
		{
			Name:        "icon_edge_map",
			Description: "Return the Canny edge map of a screenshot as base64 PNG, white edges on black. This is the edge signal the candidate generator scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp(pathDescription),
					"low":  intProp("Low hysteresis threshold, 0-255 (default: configured)"),
					"high": intProp("High hysteresis threshold, 0-255 (default: configured)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "icon_crop",
			Description: "Crop the square region around a point and return it as base64 PNG, optionally scaled. Use it to inspect a detection or a candidate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  stringProp(pathDescription),
					"x":     intProp("Center X coordinate"),
					"y":     intProp("Center Y coordinate"),
					"size":  intProp("Edge of the square region (default: 96)"),
					"scale": numberProp("Scale factor (default: 1.0)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "icon_annotate",
			Description: "Save a copy of a screenshot with a marker ring, center dot and caption at the given point.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   stringProp(pathDescription),
					"x":      intProp("Marker X coordinate"),
					"y":      intProp("Marker Y coordinate"),
					"label":  stringProp("Caption drawn next to the marker"),
					"output": stringProp("Path of the annotated PNG"),
				},
				"required": []string{"path", "x", "y", "output"},
			},
		},
		{
			Name:        "icon_grid",
			Description: "Save a copy of a screenshot with a coordinate grid, optionally labeled with the coordinates of each intersection. Use it to pick the point for template capture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    stringProp(pathDescription),
					"spacing": intProp("Grid spacing in pixels, at least 8 (default: 50)"),
					"labeled": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw coordinates at grid intersections (default: true)",
					},
					"output": stringProp("Path of the grid PNG"),
				},
				"required": []string{"path", "output"},
			},
		},
		{
			Name:        "icon_history",
			Description: "List recent locate runs and how often each strategy succeeded. Requires history to be enabled.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"limit": intProp("Maximum runs to return (default: 20)"),
				},
			},
		},
	}
}
