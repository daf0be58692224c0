package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/icon-locator/internal/capture"
	"github.com/ironsheep/icon-locator/internal/grounding"
	"github.com/ironsheep/icon-locator/internal/history"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/ironsheep/icon-locator/internal/ocr"
)

// ErrUnknownTool is returned for a tool name that is not defined.
var ErrUnknownTool = errors.New("unknown tool")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "icon_locate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.ExecuteTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// ExecuteTool runs one tool with JSON arguments. Calls are serialized.
func (s *Server) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With("tool", name)
	start := time.Now()
	result, err := s.executeTool(ctx, name, args)
	if err != nil {
		log.Warn("tool failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	log.Debug("tool completed", "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Grounding
	case "icon_locate":
		return s.handleLocate(ctx, args)
	case "icon_candidates":
		return s.handleCandidates(args)
	case "icon_match_template":
		return s.handleMatchTemplate(args)
	case "icon_verify_label":
		return s.handleVerifyLabel(ctx, args)
	case "icon_read_label":
		return s.handleReadLabel(ctx, args)

	// Diagnostics
	case "icon_edge_map":
		return s.handleEdgeMap(args)
	case "icon_crop":
		return s.handleCrop(args)
	case "icon_annotate":
		return s.handleAnnotate(args)
	case "icon_grid":
		return s.handleGrid(args)
	case "icon_history":
		return s.handleHistory(ctx, args)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func (s *Server) labelOrDefault(label string) string {
	if label != "" {
		return label
	}
	return s.cfg.Label.Text
}

// === Grounding Handlers ===

type locateArgs struct {
	Label        string `json:"label"`
	Path         string `json:"path"`
	TemplatePath string `json:"template_path"`
	AnnotatePath string `json:"annotate_path"`
}

type locateResult struct {
	Found bool `json:"found"`
	*grounding.Result
	Annotated string `json:"annotated,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) handleLocate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a locateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	label := s.labelOrDefault(a.Label)

	cfg := *s.cfg
	if a.TemplatePath != "" {
		cfg.Template.Path = a.TemplatePath
	}

	var source grounding.FrameSource
	retry := cfg.Retry
	sourceName := "screen"
	switch {
	case a.Path != "":
		source = capture.NewFileSource(a.Path, s.cache)
		retry.Attempts = 1
		sourceName = a.Path
	case s.screen != nil:
		source = s.screen
	default:
		return nil, errors.New("screen capture is not configured; pass path")
	}

	chain := grounding.NewChain(source, grounding.NewStrategies(&cfg, s.recognizer, s.logger), retry, s.logger)
	start := time.Now()
	res, err := chain.Locate(ctx, label)
	s.record(ctx, history.FromResult(label, sourceName, res, err, time.Since(start)))

	if err != nil {
		if grounding.IsNotFound(err) {
			return &locateResult{Found: false, Message: err.Error()}, nil
		}
		return nil, err
	}

	out := &locateResult{Found: true, Result: res}
	if a.AnnotatePath != "" {
		caption := fmt.Sprintf("%s (%s %.2f)", label, res.Method, res.Confidence)
		img := s.annotator.Mark(res.Frame(), image.Pt(res.X, res.Y), caption)
		if err := imaging.SaveAnnotated(a.AnnotatePath, img); err != nil {
			return nil, err
		}
		out.Annotated = a.AnnotatePath
	}
	return out, nil
}

// record stores a run in history. Failures are logged, not returned.
func (s *Server) record(ctx context.Context, e *history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, e); err != nil {
		s.logger.Warn("failed to record history", "error", err)
	}
}

type candidatesArgs struct {
	Path         string `json:"path"`
	Limit        int    `json:"limit"`
	Sizes        []int  `json:"sizes"`
	AnnotatePath string `json:"annotate_path"`
}

type candidatesResult struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Total      int                   `json:"total"`
	Candidates []grounding.Candidate `json:"candidates"`
	Annotated  string                `json:"annotated,omitempty"`
}

func (s *Server) handleCandidates(args json.RawMessage) (interface{}, error) {
	var a candidatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = 20
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	gen := grounding.NewGenerator(s.cfg.Detection)
	merged := grounding.Merge(gen.Generate(frame, a.Sizes), s.cfg.Detection.MergeRadius)
	res := &candidatesResult{
		Width:      frame.Width(),
		Height:     frame.Height(),
		Total:      len(merged),
		Candidates: merged,
	}
	if len(merged) > a.Limit {
		res.Candidates = merged[:a.Limit]
	}

	if a.AnnotatePath != "" {
		rects := make([]image.Rectangle, len(res.Candidates))
		for i, c := range res.Candidates {
			rects[i] = c.Rect()
		}
		if err := imaging.SaveAnnotated(a.AnnotatePath, s.annotator.Boxes(frame, rects)); err != nil {
			return nil, err
		}
		res.Annotated = a.AnnotatePath
	}
	return res, nil
}

type matchTemplateArgs struct {
	Path         string  `json:"path"`
	TemplatePath string  `json:"template_path"`
	Threshold    float64 `json:"threshold"`
}

type matchTemplateResult struct {
	Found     bool                 `json:"found"`
	Match     *grounding.Candidate `json:"match,omitempty"`
	Threshold float64              `json:"threshold"`
}

func (s *Server) handleMatchTemplate(args json.RawMessage) (interface{}, error) {
	var a matchTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tc := s.cfg.Template
	if a.TemplatePath != "" {
		tc.Path = a.TemplatePath
	}
	if a.Threshold > 0 {
		tc.Threshold = a.Threshold
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	tmpl, err := grounding.LoadTemplate(tc.Path)
	if err != nil {
		return nil, err
	}
	match, err := grounding.NewTemplateMatcher(tc).Match(frame, tmpl)
	if err != nil {
		return nil, err
	}
	return &matchTemplateResult{Found: match != nil, Match: match, Threshold: tc.Threshold}, nil
}

type verifyLabelArgs struct {
	Path  string `json:"path"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Size  int    `json:"size"`
	Label string `json:"label"`
}

func (s *Server) handleVerifyLabel(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a verifyLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", a.Size)
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	v := grounding.NewLabelVerifier(s.cfg.Label, s.recognizer, s.logger)
	c := grounding.Candidate{X: a.X, Y: a.Y, Size: a.Size}
	res := v.Inspect(ctx, frame, v.LabelRegion(frame, c), s.labelOrDefault(a.Label))
	return &res, nil
}

// labelReader is implemented by recognizers that report word boxes.
type labelReader interface {
	Read(ctx context.Context, img image.Image) (*ocr.Result, error)
}

type readLabelArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

func (s *Server) handleReadLabel(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a readLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	reader, ok := s.recognizer.(labelReader)
	if !ok {
		return nil, ocr.ErrUnavailable
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := imaging.CropRegion(frame.Color(), image.Rect(a.X1, a.Y1, a.X2, a.Y2))
	if err != nil {
		return nil, err
	}
	return reader.Read(ctx, region)
}

// === Diagnostic Handlers ===

type edgeMapArgs struct {
	Path string `json:"path"`
	Low  int    `json:"low"`
	High int    `json:"high"`
}

func (s *Server) handleEdgeMap(args json.RawMessage) (interface{}, error) {
	var a edgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Low == 0 {
		a.Low = s.cfg.Detection.CannyLow
	}
	if a.High == 0 {
		a.High = s.cfg.Detection.CannyHigh
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(frame.Color(), a.Low, a.High)
}

type cropArgs struct {
	Path  string  `json:"path"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Size  int     `json:"size"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size <= 0 {
		a.Size = 96
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	r := imaging.ClampRect(imaging.CenteredRect(a.X, a.Y, a.Size), frame.Bounds())
	return imaging.Crop(frame.Color(), r, a.Scale)
}

type annotateArgs struct {
	Path   string `json:"path"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Label  string `json:"label"`
	Output string `json:"output"`
}

type annotateResult struct {
	Output string `json:"output"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errors.New("output path is required")
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	img := s.annotator.Mark(frame, image.Pt(a.X, a.Y), a.Label)
	if err := imaging.SaveAnnotated(a.Output, img); err != nil {
		return nil, err
	}
	return &annotateResult{Output: a.Output, X: a.X, Y: a.Y}, nil
}

type gridArgs struct {
	Path    string `json:"path"`
	Spacing int    `json:"spacing"`
	Labeled *bool  `json:"labeled"`
	Output  string `json:"output"`
}

type gridResult struct {
	Output  string `json:"output"`
	Spacing int    `json:"spacing"`
}

func (s *Server) handleGrid(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errors.New("output path is required")
	}
	if a.Spacing == 0 {
		a.Spacing = 50
	}
	labeled := a.Labeled == nil || *a.Labeled

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.annotator.Grid(frame, a.Spacing, labeled)
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveAnnotated(a.Output, img); err != nil {
		return nil, err
	}
	return &gridResult{Output: a.Output, Spacing: a.Spacing}, nil
}

type historyArgs struct {
	Limit int `json:"limit"`
}

type historyResult struct {
	Runs    []*history.Entry `json:"runs"`
	Methods map[string]int   `json:"methods"`
}

func (s *Server) handleHistory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a historyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, errors.New("history is not enabled")
	}
	runs, err := s.history.Recent(ctx, a.Limit)
	if err != nil {
		return nil, err
	}
	methods, err := s.history.MethodCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &historyResult{Runs: runs, Methods: methods}, nil
}
