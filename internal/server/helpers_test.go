package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

// testConfig disables retries and points the template at a missing file.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Retry.DelayMs = 0
	cfg.Template.Path = filepath.Join(t.TempDir(), "missing-template.png")
	return cfg
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

// createTestImageFile writes img as PNG into a temp dir and returns its path.
func createTestImageFile(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save test image: %v", err)
	}
	return path
}

// desktopImage is a light 300x240 frame with one dark square icon at
// (100,80)-(140,120) and nothing else.
func desktopImage() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 300, 240))
	for i := range g.Pix {
		g.Pix[i] = 220
	}
	for y := 80; y < 120; y++ {
		for x := 100; x < 140; x++ {
			g.SetGray(x, y, color.Gray{Y: 30})
		}
	}
	return g
}

// callTool runs a tool through the JSON-RPC path and decodes its text result
// into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPResponse {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: raw})

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
	return resp
}
