package imaging

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// writeTestImage saves a uniform image and returns its path.
func writeTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "test.png")
	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return path
}

func TestFrameCache_Load(t *testing.T) {
	path := writeTestImage(t, 30, 20, color.NRGBA{10, 20, 30, 255})
	cache := NewFrameCache()

	f1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f1.Width() != 30 || f1.Height() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", f1.Width(), f1.Height())
	}

	f2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if f1 != f2 {
		t.Error("second Load should return the cached frame")
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}
	f3, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load after Evict failed: %v", err)
	}
	if f3 == f1 {
		t.Error("Load after Evict should decode a new frame")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestFrameCache_Missing(t *testing.T) {
	cache := NewFrameCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if cache.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestFrameCache_Concurrent(t *testing.T) {
	path := writeTestImage(t, 10, 10, color.White)
	cache := NewFrameCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestFrameCache_Watch(t *testing.T) {
	path := writeTestImage(t, 10, 10, color.White)
	cache := NewFrameCache()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Watch(ctx) }()

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	waitFor(t, func() bool {
		cache.mu.RLock()
		defer cache.mu.RUnlock()
		return cache.dirs[filepath.Dir(path)]
	})

	// Rewrite the file with different content.
	img := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	waitFor(t, func() bool { return cache.Len() == 0 })

	f, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load after change failed: %v", err)
	}
	if f.Width() != 12 {
		t.Errorf("stale frame: width %d, want 12", f.Width())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
