package imaging

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// FrameCache provides thread-safe caching of decoded frames keyed by path.
//
// Detection on a file is usually repeated (candidates, then locate, then an
// annotated copy), and each Frame keeps its derived edge maps and integral
// images, so a cache hit skips decoding and feature preparation alike.
//
// Cached frames stay in memory until Evict or Clear is called.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]*Frame

	// Set while Watch runs.
	watcher *fsnotify.Watcher
	dirs    map[string]bool
}

// NewFrameCache creates an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]*Frame),
	}
}

// Load returns the frame for path, decoding it on first use.
//
// Different spellings of the same file (relative vs absolute) are separate
// entries.
func (c *FrameCache) Load(path string) (*Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	f := NewFrame(img)

	c.mu.Lock()
	c.frames[path] = f
	c.watchDirLocked(path)
	c.mu.Unlock()

	return f, nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.mu.Unlock()
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Watch evicts cached frames whose files are written, replaced or removed,
// so a screenshot refreshed on disk is decoded again on its next Load. It
// blocks until ctx is done.
func (c *FrameCache) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	c.mu.Lock()
	c.watcher = w
	c.dirs = make(map[string]bool)
	for path := range c.frames {
		c.watchDirLocked(path)
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.watcher = nil
		c.dirs = nil
		c.mu.Unlock()
		_ = w.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				c.evictFile(event.Name)
			}
		case _, ok := <-w.Errors:
			// Watch errors are not fatal.
			if !ok {
				return nil
			}
		}
	}
}

// watchDirLocked adds the directory of path to the watcher. c.mu must be held.
func (c *FrameCache) watchDirLocked(path string) {
	if c.watcher == nil {
		return
	}
	dir := filepath.Dir(filepath.Clean(path))
	if c.dirs[dir] {
		return
	}
	if err := c.watcher.Add(dir); err == nil {
		c.dirs[dir] = true
	}
}

// evictFile drops every entry naming file.
func (c *FrameCache) evictFile(file string) {
	file = filepath.Clean(file)
	c.mu.Lock()
	for path := range c.frames {
		if filepath.Clean(path) == file {
			delete(c.frames, path)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Open decodes a PNG, JPEG, GIF, BMP or TIFF file.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Save encodes img to path, choosing the format from the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
