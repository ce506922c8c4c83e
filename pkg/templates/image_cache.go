package templates

import (
	"fmt"
	"sync"

	"xcontrol.dev/xcontrol/internal/imaging"
)

// cachedTemplate pairs a template with its decoded image.
type cachedTemplate struct {
	Template
	mu    sync.RWMutex
	image *imaging.Image
}

// ImageCache keeps decoded template images in memory so repeated searches
// do not hit the filesystem.
type ImageCache struct {
	mu        sync.RWMutex
	templates map[string]*cachedTemplate
	stats     CacheStats
}

// CacheStats tracks cache behavior.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Unloads     int64
	PreloadFail int64
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		templates: make(map[string]*cachedTemplate),
	}
}

// Register adds a template to the cache, decoding its image up front when
// preload is set.
func (ic *ImageCache) Register(tpl Template, preload bool) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	cached := &cachedTemplate{Template: tpl}
	if preload {
		if err := cached.load(); err != nil {
			ic.stats.PreloadFail++
			return fmt.Errorf("failed to preload template %s: %w", tpl.Name, err)
		}
	}

	ic.templates[tpl.Name] = cached
	return nil
}

// Get retrieves a template and its decoded image, loading on demand.
func (ic *ImageCache) Get(name string) (*imaging.Image, Template, error) {
	ic.mu.RLock()
	cached, ok := ic.templates[name]
	ic.mu.RUnlock()

	if !ok {
		return nil, Template{}, fmt.Errorf("template '%s' not found in cache", name)
	}

	cached.mu.RLock()
	loaded := cached.image != nil
	cached.mu.RUnlock()

	img, err := cached.getOrLoad()
	if err != nil {
		return nil, Template{}, err
	}

	ic.mu.Lock()
	if loaded {
		ic.stats.Hits++
	} else {
		ic.stats.Misses++
	}
	ic.mu.Unlock()

	return img, cached.Template, nil
}

// Unload drops the decoded image for a template, keeping its definition.
func (ic *ImageCache) Unload(name string) {
	ic.mu.RLock()
	cached, ok := ic.templates[name]
	ic.mu.RUnlock()
	if !ok {
		return
	}

	cached.mu.Lock()
	dropped := cached.image != nil
	cached.image = nil
	cached.mu.Unlock()

	if dropped {
		ic.mu.Lock()
		ic.stats.Unloads++
		ic.mu.Unlock()
	}
}

// UnloadAll drops every decoded image.
func (ic *ImageCache) UnloadAll() {
	ic.mu.RLock()
	names := make([]string, 0, len(ic.templates))
	for name := range ic.templates {
		names = append(names, name)
	}
	ic.mu.RUnlock()

	for _, name := range names {
		ic.Unload(name)
	}
}

// Stats returns a snapshot of cache statistics.
func (ic *ImageCache) Stats() CacheStats {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.stats
}

func (ct *cachedTemplate) getOrLoad() (*imaging.Image, error) {
	ct.mu.RLock()
	if ct.image != nil {
		defer ct.mu.RUnlock()
		return ct.image, nil
	}
	ct.mu.RUnlock()

	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ct.image != nil {
		return ct.image, nil
	}
	if err := ct.loadLocked(); err != nil {
		return nil, err
	}
	return ct.image, nil
}

func (ct *cachedTemplate) load() error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ct.image != nil {
		return nil
	}
	return ct.loadLocked()
}

func (ct *cachedTemplate) loadLocked() error {
	img, err := imaging.Load(ct.Path)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", ct.Name, err)
	}
	ct.image = img
	return nil
}
