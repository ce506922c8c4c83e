package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"xcontrol.dev/xcontrol/internal/geometry"
)

// DefaultThreshold is applied to template definitions that omit one.
const DefaultThreshold = 0.7

// Template describes a reference image that can be searched for on screen.
type Template struct {
	Name      string
	Path      string
	Threshold float64
	Frame     *geometry.Frame // search region; nil means the whole screen
}

// Registry manages a named collection of templates loaded from YAML files.
type Registry struct {
	mu         sync.RWMutex
	templates  map[string]Template
	basePath   string // root directory for template image files
	imageCache *ImageCache
}

// templateDefinition is the YAML form of a template entry.
type templateDefinition struct {
	Name      string    `yaml:"name"`
	Path      string    `yaml:"path"`
	Threshold float64   `yaml:"threshold"`
	Frame     *frameDef `yaml:"frame,omitempty"`
	Preload   bool      `yaml:"preload,omitempty"`
}

type frameDef struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type templateFile struct {
	Templates []templateDefinition `yaml:"templates"`
}

// NewRegistry creates a registry rooted at basePath, the directory where
// template image files live.
func NewRegistry(basePath string) *Registry {
	return &Registry{
		templates:  make(map[string]Template),
		basePath:   basePath,
		imageCache: NewImageCache(),
	}
}

// WithoutImageCache disables image caching for this registry.
func (r *Registry) WithoutImageCache() *Registry {
	r.imageCache = nil
	return r
}

// LoadFromFile loads template definitions from a YAML file.
func (r *Registry) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal template YAML: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, def := range file.Templates {
		if def.Name == "" {
			return fmt.Errorf("template %d: name cannot be empty", i+1)
		}
		if def.Path == "" {
			return fmt.Errorf("template %d (%s): path cannot be empty", i+1, def.Name)
		}

		tpl := Template{
			Name:      def.Name,
			Path:      filepath.Join(r.basePath, def.Path),
			Threshold: def.Threshold,
		}
		if tpl.Threshold == 0 {
			tpl.Threshold = DefaultThreshold
		}
		if def.Frame != nil {
			corner, err := geometry.NewPoint(def.Frame.X, def.Frame.Y)
			if err != nil {
				return fmt.Errorf("template %s: invalid frame corner: %w", def.Name, err)
			}
			tpl.Frame = &geometry.Frame{
				Corner: corner,
				Width:  def.Frame.Width,
				Height: def.Frame.Height,
			}
		}

		r.templates[def.Name] = tpl

		if r.imageCache != nil {
			if err := r.imageCache.Register(tpl, def.Preload); err != nil {
				// Preload failures are non-fatal; the image can still be
				// loaded on demand.
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
	}

	return nil
}

// LoadFromDirectory loads every .yaml/.yml file in a directory.
func (r *Registry) LoadFromDirectory(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read template directory %s: %w", dirPath, err)
	}

	var loadErrors []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		fullPath := filepath.Join(dirPath, entry.Name())
		if err := r.LoadFromFile(fullPath); err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("file %s: %w", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("failed to load %d template files (first error): %w", len(loadErrors), loadErrors[0])
	}
	return nil
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[name]
	return tpl, ok
}

// GetOrDefault retrieves a template by name, falling back to an entry
// pointing at <basePath>/<name>.png with the given threshold.
func (r *Registry) GetOrDefault(name string, threshold float64) Template {
	tpl, ok := r.Get(name)
	if !ok {
		return Template{
			Name:      name,
			Path:      filepath.Join(r.basePath, name+".png"),
			Threshold: threshold,
		}
	}
	return tpl
}

// Register adds a template programmatically. The image is cached on
// first use, not up front.
func (r *Registry) Register(tpl Template) error {
	if tpl.Name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates[tpl.Name] = tpl
	if r.imageCache != nil {
		return r.imageCache.Register(tpl, false)
	}
	return nil
}

// Has checks whether a template exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[name]
	return ok
}

// List returns all template names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.templates)
}

// Remove deletes a template from the registry and its cached image.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[name]; !ok {
		return false
	}
	delete(r.templates, name)
	if r.imageCache != nil {
		r.imageCache.Unload(name)
	}
	return true
}

// ImageCache returns the registry's image cache, or nil when disabled.
func (r *Registry) ImageCache() *ImageCache {
	return r.imageCache
}
