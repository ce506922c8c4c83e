package control

import (
	"errors"
	"fmt"
	"sync"

	"xcontrol.dev/xcontrol/internal/config"
)

var (
	// ErrMultipleDisplays is returned by Configure when unique-display
	// mode is requested after more than one handle exists.
	ErrMultipleDisplays = errors.New("multiple displays already created")
	// ErrDisplayExists is returned when a second handle is requested in
	// unique-display mode.
	ErrDisplayExists = errors.New("a display is already created")
	// ErrDisplayIDRequired is returned when GetOrCreate is called
	// without an id outside unique-display mode.
	ErrDisplayIDRequired = errors.New("display id is required when multiple displays are allowed")
)

// HandleFactory builds an automation handle for a display.
type HandleFactory func(id string, width, height int) (*XControl, error)

// Registry maps display identifiers to their automation handles. It is
// the only shared mutable state in the package and is safe for
// concurrent use; the handles it returns are not.
type Registry struct {
	mu      sync.Mutex
	unique  bool
	handles map[string]*XControl
	factory HandleFactory
}

// NewRegistry creates a registry whose handles are built from the given
// settings.
func NewRegistry(settings *config.Settings) *Registry {
	r := NewRegistryWithFactory(func(id string, width, height int) (*XControl, error) {
		return New(id, width, height, settings)
	})
	if settings != nil {
		r.unique = settings.UniqueDisplay
	}
	return r
}

// NewRegistryWithFactory creates a registry with a custom handle factory.
func NewRegistryWithFactory(factory HandleFactory) *Registry {
	return &Registry{
		handles: make(map[string]*XControl),
		factory: factory,
	}
}

// Configure switches unique-display mode. Enabling it is rejected once
// more than one handle exists.
func (r *Registry) Configure(uniqueDisplay bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uniqueDisplay && len(r.handles) > 1 {
		return ErrMultipleDisplays
	}
	r.unique = uniqueDisplay
	return nil
}

// GetOrCreate returns the handle for the given display id, creating it
// on first use. An empty id is only valid in unique-display mode with
// exactly one handle already created, in which case that handle is
// returned and width/height are ignored. Width and height are likewise
// ignored for ids that already have a handle.
func (r *Registry) GetOrCreate(id string, width, height int) (*XControl, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		if !r.unique || len(r.handles) != 1 {
			return nil, ErrDisplayIDRequired
		}
		for _, handle := range r.handles {
			return handle, nil
		}
	}

	if handle, ok := r.handles[id]; ok {
		return handle, nil
	}

	if r.unique && len(r.handles) > 0 {
		return nil, ErrDisplayExists
	}

	handle, err := r.factory(id, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create handle for %s: %w", id, err)
	}
	r.handles[id] = handle
	return handle, nil
}

// CloseAll closes every handle and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, handle := range r.handles {
		handle.Close()
		delete(r.handles, id)
	}
}
