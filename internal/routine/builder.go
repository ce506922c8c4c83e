package routine

import (
	"fmt"

	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/screen"
	"xcontrol.dev/xcontrol/pkg/templates"
)

// StepDefinition is implemented by every YAML step type.
type StepDefinition interface {
	// Validate checks the step's fields before execution.
	Validate(b *Builder) error
	// Build appends the executable form of the step to the builder.
	Build(b *Builder) *Builder
}

// Step is the executable form of a step definition. The detail string
// returned by execute carries step output such as recognized text.
type Step struct {
	name    string
	execute func(Controller) (string, error)
	issue   error
}

// Name returns the step's YAML name.
func (s Step) Name() string { return s.name }

// Builder assembles a routine's steps into an executable sequence.
type Builder struct {
	steps     []Step
	templates *templates.Registry
}

// NewBuilder creates an empty builder. The display handle is not required
// at build time; it is provided during Execute.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithTemplates sets the template registry used to resolve template names
// in image search steps.
func (b *Builder) WithTemplates(registry *templates.Registry) *Builder {
	b.templates = registry
	return b
}

// Steps returns the built steps in execution order.
func (b *Builder) Steps() []Step {
	return b.steps
}

// Execute runs every step in order against the given controller, stopping
// at the first failure.
func (b *Builder) Execute(ctrl Controller) error {
	for i, step := range b.steps {
		if step.issue != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.name, step.issue)
		}
		if _, err := step.execute(ctrl); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.name, err)
		}
	}
	return nil
}

// searchTarget is a template resolved for one search: the decoded image,
// the name used in diagnostics, the registered search frame, and the
// registered threshold (zero when the caller's default should apply).
type searchTarget struct {
	image      *imaging.Image
	name       string
	frame      *geometry.Frame
	confidence float64
}

// resolveTemplate resolves a template name into a decoded search target.
// Registered templates carry their configured threshold and frame and are
// served from the registry's image cache when one is enabled; anything
// else is treated as an image path and decoded from disk.
func (b *Builder) resolveTemplate(name string) (searchTarget, error) {
	if b.templates != nil {
		if tpl, ok := b.templates.Get(name); ok {
			target := searchTarget{name: name, frame: tpl.Frame, confidence: tpl.Threshold}
			if cache := b.templates.ImageCache(); cache != nil {
				img, _, err := cache.Get(name)
				if err != nil {
					return searchTarget{}, err
				}
				target.image = img
				return target, nil
			}
			img, err := imaging.Load(tpl.Path)
			if err != nil {
				return searchTarget{}, &screen.NotFoundError{Path: tpl.Path, Err: err}
			}
			target.image = img
			return target, nil
		}
	}

	img, err := imaging.Load(name)
	if err != nil {
		return searchTarget{}, &screen.NotFoundError{Path: name, Err: err}
	}
	return searchTarget{image: img, name: name}, nil
}

// frameDef is the YAML form of a search or capture region.
type frameDef struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (f *frameDef) toFrame() (*geometry.Frame, error) {
	if f == nil {
		return nil, nil
	}
	corner, err := geometry.NewPoint(f.X, f.Y)
	if err != nil {
		return nil, fmt.Errorf("invalid frame corner: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("frame dimensions (%dx%d) must be positive", f.Width, f.Height)
	}
	return &geometry.Frame{Corner: corner, Width: f.Width, Height: f.Height}, nil
}
