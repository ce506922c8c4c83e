package routine

import "fmt"

// WaitForImage polls the screen until a template image appears. The
// template field is resolved through the builder's registry when one is
// set; otherwise it is treated as an image path.
type WaitForImage struct {
	Template string    `yaml:"template"`
	Frame    *frameDef `yaml:"frame,omitempty"`
}

func (s *WaitForImage) Validate(b *Builder) error {
	if s.Template == "" {
		return fmt.Errorf("template cannot be empty")
	}
	_, err := s.Frame.toFrame()
	return err
}

func (s *WaitForImage) Build(b *Builder) *Builder {
	step := Step{
		name: "wait_for_image",
		execute: func(ctrl Controller) (string, error) {
			target, err := b.resolveTemplate(s.Template)
			if err != nil {
				return "", err
			}
			frame := target.frame
			if override, err := s.Frame.toFrame(); err != nil {
				return "", err
			} else if override != nil {
				frame = override
			}
			point, err := ctrl.WaitForTemplate(target.image, target.name, frame, target.confidence)
			if err != nil {
				return "", err
			}
			return point.String(), nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// WaitForImageGone polls the screen until a template image disappears.
type WaitForImageGone struct {
	Template string    `yaml:"template"`
	Frame    *frameDef `yaml:"frame,omitempty"`
}

func (s *WaitForImageGone) Validate(b *Builder) error {
	if s.Template == "" {
		return fmt.Errorf("template cannot be empty")
	}
	_, err := s.Frame.toFrame()
	return err
}

func (s *WaitForImageGone) Build(b *Builder) *Builder {
	step := Step{
		name: "wait_for_image_gone",
		execute: func(ctrl Controller) (string, error) {
			target, err := b.resolveTemplate(s.Template)
			if err != nil {
				return "", err
			}
			frame := target.frame
			if override, err := s.Frame.toFrame(); err != nil {
				return "", err
			} else if override != nil {
				frame = override
			}
			return "", ctrl.WaitForTemplateGone(target.image, target.name, frame, target.confidence)
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}
