package routine

import (
	"fmt"

	"xcontrol.dev/xcontrol/internal/ocr"
)

// Screenshot captures the display, or a region of it, and saves the result
// when a directory is given.
type Screenshot struct {
	Frame *frameDef `yaml:"frame,omitempty"`
	Dir   string    `yaml:"dir,omitempty"`
}

func (s *Screenshot) Validate(b *Builder) error {
	_, err := s.Frame.toFrame()
	return err
}

func (s *Screenshot) Build(b *Builder) *Builder {
	step := Step{
		name: "screenshot",
		execute: func(ctrl Controller) (string, error) {
			frame, err := s.Frame.toFrame()
			if err != nil {
				return "", err
			}
			if _, err := ctrl.Screenshot(frame, s.Dir); err != nil {
				return "", err
			}
			return s.Dir, nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// ExtractText captures a region and runs it through the recognition
// pipeline. The spec map carries the page segmentation mode and the
// background color bounds, e.g.
//
//	spec:
//	  psm: SINGLE_LINE
//	  lowerBound: [240, 240, 240]
//	  upperBound: [255, 255, 255]
type ExtractText struct {
	Frame   *frameDef              `yaml:"frame,omitempty"`
	Spec    map[string]interface{} `yaml:"spec"`
	Preview bool                   `yaml:"preview,omitempty"`
}

func (s *ExtractText) Validate(b *Builder) error {
	if _, err := s.Frame.toFrame(); err != nil {
		return err
	}
	if s.Spec == nil {
		return fmt.Errorf("spec cannot be empty")
	}
	_, err := ocr.SpecFromMap(s.Spec)
	return err
}

func (s *ExtractText) Build(b *Builder) *Builder {
	step := Step{
		name: "extract_text",
		execute: func(ctrl Controller) (string, error) {
			spec, err := ocr.SpecFromMap(s.Spec)
			if err != nil {
				return "", err
			}
			frame, err := s.Frame.toFrame()
			if err != nil {
				return "", err
			}
			return ctrl.ExtractText(frame, spec, &ocr.ExtractOptions{Preview: s.Preview})
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}
