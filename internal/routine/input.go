package routine

import "fmt"

// Key sends a key or key combination, e.g. "Return" or "ctrl+a".
type Key struct {
	Key string `yaml:"key"`
}

func (s *Key) Validate(b *Builder) error {
	if s.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	return nil
}

func (s *Key) Build(b *Builder) *Builder {
	step := Step{
		name: "key",
		execute: func(ctrl Controller) (string, error) {
			ctrl.Key(s.Key)
			return "", nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// Type writes text into the focused element, optionally clearing it first.
type Type struct {
	Text  string `yaml:"text"`
	Clear bool   `yaml:"clear,omitempty"`
}

func (s *Type) Validate(b *Builder) error {
	if s.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return nil
}

func (s *Type) Build(b *Builder) *Builder {
	step := Step{
		name: "type",
		execute: func(ctrl Controller) (string, error) {
			ctrl.Type(s.Text, s.Clear)
			return "", nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}
