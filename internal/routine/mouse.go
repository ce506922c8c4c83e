package routine

import (
	"fmt"
	"strings"

	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/screen"
)

func parseButton(name string) (screen.Click, error) {
	switch strings.ToLower(name) {
	case "", "left":
		return screen.ClickLeft, nil
	case "middle":
		return screen.ClickMiddle, nil
	case "right":
		return screen.ClickRight, nil
	}
	return 0, fmt.Errorf("unknown mouse button %q", name)
}

// Move moves the pointer to a screen coordinate.
type Move struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (s *Move) Validate(b *Builder) error {
	_, err := geometry.NewPoint(s.X, s.Y)
	return err
}

func (s *Move) Build(b *Builder) *Builder {
	step := Step{
		name: "move",
		execute: func(ctrl Controller) (string, error) {
			point, err := geometry.NewPoint(s.X, s.Y)
			if err != nil {
				return "", err
			}
			return "", ctrl.MouseMove(point)
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// ClickStep moves the pointer to a screen coordinate and clicks.
type ClickStep struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Button string `yaml:"button,omitempty"`
}

func (s *ClickStep) Validate(b *Builder) error {
	if _, err := geometry.NewPoint(s.X, s.Y); err != nil {
		return err
	}
	_, err := parseButton(s.Button)
	return err
}

func (s *ClickStep) Build(b *Builder) *Builder {
	step := Step{
		name: "click",
		execute: func(ctrl Controller) (string, error) {
			point, err := geometry.NewPoint(s.X, s.Y)
			if err != nil {
				return "", err
			}
			button, err := parseButton(s.Button)
			if err != nil {
				return "", err
			}
			return "", ctrl.MouseClick(point, button)
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// Drag presses the mouse button at one coordinate and releases it at another.
type Drag struct {
	FromX  int    `yaml:"from_x"`
	FromY  int    `yaml:"from_y"`
	ToX    int    `yaml:"to_x"`
	ToY    int    `yaml:"to_y"`
	Button string `yaml:"button,omitempty"`
}

func (s *Drag) Validate(b *Builder) error {
	if _, err := geometry.NewPoint(s.FromX, s.FromY); err != nil {
		return err
	}
	if _, err := geometry.NewPoint(s.ToX, s.ToY); err != nil {
		return err
	}
	_, err := parseButton(s.Button)
	return err
}

func (s *Drag) Build(b *Builder) *Builder {
	step := Step{
		name: "drag",
		execute: func(ctrl Controller) (string, error) {
			start, err := geometry.NewPoint(s.FromX, s.FromY)
			if err != nil {
				return "", err
			}
			end, err := geometry.NewPoint(s.ToX, s.ToY)
			if err != nil {
				return "", err
			}
			button, err := parseButton(s.Button)
			if err != nil {
				return "", err
			}
			return "", ctrl.MouseDrag(start, end, button)
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}
