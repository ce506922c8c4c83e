package routine

import (
	"fmt"
	"strings"
	"time"
)

// Launch starts a program inside the nested display.
type Launch struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env,omitempty"`
	Wait    bool              `yaml:"wait,omitempty"`
}

func (s *Launch) Validate(b *Builder) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}

func (s *Launch) Build(b *Builder) *Builder {
	step := Step{
		name: "launch",
		execute: func(ctrl Controller) (string, error) {
			return strings.Join(s.Command, " "), ctrl.Launch(s.Command, s.Env, s.Wait)
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// RunCommand runs an arbitrary command with the display's environment.
type RunCommand struct {
	Command string `yaml:"command"`
	Wait    bool   `yaml:"wait,omitempty"`
}

func (s *RunCommand) Validate(b *Builder) error {
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}

func (s *RunCommand) Build(b *Builder) *Builder {
	step := Step{
		name: "run_command",
		execute: func(ctrl Controller) (string, error) {
			return ctrl.RunCommand(s.Command, s.Wait), nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}

// Sleep pauses the routine for a fixed duration.
type Sleep struct {
	Ms int `yaml:"ms"`
}

func (s *Sleep) Validate(b *Builder) error {
	if s.Ms < 0 {
		return fmt.Errorf("ms (%d) must be non-negative", s.Ms)
	}
	return nil
}

func (s *Sleep) Build(b *Builder) *Builder {
	step := Step{
		name: "sleep",
		execute: func(ctrl Controller) (string, error) {
			time.Sleep(time.Duration(s.Ms) * time.Millisecond)
			return "", nil
		},
		issue: s.Validate(b),
	}
	b.steps = append(b.steps, step)
	return b
}
