package routine

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"xcontrol.dev/xcontrol/pkg/templates"
)

// Routine holds an entire routine definition from a YAML file.
type Routine struct {
	Name        string           `yaml:"routine_name"`
	Description string           `yaml:"description,omitempty"`
	Tags        []string         `yaml:"tags,omitempty"`
	Steps       []StepDefinition `yaml:"steps"`
}

// UnmarshalYAML handles the polymorphic steps list. YAML cannot pick a
// concrete struct for an interface value without help, so each step's
// 'step' field is looked up in the registry and the raw map is decoded
// into that type.
func (r *Routine) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw map[string]interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	if name, ok := raw["routine_name"].(string); ok {
		r.Name = name
	}
	if desc, ok := raw["description"].(string); ok {
		r.Description = desc
	}
	if tagsRaw, ok := raw["tags"].([]interface{}); ok {
		r.Tags = make([]string, len(tagsRaw))
		for i, tag := range tagsRaw {
			if tagStr, ok := tag.(string); ok {
				r.Tags[i] = tagStr
			}
		}
	}

	stepsRaw, ok := raw["steps"]
	if !ok || stepsRaw == nil {
		return nil
	}

	stepsSlice, ok := stepsRaw.([]interface{})
	if !ok {
		return fmt.Errorf("'steps' field must be a list")
	}

	r.Steps = make([]StepDefinition, len(stepsSlice))
	for i, stepRaw := range stepsSlice {
		stepMap, ok := stepRaw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("step %d: must be a map/object", i+1)
		}

		stepName, ok := stepMap["step"].(string)
		if !ok || stepName == "" {
			return fmt.Errorf("step %d: missing or invalid 'step' field", i+1)
		}

		stepType, found := stepRegistry[strings.ToLower(stepName)]
		if !found {
			return fmt.Errorf("step %d: unknown step type '%s' (available types: %v)", i+1, stepName, registeredSteps())
		}

		def := reflect.New(stepType).Interface().(StepDefinition)

		// Round-trip the raw map so YAML decodes it into the concrete type.
		stepBytes, err := yaml.Marshal(stepMap)
		if err != nil {
			return fmt.Errorf("step %d (%s): error marshaling raw step: %w", i+1, stepName, err)
		}
		if err := yaml.Unmarshal(stepBytes, def); err != nil {
			return fmt.Errorf("step %d (%s): error unmarshaling into %T: %w", i+1, stepName, def, err)
		}

		r.Steps[i] = def
	}

	return nil
}

// Load reads and unmarshals a routine YAML file.
func Load(path string) (*Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routine file %s: %w", path, err)
	}

	var r Routine
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal routine YAML: %w", err)
	}

	return &r, nil
}

// Build validates every step and assembles the executable builder.
// The returned builder can be executed against any controller.
func (r *Routine) Build(registry *templates.Registry) (*Builder, error) {
	b := NewBuilder().WithTemplates(registry)

	for i, def := range r.Steps {
		if err := def.Validate(b); err != nil {
			return nil, fmt.Errorf("routine '%s' step %d validation failed: %w", r.Name, i+1, err)
		}
	}

	for _, def := range r.Steps {
		b = def.Build(b)
	}

	return b, nil
}
