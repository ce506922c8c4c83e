package routine

import "reflect"

// stepRegistry maps YAML step names to their concrete Go types.
// This enables polymorphic unmarshaling of StepDefinition interfaces from
// YAML. Names are matched lowercase to allow for fuzzy script writing.
//
// To add a new step:
// 1. Create a struct that implements the StepDefinition interface (Validate & Build methods)
// 2. Add it to this registry with the name used in YAML files
var stepRegistry = map[string]reflect.Type{
	"launch":              reflect.TypeOf(Launch{}),
	"run_command":         reflect.TypeOf(RunCommand{}),
	"sleep":               reflect.TypeOf(Sleep{}),
	"move":                reflect.TypeOf(Move{}),
	"click":               reflect.TypeOf(ClickStep{}),
	"drag":                reflect.TypeOf(Drag{}),
	"key":                 reflect.TypeOf(Key{}),
	"type":                reflect.TypeOf(Type{}),
	"screenshot":          reflect.TypeOf(Screenshot{}),
	"wait_for_image":      reflect.TypeOf(WaitForImage{}),
	"wait_for_image_gone": reflect.TypeOf(WaitForImageGone{}),
	"extract_text":        reflect.TypeOf(ExtractText{}),
}

// registeredSteps returns all registered step names for error messages
func registeredSteps() []string {
	names := make([]string, 0, len(stepRegistry))
	for name := range stepRegistry {
		names = append(names, name)
	}
	return names
}
