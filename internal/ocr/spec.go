package ocr

import "fmt"

// PSM is the page segmentation mode passed to the OCR engine, describing
// the expected text layout.
type PSM int

const (
	// PSMBlockOfText expects a uniform block of text.
	PSMBlockOfText PSM = iota
	// PSMSingleLine expects a single line of text.
	PSMSingleLine
	// PSMSingleWord expects a single word.
	PSMSingleWord
	// PSMNumber expects a single line restricted to digits.
	PSMNumber
)

var psmNames = map[string]PSM{
	"BLOCK_OF_TEXT": PSMBlockOfText,
	"SINGLE_LINE":   PSMSingleLine,
	"SINGLE_WORD":   PSMSingleWord,
	"NUMBER":        PSMNumber,
}

// PSMFromString parses a segmentation mode name.
func PSMFromString(name string) (PSM, error) {
	if psm, ok := psmNames[name]; ok {
		return psm, nil
	}
	return 0, fmt.Errorf("unknown segmentation mode %q", name)
}

func (p PSM) String() string {
	for name, psm := range psmNames {
		if psm == p {
			return name
		}
	}
	return fmt.Sprintf("PSM(%d)", int(p))
}

// Spec tells the extraction pipeline which pixel color range counts as
// background during binarization, and which segmentation mode to run the
// engine with. Bounds are BGR triples, inclusive at both ends.
type Spec struct {
	Type       PSM
	LowerBound [3]uint8
	UpperBound [3]uint8
}

// NewSpec creates an OCR specification from its three fields.
func NewSpec(psm PSM, lower, upper [3]uint8) Spec {
	return Spec{Type: psm, LowerBound: lower, UpperBound: upper}
}

// SpecFromMap builds a Spec from a decoded mapping, e.g. an inline block
// in a routine file. Exactly the keys psm, lowerBound and upperBound must
// be present; anything unknown or missing is rejected.
func SpecFromMap(m map[string]interface{}) (Spec, error) {
	for key := range m {
		switch key {
		case "psm", "lowerBound", "upperBound":
		default:
			return Spec{}, fmt.Errorf("unknown spec key %q", key)
		}
	}

	rawPSM, ok := m["psm"].(string)
	if !ok {
		return Spec{}, fmt.Errorf("spec key psm is required and must be a string")
	}
	psm, err := PSMFromString(rawPSM)
	if err != nil {
		return Spec{}, err
	}

	lower, err := boundFromValue(m["lowerBound"])
	if err != nil {
		return Spec{}, fmt.Errorf("lowerBound: %w", err)
	}
	upper, err := boundFromValue(m["upperBound"])
	if err != nil {
		return Spec{}, fmt.Errorf("upperBound: %w", err)
	}

	return Spec{Type: psm, LowerBound: lower, UpperBound: upper}, nil
}

func boundFromValue(v interface{}) ([3]uint8, error) {
	var bound [3]uint8

	list, ok := v.([]interface{})
	if !ok {
		return bound, fmt.Errorf("required and must be a list of 3 channel values")
	}
	if len(list) != 3 {
		return bound, fmt.Errorf("must have exactly 3 channel values, got %d", len(list))
	}
	for i, item := range list {
		n, ok := item.(int)
		if !ok || n < 0 || n > 255 {
			return bound, fmt.Errorf("channel value %v out of range 0-255", item)
		}
		bound[i] = uint8(n)
	}
	return bound, nil
}
