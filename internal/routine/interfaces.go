package routine

import (
	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/ocr"
	"xcontrol.dev/xcontrol/internal/screen"
)

// Controller defines the display capabilities that steps need. This breaks
// the circular dependency by letting steps depend on an interface instead of
// the concrete control type.
type Controller interface {
	Launch(startCmd []string, env map[string]string, waitFor bool) error
	MouseMove(point geometry.Point) error
	MouseClick(point geometry.Point, button screen.Click) error
	MouseDrag(start, end geometry.Point, button screen.Click) error
	Key(key string)
	Type(text string, clear bool)
	Screenshot(frame *geometry.Frame, saveDir string) (*imaging.Image, error)
	// WaitForTemplate and WaitForTemplateGone take a decoded template so
	// registry-cached images are searched without re-decoding. A positive
	// confidence overrides the configured search default; zero keeps it.
	WaitForTemplate(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) (geometry.Point, error)
	WaitForTemplateGone(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) error
	ExtractText(frame *geometry.Frame, spec ocr.Spec, opts *ocr.ExtractOptions) (string, error)
	RunCommand(cmd string, waitFor bool) string
}
