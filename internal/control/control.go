// Package control composes the display, screen and OCR layers into one
// automation handle per nested display, plus the registry that hands the
// handles out.
package control

import (
	"strings"

	"xcontrol.dev/xcontrol/internal/config"
	"xcontrol.dev/xcontrol/internal/display"
	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/logging"
	"xcontrol.dev/xcontrol/internal/ocr"
	"xcontrol.dev/xcontrol/internal/preview"
	"xcontrol.dev/xcontrol/internal/screen"
)

// XControl is the automation handle for one nested display. Operations
// are synchronous and must not be called concurrently from multiple
// goroutines; serialize externally if needed.
type XControl struct {
	display   *display.Display
	screen    *screen.Screen
	extractor *ocr.Extractor
	settings  *config.Settings
}

// New builds a handle for the given display id and screen size.
func New(id string, width, height int, settings *config.Settings) (*XControl, error) {
	if settings == nil {
		settings = config.NewDefaultSettings()
	}

	logger := logging.New("xcontrol").SetMinLevel(logging.Level(settings.LogLevel))
	paths := display.Paths{
		Xephyr:  settings.XephyrPath,
		Xdotool: settings.XdotoolPath,
		WM:      settings.WMPath,
		VGLRun:  settings.VGLRunPath,
	}

	disp, err := display.New(id, width, height, paths, logger)
	if err != nil {
		return nil, err
	}

	return &XControl{
		display:   disp,
		screen:    screen.New(disp, settings.XdotoolPath, logger),
		extractor: ocr.NewExtractor(ocr.NewTesseractEngine()).WithPreviewer(preview.NewViewer()),
		settings:  settings,
	}, nil
}

// Display exposes the underlying display controller.
func (x *XControl) Display() *display.Display { return x.display }

// Screen exposes the underlying input layer for advanced use.
func (x *XControl) Screen() *screen.Screen { return x.screen }

// Launch restarts the nested display and starts the application in it.
func (x *XControl) Launch(startCmd []string, env map[string]string, waitFor bool) error {
	return x.display.Launch(startCmd, env, waitFor)
}

// Close terminates the nested display and the application under test.
func (x *XControl) Close() {
	if x.display != nil {
		x.display.Close()
	}
}

// MousePosition reports the pointer position, origin at the top left.
func (x *XControl) MousePosition() (geometry.Point, error) {
	return x.screen.MousePosition()
}

// MouseMove moves the pointer and confirms arrival.
func (x *XControl) MouseMove(point geometry.Point) error {
	return x.screen.MouseMove(point)
}

// MouseClick moves the pointer, confirms arrival and clicks.
func (x *XControl) MouseClick(point geometry.Point, button screen.Click) error {
	return x.screen.MouseClick(point, button)
}

// MouseDrag drags from start to end with the given button held.
func (x *XControl) MouseDrag(start, end geometry.Point, button screen.Click) error {
	return x.screen.MouseDrag(start, end, button)
}

// Key sends a single key press.
func (x *XControl) Key(key string) {
	x.screen.Key(key)
}

// Type enters text, optionally clearing the focused field first.
func (x *XControl) Type(text string, clear bool) {
	x.screen.Type(text, clear)
}

// Screenshot captures the frame (whole screen when nil) and, if saveDir
// is non-empty, persists it as a timestamped PNG there.
func (x *XControl) Screenshot(frame *geometry.Frame, saveDir string) (*imaging.Image, error) {
	img, err := x.display.Screenshot(frame)
	if err != nil {
		return nil, err
	}
	if saveDir != "" {
		if _, err := x.display.SaveScreenshot(img, saveDir); err != nil {
			return img, err
		}
	}
	return img, nil
}

// SearchDefaults returns the configured search parameters.
func (x *XControl) SearchDefaults() screen.SearchConfig {
	return screen.SearchConfig{
		Confidence: x.settings.Confidence,
		Timeout:    x.settings.Timeout,
		Interval:   x.settings.PollInterval,
	}
}

// WaitForImage waits for the template to appear in the frame (whole
// screen when nil) and returns its center.
func (x *XControl) WaitForImage(imagePath string, frame *geometry.Frame) (geometry.Point, error) {
	cfg := x.SearchDefaults()
	cfg.Frame = frame
	return x.screen.WaitForImage(imagePath, cfg)
}

// WaitForImageGone waits for the template to disappear from the frame.
func (x *XControl) WaitForImageGone(imagePath string, frame *geometry.Frame) error {
	cfg := x.SearchDefaults()
	cfg.Frame = frame
	return x.screen.WaitForImageGone(imagePath, cfg)
}

// WaitForTemplate waits for an already-decoded template to appear in the
// frame and returns its center. A positive confidence overrides the
// configured search default; zero keeps it.
func (x *XControl) WaitForTemplate(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) (geometry.Point, error) {
	cfg := x.SearchDefaults()
	cfg.Frame = frame
	if confidence > 0 {
		cfg.Confidence = confidence
	}
	return x.screen.WaitForTemplate(name, template, cfg)
}

// WaitForTemplateGone waits for an already-decoded template to disappear
// from the frame. Confidence follows the same rule as WaitForTemplate.
func (x *XControl) WaitForTemplateGone(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) error {
	cfg := x.SearchDefaults()
	cfg.Frame = frame
	if confidence > 0 {
		cfg.Confidence = confidence
	}
	return x.screen.WaitForTemplateGone(name, template, cfg)
}

// ExtractText captures the frame and extracts its text.
func (x *XControl) ExtractText(frame *geometry.Frame, spec ocr.Spec, opts *ocr.ExtractOptions) (string, error) {
	img, err := x.display.Screenshot(frame)
	if err != nil {
		return "", err
	}
	return x.extractor.ExtractText(img, spec, opts)
}

// ExtractTextFromImage extracts text from an already-captured image.
func (x *XControl) ExtractTextFromImage(img *imaging.Image, spec ocr.Spec, opts *ocr.ExtractOptions) (string, error) {
	return x.extractor.ExtractText(img, spec, opts)
}

// RunCommand executes a whitespace-separated command in the nested
// display's environment. Quoting is not interpreted; use the display
// layer directly for arguments containing spaces.
func (x *XControl) RunCommand(cmd string, waitFor bool) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return x.display.Run(waitFor, fields[0], fields[1:]...)
}
