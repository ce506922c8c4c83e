// Package screen drives mouse and keyboard input on a nested display and
// locates template images in captured frames. All operations are
// synchronous; waits happen through bounded sleep-poll loops.
package screen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/logging"
	"xcontrol.dev/xcontrol/internal/wait"
)

// mouseArrivalTimeout bounds the post-move poll confirming the pointer
// reached its commanded position.
const mouseArrivalTimeout = time.Second

// Click selects a mouse button, numbered the way xdotool numbers them.
type Click int

const (
	ClickLeft   Click = 1
	ClickMiddle Click = 2
	ClickRight  Click = 3
	ScrollUp    Click = 4
	ScrollDown  Click = 5
)

// Driver is the slice of the display controller the screen layer needs:
// command execution, window focus and frame capture.
type Driver interface {
	Run(waitFor bool, name string, args ...string) string
	ActivateWindow()
	Screenshot(frame *geometry.Frame) (*imaging.Image, error)
}

// Screen injects input into one nested display.
type Screen struct {
	driver  Driver
	xdotool string
	logger  *logging.Logger
}

// New creates a screen layer over the given driver. The xdotool path may
// be empty to use $PATH resolution.
func New(driver Driver, xdotool string, logger *logging.Logger) *Screen {
	if xdotool == "" {
		xdotool = "xdotool"
	}
	if logger == nil {
		logger = logging.New("screen")
	}
	return &Screen{driver: driver, xdotool: xdotool, logger: logger}
}

// MousePosition reports the current pointer position, parsed from
// xdotool getmouselocation output ("x:12 y:34 screen:0 window:567").
func (s *Screen) MousePosition() (geometry.Point, error) {
	out := s.driver.Run(true, s.xdotool, "getmouselocation")
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return geometry.Point{}, fmt.Errorf("unexpected getmouselocation output %q", out)
	}

	x, errX := parseLocationField(fields[0], "x")
	y, errY := parseLocationField(fields[1], "y")
	if errX != nil || errY != nil {
		return geometry.Point{}, fmt.Errorf("unexpected getmouselocation output %q", out)
	}
	return geometry.Point{X: x, Y: y}, nil
}

func parseLocationField(field, key string) (int, error) {
	name, value, ok := strings.Cut(field, ":")
	if !ok || name != key {
		return 0, fmt.Errorf("missing %s field", key)
	}
	return strconv.Atoi(value)
}

// MouseMove moves the pointer to the given point and polls until it
// arrives. A TimeoutError is returned if the pointer does not reach the
// target within one second.
func (s *Screen) MouseMove(point geometry.Point) error {
	return s.moveTo(point, nil)
}

// MouseClick moves the pointer to the given point, waits for arrival and
// presses the given button.
func (s *Screen) MouseClick(point geometry.Point, button Click) error {
	return s.moveTo(point, &button)
}

func (s *Screen) moveTo(point geometry.Point, button *Click) error {
	args := []string{"mousemove", strconv.Itoa(point.X), strconv.Itoa(point.Y)}
	if button != nil {
		args = append(args, "click", "--delay", "50", strconv.Itoa(int(*button)))
	}

	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool, args...)
	return s.awaitArrival(point)
}

// MouseDrag presses the button at start, waits for arrival, releases at
// end and waits again.
func (s *Screen) MouseDrag(start, end geometry.Point, button Click) error {
	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool,
		"mousemove", strconv.Itoa(start.X), strconv.Itoa(start.Y),
		"mousedown", strconv.Itoa(int(button)))
	if err := s.awaitArrival(start); err != nil {
		return err
	}

	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool,
		"mousemove", strconv.Itoa(end.X), strconv.Itoa(end.Y),
		"mouseup", strconv.Itoa(int(button)))
	return s.awaitArrival(end)
}

func (s *Screen) awaitArrival(point geometry.Point) error {
	arrived := wait.For(func() bool {
		pos, err := s.MousePosition()
		return err == nil && pos == point
	}, mouseArrivalTimeout, wait.DefaultInterval)

	if !arrived {
		return &TimeoutError{
			Condition: fmt.Sprintf("mouse did not reach %s", point),
			Timeout:   mouseArrivalTimeout,
		}
	}
	return nil
}

// Key sends a single key press.
func (s *Screen) Key(key string) {
	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool, "key", "--delay", "50", key)
}

// Type enters text into the focused widget, optionally clearing the field
// first.
func (s *Screen) Type(text string, clear bool) {
	if clear {
		s.clearField()
	}
	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool, "type", "--delay", "50", "--clearmodifiers", text)
}

// clearField selects the current field's content and deletes it.
func (s *Screen) clearField() {
	s.driver.ActivateWindow()
	s.driver.Run(true, s.xdotool,
		"key", "Home", "keydown", "Shift", "key", "End", "key", "Delete", "keyup", "Shift")
}
