package screen

import (
	"fmt"
	"time"

	"xcontrol.dev/xcontrol/internal/cv"
	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/wait"
)

// SearchConfig scopes an image search. The zero value is not useful; use
// DefaultSearchConfig and override fields as needed.
type SearchConfig struct {
	// Frame limits capture and search to a screen region. Nil searches
	// the whole screen.
	Frame *geometry.Frame
	// Confidence is the correlation threshold a match must exceed.
	Confidence float64
	// Timeout bounds the polled wait operations.
	Timeout time.Duration
	// Interval is the pause between poll attempts.
	Interval time.Duration
}

// DefaultSearchConfig returns the documented defaults: full screen,
// confidence 0.7, timeout 1s, interval 100ms.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Confidence: 0.7,
		Timeout:    time.Second,
		Interval:   wait.DefaultInterval,
	}
}

// Locate captures the configured frame once and searches it for the
// template image at imagePath. It returns the center point of the best
// match and whether it cleared the confidence threshold. The confidence
// precondition is checked before any capture; an unreadable template
// path yields a NotFoundError.
func (s *Screen) Locate(imagePath string, cfg SearchConfig) (geometry.Point, bool, error) {
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return geometry.Point{}, false, ErrConfidenceRange
	}

	template, err := imaging.Load(imagePath)
	if err != nil {
		return geometry.Point{}, false, &NotFoundError{Path: imagePath, Err: err}
	}
	return s.locate(template, cfg)
}

func (s *Screen) locate(template *imaging.Image, cfg SearchConfig) (geometry.Point, bool, error) {
	frame, err := s.driver.Screenshot(cfg.Frame)
	if err != nil {
		return geometry.Point{}, false, err
	}

	result, err := cv.FindTemplate(frame, template, cfg.Confidence)
	if err != nil {
		return geometry.Point{}, false, err
	}
	if !result.Found {
		return geometry.Point{}, false, nil
	}

	center := result.Center
	if cfg.Frame != nil {
		// Match coordinates are frame-relative; report screen positions.
		center = center.Add(geometry.Offset{X: cfg.Frame.Corner.X, Y: cfg.Frame.Corner.Y})
	}
	return center, true, nil
}

// WaitForImage polls until the template at imagePath appears and returns
// its center, or a TimeoutError once cfg.Timeout elapses. The image is
// decoded from disk on every call; callers holding a decoded template
// should use WaitForTemplate instead.
func (s *Screen) WaitForImage(imagePath string, cfg SearchConfig) (geometry.Point, error) {
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return geometry.Point{}, ErrConfidenceRange
	}
	template, err := imaging.Load(imagePath)
	if err != nil {
		return geometry.Point{}, &NotFoundError{Path: imagePath, Err: err}
	}
	return s.WaitForTemplate(imagePath, template, cfg)
}

// WaitForTemplate polls until an already-decoded template appears and
// returns its center. The name is only used in diagnostics.
func (s *Screen) WaitForTemplate(name string, template *imaging.Image, cfg SearchConfig) (geometry.Point, error) {
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return geometry.Point{}, ErrConfidenceRange
	}

	var searchErr error
	point, found := wait.ToBeSet(func() (geometry.Point, bool) {
		p, ok, err := s.locate(template, cfg)
		if err != nil {
			searchErr = err
			return geometry.Point{}, false
		}
		return p, ok
	}, cfg.Timeout, cfg.Interval)

	if found {
		return point, nil
	}
	if searchErr != nil {
		return geometry.Point{}, searchErr
	}
	return geometry.Point{}, &TimeoutError{
		Condition: fmt.Sprintf("image %s not found", name),
		Timeout:   cfg.Timeout,
	}
}

// WaitForImageGone polls until the template at imagePath no longer
// appears, or returns a TimeoutError once cfg.Timeout elapses.
func (s *Screen) WaitForImageGone(imagePath string, cfg SearchConfig) error {
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return ErrConfidenceRange
	}
	template, err := imaging.Load(imagePath)
	if err != nil {
		return &NotFoundError{Path: imagePath, Err: err}
	}
	return s.WaitForTemplateGone(imagePath, template, cfg)
}

// WaitForTemplateGone polls until an already-decoded template no longer
// appears. The name is only used in diagnostics.
func (s *Screen) WaitForTemplateGone(name string, template *imaging.Image, cfg SearchConfig) error {
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return ErrConfidenceRange
	}

	var searchErr error
	gone := wait.For(func() bool {
		_, found, err := s.locate(template, cfg)
		if err != nil {
			searchErr = err
			return false
		}
		return !found
	}, cfg.Timeout, cfg.Interval)

	if gone {
		return nil
	}
	if searchErr != nil {
		return searchErr
	}
	return &TimeoutError{
		Condition: fmt.Sprintf("image %s did not disappear", name),
		Timeout:   cfg.Timeout,
	}
}
