// Package ocr turns captured screenshots into text. A color screenshot is
// binarized against a background color range, cleaned up, upscaled, and
// handed to the OCR engine.
package ocr

import (
	"regexp"
	"strings"

	"xcontrol.dev/xcontrol/internal/imaging"
)

// Preparer converts a raw color screenshot into a binarized image ready
// for recognition. Supplying one to ExtractText replaces the default
// pipeline entirely; its output is not validated further.
type Preparer interface {
	Prepare(img *imaging.Image) (*imaging.Image, error)
}

// Previewer displays a processed image, blocking until dismissed. Used as
// a debugging aid only.
type Previewer interface {
	Show(img *imaging.Image) error
}

// ExtractOptions adjusts a single extraction call.
type ExtractOptions struct {
	// Preview displays the processed image before returning.
	Preview bool
	// Preparer replaces the default binarize/improve/enhance pipeline.
	Preparer Preparer
}

// Extractor owns the engine and optional preview surface.
type Extractor struct {
	engine    Engine
	previewer Previewer
}

// NewExtractor creates an extractor backed by the given engine.
func NewExtractor(engine Engine) *Extractor {
	return &Extractor{engine: engine}
}

// WithPreviewer sets the preview surface used when options request it.
func (x *Extractor) WithPreviewer(p Previewer) *Extractor {
	x.previewer = p
	return x
}

var tabRuns = regexp.MustCompile(`\t+`)

// ExtractText runs the preparation pipeline and the engine over a BGR
// screenshot and returns the cleaned-up text. A nil opts uses the default
// pipeline with no preview. Malformed or empty content yields empty or
// garbage text rather than an error; only a wrong channel count fails.
func (x *Extractor) ExtractText(img *imaging.Image, spec Spec, opts *ExtractOptions) (string, error) {
	if img == nil || img.Channels != 3 {
		return "", ErrInvalidInput
	}
	if opts == nil {
		opts = &ExtractOptions{}
	}

	var prepared *imaging.Image
	var err error
	if opts.Preparer != nil {
		prepared, err = opts.Preparer.Prepare(img)
		if err != nil {
			return "", err
		}
	} else {
		prepared, err = Binarize(img, spec)
		if err != nil {
			return "", err
		}
		prepared = Enhance(ImproveResolution(prepared))
	}

	text, err := x.engine.Recognize(prepared, spec.Type)
	if err != nil {
		return "", err
	}
	text = formatText(text)

	if opts.Preview && x.previewer != nil {
		if err := x.previewer.Show(prepared); err != nil {
			return text, err
		}
	}

	return text, nil
}

// formatText collapses runs of tabs into a single space and trims
// surrounding whitespace.
func formatText(text string) string {
	return strings.TrimSpace(tabRuns.ReplaceAllString(text, " "))
}
