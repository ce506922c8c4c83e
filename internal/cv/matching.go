// Package cv implements template matching over captured BGR frames.
package cv

import (
	"errors"
	"math"

	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
)

var (
	// ErrTemplateTooLarge is returned when the template does not fit in
	// the searched frame.
	ErrTemplateTooLarge = errors.New("template larger than search image")
	// ErrInvalidImage is returned for nil or non-color inputs.
	ErrInvalidImage = errors.New("invalid image provided")
)

// MatchResult is the outcome of a template search: the best correlation
// found anywhere in the frame, its location, and whether it cleared the
// caller's confidence threshold.
type MatchResult struct {
	Found      bool
	Location   geometry.Point // top left of the best matching region
	Center     geometry.Point // center of the best matching region
	Confidence float64
}

// FindTemplate slides the template over every candidate offset in the
// frame, scoring each position with normalized cross-correlation, and
// returns the global maximum. Found is set when the maximum strictly
// exceeds threshold. Both images must be 3-channel BGR.
func FindTemplate(frame, template *imaging.Image, threshold float64) (*MatchResult, error) {
	if frame == nil || template == nil || frame.Channels != 3 || template.Channels != 3 {
		return nil, ErrInvalidImage
	}
	if template.Width > frame.Width || template.Height > frame.Height {
		return nil, ErrTemplateTooLarge
	}

	bestScore := math.Inf(-1)
	bestX, bestY := 0, 0

	maxY := frame.Height - template.Height
	maxX := frame.Width - template.Width
	for y := 0; y <= maxY; y++ {
		for x := 0; x <= maxX; x++ {
			score := correlate(frame, template, x, y)
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	location := geometry.Point{X: bestX, Y: bestY}
	return &MatchResult{
		Found:      bestScore > threshold,
		Location:   location,
		Center:     location.Add(geometry.Offset{X: template.Width / 2, Y: template.Height / 2}),
		Confidence: bestScore,
	}, nil
}

// correlate computes the normalized cross-correlation coefficient between
// the template and the frame region anchored at (x, y), over all three
// channels. The result lies in [-1, 1]; flat regions score 0.
func correlate(frame, template *imaging.Image, x, y int) float64 {
	var sumF, sumT, sumFT, sumFF, sumTT float64
	n := float64(template.Width * template.Height * 3)

	rowBytes := template.Width * 3
	for ty := 0; ty < template.Height; ty++ {
		fIdx := frame.PixOffset(x, y+ty)
		tIdx := template.PixOffset(0, ty)
		for i := 0; i < rowBytes; i++ {
			f := float64(frame.Pix[fIdx+i])
			t := float64(template.Pix[tIdx+i])
			sumF += f
			sumT += t
			sumFT += f * t
			sumFF += f * f
			sumTT += t * t
		}
	}

	numerator := sumFT - sumF*sumT/n
	denomF := math.Sqrt(sumFF - sumF*sumF/n)
	denomT := math.Sqrt(sumTT - sumT*sumT/n)
	if denomF == 0 || denomT == 0 {
		return 0
	}
	return numerator / (denomF * denomT)
}
