package ocr

import (
	"errors"

	"xcontrol.dev/xcontrol/internal/imaging"
)

// ErrInvalidInput is returned when the input image is not a 3-channel BGR
// buffer.
var ErrInvalidInput = errors.New("image must be a 3-channel BGR buffer")

const (
	// padding added around cropped content so glyphs never sit flush
	// against the image edge, where engines misread them.
	borderPadding = 15
	// scaleFactor upscales small glyphs; accuracy degrades sharply below
	// roughly 20px cap height.
	scaleFactor = 2.5
)

// Binarize converts a color screenshot into a black-text-on-white image.
// Pixels inside the spec's background color range become white; everything
// else becomes black. The inversion is deliberate: the engine performs
// best on dark text over a light background.
func Binarize(img *imaging.Image, spec Spec) (*imaging.Image, error) {
	if img == nil || img.Channels != 3 {
		return nil, ErrInvalidInput
	}

	background := img.InRangeBGR(spec.LowerBound, spec.UpperBound)
	out := img.Grayscale()
	for i := range out.Pix {
		if background[i] != 0 {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out, nil
}

// ImproveResolution crops away fully-white border rows and columns, pads
// the content with a fixed white margin, and upscales by 2.5x with linear
// interpolation.
func ImproveResolution(img *imaging.Image) *imaging.Image {
	img = cropToContent(img)
	img = img.Pad(borderPadding, 255)
	return img.Scale(scaleFactor)
}

// cropToContent returns the bounding box of non-white pixels. An all-white
// image is returned unchanged.
func cropToContent(img *imaging.Image) *imaging.Image {
	top, bottom := -1, -1
	for y := 0; y < img.Height; y++ {
		if !rowAllWhite(img, y) {
			if top < 0 {
				top = y
			}
			bottom = y
		}
	}
	if top < 0 {
		return img
	}

	left, right := -1, -1
	for x := 0; x < img.Width; x++ {
		if !colAllWhite(img, x) {
			if left < 0 {
				left = x
			}
			right = x
		}
	}
	if left < 0 {
		return img
	}

	return img.Crop(left, top, right+1, bottom+1)
}

func rowAllWhite(img *imaging.Image, y int) bool {
	row := img.Pix[y*img.Width : (y+1)*img.Width]
	for _, v := range row {
		if v != 255 {
			return false
		}
	}
	return true
}

func colAllWhite(img *imaging.Image, x int) bool {
	for y := 0; y < img.Height; y++ {
		if img.Pix[y*img.Width+x] != 255 {
			return false
		}
	}
	return true
}

// Enhance removes speckle noise with one erode/dilate pass and smooths
// anti-aliasing artifacts with a small Gaussian blur.
func Enhance(img *imaging.Image) *imaging.Image {
	return img.Erode().Dilate().GaussianBlur()
}
