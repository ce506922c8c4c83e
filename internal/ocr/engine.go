package ocr

import (
	"bytes"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"xcontrol.dev/xcontrol/internal/imaging"
)

// Engine recognizes text in a prepared (binarized) image.
type Engine interface {
	Recognize(img *imaging.Image, psm PSM) (string, error)
}

// TesseractEngine invokes the Tesseract OCR engine, with the language
// fixed to English.
type TesseractEngine struct{}

// NewTesseractEngine creates a Tesseract-backed engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

// Recognize runs Tesseract over the image with the given segmentation mode.
func (e *TesseractEngine) Recognize(img *imaging.Image, psm PSM) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	switch psm {
	case PSMBlockOfText:
		client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	case PSMSingleLine:
		client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	case PSMSingleWord:
		client.SetPageSegMode(gosseract.PSM_SINGLE_WORD)
	case PSMNumber:
		client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
		if err := client.SetWhitelist("0123456789"); err != nil {
			return "", fmt.Errorf("failed to set digit whitelist: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown segmentation mode %v", psm)
	}

	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	return client.Text()
}
