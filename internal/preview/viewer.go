// Package preview displays processed images in a window for debugging OCR
// preparation. Show blocks until the window is dismissed, so it is only
// suitable for interactive runs.
package preview

import (
	"errors"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"

	"xcontrol.dev/xcontrol/internal/imaging"
)

// ErrAlreadyShown is returned when Show is called a second time in the same
// process. Fyne runs one application lifecycle per process, so only a single
// preview window can ever be opened.
var ErrAlreadyShown = errors.New("preview: window already shown in this process")

var shown atomic.Bool

// Viewer shows images in a Fyne window.
type Viewer struct{}

// NewViewer creates a viewer.
func NewViewer() *Viewer {
	return &Viewer{}
}

// Show opens a window with the image at its native size and blocks until
// the user closes it. It may be called at most once per process; further
// calls return ErrAlreadyShown.
func (v *Viewer) Show(img *imaging.Image) error {
	if !shown.CompareAndSwap(false, true) {
		return ErrAlreadyShown
	}

	previewApp := app.NewWithID("dev.xcontrol.preview")
	window := previewApp.NewWindow("xcontrol preview")

	content := canvas.NewImageFromImage(img.ToImage())
	content.FillMode = canvas.ImageFillOriginal

	window.SetContent(content)
	window.Resize(fyne.NewSize(float32(img.Width), float32(img.Height)))
	window.SetMaster()
	window.ShowAndRun()
	return nil
}
