package display

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
)

// Screenshot captures the contents of the given frame from the nested
// display's root window as a BGR buffer. A nil frame captures the whole
// screen.
func (d *Display) Screenshot(frame *geometry.Frame) (*imaging.Image, error) {
	if frame == nil {
		full := geometry.NewFrame(geometry.Point{}, d.Width, d.Height)
		frame = &full
	}

	conn, err := xgb.NewConnDisplay(d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display %s: %w", d.ID, err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	topLeft := frame.TopLeft()
	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(root),
		int16(topLeft.X), int16(topLeft.Y),
		uint16(frame.Width), uint16(frame.Height), 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", frame, err)
	}

	return bgrFromZPixmap(reply.Data, frame.Width, frame.Height)
}

// bgrFromZPixmap converts 32-bit ZPixmap data (BGRX byte order) into a
// packed BGR buffer.
func bgrFromZPixmap(data []byte, width, height int) (*imaging.Image, error) {
	if len(data) < width*height*4 {
		return nil, fmt.Errorf("short pixmap data: got %d bytes for %dx%d", len(data), width, height)
	}

	img := imaging.NewBGR(width, height)
	for p := 0; p < width*height; p++ {
		img.Pix[p*3] = data[p*4]
		img.Pix[p*3+1] = data[p*4+1]
		img.Pix[p*3+2] = data[p*4+2]
	}
	return img, nil
}

// SaveScreenshot writes a captured frame to dir as a timestamped PNG and
// returns the full path.
func (d *Display) SaveScreenshot(img *imaging.Image, dir string) (string, error) {
	path := filepath.Join(dir, screenshotFilename(time.Now()))
	d.logger.DebugWithContext("saving screenshot", map[string]interface{}{"path": path})

	if err := img.SavePNG(path); err != nil {
		d.logger.Error("failed to save screenshot", err)
		return "", err
	}
	return path, nil
}

// screenshotFilename names files screenshot_<HH-MM-SS-microseconds>.png.
func screenshotFilename(t time.Time) string {
	return fmt.Sprintf("screenshot_%s-%06d.png", t.Format("15-04-05"), t.Nanosecond()/1000)
}
