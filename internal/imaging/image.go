// Package imaging holds the pixel buffer type shared by capture, template
// matching and OCR preparation. Color buffers are 3-channel, interleaved,
// blue-green-red order, matching what the X server hands back.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
)

// Image is a packed pixel buffer. Channels is 3 for BGR color, 1 for
// grayscale. Pix is row-major with Channels bytes per pixel.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed buffer.
func New(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// NewBGR allocates a zeroed 3-channel color buffer.
func NewBGR(width, height int) *Image {
	return New(width, height, 3)
}

// NewGray allocates a zeroed single-channel buffer.
func NewGray(width, height int) *Image {
	return New(width, height, 1)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Channels: m.Channels}
	out.Pix = make([]uint8, len(m.Pix))
	copy(out.Pix, m.Pix)
	return out
}

// FromImage converts any decoded image into a BGR buffer.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	out := NewBGR(bounds.Dx(), bounds.Dy())

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[i] = uint8(b >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(r >> 8)
			i += 3
		}
	}
	return out
}

// Load reads and decodes a PNG template file into a BGR buffer.
func Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// ToImage converts the buffer back to a standard library image for
// encoding, resizing and display.
func (m *Image) ToImage() image.Image {
	if m.Channels == 1 {
		gray := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
		copy(gray.Pix, m.Pix)
		return gray
	}

	rgba := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := m.PixOffset(x, y)
			rgba.SetRGBA(x, y, color.RGBA{
				R: m.Pix[i+2],
				G: m.Pix[i+1],
				B: m.Pix[i],
				A: 255,
			})
		}
	}
	return rgba
}

// EncodePNG writes the buffer as PNG.
func (m *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.ToImage())
}

// SavePNG writes the buffer to a PNG file.
func (m *Image) SavePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return m.EncodePNG(file)
}

// Grayscale converts a BGR buffer to single-channel intensity using the
// usual luminance weights. A grayscale buffer is returned as a clone.
func (m *Image) Grayscale() *Image {
	if m.Channels == 1 {
		return m.Clone()
	}

	out := NewGray(m.Width, m.Height)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+3, j+1 {
		b := int(m.Pix[i])
		g := int(m.Pix[i+1])
		r := int(m.Pix[i+2])
		out.Pix[j] = uint8((r*299 + g*587 + b*114) / 1000)
	}
	return out
}

// InRangeBGR builds a mask selecting pixels whose channels all fall within
// [lower, upper] inclusive, compared channel by channel in BGR order. The
// mask has one byte per pixel, 255 for selected pixels and 0 otherwise.
func (m *Image) InRangeBGR(lower, upper [3]uint8) []uint8 {
	mask := make([]uint8, m.Width*m.Height)
	for p := 0; p < len(mask); p++ {
		i := p * 3
		in := true
		for c := 0; c < 3; c++ {
			v := m.Pix[i+c]
			if v < lower[c] || v > upper[c] {
				in = false
				break
			}
		}
		if in {
			mask[p] = 255
		}
	}
	return mask
}

// Crop copies the rectangle [x0, x1) x [y0, y1) into a new buffer.
func (m *Image) Crop(x0, y0, x1, y1 int) *Image {
	out := New(x1-x0, y1-y0, m.Channels)
	rowBytes := out.Width * out.Channels
	for y := y0; y < y1; y++ {
		src := m.PixOffset(x0, y)
		dst := (y - y0) * rowBytes
		copy(out.Pix[dst:dst+rowBytes], m.Pix[src:src+rowBytes])
	}
	return out
}

// Pad surrounds a grayscale buffer with a constant-value border.
func (m *Image) Pad(border int, value uint8) *Image {
	out := NewGray(m.Width+2*border, m.Height+2*border)
	for i := range out.Pix {
		out.Pix[i] = value
	}
	for y := 0; y < m.Height; y++ {
		src := y * m.Width
		dst := (y+border)*out.Width + border
		copy(out.Pix[dst:dst+m.Width], m.Pix[src:src+m.Width])
	}
	return out
}

// Scale resizes the buffer by the given factor on both axes using linear
// interpolation.
func (m *Image) Scale(factor float64) *Image {
	w := uint(float64(m.Width) * factor)
	h := uint(float64(m.Height) * factor)
	scaled := resize.Resize(w, h, m.ToImage(), resize.Bilinear)

	if m.Channels == 1 {
		out := NewGray(int(w), int(h))
		bounds := scaled.Bounds()
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				out.Pix[i] = color.GrayModel.Convert(scaled.At(x, y)).(color.Gray).Y
				i++
			}
		}
		return out
	}
	return FromImage(scaled)
}
