package ocr

import (
	"errors"
	"testing"

	"xcontrol.dev/xcontrol/internal/imaging"
)

func grayBackgroundSpec() Spec {
	// Background is anything between mid-gray and pure white.
	return NewSpec(PSMSingleLine, [3]uint8{128, 128, 128}, [3]uint8{255, 255, 255})
}

func TestBinarizeRejectsNonColorInput(t *testing.T) {
	if _, err := Binarize(imaging.NewGray(4, 4), grayBackgroundSpec()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := Binarize(nil, grayBackgroundSpec()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image err = %v, want ErrInvalidInput", err)
	}
}

func TestBinarizeSeparatesForegroundFromBackground(t *testing.T) {
	img := imaging.NewBGR(2, 1)
	// First pixel bright background, second dark text.
	copy(img.Pix, []uint8{200, 200, 200, 10, 10, 10})

	out, err := Binarize(img, grayBackgroundSpec())
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	if out.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", out.Channels)
	}
	if out.Pix[0] != 255 {
		t.Errorf("background pixel = %d, want 255", out.Pix[0])
	}
	if out.Pix[1] != 0 {
		t.Errorf("text pixel = %d, want 0", out.Pix[1])
	}
}

func TestBinarizeAllBackgroundIsAllWhite(t *testing.T) {
	img := imaging.NewBGR(3, 3)
	for i := range img.Pix {
		img.Pix[i] = 77
	}

	spec := NewSpec(PSMSingleWord, [3]uint8{0, 0, 0}, [3]uint8{255, 255, 255})
	out, err := Binarize(img, spec)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("Pix[%d] = %d, want all white", i, v)
		}
	}
}

func TestBinarizeOutputIsBinary(t *testing.T) {
	img := imaging.NewBGR(4, 4)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7 % 256)
	}

	out, err := Binarize(img, grayBackgroundSpec())
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	for i, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("Pix[%d] = %d, output must be 0 or 255 only", i, v)
		}
	}
}

func TestImproveResolutionSizes(t *testing.T) {
	// 20x10 white image with black content in the middle 6x4 region.
	img := imaging.NewGray(20, 10)
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 3; y < 7; y++ {
		for x := 7; x < 13; x++ {
			img.Pix[y*img.Width+x] = 0
		}
	}

	out := ImproveResolution(img)

	// Crop to 6x4, pad by 15 on each side -> 36x34, then scale by 2.5.
	wantW := int(float64(6+2*15) * 2.5)
	wantH := int(float64(4+2*15) * 2.5)
	if out.Width != wantW || out.Height != wantH {
		t.Errorf("size = %dx%d, want %dx%d", out.Width, out.Height, wantW, wantH)
	}
}

func TestImproveResolutionNoBorderUnchangedByCrop(t *testing.T) {
	// Content touches every edge, so cropping is a no-op.
	img := imaging.NewGray(8, 6)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Pix[y*img.Width+x] = 0
		}
	}

	out := ImproveResolution(img)
	wantW := int(float64(8+2*15) * 2.5)
	wantH := int(float64(6+2*15) * 2.5)
	if out.Width != wantW || out.Height != wantH {
		t.Errorf("size = %dx%d, want %dx%d", out.Width, out.Height, wantW, wantH)
	}
}

func TestImproveResolutionAllWhite(t *testing.T) {
	img := imaging.NewGray(4, 4)
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	out := ImproveResolution(img)
	wantW := int(float64(4+2*15) * 2.5)
	if out.Width != wantW {
		t.Errorf("all-white image must skip the crop, got width %d want %d", out.Width, wantW)
	}
}

func TestBinarizeIdempotentOnBinarizedImage(t *testing.T) {
	img := imaging.NewBGR(4, 2)
	for i := range img.Pix {
		img.Pix[i] = uint8([]int{255, 0}[(i/3)%2])
	}

	spec := NewSpec(PSMSingleLine, [3]uint8{255, 255, 255}, [3]uint8{255, 255, 255})
	once, err := Binarize(img, spec)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}

	// Re-binarize the binarized output expanded back to BGR.
	color := imaging.NewBGR(once.Width, once.Height)
	for i, v := range once.Pix {
		color.Pix[i*3] = v
		color.Pix[i*3+1] = v
		color.Pix[i*3+2] = v
	}
	twice, err := Binarize(color, spec)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}

	for i := range once.Pix {
		if once.Pix[i] != twice.Pix[i] {
			t.Fatalf("Pix[%d] changed from %d to %d on re-binarization", i, once.Pix[i], twice.Pix[i])
		}
	}
}
