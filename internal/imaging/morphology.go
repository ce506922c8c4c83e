package imaging

// Morphological operations over grayscale buffers with a 3x3 structuring
// element. Border pixels use the nearest in-bounds neighborhood.

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Erode replaces each pixel with the minimum of its 3x3 neighborhood.
func (m *Image) Erode() *Image {
	return m.morph(func(best, v uint8) bool { return v < best })
}

// Dilate replaces each pixel with the maximum of its 3x3 neighborhood.
func (m *Image) Dilate() *Image {
	return m.morph(func(best, v uint8) bool { return v > best })
}

func (m *Image) morph(better func(best, v uint8) bool) *Image {
	out := NewGray(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			best := m.Pix[y*m.Width+x]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny := clamp(y+dy, 0, m.Height-1)
					nx := clamp(x+dx, 0, m.Width-1)
					if v := m.Pix[ny*m.Width+nx]; better(best, v) {
						best = v
					}
				}
			}
			out.Pix[y*m.Width+x] = best
		}
	}
	return out
}

// gaussian3x3 is the standard 3x3 binomial kernel, divisor 16.
var gaussian3x3 = [3][3]int{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// GaussianBlur smooths a grayscale buffer with a 3x3 Gaussian kernel,
// replicating edge pixels at the border.
func (m *Image) GaussianBlur() *Image {
	out := NewGray(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny := clamp(y+dy, 0, m.Height-1)
					nx := clamp(x+dx, 0, m.Width-1)
					sum += int(m.Pix[ny*m.Width+nx]) * gaussian3x3[dy+1][dx+1]
				}
			}
			out.Pix[y*m.Width+x] = uint8(sum / 16)
		}
	}
	return out
}
