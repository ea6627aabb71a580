package imageutil

import "math"

// Kernel is a 3x3 convolution kernel, indexed [row][column].
type Kernel [3][3]float64

// DefaultSharpenAmount is the mild sharpening applied when callers ask for
// sharpening without naming a strength.
const DefaultSharpenAmount = 0.5

// SharpeningKernel returns a 3x3 unsharp kernel whose four arms carry
// -amount. The weights sum to 1, so flat regions are left unchanged.
func SharpeningKernel(amount float64) Kernel {
	return Kernel{
		{0, -amount, 0},
		{-amount, 1 + 4*amount, -amount},
		{0, -amount, 0},
	}
}

// Convolve applies k to the color channels of img, replicating edge
// pixels. Alpha is copied from the source.
func Convolve(img *RGBAImage, k Kernel) *RGBAImage {
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)
	if width == 0 || height == 0 {
		return dst
	}
	min := img.Bounds().Min

	// rows[i] is the source row at y+i-1, clamped to the image.
	var rows [3][]uint8
	for y := 0; y < height; y++ {
		for i := range rows {
			sy := clampInt(y+i-1, 0, height-1)
			off := img.PixOffset(min.X, min.Y+sy)
			rows[i] = img.Pix[off : off+width*4]
		}
		out := dst.Pix[dst.PixOffset(0, y):]
		for x := 0; x < width; x++ {
			var sum [3]float64
			for ky, row := range rows {
				for kx := 0; kx < 3; kx++ {
					w := k[ky][kx]
					if w == 0 {
						continue
					}
					p := clampInt(x+kx-1, 0, width-1) * 4
					sum[0] += float64(row[p]) * w
					sum[1] += float64(row[p+1]) * w
					sum[2] += float64(row[p+2]) * w
				}
			}
			o := x * 4
			out[o] = clampUint8(sum[0])
			out[o+1] = clampUint8(sum[1])
			out[o+2] = clampUint8(sum[2])
			out[o+3] = rows[1][o+3]
		}
	}
	return dst
}

// Sharpen applies the sharpening kernel with the given amount. Amounts
// of zero or less return img unchanged.
func Sharpen(img *RGBAImage, amount float64) *RGBAImage {
	if amount <= 0 {
		return img
	}
	return Convolve(img, SharpeningKernel(amount))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampUint8 rounds v to the nearest byte value.
func clampUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
