package spectra6

import (
	"image/color"
	"math"
)

// RGB represents a color in the sRGB color space with 8-bit channels,
// where each channel ranges from 0 to 255.
type RGB struct {
	R, G, B uint8
}

// ToUint32 converts an RGB color to a 24-bit value packed into a uint32.
func (c RGB) ToUint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBFromUint32 converts a 24-bit 0xRRGGBB value to an RGB color.
func RGBFromUint32(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// ToColor converts RGB to an opaque color.RGBA.
func (c RGB) ToColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// RGBFromColor converts any color.Color to RGB, compositing translucent
// colors over white.
func RGBFromColor(c color.Color) RGB {
	r, g, b, a := c.RGBA()
	// Premultiplied: add the white that shows through.
	white := 0xffff - a
	return RGB{
		R: uint8((r + white) >> 8),
		G: uint8((g + white) >> 8),
		B: uint8((b + white) >> 8),
	}
}

// rgbError is the per-channel quantization error of a single pixel.
// Values are unbounded floats; callers clamp before reuse.
type rgbError [3]float64

// subtractToError returns the signed difference between an adjusted
// (possibly fractional) color and a palette color.
func subtractToError(r, g, b float64, target RGB) rgbError {
	return rgbError{
		r - float64(target.R),
		g - float64(target.G),
		b - float64(target.B),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampChannel clamps v to the valid channel range. NaN maps to 0.
func clampChannel(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 255)
}

// roundChannel clamps and rounds v to the nearest uint8.
func roundChannel(v float64) uint8 {
	return uint8(math.Round(clampChannel(v)))
}
