package spectra6

import (
	"fmt"
	"image"
	"math"
)

// MaxPixels bounds width*height for every buffer the engine allocates.
// Callers wanting a tighter bound check before invoking the engine.
const MaxPixels = 1 << 26

// PixelSource is a decoded image: Width*Height pixels of Channels bytes
// each, row-major. With 4 channels the alpha byte is composited over
// white when read.
type PixelSource struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// checkDimensions rejects sizes that cannot describe a buffer.
func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxPixels/height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, MaxPixels)
	}
	return nil
}

// NewPixelSource wraps pix after checking that it describes exactly
// width*height pixels of the given channel count.
func NewPixelSource(width, height, channels int, pix []uint8) (PixelSource, error) {
	if err := checkDimensions(width, height); err != nil {
		return PixelSource{}, err
	}
	if channels != 3 && channels != 4 {
		return PixelSource{}, fmt.Errorf("%w: %d channels, expected 3 (RGB) or 4 (RGBA)",
			ErrInvalidOptions, channels)
	}
	if want := width * height * channels; len(pix) != want {
		return PixelSource{}, fmt.Errorf("%w: %dx%dx%d needs %d bytes, got %d",
			ErrInvalidDimensions, width, height, channels, want, len(pix))
	}
	return PixelSource{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// PixelSourceFromImage copies img into an RGB pixel source, compositing
// any transparency over white.
func PixelSourceFromImage(img image.Image) (PixelSource, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if err := checkDimensions(width, height); err != nil {
		return PixelSource{}, err
	}
	pix := make([]uint8, 0, width*height*3)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
			for x := 0; x < width; x++ {
				p := row[x*4 : x*4+4]
				c := compositeOverWhite(p[0], p[1], p[2], p[3], true)
				pix = append(pix, c.R, c.G, c.B)
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := RGBFromColor(img.At(x, y))
				pix = append(pix, c.R, c.G, c.B)
			}
		}
	}
	return PixelSource{Width: width, Height: height, Channels: 3, Pix: pix}, nil
}

// compositeOverWhite blends a color with coverage a over white. Colors in
// image.RGBA are premultiplied; raw RGBA byte buffers are not.
func compositeOverWhite(r, g, b, a uint8, premultiplied bool) RGB {
	if a == 0xff {
		return RGB{R: r, G: g, B: b}
	}
	white := 255 - int(a)
	blend := func(v uint8) uint8 {
		c := int(v)
		if !premultiplied {
			c = (c*int(a) + 127) / 255
		}
		if c += white; c > 255 {
			c = 255
		}
		return uint8(c)
	}
	return RGB{R: blend(r), G: blend(g), B: blend(b)}
}

// RGBAt returns the composited color at (x, y).
func (s PixelSource) RGBAt(x, y int) RGB {
	i := (y*s.Width + x) * s.Channels
	if s.Channels == 4 {
		return compositeOverWhite(s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3], false)
	}
	return RGB{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
}

// Len returns the pixel count.
func (s PixelSource) Len() int {
	return s.Width * s.Height
}

func (s PixelSource) validate() error {
	_, err := NewPixelSource(s.Width, s.Height, s.Channels, s.Pix)
	return err
}

// EncodeRGB returns the streaming wire format of src: three bytes per
// pixel, row-major, alpha already composited. Consumers that quantize on
// the device read this directly.
func EncodeRGB(src PixelSource) []byte {
	if src.Channels == 3 {
		out := make([]byte, len(src.Pix))
		copy(out, src.Pix)
		return out
	}
	out := make([]byte, 0, src.Len()*3)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			c := src.RGBAt(x, y)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}

// Luminance returns the mean relative luminance (Lab L* / 100) of the
// colors in q under palette p. Useful to judge how well a dithered pattern
// reproduces a flat tone.
func Luminance(q QuantizedBuffer, p Palette) float64 {
	if len(q) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, index := range q {
		if c, ok := p.ByIndex(index); ok {
			sum += c.Lab.L / 100
		}
	}
	return sum / float64(len(q))
}
