package spectra6

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/glance/spectra6/imageutil"
)

// Reference panel geometry in its native portrait orientation.
const (
	DefaultWidth  = 1200
	DefaultHeight = 1600
)

// Converter turns arbitrary images into panel buffers: fit to the canvas,
// quantize with error diffusion, pack two pixels per byte. A Converter is
// immutable once built and safe for concurrent use; every call owns its
// buffers.
type Converter struct {
	width, height   int
	method          Method
	boost           float64
	distance        DistanceMethod
	palette         Palette
	fit             imageutil.FitOptions
	maxSourcePixels int

	matcher *Matcher
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a Converter with the given options.
// Default values: 1200x1600, Floyd-Steinberg, CIE76, no saturation boost,
// the canonical palette, no rotation, area interpolation, no sharpening.
func NewConverter(opts ...ConverterOption) (*Converter, error) {
	c := &Converter{
		width:           DefaultWidth,
		height:          DefaultHeight,
		method:          FloydSteinberg,
		boost:           DefaultSaturationBoost,
		distance:        CIE76Method{},
		palette:         DefaultPalette(),
		maxSourcePixels: MaxPixels,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	dopts := DitherOptions{
		Width:           c.width,
		Height:          c.height,
		Palette:         c.palette,
		Method:          c.method,
		SaturationBoost: c.boost,
		Distance:        c.distance,
	}
	if err := dopts.Validate(); err != nil {
		return nil, err
	}
	if c.maxSourcePixels <= 0 {
		return nil, fmt.Errorf("%w: source pixel limit must be positive, got %d",
			ErrInvalidOptions, c.maxSourcePixels)
	}
	if c.fit.Sharpen < 0 {
		return nil, fmt.Errorf("%w: negative sharpen amount %v", ErrInvalidOptions, c.fit.Sharpen)
	}
	m, err := NewMatcher(c.palette, c.distance, c.boost)
	if err != nil {
		return nil, err
	}
	c.matcher = m
	c.palette = m.Palette()
	return c, nil
}

// WithSize sets the output canvas in pixels.
func WithSize(width, height int) ConverterOption {
	return func(c *Converter) {
		c.width, c.height = width, height
	}
}

// WithMethod sets the dither method.
func WithMethod(m Method) ConverterOption {
	return func(c *Converter) {
		c.method = m
	}
}

// WithSaturationBoost scales candidate chroma before matching. Values
// above 1 push mid-saturated colors towards the panel's chromatic inks.
func WithSaturationBoost(boost float64) ConverterOption {
	return func(c *Converter) {
		c.boost = boost
	}
}

// WithDistanceMethod sets the perceptual distance used for matching.
func WithDistanceMethod(method DistanceMethod) ConverterOption {
	return func(c *Converter) {
		if method != nil {
			c.distance = method
		}
	}
}

// WithPalette sets the panel palette.
func WithPalette(p Palette) ConverterOption {
	return func(c *Converter) {
		c.palette = p
	}
}

// WithOrientation sets the rotation applied before fitting.
func WithOrientation(o imageutil.Orientation) ConverterOption {
	return func(c *Converter) {
		c.fit.Orientation = o
	}
}

// WithInterpolation sets the resampling filter.
func WithInterpolation(i imageutil.Interpolation) ConverterOption {
	return func(c *Converter) {
		c.fit.Interpolation = i
	}
}

// WithSharpen enables sharpening after scaling; 0 disables it.
func WithSharpen(amount float64) ConverterOption {
	return func(c *Converter) {
		c.fit.Sharpen = amount
	}
}

// WithMaxSourcePixels bounds the size of accepted source images. Encoded
// sources are checked against their header before the pixels are decoded.
func WithMaxSourcePixels(n int) ConverterOption {
	return func(c *Converter) {
		c.maxSourcePixels = n
	}
}

// Size returns the output canvas.
func (c *Converter) Size() (width, height int) {
	return c.width, c.height
}

// Palette returns a copy of the converter's palette.
func (c *Converter) Palette() Palette {
	return c.palette.Clone()
}

// Prepare fits img to the canvas without quantizing it. The result is what
// the dither engine sees, and EncodeRGB of it is what a device running the
// fallback matcher receives.
func (c *Converter) Prepare(img image.Image) (PixelSource, error) {
	if img == nil {
		return PixelSource{}, fmt.Errorf("%w: nil image", ErrInvalidOptions)
	}
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return PixelSource{}, fmt.Errorf("source image: %w", err)
	}
	if b.Dx() > c.maxSourcePixels/b.Dy() {
		return PixelSource{}, fmt.Errorf("%w: source %dx%d exceeds %d pixels",
			ErrImageTooLarge, b.Dx(), b.Dy(), c.maxSourcePixels)
	}
	fitted := imageutil.Fit(img, c.width, c.height, c.fit)
	return PixelSourceFromImage(fitted.RGBA)
}

// Convert fits, quantizes and packs img.
func (c *Converter) Convert(img image.Image) (*Result, error) {
	src, err := c.Prepare(img)
	if err != nil {
		return nil, err
	}
	q := ditherWith(src, c.matcher, c.method)
	return &Result{
		Width:     c.width,
		Height:    c.height,
		Quantized: q,
		Packed:    Pack(q),
		palette:   c.palette,
	}, nil
}

// ConvertReader decodes an encoded image and converts it. Oversized
// sources are rejected from their header alone.
func (c *Converter) ConvertReader(r io.Reader) (*Result, error) {
	img, _, err := imageutil.Decode(r, c.maxSourcePixels)
	if err != nil {
		return nil, decodeError(err)
	}
	return c.Convert(img)
}

// ConvertFile converts the image stored at path.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	res, err := c.ConvertReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// decodeError maps imageutil failures onto the package sentinels.
func decodeError(err error) error {
	switch {
	case errors.Is(err, imageutil.ErrTooLarge):
		return fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	case errors.Is(err, imageutil.ErrDecode):
		return fmt.Errorf("%w: %v", ErrDecode, err)
	default:
		return err
	}
}

// Result is one converted frame.
type Result struct {
	Width     int
	Height    int
	Quantized QuantizedBuffer
	Packed    PackedBuffer

	palette Palette
}

// Image returns a view of the packed buffer for previews.
func (r *Result) Image() *PanelImage {
	return &PanelImage{
		Pix:     r.Packed,
		Rect:    image.Rect(0, 0, r.Width, r.Height),
		palette: r.palette.ColorPalette(),
	}
}

// Histogram counts pixels per palette code.
func (r *Result) Histogram() map[uint8]int {
	h := make(map[uint8]int)
	for _, index := range r.Quantized {
		h[index]++
	}
	return h
}
