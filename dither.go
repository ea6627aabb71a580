package spectra6

import (
	"fmt"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
)

// Method selects the error diffusion scheme.
type Method int

const (
	// FloydSteinberg diffuses the whole error to four neighbors.
	FloydSteinberg Method = iota
	// Atkinson diffuses 6/8 of the error to six neighbors and drops the
	// rest, which keeps highlights and shadows crisp.
	Atkinson
	// None quantizes every pixel independently, as the device-side
	// fallback does.
	None
)

func (m Method) String() string {
	switch m {
	case FloydSteinberg:
		return "floyd-steinberg"
	case Atkinson:
		return "atkinson"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves a method from its command line spelling.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "floyd-steinberg", "floydsteinberg", "fs", "":
		return FloydSteinberg, nil
	case "atkinson":
		return Atkinson, nil
	case "none", "off":
		return None, nil
	default:
		return 0, fmt.Errorf("%w: unknown dither method %q, options are floyd-steinberg, atkinson or none",
			ErrInvalidOptions, s)
	}
}

// maxAccumulatedError bounds the error carried by any pixel per channel.
// Diffusion conserves error, so this only binds on drift.
const maxAccumulatedError = 255.0

// tap is one diffusion target relative to the current pixel.
type tap struct {
	dx, dy int
	weight float64
}

// kernel is a flattened diffusion matrix.
type kernel struct {
	taps []tap
	rows int
}

var (
	floydSteinbergKernel = kernelFromMatrix(dither.FloydSteinberg)
	atkinsonKernel       = kernelFromMatrix(dither.Atkinson)
)

// kernelFromMatrix flattens a dither matrix. The current pixel sits just
// left of the first non-zero weight in the top row.
func kernelFromMatrix(m dither.ErrorDiffusionMatrix) kernel {
	cur := 0
	for i, v := range m[0] {
		if v != 0 {
			cur = i - 1
			break
		}
	}
	k := kernel{rows: len(m)}
	for dy, row := range m {
		for col, v := range row {
			if v == 0 {
				continue
			}
			k.taps = append(k.taps, tap{dx: col - cur, dy: dy, weight: float64(v)})
		}
	}
	return k
}

func (m Method) kernel() (kernel, bool) {
	switch m {
	case FloydSteinberg:
		return floydSteinbergKernel, true
	case Atkinson:
		return atkinsonKernel, true
	default:
		return kernel{}, false
	}
}

// totalWeight is the fraction of a pixel's error the kernel passes on
// when no tap is clipped.
func (k kernel) totalWeight() float64 {
	var sum float64
	for _, t := range k.taps {
		sum += t.weight
	}
	return sum
}

// errorAccumulator holds diffused error for the rows the kernel can reach:
// the current row plus kernel.rows-1 below it. Rows are recycled as the
// pass moves down, so memory stays at a few scanlines.
type errorAccumulator struct {
	width int
	rows  [][]float64 // ring of width*3 float rows
	top   int         // image row held in rows[0]
}

func newErrorAccumulator(width, rows int) *errorAccumulator {
	acc := &errorAccumulator{width: width, rows: make([][]float64, rows)}
	for i := range acc.rows {
		acc.rows[i] = make([]float64, width*3)
	}
	return acc
}

func (acc *errorAccumulator) row(y int) []float64 {
	return acc.rows[y-acc.top]
}

// at returns the error already diffused into (x, y).
func (acc *errorAccumulator) at(x, y int) (r, g, b float64) {
	row := acc.row(y)
	return row[x*3], row[x*3+1], row[x*3+2]
}

// add deposits a share of err at (x, y), clamping the running total.
func (acc *errorAccumulator) add(x, y int, err rgbError, weight float64) {
	row := acc.row(y)
	for c := 0; c < 3; c++ {
		row[x*3+c] = clamp(row[x*3+c]+err[c]*weight, -maxAccumulatedError, maxAccumulatedError)
	}
}

// advance retires the finished row y, making its storage the new bottom
// row of the window.
func (acc *errorAccumulator) advance(y int) {
	row := acc.row(y)
	for i := range row {
		row[i] = 0
	}
	copy(acc.rows, acc.rows[1:])
	acc.rows[len(acc.rows)-1] = row
	acc.top = y + 1
}

// spread distributes err from (x, y) through the kernel, dropping taps that
// fall outside a width x height image. It returns the weight actually
// delivered.
func (k kernel) spread(acc *errorAccumulator, x, y, width, height int, err rgbError) float64 {
	var delivered float64
	for _, t := range k.taps {
		tx, ty := x+t.dx, y+t.dy
		if tx < 0 || tx >= width || ty >= height {
			continue
		}
		acc.add(tx, ty, err, t.weight)
		delivered += t.weight
	}
	return delivered
}

// DitherOptions configures one quantization pass. The zero Palette and
// Distance select the panel defaults.
type DitherOptions struct {
	Width           int
	Height          int
	Palette         Palette
	Method          Method
	SaturationBoost float64
	Distance        DistanceMethod
}

// DefaultDitherOptions returns Floyd-Steinberg over the default palette
// with CIE76 matching and no saturation boost.
func DefaultDitherOptions(width, height int) DitherOptions {
	return DitherOptions{
		Width:           width,
		Height:          height,
		Palette:         DefaultPalette(),
		Method:          FloydSteinberg,
		SaturationBoost: DefaultSaturationBoost,
		Distance:        CIE76Method{},
	}
}

// Validate checks the options on their own.
func (o DitherOptions) Validate() error {
	if err := checkDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.Method < FloydSteinberg || o.Method > None {
		return fmt.Errorf("%w: unknown dither method %d", ErrInvalidOptions, int(o.Method))
	}
	if o.Palette != nil {
		if err := o.Palette.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o DitherOptions) matcher() (*Matcher, error) {
	p := o.Palette
	if p == nil {
		p = defaultPalette
	}
	boost := o.SaturationBoost
	if boost == 0 {
		boost = DefaultSaturationBoost
	}
	return NewMatcher(p, o.Distance, boost)
}

// QuantizedBuffer holds one palette code per pixel, row-major.
type QuantizedBuffer []uint8

// Dither quantizes src to the palette in a single left-to-right,
// top-to-bottom pass, diffusing quantization error as opts.Method
// dictates. The source dimensions must match opts.
func Dither(src PixelSource, opts DitherOptions) (QuantizedBuffer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.validate(); err != nil {
		return nil, err
	}
	if src.Width != opts.Width || src.Height != opts.Height {
		return nil, fmt.Errorf("%w: source is %dx%d, options ask for %dx%d",
			ErrInvalidDimensions, src.Width, src.Height, opts.Width, opts.Height)
	}
	m, err := opts.matcher()
	if err != nil {
		return nil, err
	}
	return ditherWith(src, m, opts.Method), nil
}

func ditherWith(src PixelSource, m *Matcher, method Method) QuantizedBuffer {
	width, height := src.Width, src.Height
	out := make(QuantizedBuffer, width*height)
	mc := newMatchCache(m)

	k, diffuse := method.kernel()
	var acc *errorAccumulator
	if diffuse {
		acc = newErrorAccumulator(width, k.rows)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := src.RGBAt(x, y)
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			if diffuse {
				er, eg, eb := acc.at(x, y)
				r = clampChannel(r + er)
				g = clampChannel(g + eg)
				b = clampChannel(b + eb)
			}

			chosen := mc.nearest(r, g, b)
			out[y*width+x] = chosen.Index

			if diffuse {
				k.spread(acc, x, y, width, height, subtractToError(r, g, b, chosen.RGB))
			}
		}
		if diffuse {
			acc.advance(y)
		}
	}
	return out
}
