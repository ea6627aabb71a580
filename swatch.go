package spectra6

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// labelCoverage is the minimum glyph coverage (64/255, 25%) painted as
// ink. Labels are thresholded so the card contains palette colors only.
const labelCoverage = 64

var swatchFont *truetype.Font

func init() {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("spectra6: embedded font: %v", err))
	}
	swatchFont = f
}

// RenderSwatch draws a calibration card for p: one horizontal band per
// entry in code order, labelled with its name and code. Every pixel of the
// card is a palette color, so converting it with nearest-neighbor scaling
// and no dithering reproduces it exactly on the panel.
func RenderSwatch(p Palette, width, height int) (*image.RGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Clone()
	band := height / len(p)
	if band < 1 {
		return nil, fmt.Errorf("%w: %d rows cannot hold %d bands",
			ErrInvalidDimensions, height, len(p))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, c := range p {
		y0 := i * band
		y1 := y0 + band
		if i == len(p)-1 {
			// Last band absorbs the remainder
			y1 = height
		}
		r := image.Rect(0, y0, width, y1)
		draw.Draw(img, r, image.NewUniform(c.RGB.ToColor()), image.Point{}, draw.Src)
		drawLabel(img, r, fmt.Sprintf("%s 0x%X", c.Name, c.Index), labelInk(p, c))
	}
	return img, nil
}

// labelInk picks the palette entry with the greatest lightness contrast to
// c, preferring black and white.
func labelInk(p Palette, c PaletteColor) color.RGBA {
	var best PaletteColor
	bestContrast := -1.0
	for _, index := range []uint8{Black, White} {
		if ink, ok := p.ByIndex(index); ok {
			if d := math.Abs(ink.Lab.L - c.Lab.L); d > bestContrast {
				best, bestContrast = ink, d
			}
		}
	}
	if bestContrast < 0 {
		for _, ink := range p {
			if d := math.Abs(ink.Lab.L - c.Lab.L); d > bestContrast {
				best, bestContrast = ink, d
			}
		}
	}
	return best.RGB.ToColor()
}

// drawLabel renders text into the left of r. Glyphs are rasterized to an
// alpha mask first and then thresholded onto dst.
func drawLabel(dst *image.RGBA, r image.Rectangle, text string, ink color.RGBA) {
	size := float64(r.Dy()) * 0.4
	if size < 6 {
		return
	}

	mask := image.NewAlpha(r)
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(swatchFont)
	ctx.SetFontSize(size)
	ctx.SetClip(r)
	ctx.SetDst(mask)
	ctx.SetSrc(image.Opaque)
	ctx.SetHinting(font.HintingNone)

	face := truetype.NewFace(swatchFont, &truetype.Options{Size: size, DPI: 72})
	defer face.Close()
	metrics := face.Metrics()

	// Center the text vertically on its ascent and descent
	textHeight := metrics.Ascent + metrics.Descent
	baseline := fixed.I(r.Min.Y) + (fixed.I(r.Dy())-textHeight)/2 + metrics.Ascent
	pt := fixed.Point26_6{X: fixed.I(r.Min.X + r.Dy()/4), Y: baseline}
	if _, err := ctx.DrawString(text, pt); err != nil {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(x, y).A >= labelCoverage {
				dst.SetRGBA(x, y, ink)
			}
		}
	}
}
