// Package fallback implements the quantizer that runs on the panel itself
// when it receives raw RGB instead of a packed buffer: a plain nearest
// color match in RGB space, with no error diffusion. It trades fidelity
// for a tiny memory footprint, and agrees with the host engine on the
// canonical palette colors.
package fallback

import (
	"errors"
	"fmt"
	"math"

	"github.com/glance/spectra6"
)

// Classifier maps one RGB pixel to a palette code.
type Classifier interface {
	Match(c spectra6.RGB) uint8
}

// Fast path thresholds: every channel below darkThreshold is black, every
// channel above lightThreshold is white.
const (
	darkThreshold  = 32
	lightThreshold = 224
)

// Matcher is the device-side nearest color search. It is immutable and
// safe for concurrent use.
type Matcher struct {
	palette            spectra6.Palette
	hasBlack, hasWhite bool
}

// NewMatcher builds a matcher for p.
func NewMatcher(p spectra6.Palette) (*Matcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{
		palette:  p.Clone(),
		hasBlack: p.Contains(spectra6.Black),
		hasWhite: p.Contains(spectra6.White),
	}, nil
}

// Match returns the palette code nearest to c by squared RGB distance.
// Ties go to the lowest code.
func (m *Matcher) Match(c spectra6.RGB) uint8 {
	if m.hasBlack && c.R < darkThreshold && c.G < darkThreshold && c.B < darkThreshold {
		return spectra6.Black
	}
	if m.hasWhite && c.R > lightThreshold && c.G > lightThreshold && c.B > lightThreshold {
		return spectra6.White
	}

	best := m.palette[0].Index
	bestDist := math.MaxInt
	for _, pc := range m.palette {
		if d := distanceSq(c, pc.RGB); d < bestDist {
			best = pc.Index
			bestDist = d
		}
	}
	return best
}

func distanceSq(a, b spectra6.RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Quantize classifies every pixel of src independently.
func Quantize(src spectra6.PixelSource, c Classifier) spectra6.QuantizedBuffer {
	out := make(spectra6.QuantizedBuffer, 0, src.Len())
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			out = append(out, c.Match(src.RGBAt(x, y)))
		}
	}
	return out
}

// Agreement returns the fraction of pixels on which a and b carry the
// same code.
func Agreement(a, b spectra6.QuantizedBuffer) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: buffers hold %d and %d pixels",
			spectra6.ErrInvalidDimensions, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("fallback: agreement of empty buffers")
	}
	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(len(a)), nil
}
