package spectra6

import (
	"fmt"
	"math"
)

// DefaultSaturationBoost leaves chroma untouched.
const DefaultSaturationBoost = 1.0

// Matcher finds the palette entry perceptually closest to a color. A
// Matcher is immutable and safe for concurrent use.
type Matcher struct {
	palette Palette
	method  DistanceMethod
	boost   float64

	// anchors are the black and white entries with the radius inside which
	// they are provably the nearest entry. Only set for metric methods.
	anchors []anchor
}

type anchor struct {
	pos    int
	radius float64
}

// NewMatcher builds a matcher for p using method, scaling candidate chroma
// by boost before matching. A nil method selects CIE76.
func NewMatcher(p Palette, method DistanceMethod, boost float64) (*Matcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if method == nil {
		method = CIE76Method{}
	}
	if math.IsNaN(boost) || math.IsInf(boost, 0) || boost <= 0 {
		return nil, fmt.Errorf("%w: saturation boost must be a positive finite number, got %v",
			ErrInvalidOptions, boost)
	}
	m := &Matcher{
		palette: p.Clone(),
		method:  method,
		boost:   boost,
	}
	if mm, ok := method.(MetricMethod); ok && mm.Metric() && len(m.palette) > 1 {
		for _, index := range []uint8{Black, White} {
			pos := m.position(index)
			if pos < 0 {
				continue
			}
			minDist := math.MaxFloat64
			for i, other := range m.palette {
				if i == pos {
					continue
				}
				minDist = math.Min(minDist, method.Distance(m.palette[pos].Lab, other.Lab))
			}
			m.anchors = append(m.anchors, anchor{pos: pos, radius: minDist / 2})
		}
	}
	return m, nil
}

func (m *Matcher) position(index uint8) int {
	for i, c := range m.palette {
		if c.Index == index {
			return i
		}
	}
	return -1
}

// Palette returns the matcher's palette, sorted by index.
func (m *Matcher) Palette() Palette {
	return m.palette.Clone()
}

// Method returns the distance method in use.
func (m *Matcher) Method() DistanceMethod {
	return m.method
}

// Nearest returns the palette entry closest to the given color. Channels
// may lie outside [0, 255], as they do after error diffusion; they are
// clamped and rounded before conversion.
func (m *Matcher) Nearest(r, g, b float64) PaletteColor {
	c := RGB{R: roundChannel(r), G: roundChannel(g), B: roundChannel(b)}
	return m.palette[m.nearestPos(c)]
}

// NearestRGB is Nearest for an in-range color.
func (m *Matcher) NearestRGB(c RGB) PaletteColor {
	return m.palette[m.nearestPos(c)]
}

func (m *Matcher) candidate(c RGB) Lab {
	return RGBToLab(c).boostChroma(m.boost)
}

func (m *Matcher) nearestPos(c RGB) int {
	lab := m.candidate(c)
	for _, a := range m.anchors {
		if m.method.Distance(lab, m.palette[a.pos].Lab) < a.radius {
			return a.pos
		}
	}
	return m.scan(lab)
}

// scan is the full search. Entries are ordered by index, so keeping the
// first strict minimum breaks ties towards the lowest index.
func (m *Matcher) scan(lab Lab) int {
	best := 0
	bestDist := math.Inf(1)
	for i, pc := range m.palette {
		if d := m.method.Distance(lab, pc.Lab); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// matchCacheBits sizes the match cache at 1<<matchCacheBits slots.
const matchCacheBits = 12

// matchCache memoizes matcher results for one quantization pass in a
// fixed-size direct-mapped table. A colliding color evicts the slot, and
// every hit is checked against the full key, so results never change. It
// is owned by a single call and discarded with it.
type matchCache struct {
	m     *Matcher
	slots [1 << matchCacheBits]cacheSlot
}

type cacheSlot struct {
	key   uint32
	pos   int8
	valid bool
}

func newMatchCache(m *Matcher) *matchCache {
	return &matchCache{m: m}
}

// slot hashes a 24-bit color to a table position (Fibonacci hashing).
func (mc *matchCache) slot(key uint32) *cacheSlot {
	return &mc.slots[(key*2654435761)>>(32-matchCacheBits)]
}

func (mc *matchCache) nearest(r, g, b float64) PaletteColor {
	c := RGB{R: roundChannel(r), G: roundChannel(g), B: roundChannel(b)}
	key := c.ToUint32()
	s := mc.slot(key)
	if !s.valid || s.key != key {
		*s = cacheSlot{key: key, pos: int8(mc.m.nearestPos(c)), valid: true}
	}
	return mc.m.palette[s.pos]
}
