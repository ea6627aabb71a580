package spectra6

import (
	"fmt"
	"math"
	"strings"
)

// DistanceMethod computes the perceptual difference between two Lab
// colors. Implementations must be pure functions of their inputs so that
// quantization stays reproducible.
type DistanceMethod interface {
	Distance(a, b Lab) float64
	Name() string
}

// MetricMethod is implemented by distance methods that satisfy the
// triangle inequality. The matcher only takes its fast path for those.
type MetricMethod interface {
	Metric() bool
}

// CIE76Method is the Euclidean distance in Lab space (Delta E 1976).
type CIE76Method struct{}

// Distance returns the Euclidean distance between a and b.
func (CIE76Method) Distance(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Name returns "CIE76".
func (CIE76Method) Name() string { return "CIE76" }

// Metric reports true: Euclidean distance obeys the triangle inequality.
func (CIE76Method) Metric() bool { return true }

// CIEDE2000Method is the CIE Delta E 2000 difference with unit weighting
// factors (kL = kC = kH = 1).
type CIEDE2000Method struct{}

// Name returns "CIEDE2000".
func (CIEDE2000Method) Name() string { return "CIEDE2000" }

// Distance returns Delta E 2000 between a and b. It is not a metric, so the
// matcher always scans the full palette with it.
func (CIEDE2000Method) Distance(a, b Lab) float64 {
	const pow25to7 = 6103515625.0 // 25^7

	c1 := math.Hypot(a.A, a.B)
	c2 := math.Hypot(b.A, b.B)
	cBar := (c1 + c2) / 2
	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1p := (1 + g) * a.A
	a2p := (1 + g) * b.A
	c1p := math.Hypot(a1p, a.B)
	c2p := math.Hypot(a2p, b.B)
	h1p := hueAngle(a.B, a1p)
	h2p := hueAngle(b.B, a2p)

	dLp := b.L - a.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp/2))

	lBarP := (a.L + b.L) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p + h2p + 360) / 2
	default:
		hBarP = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-math.Pow((hBarP-275)/25, 2))
	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+pow25to7))
	lDev := (lBarP - 50) * (lBarP - 50)
	sl := 1 + 0.015*lDev/math.Sqrt(20+lDev)
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	lTerm := dLp / sl
	cTerm := dCp / sc
	hTerm := dHp / sh
	return math.Sqrt(lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rt*cTerm*hTerm)
}

// hueAngle returns atan2(b, a) in degrees within [0, 360).
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMethodByName resolves a distance method from its command line
// spelling.
func DistanceMethodByName(name string) (DistanceMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cie76", "lab", "de76":
		return CIE76Method{}, nil
	case "ciede2000", "de2000", "cie2000":
		return CIEDE2000Method{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown distance method %q, options are CIE76 or CIEDE2000",
			ErrInvalidOptions, name)
	}
}
