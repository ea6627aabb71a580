package spectra6

import "math"

// Lab is a color in the CIE 1976 L*a*b* color space relative to the D65
// white point. L ranges over [0, 100]; A and B are unbounded but stay
// within roughly [-128, 128] for colors inside the sRGB gamut.
type Lab struct {
	L, A, B float64
}

// D65 reference white.
const (
	whiteX = 0.95047
	whiteY = 1.00000
	whiteZ = 1.08883
)

// CIE constants in their exact rational form.
const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = 24389.0 / 27.0
)

// srgbToLinear removes the sRGB companding from a channel in [0, 1].
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// linearToSRGB applies sRGB companding to a linear channel in [0, 1].
func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// labF is the forward XYZ->Lab nonlinearity. The linear branch near zero
// keeps black finite without taking the cube root of tiny values.
func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > labEpsilon {
		return t3
	}
	return (116*t - 16) / labKappa
}

// RGBToLab converts an sRGB color to CIE Lab.
func RGBToLab(c RGB) Lab {
	return rgbfToLab(float64(c.R), float64(c.G), float64(c.B))
}

// rgbfToLab converts fractional sRGB channels in [0, 255] to Lab. Inputs
// outside the range are clamped first.
func rgbfToLab(r, g, b float64) Lab {
	lr := srgbToLinear(clampChannel(r) / 255)
	lg := srgbToLinear(clampChannel(g) / 255)
	lb := srgbToLinear(clampChannel(b) / 255)

	x := 0.4124564*lr + 0.3575761*lg + 0.1804375*lb
	y := 0.2126729*lr + 0.7151522*lg + 0.0721750*lb
	z := 0.0193339*lr + 0.1191920*lg + 0.9503041*lb

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// LabToRGB converts a Lab color back to sRGB, clamping colors that fall
// outside the sRGB gamut.
func LabToRGB(c Lab) RGB {
	fy := (c.L + 16) / 116
	fx := fy + c.A/500
	fz := fy - c.B/200

	x := labFInv(fx) * whiteX
	y := whiteY
	if c.L > labKappa*labEpsilon {
		y *= fy * fy * fy
	} else {
		y *= c.L / labKappa
	}
	z := labFInv(fz) * whiteZ

	lr := 3.2404542*x - 1.5371385*y - 0.4985314*z
	lg := -0.9692660*x + 1.8760108*y + 0.0415560*z
	lb := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return RGB{
		R: roundChannel(linearToSRGB(clamp(lr, 0, 1)) * 255),
		G: roundChannel(linearToSRGB(clamp(lg, 0, 1)) * 255),
		B: roundChannel(linearToSRGB(clamp(lb, 0, 1)) * 255),
	}
}

// Chroma returns the distance of the color from the neutral axis.
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

// boostChroma scales a* and b* by factor, leaving lightness untouched.
func (c Lab) boostChroma(factor float64) Lab {
	if factor == 1 {
		return c
	}
	return Lab{L: c.L, A: c.A * factor, B: c.B * factor}
}
