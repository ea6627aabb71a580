package spectra6

import (
	"math"
	"testing"
	"testing/quick"
)

func TestRGBToLabPalette(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    RGB
		want Lab
	}{
		{"black", RGB{0, 0, 0}, Lab{0, 0, 0}},
		{"white", RGB{255, 255, 255}, Lab{100, 0, 0}},
		{"yellow", RGB{255, 255, 0}, Lab{97.14, -21.55, 94.48}},
		{"red", RGB{255, 0, 0}, Lab{53.24, 80.09, 67.20}},
		{"blue", RGB{0, 0, 255}, Lab{32.30, 79.19, -107.86}},
		{"green", RGB{0, 255, 0}, Lab{87.73, -86.18, 83.18}},
	}
	for _, tt := range tests {
		got := RGBToLab(tt.c)
		if math.Abs(got.L-tt.want.L) > 0.05 ||
			math.Abs(got.A-tt.want.A) > 0.05 ||
			math.Abs(got.B-tt.want.B) > 0.05 {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestLabRoundTrip(t *testing.T) {
	t.Parallel()

	for r := 0; r <= 255; r += 15 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 15 {
				c := RGB{uint8(r), uint8(g), uint8(b)}
				back := LabToRGB(RGBToLab(c))
				if absDiff(c.R, back.R) > 1 || absDiff(c.G, back.G) > 1 || absDiff(c.B, back.B) > 1 {
					t.Fatalf("Round trip of %v gave %v", c, back)
				}
			}
		}
	}
}

func TestRGBFToLabNeverNaN(t *testing.T) {
	t.Parallel()

	f := func(r, g, b float64) bool {
		lab := rgbfToLab(r, g, b)
		return !math.IsNaN(lab.L) && !math.IsNaN(lab.A) && !math.IsNaN(lab.B)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}

	lab := rgbfToLab(math.NaN(), math.Inf(1), math.Inf(-1))
	if math.IsNaN(lab.L) || math.IsNaN(lab.A) || math.IsNaN(lab.B) {
		t.Errorf("Expected finite Lab for non-finite input, got %+v", lab)
	}
}

func TestBoostChroma(t *testing.T) {
	t.Parallel()

	c := RGBToLab(RGB{200, 120, 90})
	boosted := c.boostChroma(1.5)
	if boosted.L != c.L {
		t.Errorf("Boost changed lightness: %v -> %v", c.L, boosted.L)
	}
	if math.Abs(boosted.Chroma()-1.5*c.Chroma()) > 1e-9 {
		t.Errorf("Expected chroma %v, got %v", 1.5*c.Chroma(), boosted.Chroma())
	}
	if c.boostChroma(1) != c {
		t.Error("Boost of 1 should be the identity")
	}
}

func TestRGBUint32(t *testing.T) {
	t.Parallel()

	c := RGBFromUint32(0x2157BA)
	if c != (RGB{0x21, 0x57, 0xBA}) {
		t.Errorf("Expected {21 57 BA}, got %v", c)
	}
	if c.ToUint32() != 0x2157BA {
		t.Errorf("Expected 0x2157BA, got 0x%06X", c.ToUint32())
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
