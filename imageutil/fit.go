package imageutil

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
)

// Orientation selects a quarter turn applied before fitting.
type Orientation int

const (
	// RotateNone keeps the source orientation.
	RotateNone Orientation = iota
	// RotateCW turns the source 90 degrees clockwise.
	RotateCW
	// RotateCCW turns the source 90 degrees counter-clockwise.
	RotateCCW
	// RotateAuto turns the source clockwise when its orientation
	// (landscape or portrait) differs from the target's.
	RotateAuto
)

func (o Orientation) String() string {
	switch o {
	case RotateNone:
		return "none"
	case RotateCW:
		return "cw"
	case RotateCCW:
		return "ccw"
	case RotateAuto:
		return "auto"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation resolves an orientation from its command line name.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return RotateNone, nil
	case "cw", "90":
		return RotateCW, nil
	case "ccw", "270", "-90":
		return RotateCCW, nil
	case "auto":
		return RotateAuto, nil
	default:
		return 0, fmt.Errorf("unknown rotation %q, options are none, cw, ccw or auto", s)
	}
}

// resolve turns RotateAuto into a concrete rotation for a source of
// srcW x srcH fitted to dstW x dstH.
func (o Orientation) resolve(srcW, srcH, dstW, dstH int) Orientation {
	if o != RotateAuto {
		return o
	}
	srcLandscape := srcW > srcH
	dstLandscape := dstW > dstH
	if srcW != srcH && dstW != dstH && srcLandscape != dstLandscape {
		return RotateCW
	}
	return RotateNone
}

// Rotate applies a quarter turn. RotateNone and RotateAuto return img as an
// RGBAImage without turning it.
func Rotate(img image.Image, o Orientation) *RGBAImage {
	var g *gift.GIFT
	switch o {
	case RotateCW:
		g = gift.New(gift.Rotate270())
	case RotateCCW:
		g = gift.New(gift.Rotate90())
	default:
		return RGBAImageFromImage(img)
	}
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return &RGBAImage{RGBA: dst}
}

// CoverRect returns the largest centered region of a srcW x srcH image
// with the aspect ratio of dstW x dstH. Scaling that region to the target
// fills it completely with a uniform scale factor.
func CoverRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	cropW, cropH := srcW, srcH
	// Compare srcW/srcH against dstW/dstH without division.
	switch lhs, rhs := int64(srcW)*int64(dstH), int64(srcH)*int64(dstW); {
	case lhs > rhs:
		// Source is wider than the target: trim the sides.
		cropW = int((int64(srcH)*int64(dstW) + int64(dstH)/2) / int64(dstH))
	case lhs < rhs:
		// Source is taller: trim top and bottom.
		cropH = int((int64(srcW)*int64(dstH) + int64(dstW)/2) / int64(dstW))
	}
	cropW = clampInt(cropW, 1, srcW)
	cropH = clampInt(cropH, 1, srcH)
	x0 := (srcW - cropW) / 2
	y0 := (srcH - cropH) / 2
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}

// FitOptions controls how a source is brought to the panel canvas.
type FitOptions struct {
	Orientation   Orientation
	Interpolation Interpolation
	// Sharpen is the amount passed to Sharpen after scaling; zero
	// disables it.
	Sharpen float64
}

// Fit flattens transparency over white, rotates, center-crops to the
// target aspect ratio and scales to exactly width x height.
func Fit(img image.Image, width, height int, opts FitOptions) *RGBAImage {
	var src *RGBAImage
	if IsOpaque(img) {
		src = RGBAImageFromImage(img)
	} else {
		src = FlattenAlpha(img)
	}

	o := opts.Orientation.resolve(src.Width(), src.Height(), width, height)
	src = Rotate(src, o)

	crop := CoverRect(src.Width(), src.Height(), width, height).Add(src.Bounds().Min)
	out := ResizeRect(src, crop, width, height, opts.Interpolation)
	return Sharpen(out, opts.Sharpen)
}
