package imageutil

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom, the best choice for the large
	// downscales photos go through on the way to the panel.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// It never invents new colors, so palette swatches survive it.
	InterpolationNearest
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationArea:
		return "area"
	case InterpolationLinear:
		return "linear"
	case InterpolationNearest:
		return "nearest"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation resolves an interpolation from its command line name.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "area", "catmullrom":
		return InterpolationArea, nil
	case "linear", "bilinear":
		return InterpolationLinear, nil
	case "nearest":
		return InterpolationNearest, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q, options are area, linear or nearest", s)
	}
}

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		// CatmullRom provides high quality for both up and down scaling
		return draw.CatmullRom
	}
}

// Resize resizes an image to the specified dimensions using the given
// interpolation method. The aspect ratio is not preserved; see Fit.
func Resize(img image.Image, width, height int, interp Interpolation) *RGBAImage {
	return ResizeRect(img, img.Bounds(), width, height, interp)
}

// ResizeRect scales the src region of img to width x height.
func ResizeRect(img image.Image, src image.Rectangle, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	if src.Dx() == width && src.Dy() == height {
		draw.Copy(dst.RGBA, image.Point{}, img, src, draw.Src, nil)
		return dst
	}
	interp.scaler().Scale(dst.RGBA, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
