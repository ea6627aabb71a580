package spectra6

import (
	"fmt"
	"image"
	"image/color"

	"github.com/glance/spectra6/imageutil"
)

// PanelImage is a Width x Height view of a PackedBuffer. It implements
// image.PalettedImage, so a quantized frame can be previewed or encoded as
// PNG exactly as the panel will show it.
type PanelImage struct {
	Pix     PackedBuffer
	Rect    image.Rectangle
	palette color.Palette
}

// NewPanelImage creates a blank image filled with the palette's white (or
// code 0 when the palette has no white).
func NewPanelImage(width, height int, p Palette) (*PanelImage, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	img := &PanelImage{
		Pix:     make(PackedBuffer, PackedLen(width*height)),
		Rect:    image.Rect(0, 0, width, height),
		palette: p.ColorPalette(),
	}
	if p.Contains(White) {
		FillPacked(img.Pix, White)
	}
	return img, nil
}

// PanelImageFromPacked wraps an existing buffer without copying it.
func PanelImageFromPacked(packed PackedBuffer, width, height int, p Palette) (*PanelImage, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if want := PackedLen(width * height); len(packed) != want {
		return nil, fmt.Errorf("%w: %dx%d needs %d packed bytes, got %d",
			ErrInvalidDimensions, width, height, want, len(packed))
	}
	return &PanelImage{
		Pix:     packed,
		Rect:    image.Rect(0, 0, width, height),
		palette: p.ColorPalette(),
	}, nil
}

// ColorModel returns the firmware-indexed palette.
func (p *PanelImage) ColorModel() color.Model {
	return p.palette
}

// Bounds returns the image rectangle.
func (p *PanelImage) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the ink at (x, y), or transparent outside the image or for
// codes the palette does not define.
func (p *PanelImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.Transparent
	}
	index := p.IndexAt(x, y)
	if int(index) >= len(p.palette) {
		return color.Transparent
	}
	return p.palette[index]
}

// ColorIndexAt implements image.PalettedImage.
func (p *PanelImage) ColorIndexAt(x, y int) uint8 {
	return p.IndexAt(x, y)
}

// IndexAt returns the palette code of the pixel at (x, y).
func (p *PanelImage) IndexAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	return nibbleAt(p.Pix, p.pixIndex(x, y))
}

// SetIndex sets the palette code of the pixel at (x, y).
func (p *PanelImage) SetIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := nibbleOffset(p.pixIndex(x, y))
	// Clear the nibble and set the new value
	p.Pix[offset] = (p.Pix[offset] &^ (0x0F << shift)) | ((index & 0x0F) << shift)
}

// pixIndex is the row-major pixel number; rows are not byte aligned.
func (p *PanelImage) pixIndex(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Rect.Dx() + (x - p.Rect.Min.X)
}

// Packed returns the underlying buffer.
func (p *PanelImage) Packed() PackedBuffer {
	return p.Pix
}

// Scaled renders the image with each panel pixel drawn as a scale x scale
// square. Useful for inspecting dither patterns.
func (p *PanelImage) Scaled(scale int) *imageutil.RGBAImage {
	if scale < 1 {
		scale = 1
	}
	w, h := p.Rect.Dx(), p.Rect.Dy()
	out := imageutil.NewRGBAImage(w*scale, h*scale)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := imageutil.RGBFromColor(p.At(p.Rect.Min.X+x, p.Rect.Min.Y+y))
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					out.SetRGB(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return out
}

// SavePreview writes the image to filename as PNG, optionally enlarged.
func (p *PanelImage) SavePreview(filename string, scale int) error {
	if scale <= 1 {
		return imageutil.SavePNG(p, filename)
	}
	return imageutil.SavePNG(p.Scaled(scale), filename)
}
