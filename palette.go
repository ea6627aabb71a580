package spectra6

import (
	"embed"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed colordata/spectra6.json
//go:embed colordata/spectra6-measured.json
var f embed.FS

// Firmware palette codes of the Spectra 6 panel. The numbering is part of
// the hardware contract; code 0x4 is unused by the panel.
const (
	Black  uint8 = 0x0
	White  uint8 = 0x1
	Yellow uint8 = 0x2
	Red    uint8 = 0x3
	Blue   uint8 = 0x5
	Green  uint8 = 0x6
)

// MaxPaletteSize is the number of codes a 4-bit nibble can carry.
const MaxPaletteSize = 16

// PaletteColor is one ink the panel can render, with its Lab value
// precomputed for matching.
type PaletteColor struct {
	RGB   RGB
	Lab   Lab
	Index uint8
	Name  string
}

// NewPaletteColor builds a PaletteColor, deriving its Lab value.
func NewPaletteColor(name string, index uint8, c RGB) PaletteColor {
	return PaletteColor{RGB: c, Lab: RGBToLab(c), Index: index, Name: name}
}

// Palette is the ordered set of inks. Palettes built by this package are
// sorted by Index so that scanning order doubles as the tie-break order.
type Palette []PaletteColor

// paletteFile is the JSON layout of the files under colordata/.
type paletteFile struct {
	Name   string `json:"name"`
	Colors []struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
		RGB   string `json:"rgb"`
	} `json:"colors"`
}

var defaultPalette Palette

func init() {
	p, err := LoadPalette("spectra6")
	if err != nil {
		panic(fmt.Sprintf("spectra6: embedded palette: %v", err))
	}
	defaultPalette = p
}

// DefaultPalette returns a fresh copy of the canonical six-color panel
// palette: pure black, white, yellow, red, blue and green.
func DefaultPalette() Palette {
	return defaultPalette.Clone()
}

// LoadPalette reads a palette by embedded name (spectra6,
// spectra6-measured) or from a JSON file on disk.
func LoadPalette(name string) (Palette, error) {
	// First, try the VFS.
	data, vfsErr := f.ReadFile(fmt.Sprintf("colordata/%s.json", name))
	if vfsErr != nil {
		// If the VFS fails, try the filesystem.
		var fsErr error
		data, fsErr = os.ReadFile(name)
		if fsErr != nil {
			return nil, fmt.Errorf("error reading palette %q: %w", name, fsErr)
		}
	}
	return ParsePalette(data)
}

// ParsePalette decodes and validates a JSON palette.
func ParsePalette(data []byte) (Palette, error) {
	var pf paletteFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling JSON: %v", ErrInvalidPalette, err)
	}

	p := make(Palette, 0, len(pf.Colors))
	for _, entry := range pf.Colors {
		if entry.Index < 0 || entry.Index >= MaxPaletteSize {
			return nil, fmt.Errorf("%w: color %q has index %d outside 0x0-0xF",
				ErrInvalidPalette, entry.Name, entry.Index)
		}
		hex := strings.TrimPrefix(entry.RGB, "#")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return nil, fmt.Errorf("%w: error parsing color %q: %q",
				ErrInvalidPalette, entry.Name, entry.RGB)
		}
		p = append(p, NewPaletteColor(entry.Name, uint8(entry.Index), RGBFromUint32(uint32(v))))
	}
	sort.SliceStable(p, func(i, j int) bool { return p[i].Index < p[j].Index })

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the palette can be packed into nibbles and matched
// deterministically.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalidPalette)
	}
	if len(p) > MaxPaletteSize {
		return fmt.Errorf("%w: %d colors exceed the %d a nibble can address",
			ErrInvalidPalette, len(p), MaxPaletteSize)
	}
	seenIndex := make(map[uint8]string, len(p))
	seenRGB := make(map[RGB]string, len(p))
	for _, c := range p {
		if c.Index >= MaxPaletteSize {
			return fmt.Errorf("%w: color %q has index %d outside 0x0-0xF",
				ErrInvalidPalette, c.Name, c.Index)
		}
		if other, ok := seenIndex[c.Index]; ok {
			return fmt.Errorf("%w: colors %q and %q share index 0x%X",
				ErrInvalidPalette, other, c.Name, c.Index)
		}
		if other, ok := seenRGB[c.RGB]; ok {
			return fmt.Errorf("%w: colors %q and %q share RGB #%06X",
				ErrInvalidPalette, other, c.Name, c.RGB.ToUint32())
		}
		seenIndex[c.Index] = c.Name
		seenRGB[c.RGB] = c.Name
	}
	return nil
}

// Clone returns a copy sorted by Index.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ByIndex returns the entry carrying the given firmware code.
func (p Palette) ByIndex(index uint8) (PaletteColor, bool) {
	for _, c := range p {
		if c.Index == index {
			return c, true
		}
	}
	return PaletteColor{}, false
}

// Contains reports whether index is one of the palette's codes.
func (p Palette) Contains(index uint8) bool {
	_, ok := p.ByIndex(index)
	return ok
}

// Indices returns the palette codes in palette order.
func (p Palette) Indices() []uint8 {
	out := make([]uint8, len(p))
	for i, c := range p {
		out[i] = c.Index
	}
	return out
}

// ColorPalette returns a color.Palette addressed by firmware code, so that
// position i holds the ink for code i. Unused codes render as white.
func (p Palette) ColorPalette() color.Palette {
	size := 0
	for _, c := range p {
		if int(c.Index)+1 > size {
			size = int(c.Index) + 1
		}
	}
	fill := color.Color(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if w, ok := p.ByIndex(White); ok {
		fill = w.RGB.ToColor()
	}
	out := make(color.Palette, size)
	for i := range out {
		out[i] = fill
	}
	for _, c := range p {
		out[c.Index] = c.RGB.ToColor()
	}
	return out
}
