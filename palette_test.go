package spectra6

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	t.Parallel()

	p := DefaultPalette()
	want := []uint8{Black, White, Yellow, Red, Blue, Green}
	if !reflect.DeepEqual(p.Indices(), want) {
		t.Fatalf("Expected indices %v, got %v", want, p.Indices())
	}
	names := []string{"black", "white", "yellow", "red", "blue", "green"}
	for i, c := range p {
		if c.Name != names[i] {
			t.Errorf("Entry %d: expected name %q, got %q", i, names[i], c.Name)
		}
		if c.Lab != RGBToLab(c.RGB) {
			t.Errorf("%s: Lab not derived from RGB", c.Name)
		}
	}
	if red, _ := p.ByIndex(Red); red.RGB != (RGB{255, 0, 0}) {
		t.Errorf("Expected pure red, got %v", red.RGB)
	}
}

func TestDefaultPaletteIsCopy(t *testing.T) {
	t.Parallel()

	p := DefaultPalette()
	p[0].RGB = RGB{1, 2, 3}
	if DefaultPalette()[0].RGB != (RGB{}) {
		t.Error("Modifying a returned palette should not affect the default")
	}
}

func TestLoadPaletteMeasured(t *testing.T) {
	t.Parallel()

	p, err := LoadPalette("spectra6-measured")
	if err != nil {
		t.Fatalf("Failed to load measured palette: %v", err)
	}
	if len(p) != 6 {
		t.Fatalf("Expected 6 colors, got %d", len(p))
	}
	if blue, ok := p.ByIndex(Blue); !ok || blue.RGB != RGBFromUint32(0x2157BA) {
		t.Errorf("Expected measured blue #2157BA, got %v", blue.RGB)
	}
}

func TestLoadPaletteFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "duo.json")
	data := `{"name":"duo","colors":[
		{"name":"white","index":1,"rgb":"#FFFFFF"},
		{"name":"black","index":0,"rgb":"#000000"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPalette(path)
	if err != nil {
		t.Fatalf("Failed to load palette file: %v", err)
	}
	if !reflect.DeepEqual(p.Indices(), []uint8{0, 1}) {
		t.Errorf("Expected entries sorted by index, got %v", p.Indices())
	}
}

func TestLoadPaletteMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadPalette("no-such-palette"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestParsePaletteInvalid(t *testing.T) {
	t.Parallel()

	many := make([]string, 17)
	for i := range many {
		many[i] = fmt.Sprintf(`{"name":"c%d","index":%d,"rgb":"#0000%02X"}`, i, i%16, i)
	}

	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"colors":[`},
		{"empty", `{"colors":[]}`},
		{"duplicate index", `{"colors":[{"name":"a","index":1,"rgb":"#000000"},{"name":"b","index":1,"rgb":"#FFFFFF"}]}`},
		{"duplicate rgb", `{"colors":[{"name":"a","index":0,"rgb":"#FFFFFF"},{"name":"b","index":1,"rgb":"#ffffff"}]}`},
		{"index too large", `{"colors":[{"name":"a","index":16,"rgb":"#000000"}]}`},
		{"negative index", `{"colors":[{"name":"a","index":-1,"rgb":"#000000"}]}`},
		{"bad hex", `{"colors":[{"name":"a","index":0,"rgb":"#GG0000"}]}`},
		{"short hex", `{"colors":[{"name":"a","index":0,"rgb":"#FFF"}]}`},
		{"too many", `{"colors":[` + strings.Join(many, ",") + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePalette([]byte(tt.data)); !errors.Is(err, ErrInvalidPalette) {
				t.Errorf("Expected ErrInvalidPalette, got %v", err)
			}
		})
	}
}

func TestColorPalette(t *testing.T) {
	t.Parallel()

	cp := DefaultPalette().ColorPalette()
	if len(cp) != 7 {
		t.Fatalf("Expected 7 slots (codes 0-6), got %d", len(cp))
	}
	if RGBFromColor(cp[Blue]) != (RGB{0, 0, 255}) {
		t.Errorf("Slot 5 should be blue, got %v", RGBFromColor(cp[Blue]))
	}
	if RGBFromColor(cp[4]) != (RGB{255, 255, 255}) {
		t.Errorf("Unused code 4 should render white, got %v", RGBFromColor(cp[4]))
	}
}

func TestPaletteContains(t *testing.T) {
	t.Parallel()

	p := DefaultPalette()
	if !p.Contains(Green) {
		t.Error("Default palette should contain green")
	}
	if p.Contains(4) {
		t.Error("Default palette should not contain code 4")
	}
}
