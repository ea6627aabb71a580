package imageutil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRGBAImage(t *testing.T) {
	img := NewRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestRGBAImageGetSetRGB(t *testing.T) {
	img := NewRGBAImage(10, 10)
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	got := img.GetRGB(5, 5)
	if got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
}

func TestRGBAImageClone(t *testing.T) {
	img := NewRGBAImage(10, 10)
	img.SetRGB(5, 5, RGB{R: 255, G: 0, B: 0})

	clone := img.Clone()
	if clone.GetRGB(5, 5) != img.GetRGB(5, 5) {
		t.Error("Clone should have same pixel values")
	}

	// Modify clone, original should be unchanged
	clone.SetRGB(5, 5, RGB{R: 0, G: 255, B: 0})
	if img.GetRGB(5, 5).G != 0 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestRGBAImageFromImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 22))
	src.SetRGBA(10, 20, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	img := RGBAImageFromImage(src)
	if img.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("Expected bounds anchored at origin, got %v", img.Bounds())
	}
	if got := img.GetRGB(0, 0); got != (RGB{R: 9, G: 8, B: 7}) {
		t.Errorf("Expected top-left pixel to move to origin, got %v", got)
	}
}

func TestFlattenAlpha(t *testing.T) {
	clear := CreateTranslucentImage(4, 4, RGB{R: 255}, 0)
	if IsOpaque(clear) {
		t.Fatal("Transparent image reported opaque")
	}
	flat := FlattenAlpha(clear)
	if got := flat.GetRGB(1, 1); got != (RGB{R: 255, G: 255, B: 255}) {
		t.Errorf("Fully transparent pixel should flatten to white, got %v", got)
	}
	if !IsOpaque(flat) {
		t.Error("Flattened image should be opaque")
	}

	half := FlattenAlpha(CreateTranslucentImage(1, 1, RGB{R: 255}, 128))
	got := half.GetRGB(0, 0)
	if got.R != 255 || got.G < 126 || got.G > 128 || got.B != got.G {
		t.Errorf("Half transparent red over white should be light red, got %v", got)
	}
}

func TestResize(t *testing.T) {
	img := CreateGradientImage(100, 100)

	// Downscale
	resized := Resize(img, 50, 50, InterpolationArea)
	if resized.Width() != 50 || resized.Height() != 50 {
		t.Errorf("Expected 50x50, got %dx%d", resized.Width(), resized.Height())
	}

	// Upscale
	resized = Resize(img, 200, 200, InterpolationLinear)
	if resized.Width() != 200 || resized.Height() != 200 {
		t.Errorf("Expected 200x200, got %dx%d", resized.Width(), resized.Height())
	}
}

func TestResizeNearestKeepsColors(t *testing.T) {
	img := CreateColorBarsImage(60, 10)
	resized := Resize(img, 30, 5, InterpolationNearest)

	allowed := make(map[RGB]bool)
	for _, c := range ColorBars {
		allowed[c] = true
	}
	for y := 0; y < resized.Height(); y++ {
		for x := 0; x < resized.Width(); x++ {
			if c := resized.GetRGB(x, y); !allowed[c] {
				t.Fatalf("Nearest neighbor invented color %v at (%d,%d)", c, x, y)
			}
		}
	}
}

func TestResizeRectSameSizeCopies(t *testing.T) {
	img := CreateColorBarsImage(60, 10)
	out := ResizeRect(img, image.Rect(10, 0, 20, 10), 10, 10, InterpolationArea)
	if got := out.GetRGB(0, 0); got != ColorBars[1] {
		t.Errorf("Expected crop to start on the white bar, got %v", got)
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := map[string]Interpolation{
		"":        InterpolationArea,
		"area":    InterpolationArea,
		"Linear":  InterpolationLinear,
		"nearest": InterpolationNearest,
	}
	for in, want := range tests {
		got, err := ParseInterpolation(in)
		if err != nil || got != want {
			t.Errorf("ParseInterpolation(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseInterpolation("lanczos"); err == nil {
		t.Error("Expected error for unknown interpolation")
	}
}

func TestConvolve(t *testing.T) {
	img := CreateGradientImage(10, 10)

	// Test identity kernel (should produce same image)
	identity := Kernel{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}
	result := Convolve(img, identity)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c1 := img.GetRGB(x, y)
			c2 := result.GetRGB(x, y)
			if c1 != c2 {
				t.Errorf("Identity kernel should preserve pixels at (%d,%d): %v != %v", x, y, c1, c2)
			}
		}
	}
}

func TestSharpenFlatRegion(t *testing.T) {
	img := CreateSolidImage(8, 8, RGB{R: 128, G: 64, B: 200})
	sharpened := Sharpen(img, DefaultSharpenAmount)

	if sharpened.Width() != img.Width() || sharpened.Height() != img.Height() {
		t.Fatal("Sharpened image should have same dimensions")
	}
	if mse := CalculateMSE(img, sharpened); mse != 0 {
		t.Errorf("Sharpening a flat image should be a no-op, MSE=%f", mse)
	}
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	img := NewRGBAImage(6, 1)
	for x := 0; x < 6; x++ {
		v := uint8(100)
		if x >= 3 {
			v = 150
		}
		img.SetRGB(x, 0, RGB{R: v, G: v, B: v})
	}
	sharpened := Sharpen(img, 1)
	if got := sharpened.GetRGB(2, 0).R; got >= 100 {
		t.Errorf("Dark side of edge should darken, got %d", got)
	}
	if got := sharpened.GetRGB(3, 0).R; got <= 150 {
		t.Errorf("Light side of edge should lighten, got %d", got)
	}
}

func TestSharpenZeroAmount(t *testing.T) {
	img := CreateGradientImage(4, 4)
	if Sharpen(img, 0) != img {
		t.Error("Zero amount should return the input")
	}
}

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateColorBarsImage(64, 64)

	pngPath := filepath.Join(tmpDir, "test.png")
	if err := SaveImage(img.RGBA, pngPath); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	loaded, err := LoadImage(pngPath, 0)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	// PNG should be lossless
	mse := CalculateMSE(img, RGBAImageFromImage(loaded))
	if mse > 0.01 {
		t.Errorf("PNG should be lossless, MSE=%f", mse)
	}
}

func TestLoadImageMissing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestDecodeRejectsLargeHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, CreateSolidImage(100, 100, RGB{})); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Decode(bytes.NewReader(buf.Bytes()), 50*50); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}

	img, format, err := Decode(bytes.NewReader(buf.Bytes()), 100*100)
	if err != nil {
		t.Fatalf("Decode at the limit failed: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 100 {
		t.Errorf("Unexpected decode result: %s %v", format, img.Bounds())
	}
}

// countingReader records how many bytes were pulled from the source.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestDecodeRejectsBeforeReadingPixels(t *testing.T) {
	img := NewRGBAImage(512, 512)
	rand.New(rand.NewSource(1)).Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	src := &countingReader{r: bytes.NewReader(buf.Bytes())}
	if _, _, err := Decode(src, 100*100); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
	if src.n > 32<<10 {
		t.Errorf("Expected the header check to read a few KB of a %d byte file, read %d",
			buf.Len(), src.n)
	}

	decoded, _, err := Decode(bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if mse := CalculateMSE(img, RGBAImageFromImage(decoded)); mse != 0 {
		t.Errorf("Decoded pixels should match the source, MSE=%f", mse)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")), 0)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestCalculateMSE(t *testing.T) {
	img1 := NewRGBAImage(10, 10)
	img2 := NewRGBAImage(10, 10)

	// Same images should have MSE of 0
	mse := CalculateMSE(img1, img2)
	if mse != 0 {
		t.Errorf("Identical images should have MSE=0, got %f", mse)
	}

	// Different images
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img1.SetRGB(x, y, RGB{R: 0, G: 0, B: 0})
			img2.SetRGB(x, y, RGB{R: 10, G: 10, B: 10})
		}
	}
	mse = CalculateMSE(img1, img2)
	expected := 100.0 // 10^2 = 100
	if mse != expected {
		t.Errorf("Expected MSE=%f, got %f", expected, mse)
	}
	if d := CalculateMaxDiff(img1, img2); d != 10 {
		t.Errorf("Expected max diff 10, got %d", d)
	}
}

// TestSaveTestImages saves test images to testdata directory for visual inspection.
// Run with: SAVE_TEST_IMAGES=1 go test -run TestSaveTestImages -v
func TestSaveTestImages(t *testing.T) {
	if os.Getenv("SAVE_TEST_IMAGES") != "1" {
		t.Skip("Set SAVE_TEST_IMAGES=1 to generate test images")
	}

	testdataDir := "../testdata"
	os.MkdirAll(testdataDir, 0755)

	SaveImage(CreateGradientImage(256, 256).RGBA, filepath.Join(testdataDir, "gradient.png"))
	SaveImage(CreateCheckerboardImage(256, 256, 32).RGBA, filepath.Join(testdataDir, "checkerboard.png"))
	SaveImage(CreateColorBarsImage(256, 256).RGBA, filepath.Join(testdataDir, "colorbars.png"))

	t.Log("Test images saved to testdata/")
}
