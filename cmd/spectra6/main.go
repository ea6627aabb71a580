package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glance/spectra6"
	"github.com/glance/spectra6/fallback"
	"github.com/glance/spectra6/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required unless -swatch is given)")
	outputFile := flag.String("output", "",
		"Path to save the packed panel buffer (default: input name with .bin)")
	previewFile := flag.String("preview", "",
		"Path to save a PNG preview of the quantized image")
	previewScale := flag.Int("previewscale", 1,
		"Enlarge each panel pixel to an NxN square in the preview")
	rgbFile := flag.String("rgb", "",
		"Path to save the fitted image as a raw RGB stream for device-side conversion")
	width := flag.Int("width", spectra6.DefaultWidth,
		"Panel width in pixels")
	height := flag.Int("height", spectra6.DefaultHeight,
		"Panel height in pixels")
	rotate := flag.String("rotate", "none",
		"Rotation before fitting: none, cw, ccw or auto")
	method := flag.String("method", "floyd-steinberg",
		"Dither method: floyd-steinberg, atkinson or none")
	boost := flag.Float64("boost", spectra6.DefaultSaturationBoost,
		"Saturation boost applied to colors before matching")
	distance := flag.String("distance", "cie76",
		"Color distance method: cie76 or ciede2000")
	paletteFile := flag.String("palette", "spectra6",
		"Palette name or path to a JSON palette "+
			"(Embedded: spectra6, spectra6-measured)")
	sharpen := flag.Float64("sharpen", 0,
		fmt.Sprintf("Sharpen amount after scaling, 0 to disable (mild: %v)", imageutil.DefaultSharpenAmount))
	interp := flag.String("interp", "area",
		"Resize interpolation: area, linear or nearest")
	swatchFile := flag.String("swatch", "",
		"Path to save a palette calibration card PNG")
	fallbackMode := flag.String("fallback", "",
		"Quantize like the device instead of dithering: matcher or firmware")
	verbose := flag.Bool("v", false,
		"Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config{
		input:        *inputFile,
		output:       *outputFile,
		preview:      *previewFile,
		previewScale: *previewScale,
		rgb:          *rgbFile,
		width:        *width,
		height:       *height,
		rotate:       *rotate,
		method:       *method,
		boost:        *boost,
		distance:     *distance,
		palette:      *paletteFile,
		sharpen:      *sharpen,
		interp:       *interp,
		swatch:       *swatchFile,
		fallback:     *fallbackMode,
	}
	if cfg.input == "" && cfg.swatch == "" {
		fmt.Fprintln(os.Stderr, "Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

type config struct {
	input, output, preview, rgb string
	previewScale                int
	width, height               int
	rotate, method, distance    string
	boost, sharpen              float64
	palette, interp             string
	swatch, fallback            string
}

func run(ctx context.Context, logger *slog.Logger, cfg config) error {
	beginInit := time.Now()

	palette, err := spectra6.LoadPalette(cfg.palette)
	if err != nil {
		return fmt.Errorf("loading palette: %w", err)
	}
	logger.Debug("palette loaded", "name", cfg.palette, "colors", len(palette))

	classifier, err := newClassifier(cfg.fallback, palette)
	if err != nil {
		return err
	}

	// Options are resolved before anything is written.
	var conv *spectra6.Converter
	if cfg.input != "" {
		if conv, err = newConverter(cfg, palette); err != nil {
			return err
		}
	}
	logger.Debug("initialization time", "elapsed", time.Since(beginInit))

	if cfg.swatch != "" {
		card, err := spectra6.RenderSwatch(palette, cfg.width, cfg.height)
		if err != nil {
			return fmt.Errorf("rendering swatch: %w", err)
		}
		if err := imageutil.SavePNG(card, cfg.swatch); err != nil {
			return fmt.Errorf("saving swatch: %w", err)
		}
		logger.Info("swatch saved", "path", cfg.swatch)
	}
	if conv == nil {
		return nil
	}

	output := cfg.output
	if output == "" {
		output = strings.TrimSuffix(cfg.input, filepath.Ext(cfg.input)) + ".bin"
	}

	start := time.Now()
	var packed spectra6.PackedBuffer
	if cfg.rgb == "" && cfg.fallback == "" {
		res, err := conv.ConvertFile(cfg.input)
		if err != nil {
			return err
		}
		packed = res.Packed
		logHistogram(logger, res.Histogram(), palette)
	} else {
		packed, err = prepareAndStream(ctx, logger, conv, cfg, classifier)
		if err != nil {
			return err
		}
	}
	logger.Debug("conversion time", "elapsed", time.Since(start))

	if packed != nil {
		if err := os.WriteFile(output, packed, 0o644); err != nil {
			return fmt.Errorf("saving panel buffer: %w", err)
		}
		logger.Info("panel buffer saved", "path", output, "bytes", len(packed))
	}

	if cfg.preview != "" && packed != nil {
		w, h := conv.Size()
		img, err := spectra6.PanelImageFromPacked(packed, w, h, palette)
		if err != nil {
			return err
		}
		if err := img.SavePreview(cfg.preview, cfg.previewScale); err != nil {
			return fmt.Errorf("saving preview: %w", err)
		}
		logger.Info("preview saved", "path", cfg.preview)
	}
	return nil
}

func newConverter(cfg config, palette spectra6.Palette) (*spectra6.Converter, error) {
	orientation, err := imageutil.ParseOrientation(cfg.rotate)
	if err != nil {
		return nil, err
	}
	method, err := spectra6.ParseMethod(cfg.method)
	if err != nil {
		return nil, err
	}
	dist, err := spectra6.DistanceMethodByName(cfg.distance)
	if err != nil {
		return nil, err
	}
	interp, err := imageutil.ParseInterpolation(cfg.interp)
	if err != nil {
		return nil, err
	}
	return spectra6.NewConverter(
		spectra6.WithSize(cfg.width, cfg.height),
		spectra6.WithPalette(palette),
		spectra6.WithMethod(method),
		spectra6.WithSaturationBoost(cfg.boost),
		spectra6.WithDistanceMethod(dist),
		spectra6.WithOrientation(orientation),
		spectra6.WithInterpolation(interp),
		spectra6.WithSharpen(cfg.sharpen),
	)
}

// prepareAndStream fits the input, optionally saves the raw RGB stream and,
// when a fallback mode is set, packs it the way the device would. It
// returns nil when only the RGB stream was requested.
func prepareAndStream(ctx context.Context, logger *slog.Logger, conv *spectra6.Converter,
	cfg config, c fallback.Classifier) (spectra6.PackedBuffer, error) {
	img, err := imageutil.LoadImage(cfg.input, spectra6.MaxPixels)
	if err != nil {
		return nil, err
	}
	src, err := conv.Prepare(img)
	if err != nil {
		return nil, err
	}
	stream := spectra6.EncodeRGB(src)

	if cfg.rgb != "" {
		if err := os.WriteFile(cfg.rgb, stream, 0o644); err != nil {
			return nil, fmt.Errorf("saving RGB stream: %w", err)
		}
		logger.Info("RGB stream saved", "path", cfg.rgb, "bytes", len(stream))
	}
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if _, err := fallback.ConvertStream(ctx, bytes.NewReader(stream), &buf, src.Len(), c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newClassifier resolves the -fallback mode. An empty mode returns nil.
func newClassifier(mode string, palette spectra6.Palette) (fallback.Classifier, error) {
	switch strings.ToLower(mode) {
	case "":
		return nil, nil
	case "matcher":
		m, err := fallback.NewMatcher(palette)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "firmware":
		return fallback.FirmwareRules, nil
	default:
		return nil, fmt.Errorf("%w: unknown fallback %q, options are matcher or firmware",
			spectra6.ErrInvalidOptions, mode)
	}
}

func logHistogram(logger *slog.Logger, hist map[uint8]int, palette spectra6.Palette) {
	indices := make([]int, 0, len(hist))
	for index := range hist {
		indices = append(indices, int(index))
	}
	sort.Ints(indices)
	for _, index := range indices {
		name := fmt.Sprintf("0x%X", index)
		if pc, ok := palette.ByIndex(uint8(index)); ok {
			name = pc.Name
		}
		logger.Debug("color usage", "color", name, "pixels", hist[uint8(index)])
	}
}
