package spectra6

import "errors"

// Errors returned by the engine. They are wrapped with context, so match
// them with errors.Is.
var (
	// ErrInvalidDimensions reports zero, negative or mismatched sizes.
	ErrInvalidDimensions = errors.New("spectra6: invalid dimensions")
	// ErrImageTooLarge reports a pixel count beyond the configured limit.
	ErrImageTooLarge = errors.New("spectra6: image too large")
	// ErrInvalidOptions reports unusable conversion options.
	ErrInvalidOptions = errors.New("spectra6: invalid options")
	// ErrInvalidPalette reports a palette the panel cannot accept.
	ErrInvalidPalette = errors.New("spectra6: invalid palette")
	// ErrDecode reports an unsupported or corrupt source image.
	ErrDecode = errors.New("spectra6: decode failed")
)
