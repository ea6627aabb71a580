package fallback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glance/spectra6"
)

// streamChunk is the number of pixels converted per read. It is even so
// that chunks never split a packed byte.
const streamChunk = 4096

// ConvertStream reads pixels RGB triplets from r, classifies each with c
// and writes the packed panel buffer to w, holding one chunk in memory at a
// time. It always writes PackedLen(pixels) bytes: when r ends early the
// remaining pixels are white, as the firmware clears its buffer to 0x11
// before converting. A trailing partial triplet is discarded. The returned
// count is the number of pixels taken from r.
func ConvertStream(ctx context.Context, r io.Reader, w io.Writer, pixels int, c Classifier) (int, error) {
	if pixels <= 0 {
		return 0, fmt.Errorf("%w: %d pixels", spectra6.ErrInvalidDimensions, pixels)
	}
	if pixels > spectra6.MaxPixels {
		return 0, fmt.Errorf("%w: %d pixels exceeds %d", spectra6.ErrImageTooLarge, pixels, spectra6.MaxPixels)
	}

	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	rgb := make([]byte, streamChunk*3)
	q := make(spectra6.QuantizedBuffer, streamChunk)
	packed := make(spectra6.PackedBuffer, spectra6.PackedLen(streamChunk))

	read := 0
	eof := false
	for done := 0; done < pixels; {
		if err := ctx.Err(); err != nil {
			return read, err
		}

		n := min(streamChunk, pixels-done)
		got := 0
		if !eof {
			m, err := io.ReadFull(br, rgb[:n*3])
			switch {
			case err == nil:
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				eof = true
			default:
				return read, fmt.Errorf("failed to read pixels: %w", err)
			}
			got = m / 3
		}

		for i := 0; i < got; i++ {
			q[i] = c.Match(spectra6.RGB{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2]})
		}
		for i := got; i < n; i++ {
			q[i] = spectra6.White
		}
		read += got

		out := packed[:spectra6.PackedLen(n)]
		if err := spectra6.PackInto(out, q[:n]); err != nil {
			return read, err
		}
		if _, err := bw.Write(out); err != nil {
			return read, fmt.Errorf("failed to write packed buffer: %w", err)
		}
		done += n
	}

	if err := bw.Flush(); err != nil {
		return read, fmt.Errorf("failed to write packed buffer: %w", err)
	}
	return read, nil
}
