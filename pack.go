package spectra6

import "fmt"

// PackedBuffer is the panel wire format: two 4-bit palette codes per byte.
// Pixel 2k occupies the high nibble of byte k and pixel 2k+1 the low
// nibble. The stream is continuous across rows.
type PackedBuffer []byte

// PackedLen returns the packed size of n pixels, ceil(n/2).
func PackedLen(n int) int {
	return (n + 1) / 2
}

// Pack serializes q into a new PackedBuffer. With an odd pixel count the
// final low nibble is zero.
func Pack(q QuantizedBuffer) PackedBuffer {
	out := make(PackedBuffer, PackedLen(len(q)))
	packInto(out, q)
	return out
}

// PackInto packs q into dst, which must be exactly PackedLen(len(q))
// bytes long.
func PackInto(dst PackedBuffer, q QuantizedBuffer) error {
	if want := PackedLen(len(q)); len(dst) != want {
		return fmt.Errorf("%w: %d pixels pack into %d bytes, buffer has %d",
			ErrInvalidDimensions, len(q), want, len(dst))
	}
	packInto(dst, q)
	return nil
}

func packInto(dst PackedBuffer, q QuantizedBuffer) {
	n := len(q)
	for k := 0; k < n/2; k++ {
		dst[k] = q[2*k]<<4 | q[2*k+1]&0x0F
	}
	if n%2 == 1 {
		dst[n/2] = q[n-1] << 4
	}
}

// Unpack expands the first n pixels of p. p must hold exactly
// PackedLen(n) bytes.
func Unpack(p PackedBuffer, n int) (QuantizedBuffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative pixel count %d", ErrInvalidDimensions, n)
	}
	if want := PackedLen(n); len(p) != want {
		return nil, fmt.Errorf("%w: %d pixels need %d packed bytes, got %d",
			ErrInvalidDimensions, n, want, len(p))
	}
	out := make(QuantizedBuffer, n)
	for i := range out {
		out[i] = nibbleAt(p, i)
	}
	return out, nil
}

// nibbleAt returns the code of pixel i.
func nibbleAt(p PackedBuffer, i int) uint8 {
	offset, shift := nibbleOffset(i)
	return (p[offset] >> shift) & 0x0F
}

// nibbleOffset returns the byte offset and bit shift of pixel i.
// Even pixels use the high nibble (shift 4), odd pixels the low nibble.
func nibbleOffset(i int) (offset int, shift uint) {
	return i / 2, uint(4 * (1 - (i & 1)))
}

// FillPacked sets every pixel of p to index, including a trailing padding
// nibble. It mirrors the panel firmware clearing its buffer to 0x11.
func FillPacked(p PackedBuffer, index uint8) {
	v := index<<4 | index&0x0F
	for i := range p {
		p[i] = v
	}
}
