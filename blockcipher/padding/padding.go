// Package padding aligns plaintext to a block boundary before encryption and
// strips the alignment again after decryption.
package padding

import (
	"crypto/rand"
	"fmt"
	"strings"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"github.com/dolthub/swiss"
)

type Padding int

const (
	None Padding = iota + 1
	Zeros
	PKCS7
	ANSIX923
	ISO10126
)

// Strategy pads and unpads buffers for one Padding.
type Strategy interface {
	// Pad returns a new buffer holding data followed by its padding.
	// The result is a multiple of blockSize; data is never modified.
	Pad(data []byte, blockSize int) ([]byte, error)

	// Unpad returns data without its padding, as a sub-slice of data.
	Unpad(data []byte, blockSize int) ([]byte, error)
}

func (p Padding) String() string {
	switch p {
	case None:
		return "None"
	case Zeros:
		return "Zeros"
	case PKCS7:
		return "PKCS7"
	case ANSIX923:
		return "ANSIX923"
	case ISO10126:
		return "ISO10126"
	default:
		return fmt.Sprintf("Padding(%d)", int(p))
	}
}

func (p Padding) Valid() bool {
	return p >= None && p <= ISO10126
}

func (p Padding) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: padding %d", blockcipher.ErrUnsupported, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Padding) UnmarshalText(text []byte) (err error) {
	*p, err = Parse(string(text))
	return err
}

var names = func() *swiss.Map[string, Padding] {
	m := swiss.NewMap[string, Padding](16)
	for _, p := range []Padding{None, Zeros, PKCS7, ANSIX923, ISO10126} {
		m.Put(strings.ToUpper(p.String()), p)
	}
	// spellings used by other tools
	m.Put("ZERO", Zeros)
	m.Put("ANSI_X923", ANSIX923)
	m.Put("X923", ANSIX923)
	m.Put("ISO_10126", ISO10126)
	m.Put("PKCS#7", PKCS7)
	return m
}()

// Parse looks up a Padding by name, ignoring case.
func Parse(name string) (Padding, error) {
	if p, ok := names.Get(strings.ToUpper(strings.TrimSpace(name))); ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: padding %q", blockcipher.ErrUnsupported, name)
}

// New returns the Strategy for p.
func New(p Padding) (Strategy, error) {
	switch p {
	case None:
		return noPadding{}, nil
	case Zeros:
		return zeroPadding{}, nil
	case PKCS7:
		return pkcs7Padding{}, nil
	case ANSIX923:
		return ansiX923Padding{}, nil
	case ISO10126:
		return iso10126Padding{}, nil
	default:
		return nil, fmt.Errorf("%w: padding %d", blockcipher.ErrUnsupported, int(p))
	}
}

func checkBlockSize(blockSize int) error {
	if blockSize < 1 || blockSize > 255 {
		return &blockcipher.SizeError{What: "padding block", Got: blockSize, Want: "1 to 255 bytes"}
	}
	return nil
}

// padCount is the number of pad bytes to add; always in [1, blockSize].
func padCount(n, blockSize int) int {
	return blockSize - n%blockSize
}

func grow(data []byte, n int) []byte {
	out := make([]byte, len(data)+n)
	copy(out, data)
	return out
}

type noPadding struct{}

func (noPadding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, blockcipher.NewMultipleSizeError("unpadded input", len(data), blockSize)
	}
	return grow(data, 0), nil
}

func (noPadding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, blockcipher.NewMultipleSizeError("unpadded input", len(data), blockSize)
	}
	return data, nil
}

type zeroPadding struct{}

func (zeroPadding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	if len(data)%blockSize == 0 {
		return grow(data, 0), nil
	}
	return grow(data, padCount(len(data), blockSize)), nil
}

// Unpad cannot tell padding from trailing zero plaintext, the caller tracks the length.
func (zeroPadding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	return data, nil
}

// countPad checks the structure shared by the count-byte paddings and returns the count.
func countPad(data []byte, blockSize int) (int, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return 0, err
	}
	if len(data) == 0 || len(data)%blockSize != 0 {
		return 0, fmt.Errorf("%w: padded length %d is not a positive multiple of %d", blockcipher.ErrInvalidPadding, len(data), blockSize)
	}
	n := int(data[len(data)-1])
	if n < 1 || n > blockSize {
		return 0, fmt.Errorf("%w: pad count %d", blockcipher.ErrInvalidPadding, n)
	}
	return n, nil
}

type pkcs7Padding struct{}

func (pkcs7Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := padCount(len(data), blockSize)
	out := grow(data, n)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out, nil
}

func (pkcs7Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := countPad(data, blockSize)
	if err != nil {
		return nil, err
	}
	for _, b := range data[len(data)-n:] {
		if b != byte(n) {
			return nil, fmt.Errorf("%w: non-uniform PKCS7 filler", blockcipher.ErrInvalidPadding)
		}
	}
	return data[:len(data)-n], nil
}

type ansiX923Padding struct{}

func (ansiX923Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := padCount(len(data), blockSize)
	out := grow(data, n)
	out[len(out)-1] = byte(n)
	return out, nil
}

func (ansiX923Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := countPad(data, blockSize)
	if err != nil {
		return nil, err
	}
	for _, b := range data[len(data)-n : len(data)-1] {
		if b != 0 {
			return nil, fmt.Errorf("%w: non-zero ANSI X9.23 filler", blockcipher.ErrInvalidPadding)
		}
	}
	return data[:len(data)-n], nil
}

type iso10126Padding struct{}

func (iso10126Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if err := checkBlockSize(blockSize); err != nil {
		return nil, err
	}
	n := padCount(len(data), blockSize)
	out := grow(data, n)
	if _, err := rand.Read(out[len(data) : len(out)-1]); err != nil {
		blockcipher.Wipe(out)
		return nil, err
	}
	out[len(out)-1] = byte(n)
	return out, nil
}

func (iso10126Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	n, err := countPad(data, blockSize)
	if err != nil {
		return nil, err
	}
	return data[:len(data)-n], nil
}
