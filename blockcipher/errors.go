package blockcipher

import (
	"errors"
	"fmt"
)

var (
	ErrSize           = errors.New("blockcipher: invalid size")
	ErrUnsupported    = errors.New("blockcipher: unsupported configuration")
	ErrInvalidPadding = errors.New("blockcipher: invalid padding")
	ErrDisposed       = errors.New("blockcipher: object has been disposed")
	ErrFinalized      = errors.New("blockcipher: transform already finalized")
	ErrShortBuffer    = errors.New("blockcipher: output buffer too small")
)

// SizeError reports a key, IV, tweak or block buffer of the wrong length.
// It matches ErrSize under errors.Is.
type SizeError struct {
	// What names the offending buffer, e.g. "key" or "tweak".
	What string
	// Got is the length that was supplied, in bytes.
	Got int
	// Want describes the legal lengths.
	Want string
}

func NewSizeError(what string, got int, legal KeySizes) *SizeError {
	return &SizeError{What: what, Got: got, Want: legal.String()}
}

// NewMultipleSizeError reports a buffer that is not a positive multiple of blockSize bytes.
func NewMultipleSizeError(what string, got, blockSize int) *SizeError {
	return &SizeError{What: what, Got: got, Want: fmt.Sprintf("a positive multiple of %d bytes", blockSize)}
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("blockcipher: invalid %s size %d bytes, legal sizes: %s", e.What, e.Got, e.Want)
}

func (e *SizeError) Is(target error) bool {
	return target == ErrSize
}
