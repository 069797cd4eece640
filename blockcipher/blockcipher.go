// Package blockcipher defines the single-block cipher contract shared by the
// tweakable and non-tweakable ciphers of this module, together with the error
// taxonomy and secret hygiene helpers used by the mode and padding layers.
package blockcipher

// BlockCipher encrypts or decrypts exactly one block at a time.
//
// Implementations hold no streaming state: the same input under the same key
// always yields the same output. Dst and src may point at the same memory.
type BlockCipher interface {
	// BlockSize returns the cipher's block size in bytes.
	BlockSize() int

	// Encrypt encrypts the block in src into dst.
	// Both must be exactly BlockSize bytes long.
	Encrypt(dst, src []byte) error

	// Decrypt decrypts the block in src into dst.
	// Both must be exactly BlockSize bytes long.
	Decrypt(dst, src []byte) error

	// Dispose zeroes all key material. Any later use returns ErrDisposed.
	Dispose()
}

// CheckBlock verifies dst and src are exactly one block of blockSize bytes.
func CheckBlock(dst, src []byte, blockSize int) error {
	if len(src) != blockSize {
		return NewSizeError("input block", len(src), Exact(blockSize*8))
	}
	if len(dst) != blockSize {
		return NewSizeError("output block", len(dst), Exact(blockSize*8))
	}
	return nil
}
