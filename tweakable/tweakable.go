// Package tweakable holds the key, IV and tweak material of a tweakable
// block cipher and builds encrypt and decrypt streams from it.
//
// Variant specific behaviour (size validation and engine construction) is
// supplied by a Provider.
package tweakable

import (
	"bytes"
	"fmt"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/mode"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/padding"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/transform"
	"git.gammaspectra.live/P2Pool/threefish/utils"
)

// Provider builds the engine for one cipher variant.
type Provider interface {
	// Validate checks the lengths of key, iv and tweak.
	Validate(key, iv, tweak []byte) error
	CreateCipher(key, tweak []byte) (blockcipher.BlockCipher, error)
}

// Sizes declares the legal buffer sizes of a variant, in bits.
type Sizes struct {
	Key   blockcipher.KeySizes
	Block blockcipher.KeySizes
	Tweak blockcipher.KeySizes
}

const (
	DefaultMode    = mode.CBC
	DefaultPadding = padding.PKCS7
)

// Algorithm is not safe for concurrent use. Streams created from it are
// independent of it and of each other.
type Algorithm struct {
	name     string
	provider Provider
	sizes    Sizes

	keySize   int // bits
	blockSize int // bits
	tweakSize int // bits

	key   []byte
	iv    []byte
	tweak []byte

	mode    mode.BlockMode
	padding padding.Padding

	disposed bool
}

// New returns an Algorithm with the largest legal key, block and tweak sizes.
// Key, IV and tweak are generated on first use unless set.
func New(name string, p Provider, sizes Sizes) *Algorithm {
	return &Algorithm{
		name:      name,
		provider:  p,
		sizes:     sizes,
		keySize:   sizes.Key.Max,
		blockSize: sizes.Block.Max,
		tweakSize: sizes.Tweak.Max,
		mode:      DefaultMode,
		padding:   DefaultPadding,
	}
}

func (a *Algorithm) Name() string { return a.name }

func (a *Algorithm) Sizes() Sizes { return a.sizes }

// KeySize, BlockSize and TweakSize are in bits.
func (a *Algorithm) KeySize() int { return a.keySize }

func (a *Algorithm) BlockSize() int { return a.blockSize }

func (a *Algorithm) TweakSize() int { return a.tweakSize }

// SetTweakSize changes the tweak length. Any tweak already set is wiped and a
// new one is generated on next use.
func (a *Algorithm) SetTweakSize(bits int) error {
	if bits%8 != 0 || !a.sizes.Tweak.Contains(bits) {
		return blockcipher.NewSizeError("tweak", bits/8, a.sizes.Tweak)
	}
	a.tweakSize = bits
	a.clearTweak()
	return nil
}

func (a *Algorithm) Mode() mode.BlockMode { return a.mode }

func (a *Algorithm) SetMode(m mode.BlockMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: block mode %d", blockcipher.ErrUnsupported, int(m))
	}
	a.mode = m
	return nil
}

func (a *Algorithm) Padding() padding.Padding { return a.padding }

func (a *Algorithm) SetPadding(p padding.Padding) error {
	if !p.Valid() {
		return fmt.Errorf("%w: padding %d", blockcipher.ErrUnsupported, int(p))
	}
	a.padding = p
	return nil
}

// Key returns a copy of the key, generating one if none is set.
func (a *Algorithm) Key() ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	if a.key == nil {
		if err := a.GenerateKey(); err != nil {
			return nil, err
		}
	}
	return bytes.Clone(a.key), nil
}

func (a *Algorithm) SetKey(key []byte) error {
	if err := a.usable(); err != nil {
		return err
	}
	if !a.sizes.Key.ContainsBytes(len(key)) {
		return blockcipher.NewSizeError("key", len(key), a.sizes.Key)
	}
	blockcipher.Wipe(a.key)
	a.key = bytes.Clone(key)
	a.keySize = len(key) * 8
	return nil
}

// IV returns a copy of the IV, generating one if none is set.
func (a *Algorithm) IV() ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	if a.iv == nil {
		if err := a.GenerateIV(); err != nil {
			return nil, err
		}
	}
	return bytes.Clone(a.iv), nil
}

func (a *Algorithm) SetIV(iv []byte) error {
	if err := a.usable(); err != nil {
		return err
	}
	if len(iv)*8 != a.blockSize {
		return blockcipher.NewSizeError("IV", len(iv), blockcipher.Exact(a.blockSize))
	}
	blockcipher.Wipe(a.iv)
	a.iv = bytes.Clone(iv)
	return nil
}

// Tweak returns a copy of the tweak, generating one if none is set.
func (a *Algorithm) Tweak() ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	if a.tweak == nil {
		if err := a.GenerateTweak(); err != nil {
			return nil, err
		}
	}
	return bytes.Clone(a.tweak), nil
}

func (a *Algorithm) SetTweak(tweak []byte) error {
	if err := a.usable(); err != nil {
		return err
	}
	if len(tweak)*8 != a.tweakSize {
		return blockcipher.NewSizeError("tweak", len(tweak), blockcipher.Exact(a.tweakSize))
	}
	blockcipher.Wipe(a.tweak)
	a.tweak = bytes.Clone(tweak)
	return nil
}

func (a *Algorithm) generate(dst *[]byte, bits int) error {
	if err := a.usable(); err != nil {
		return err
	}
	buf := make([]byte, bits/8)
	if err := blockcipher.RandomNonZero(buf); err != nil {
		return err
	}
	blockcipher.Wipe(*dst)
	*dst = buf
	return nil
}

// GenerateKey replaces the key with random non-zero bytes.
func (a *Algorithm) GenerateKey() error { return a.generate(&a.key, a.keySize) }

// GenerateIV replaces the IV with random non-zero bytes.
func (a *Algorithm) GenerateIV() error { return a.generate(&a.iv, a.blockSize) }

// GenerateTweak replaces the tweak with random non-zero bytes.
func (a *Algorithm) GenerateTweak() error { return a.generate(&a.tweak, a.tweakSize) }

func (a *Algorithm) clearTweak() {
	blockcipher.Wipe(a.tweak)
	a.tweak = nil
}

// material returns the current key, IV and tweak, generating missing ones.
// The slices belong to a.
func (a *Algorithm) material() (key, iv, tweak []byte, err error) {
	if a.key == nil {
		if err = a.GenerateKey(); err != nil {
			return
		}
	}
	if a.iv == nil {
		if err = a.GenerateIV(); err != nil {
			return
		}
	}
	if a.tweak == nil {
		if err = a.GenerateTweak(); err != nil {
			return
		}
	}
	return a.key, a.iv, a.tweak, nil
}

// CreateEncryptor opens an encrypt stream with the current key, IV and tweak.
func (a *Algorithm) CreateEncryptor() (*transform.CipherTransform, error) {
	return a.create(transform.Encrypt)
}

// CreateDecryptor opens a decrypt stream with the current key, IV and tweak.
func (a *Algorithm) CreateDecryptor() (*transform.CipherTransform, error) {
	return a.create(transform.Decrypt)
}

// CreateEncryptorWith opens an encrypt stream with explicit material. The
// Algorithm's own key, IV and tweak are left untouched.
func (a *Algorithm) CreateEncryptorWith(key, iv, tweak []byte) (*transform.CipherTransform, error) {
	return a.createWith(key, iv, tweak, transform.Encrypt)
}

// CreateDecryptorWith opens a decrypt stream with explicit material.
func (a *Algorithm) CreateDecryptorWith(key, iv, tweak []byte) (*transform.CipherTransform, error) {
	return a.createWith(key, iv, tweak, transform.Decrypt)
}

func (a *Algorithm) create(d transform.Direction) (*transform.CipherTransform, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	key, iv, tweak, err := a.material()
	if err != nil {
		return nil, err
	}
	return a.createWith(key, iv, tweak, d)
}

func (a *Algorithm) createWith(key, iv, tweak []byte, d transform.Direction) (*transform.CipherTransform, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	if iv == nil && !a.mode.RequiresIV() {
		// ECB never reads the IV
		iv = make([]byte, a.blockSize/8)
	}
	if err := a.provider.Validate(key, iv, tweak); err != nil {
		return nil, err
	}

	ps, err := padding.New(a.padding)
	if err != nil {
		return nil, err
	}
	c, err := a.provider.CreateCipher(key, tweak)
	if err != nil {
		return nil, err
	}
	m, err := mode.New(a.mode, c, iv)
	if err != nil {
		c.Dispose()
		return nil, err
	}
	t, err := transform.New(c, m, ps, d)
	if err != nil {
		m.Dispose()
		c.Dispose()
		return nil, err
	}

	utils.Debugf(a.name, "opened %s stream, mode %s, padding %s", d, a.mode, a.padding)
	return t, nil
}

// Encrypt encrypts plaintext in one call with the current key, IV and tweak.
func (a *Algorithm) Encrypt(plaintext []byte) ([]byte, error) {
	t, err := a.CreateEncryptor()
	if err != nil {
		return nil, err
	}
	return oneShot(t, plaintext)
}

// Decrypt decrypts ciphertext in one call with the current key, IV and tweak.
func (a *Algorithm) Decrypt(ciphertext []byte) ([]byte, error) {
	t, err := a.CreateDecryptor()
	if err != nil {
		return nil, err
	}
	return oneShot(t, ciphertext)
}

func oneShot(t *transform.CipherTransform, src []byte) ([]byte, error) {
	defer t.Dispose()
	out, err := t.Update(make([]byte, 0, len(src)+t.BlockSize()), src)
	if err == nil {
		out, err = t.Final(out)
	}
	if err != nil {
		blockcipher.Wipe(out)
		return nil, err
	}
	return out, nil
}

func (a *Algorithm) usable() error {
	if a.disposed {
		return blockcipher.ErrDisposed
	}
	return nil
}

// Dispose wipes the key, IV and tweak. Streams already created are not affected.
func (a *Algorithm) Dispose() {
	blockcipher.Wipe(a.key)
	blockcipher.Wipe(a.iv)
	blockcipher.Wipe(a.tweak)
	a.key, a.iv, a.tweak = nil, nil, nil
	a.disposed = true
}
