package threefish

import (
	"fmt"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/tweakable"
)

// Threefish is a configured Threefish variant: key, IV, tweak, block mode and
// padding, plus encryptor and decryptor factories inherited from the
// embedded tweakable.Algorithm.
type Threefish struct {
	*tweakable.Algorithm
	params Params
}

// New returns a Threefish of variant p with CBC mode and PKCS7 padding.
func New(p Params) *Threefish {
	bits := p.StateSize()
	t := &Threefish{params: p}
	t.Algorithm = tweakable.New(fmt.Sprintf("Threefish-%d", bits), t, tweakable.Sizes{
		Key:   blockcipher.Exact(bits),
		Block: blockcipher.Exact(bits),
		Tweak: blockcipher.Exact(TweakSize * 8),
	})
	return t
}

func New256() *Threefish { return New(Params256) }

func New512() *Threefish { return New(Params512) }

func New1024() *Threefish { return New(Params1024) }

func (t *Threefish) Params() Params { return t.params }

// Validate requires key and iv of exactly one block and a TweakSize tweak.
func (t *Threefish) Validate(key, iv, tweak []byte) error {
	bs := t.params.BlockSize()
	if len(key) != bs {
		return blockcipher.NewSizeError("key", len(key), blockcipher.Exact(bs*8))
	}
	if len(iv) != bs {
		return blockcipher.NewSizeError("IV", len(iv), blockcipher.Exact(bs*8))
	}
	if len(tweak) != TweakSize {
		return blockcipher.NewSizeError("tweak", len(tweak), blockcipher.Exact(TweakSize*8))
	}
	return nil
}

func (t *Threefish) CreateCipher(key, tweak []byte) (blockcipher.BlockCipher, error) {
	c, err := NewCipherWithParams(t.params, key, tweak)
	if err != nil {
		return nil, err
	}
	return c, nil
}
