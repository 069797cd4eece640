package threefish

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"lukechampine.com/uint128"
)

// Cipher is a Threefish engine bound to one key and tweak.
//
// The expanded key and tweak schedules are immutable after construction, so a
// Cipher may be used from several goroutines at once. Dispose must not race
// with other calls.
type Cipher struct {
	params Params

	// keys[:words+1] holds k0 ... k(W-1) and the parity word
	keys [maxWords + 1]uint64
	// tweak holds t0, t1, t0 ^ t1
	tweak [3]uint64

	disposed bool
}

var _ blockcipher.BlockCipher = (*Cipher)(nil)

// NewCipher returns a Threefish cipher for the given key and tweak.
// The length of the key must be 32, 64 or 128 byte and selects the variant:
//   - Threefish-256  - if len(key) = 32
//   - Threefish-512  - if len(key) = 64
//   - Threefish-1024 - if len(key) = 128
//
// The length of the tweak must be TweakSize.
func NewCipher(key, tweak []byte) (*Cipher, error) {
	p, ok := ParamsForSize(len(key) * 8)
	if !ok {
		return nil, &blockcipher.SizeError{What: "key", Got: len(key), Want: "256, 512 or 1024 bits"}
	}
	return NewCipherWithParams(p, key, tweak)
}

// NewCipherWithParams returns a Threefish cipher of variant p.
func NewCipherWithParams(p Params, key, tweak []byte) (*Cipher, error) {
	if len(key) != p.BlockSize() {
		return nil, blockcipher.NewSizeError("key", len(key), blockcipher.Exact(p.StateSize()))
	}
	if len(tweak) != TweakSize {
		return nil, blockcipher.NewSizeError("tweak", len(tweak), blockcipher.Exact(TweakSize*8))
	}

	c := &Cipher{params: p}

	t := uint128.FromBytes(tweak)
	c.tweak[0] = t.Lo
	c.tweak[1] = t.Hi
	c.tweak[2] = t.Lo ^ t.Hi

	parity := uint64(C240)
	for i := range p.words {
		c.keys[i] = binary.LittleEndian.Uint64(key[i*8:])
		parity ^= c.keys[i]
	}
	c.keys[p.words] = parity

	return c, nil
}

func (c *Cipher) BlockSize() int { return c.params.BlockSize() }

func (c *Cipher) Params() Params { return c.params }

func (c *Cipher) Encrypt(dst, src []byte) error {
	if c.disposed {
		return blockcipher.ErrDisposed
	}
	if err := blockcipher.CheckBlock(dst, src, c.params.BlockSize()); err != nil {
		return err
	}

	var block [maxWords]uint64
	defer blockcipher.WipeWords(block[:])

	bytesToBlock(block[:c.params.words], src)
	c.encrypt(&block)
	blockToBytes(dst, block[:c.params.words])
	return nil
}

func (c *Cipher) Decrypt(dst, src []byte) error {
	if c.disposed {
		return blockcipher.ErrDisposed
	}
	if err := blockcipher.CheckBlock(dst, src, c.params.BlockSize()); err != nil {
		return err
	}

	var block [maxWords]uint64
	defer blockcipher.WipeWords(block[:])

	bytesToBlock(block[:c.params.words], src)
	c.decrypt(&block)
	blockToBytes(dst, block[:c.params.words])
	return nil
}

// EncryptWords encrypts a block given as Words() little-endian words.
// Dst and src may point at the same memory.
func (c *Cipher) EncryptWords(dst, src []uint64) error {
	if c.disposed {
		return blockcipher.ErrDisposed
	}
	if len(src) != c.params.words || len(dst) != c.params.words {
		return blockcipher.NewSizeError("word block", max(len(src), len(dst))*8, blockcipher.Exact(c.params.StateSize()))
	}

	var block [maxWords]uint64
	copy(block[:], src)
	c.encrypt(&block)
	copy(dst, block[:c.params.words])
	blockcipher.WipeWords(block[:])
	return nil
}

// DecryptWords decrypts a block given as Words() little-endian words.
// Dst and src may point at the same memory.
func (c *Cipher) DecryptWords(dst, src []uint64) error {
	if c.disposed {
		return blockcipher.ErrDisposed
	}
	if len(src) != c.params.words || len(dst) != c.params.words {
		return blockcipher.NewSizeError("word block", max(len(src), len(dst))*8, blockcipher.Exact(c.params.StateSize()))
	}

	var block [maxWords]uint64
	copy(block[:], src)
	c.decrypt(&block)
	copy(dst, block[:c.params.words])
	blockcipher.WipeWords(block[:])
	return nil
}

// Dispose zeroes the key and tweak schedules.
func (c *Cipher) Dispose() {
	blockcipher.WipeWords(c.keys[:])
	blockcipher.WipeWords(c.tweak[:])
	c.disposed = true
}

// inject adds subkey s to the state.
func (c *Cipher) inject(v *[maxWords]uint64, s int) {
	w := c.params.words
	n := w + 1
	for i := range w {
		v[i] += c.keys[(s+i)%n]
	}
	v[w-3] += c.tweak[s%3]
	v[w-2] += c.tweak[(s+1)%3]
	v[w-1] += uint64(s)
}

// eject subtracts subkey s from the state.
func (c *Cipher) eject(v *[maxWords]uint64, s int) {
	w := c.params.words
	n := w + 1
	for i := range w {
		v[i] -= c.keys[(s+i)%n]
	}
	v[w-3] -= c.tweak[s%3]
	v[w-2] -= c.tweak[(s+1)%3]
	v[w-1] -= uint64(s)
}

func (c *Cipher) encrypt(v *[maxWords]uint64) {
	p := &c.params
	w := p.words

	var f [maxWords]uint64
	defer blockcipher.WipeWords(f[:])

	for d := range p.rounds {
		if d%4 == 0 {
			c.inject(v, d/4)
		}

		rot := &p.rotations[d%8]
		for j := range w / 2 {
			f[2*j], f[2*j+1] = Mix(v[2*j], v[2*j+1], int(rot[j]))
		}
		for i := range w {
			v[i] = f[p.permutation[i]]
		}
	}
	c.inject(v, p.rounds/4)
}

func (c *Cipher) decrypt(v *[maxWords]uint64) {
	p := &c.params
	w := p.words

	var f [maxWords]uint64
	defer blockcipher.WipeWords(f[:])

	c.eject(v, p.rounds/4)
	for d := p.rounds - 1; d >= 0; d-- {
		for i := range w {
			f[p.permutation[i]] = v[i]
		}

		rot := &p.rotations[d%8]
		for j := range w / 2 {
			v[2*j], v[2*j+1] = Unmix(f[2*j], f[2*j+1], int(rot[j]))
		}

		if d%4 == 0 {
			c.eject(v, d/4)
		}
	}
}

func bytesToBlock(block []uint64, src []byte) {
	for i := range block {
		block[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
}

func blockToBytes(dst []byte, block []uint64) {
	for i, v := range block {
		binary.LittleEndian.PutUint64(dst[i*8:], v)
	}
}
