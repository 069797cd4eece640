package mode

import (
	"crypto/subtle"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
)

// cfb is full-block cipher feedback: the register is always the previous ciphertext block.
type cfb struct {
	register
}

func newCFB(c blockcipher.BlockCipher, iv []byte) *cfb {
	return &cfb{register: newRegister(c, iv)}
}

func (c *cfb) Transform(dst, src []byte, encrypt bool) (int, error) {
	if err := c.check(dst, src); err != nil {
		return 0, err
	}

	bs := c.blockSize
	for off := 0; off < len(src); off += bs {
		in, out := src[off:off+bs], dst[off:off+bs]
		if err := c.cipher.Encrypt(c.scratch, c.value); err != nil {
			return off, err
		}
		if encrypt {
			subtle.XORBytes(out, in, c.scratch)
			copy(c.value, out)
		} else {
			copy(c.value, in)
			subtle.XORBytes(out, c.value, c.scratch)
		}
	}
	return len(src), nil
}
