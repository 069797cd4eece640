package mode

import (
	"crypto/subtle"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
)

// cbc chains each ciphertext block into the next plaintext block.
type cbc struct {
	register
}

func newCBC(c blockcipher.BlockCipher, iv []byte) *cbc {
	return &cbc{register: newRegister(c, iv)}
}

func (c *cbc) Transform(dst, src []byte, encrypt bool) (int, error) {
	if err := c.check(dst, src); err != nil {
		return 0, err
	}

	bs := c.blockSize
	for off := 0; off < len(src); off += bs {
		in, out := src[off:off+bs], dst[off:off+bs]
		if encrypt {
			subtle.XORBytes(c.scratch, in, c.value)
			if err := c.cipher.Encrypt(out, c.scratch); err != nil {
				return off, err
			}
			copy(c.value, out)
		} else {
			// keep the ciphertext, out may alias in
			copy(c.scratch, in)
			if err := c.cipher.Decrypt(out, in); err != nil {
				return off, err
			}
			subtle.XORBytes(out, out, c.value)
			copy(c.value, c.scratch)
		}
	}
	return len(src), nil
}
