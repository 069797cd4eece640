package mode

import (
	"crypto/subtle"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
)

// ofb feeds the keystream back into itself; encryption and decryption are the same operation.
type ofb struct {
	register
}

func newOFB(c blockcipher.BlockCipher, iv []byte) *ofb {
	return &ofb{register: newRegister(c, iv)}
}

func (o *ofb) Transform(dst, src []byte, _ bool) (int, error) {
	if err := o.check(dst, src); err != nil {
		return 0, err
	}

	bs := o.blockSize
	for off := 0; off < len(src); off += bs {
		if err := o.cipher.Encrypt(o.value, o.value); err != nil {
			return off, err
		}
		subtle.XORBytes(dst[off:off+bs], src[off:off+bs], o.value)
	}
	return len(src), nil
}
