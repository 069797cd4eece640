package mode

import (
	"crypto/subtle"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"lukechampine.com/uint128"
)

// ctr encrypts a counter block per input block. The low 16 bytes of the
// register are a little-endian 128-bit counter that wraps; any remaining
// bytes stay fixed.
type ctr struct {
	register
}

func newCTR(c blockcipher.BlockCipher, iv []byte) *ctr {
	return &ctr{register: newRegister(c, iv)}
}

func (c *ctr) Transform(dst, src []byte, _ bool) (int, error) {
	if err := c.check(dst, src); err != nil {
		return 0, err
	}

	bs := c.blockSize
	blocks := len(src) / bs
	err := forChunks(blocks, func(first, count int) error {
		counter := make([]byte, bs)
		keystream := make([]byte, bs)
		defer blockcipher.Wipe(counter)
		defer blockcipher.Wipe(keystream)

		copy(counter, c.value)
		addCounter(counter, uint64(first))
		for i := first; i < first+count; i++ {
			off := i * bs
			if err := c.cipher.Encrypt(keystream, counter); err != nil {
				return err
			}
			subtle.XORBytes(dst[off:off+bs], src[off:off+bs], keystream)
			addCounter(counter, 1)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	addCounter(c.value, uint64(blocks))
	return len(src), nil
}

// addCounter adds n to the counter held in block.
func addCounter(block []byte, n uint64) {
	if len(block) >= 16 {
		uint128.FromBytes(block).AddWrap64(n).PutBytes(block)
		return
	}

	// short blocks: little-endian carry across the whole block
	carry := n
	for i := 0; i < len(block) && carry != 0; i++ {
		s := uint64(block[i]) + carry&0xff
		block[i] = byte(s)
		carry = carry>>8 + s>>8
	}
}
