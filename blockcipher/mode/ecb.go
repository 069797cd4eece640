package mode

import (
	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/utils"
)

const (
	// inputs of at least parallelBlocks blocks are split across goroutines
	parallelBlocks = 1024
	chunkBlocks    = 128
)

// forChunks calls fn over consecutive runs of blocks. Runs are independent and
// may execute concurrently, so fn must only touch its own blocks.
func forChunks(blocks int, fn func(first, count int) error) error {
	if blocks < parallelBlocks {
		return fn(0, blocks)
	}
	chunks := (blocks + chunkBlocks - 1) / chunkBlocks
	return utils.SplitWork(0, uint64(chunks), func(workIndex uint64, _ int) error {
		first := int(workIndex) * chunkBlocks
		return fn(first, min(chunkBlocks, blocks-first))
	}, nil)
}

// ecb encrypts every block independently.
type ecb struct {
	register
}

func newECB(c blockcipher.BlockCipher) *ecb {
	return &ecb{register: newRegister(c, nil)}
}

func (e *ecb) Transform(dst, src []byte, encrypt bool) (int, error) {
	if err := e.check(dst, src); err != nil {
		return 0, err
	}

	crypt := e.cipher.Decrypt
	if encrypt {
		crypt = e.cipher.Encrypt
	}

	bs := e.blockSize
	err := forChunks(len(src)/bs, func(first, count int) error {
		for i := first; i < first+count; i++ {
			off := i * bs
			if err := crypt(dst[off:off+bs], src[off:off+bs]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(src), nil
}
