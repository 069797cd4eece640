// Package mode turns a single-block cipher into a multi-block transform.
//
// Every Transform owns one block-sized register that evolves once per
// processed block; a Transform is single-stream state and must not be shared
// between goroutines or streams.
package mode

import (
	"fmt"
	"strings"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"github.com/dolthub/swiss"
)

type BlockMode int

const (
	ECB BlockMode = iota + 1
	CBC
	CFB
	OFB
	CTR
)

// Transform processes whole blocks under one mode of operation.
type Transform interface {
	BlockSize() int

	// Transform processes src, a positive multiple of BlockSize bytes, into dst
	// and returns the number of bytes written. Dst must be at least as long as
	// src; dst and src must overlap entirely or not at all.
	Transform(dst, src []byte, encrypt bool) (int, error)

	// Dispose zeroes the register. The underlying cipher is not disposed.
	Dispose()
}

func (m BlockMode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	case CFB:
		return "CFB"
	case OFB:
		return "OFB"
	case CTR:
		return "CTR"
	default:
		return fmt.Sprintf("BlockMode(%d)", int(m))
	}
}

func (m BlockMode) Valid() bool {
	return m >= ECB && m <= CTR
}

// RequiresIV is false only for ECB.
func (m BlockMode) RequiresIV() bool {
	return m != ECB
}

func (m BlockMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: block mode %d", blockcipher.ErrUnsupported, int(m))
	}
	return []byte(m.String()), nil
}

func (m *BlockMode) UnmarshalText(text []byte) (err error) {
	*m, err = Parse(string(text))
	return err
}

var names = func() *swiss.Map[string, BlockMode] {
	m := swiss.NewMap[string, BlockMode](8)
	for _, b := range []BlockMode{ECB, CBC, CFB, OFB, CTR} {
		m.Put(b.String(), b)
	}
	return m
}()

// Parse looks up a BlockMode by name, ignoring case.
func Parse(name string) (BlockMode, error) {
	if m, ok := names.Get(strings.ToUpper(strings.TrimSpace(name))); ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: block mode %q", blockcipher.ErrUnsupported, name)
}

// New returns a Transform for m over c. The iv seeds the register and must be
// exactly one block long; ECB ignores it.
func New(m BlockMode, c blockcipher.BlockCipher, iv []byte) (Transform, error) {
	bs := c.BlockSize()
	if m.Valid() && m.RequiresIV() && len(iv) != bs {
		return nil, blockcipher.NewSizeError("IV", len(iv), blockcipher.Exact(bs*8))
	}

	switch m {
	case ECB:
		return newECB(c), nil
	case CBC:
		return newCBC(c, iv), nil
	case CFB:
		return newCFB(c, iv), nil
	case OFB:
		return newOFB(c, iv), nil
	case CTR:
		return newCTR(c, iv), nil
	default:
		return nil, fmt.Errorf("%w: block mode %d", blockcipher.ErrUnsupported, int(m))
	}
}

// register is the chaining state shared by every mode.
type register struct {
	cipher    blockcipher.BlockCipher
	blockSize int
	value     []byte
	scratch   []byte
	disposed  bool
}

func newRegister(c blockcipher.BlockCipher, iv []byte) register {
	bs := c.BlockSize()
	r := register{
		cipher:    c,
		blockSize: bs,
		value:     make([]byte, bs),
		scratch:   make([]byte, bs),
	}
	copy(r.value, iv)
	return r
}

func (r *register) BlockSize() int { return r.blockSize }

func (r *register) Dispose() {
	blockcipher.Wipe(r.value)
	blockcipher.Wipe(r.scratch)
	r.disposed = true
}

func (r *register) check(dst, src []byte) error {
	if r.disposed {
		return blockcipher.ErrDisposed
	}
	if len(src) == 0 || len(src)%r.blockSize != 0 {
		return blockcipher.NewMultipleSizeError("mode input", len(src), r.blockSize)
	}
	if len(dst) < len(src) {
		return blockcipher.ErrShortBuffer
	}
	return nil
}
