// Package transform streams arbitrary-length input through a block mode,
// buffering partial blocks and applying padding once at the end.
package transform

import (
	"fmt"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/mode"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/padding"
	"git.gammaspectra.live/P2Pool/threefish/utils"
)

type Direction int

const (
	Encrypt Direction = iota + 1
	Decrypt
)

func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

type state uint8

const (
	stateReady state = iota
	stateTransforming
	stateFinalized
	stateDisposed
)

// CipherTransform is one encrypt or decrypt stream. It is not safe for
// concurrent use and cannot be reused once Final has been called.
type CipherTransform struct {
	cipher    blockcipher.BlockCipher
	mode      mode.Transform
	padding   padding.Strategy
	direction Direction
	blockSize int

	// residual holds input not yet run through the mode. Encrypting it is
	// shorter than a block; decrypting it may also hold the last full block,
	// which is only known to carry the padding once Final is called.
	residual []byte
	total    int

	state state
}

// New binds c, m and p into a stream. The transform owns c and m from here
// on: Dispose releases both.
func New(c blockcipher.BlockCipher, m mode.Transform, p padding.Strategy, d Direction) (*CipherTransform, error) {
	if d != Encrypt && d != Decrypt {
		return nil, fmt.Errorf("%w: %s", blockcipher.ErrUnsupported, d)
	}
	if m.BlockSize() != c.BlockSize() {
		return nil, &blockcipher.SizeError{What: "mode block", Got: m.BlockSize(), Want: fmt.Sprintf("%d bytes", c.BlockSize())}
	}

	bs := c.BlockSize()
	return &CipherTransform{
		cipher:    c,
		mode:      m,
		padding:   p,
		direction: d,
		blockSize: bs,
		residual:  make([]byte, 0, bs),
	}, nil
}

func (t *CipherTransform) BlockSize() int { return t.blockSize }

func (t *CipherTransform) Direction() Direction { return t.direction }

// Buffered returns the number of input bytes held back for a later call.
func (t *CipherTransform) Buffered() int { return len(t.residual) }

func (t *CipherTransform) usable() error {
	switch t.state {
	case stateFinalized:
		return blockcipher.ErrFinalized
	case stateDisposed:
		return blockcipher.ErrDisposed
	default:
		return nil
	}
}

func (t *CipherTransform) run(dst, src []byte) error {
	_, err := t.mode.Transform(dst, src, t.direction == Encrypt)
	return err
}

// Update processes src and appends every complete output block to dst,
// returning the extended slice. Dst must not overlap src.
func (t *CipherTransform) Update(dst, src []byte) ([]byte, error) {
	if err := t.usable(); err != nil {
		return dst, err
	}
	t.state = stateTransforming

	bs := t.blockSize
	total := len(t.residual) + len(src)
	n := total - total%bs
	if t.direction == Decrypt && n == total {
		n -= bs
	}
	if n <= 0 {
		t.residual = append(t.residual, src...)
		t.total += len(src)
		return dst, nil
	}

	out, buf := sliceForAppend(dst, n)
	written, consumed := 0, 0
	if len(t.residual) > 0 {
		consumed = bs - len(t.residual)
		t.residual = append(t.residual, src[:consumed]...)
		if err := t.run(buf[:bs], t.residual); err != nil {
			return dst, err
		}
		t.residual = t.residual[:0]
		written = bs
	}
	if rest := n - written; rest > 0 {
		if err := t.run(buf[written:n], src[consumed:consumed+rest]); err != nil {
			return dst, err
		}
		consumed += rest
	}

	t.residual = append(t.residual, src[consumed:]...)
	t.total += len(src)
	return out, nil
}

// Final pads or unpads whatever is buffered, appends the last output to dst
// and finalizes the stream. The mode state and residual input are wiped
// whether or not Final succeeds.
func (t *CipherTransform) Final(dst []byte) ([]byte, error) {
	if err := t.usable(); err != nil {
		return dst, err
	}
	defer t.finish()

	if t.direction == Encrypt {
		return t.finalEncrypt(dst)
	}
	return t.finalDecrypt(dst)
}

func (t *CipherTransform) finalEncrypt(dst []byte) ([]byte, error) {
	padded, err := t.padding.Pad(t.residual, t.blockSize)
	if err != nil {
		return dst, err
	}
	defer blockcipher.Wipe(padded)
	if len(padded) == 0 {
		return dst, nil
	}

	out, buf := sliceForAppend(dst, len(padded))
	if err = t.run(buf, padded); err != nil {
		return dst, err
	}
	return out, nil
}

func (t *CipherTransform) finalDecrypt(dst []byte) ([]byte, error) {
	if len(t.residual) == 0 {
		// empty stream, only paddings that allow no output succeed
		if _, err := t.padding.Unpad(nil, t.blockSize); err != nil {
			return dst, err
		}
		return dst, nil
	}
	if len(t.residual) != t.blockSize {
		return dst, blockcipher.NewMultipleSizeError("ciphertext", t.total, t.blockSize)
	}

	plain := make([]byte, t.blockSize)
	defer blockcipher.Wipe(plain)
	if err := t.run(plain, t.residual); err != nil {
		return dst, err
	}
	unpadded, err := t.padding.Unpad(plain, t.blockSize)
	if err != nil {
		return dst, err
	}
	return append(dst, unpadded...), nil
}

func (t *CipherTransform) finish() {
	utils.Debugf("transform", "%s stream finalized after %d input bytes", t.direction, t.total)
	blockcipher.Wipe(t.residual[:cap(t.residual)])
	t.residual = t.residual[:0]
	t.mode.Dispose()
	t.state = stateFinalized
}

// Dispose wipes all buffered state and disposes the mode and cipher. It is
// safe to call more than once.
func (t *CipherTransform) Dispose() {
	if t.state == stateDisposed {
		return
	}
	blockcipher.Wipe(t.residual[:cap(t.residual)])
	t.residual = t.residual[:0]
	t.mode.Dispose()
	t.cipher.Dispose()
	t.state = stateDisposed
}

// sliceForAppend extends in by n bytes, reallocating if needed, and returns
// the whole slice and the new tail.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
