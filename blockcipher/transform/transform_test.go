package transform_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/mode"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/padding"
	"git.gammaspectra.live/P2Pool/threefish/blockcipher/transform"
	"git.gammaspectra.live/P2Pool/threefish/threefish"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
)

type material struct {
	key, tweak, iv []byte
}

func newMaterial(t testing.TB, blockSize int) material {
	t.Helper()
	m := material{
		key:   make([]byte, blockSize),
		tweak: make([]byte, threefish.TweakSize),
		iv:    make([]byte, blockSize),
	}
	for _, b := range [][]byte{m.key, m.tweak, m.iv} {
		if _, err := rand.Read(b); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func (m material) open(t testing.TB, bm mode.BlockMode, p padding.Padding, d transform.Direction) *transform.CipherTransform {
	t.Helper()
	c, err := threefish.NewCipher(m.key, m.tweak)
	if err != nil {
		t.Fatal(err)
	}
	mt, err := mode.New(bm, c, m.iv)
	if err != nil {
		t.Fatal(err)
	}
	ps, err := padding.New(p)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := transform.New(c, mt, ps, d)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

// run feeds src in chunks of the given sizes, cycling through them.
func run(t testing.TB, tr *transform.CipherTransform, src []byte, chunks ...int) ([]byte, error) {
	t.Helper()
	var out []byte
	var err error
	for i := 0; len(src) > 0; i++ {
		n := min(chunks[i%len(chunks)], len(src))
		if out, err = tr.Update(out, src[:n]); err != nil {
			return nil, err
		}
		src = src[n:]
	}
	return tr.Final(out)
}

// nolint:funlen
func TestCipherTransform(t *testing.T) {
	spec.Run(t, "CipherTransform", func(t *testing.T, when spec.G, it spec.S) {
		const bs = threefish.BlockSize256
		var m material

		it.Before(func() {
			m = newMaterial(t, bs)
		})

		when("encrypting", func() {
			it("buffers input shorter than a block", func() {
				tr := m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt)
				out, err := tr.Update(nil, make([]byte, bs-1))
				if err != nil {
					t.Fatal(err)
				}
				if len(out) != 0 || tr.Buffered() != bs-1 {
					t.Errorf("Update(%d bytes) emitted %d, buffered %d", bs-1, len(out), tr.Buffered())
				}
				out, err = tr.Update(out, make([]byte, 2))
				if err != nil {
					t.Fatal(err)
				}
				if len(out) != bs || tr.Buffered() != 1 {
					t.Errorf("Update() emitted %d, buffered %d", len(out), tr.Buffered())
				}
			})

			it("adds a full padding block to aligned input", func() {
				tr := m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt)
				out, err := run(t, tr, make([]byte, bs*2), bs)
				if err != nil {
					t.Fatal(err)
				}
				if len(out) != bs*3 {
					t.Errorf("ciphertext length %d, want %d", len(out), bs*3)
				}
			})

			it("appends to dst", func() {
				tr := m.open(t, mode.CTR, padding.None, transform.Encrypt)
				prefix := []byte("header")
				out, err := tr.Update(bytes.Clone(prefix), make([]byte, bs))
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.HasPrefix(out, prefix) || len(out) != len(prefix)+bs {
					t.Errorf("Update() = %x", out)
				}
			})

			it("rejects unaligned input without padding", func() {
				tr := m.open(t, mode.ECB, padding.None, transform.Encrypt)
				if _, err := run(t, tr, make([]byte, bs+3), 7); !errors.Is(err, blockcipher.ErrSize) {
					t.Errorf("Final() = %v, want ErrSize", err)
				}
			})

			it("yields nothing for empty input without padding", func() {
				for _, p := range []padding.Padding{padding.None, padding.Zeros} {
					tr := m.open(t, mode.CBC, p, transform.Encrypt)
					out, err := tr.Final(nil)
					if err != nil || len(out) != 0 {
						t.Errorf("%s: Final() = %x, %v", p, out, err)
					}
				}
			})
		})

		when("decrypting", func() {
			it("holds back the last full block until Final", func() {
				tr := m.open(t, mode.CBC, padding.PKCS7, transform.Decrypt)
				out, err := tr.Update(nil, make([]byte, bs*2))
				if err != nil {
					t.Fatal(err)
				}
				if len(out) != bs || tr.Buffered() != bs {
					t.Errorf("Update() emitted %d, buffered %d", len(out), tr.Buffered())
				}
			})

			it("rejects truncated ciphertext", func() {
				enc := m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt)
				ciphertext, err := run(t, enc, []byte("attack at dawn"), 64)
				if err != nil {
					t.Fatal(err)
				}
				dec := m.open(t, mode.CBC, padding.PKCS7, transform.Decrypt)
				if _, err = run(t, dec, ciphertext[:len(ciphertext)-1], 5); !errors.Is(err, blockcipher.ErrSize) {
					t.Errorf("Final() = %v, want ErrSize", err)
				}
			})

			it("rejects a wrong key at unpad", func() {
				enc := m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt)
				ciphertext, err := run(t, enc, []byte("attack at dawn"), 64)
				if err != nil {
					t.Fatal(err)
				}
				m.key[0] ^= 0xff
				dec := m.open(t, mode.CBC, padding.PKCS7, transform.Decrypt)
				// a random last byte is valid PKCS7 with probability about 1/256
				if out, err := run(t, dec, ciphertext, 64); err == nil && bytes.Equal(out, []byte("attack at dawn")) {
					t.Errorf("wrong key recovered the plaintext")
				}
			})

			it("rejects an empty stream with PKCS7", func() {
				tr := m.open(t, mode.CBC, padding.PKCS7, transform.Decrypt)
				if _, err := tr.Final(nil); !errors.Is(err, blockcipher.ErrInvalidPadding) {
					t.Errorf("Final() = %v, want ErrInvalidPadding", err)
				}
			})
		})

		when("finalized", func() {
			it("refuses further use", func() {
				tr := m.open(t, mode.OFB, padding.PKCS7, transform.Encrypt)
				if _, err := tr.Final(nil); err != nil {
					t.Fatal(err)
				}
				if _, err := tr.Update(nil, []byte{1}); !errors.Is(err, blockcipher.ErrFinalized) {
					t.Errorf("Update() = %v, want ErrFinalized", err)
				}
				if _, err := tr.Final(nil); !errors.Is(err, blockcipher.ErrFinalized) {
					t.Errorf("Final() = %v, want ErrFinalized", err)
				}
			})

			it("stays finalized after a padding failure", func() {
				tr := m.open(t, mode.ECB, padding.None, transform.Encrypt)
				if _, err := tr.Update(nil, []byte{1, 2, 3}); err != nil {
					t.Fatal(err)
				}
				if _, err := tr.Final(nil); err == nil {
					t.Fatal("Final() succeeded on unaligned input")
				}
				if tr.Buffered() != 0 {
					t.Errorf("Buffered() = %d after Final", tr.Buffered())
				}
				if _, err := tr.Final(nil); !errors.Is(err, blockcipher.ErrFinalized) {
					t.Errorf("Final() = %v, want ErrFinalized", err)
				}
			})
		})

		when("disposed", func() {
			it("refuses further use", func() {
				tr := m.open(t, mode.CFB, padding.ANSIX923, transform.Encrypt)
				if _, err := tr.Update(nil, []byte("secret")); err != nil {
					t.Fatal(err)
				}
				tr.Dispose()
				tr.Dispose()
				if tr.Buffered() != 0 {
					t.Errorf("Buffered() = %d after Dispose", tr.Buffered())
				}
				if _, err := tr.Update(nil, []byte{1}); !errors.Is(err, blockcipher.ErrDisposed) {
					t.Errorf("Update() = %v, want ErrDisposed", err)
				}
			})
		})

		it("rejects an unknown direction", func() {
			c, err := threefish.NewCipher(m.key, m.tweak)
			if err != nil {
				t.Fatal(err)
			}
			mt, _ := mode.New(mode.ECB, c, nil)
			ps, _ := padding.New(padding.None)
			if _, err = transform.New(c, mt, ps, transform.Direction(9)); !errors.Is(err, blockcipher.ErrUnsupported) {
				t.Errorf("New() = %v, want ErrUnsupported", err)
			}
		})
	}, spec.Report(report.Terminal{}), spec.Parallel(), spec.Random())
}

func TestRoundTrip(t *testing.T) {
	modes := []mode.BlockMode{mode.ECB, mode.CBC, mode.CFB, mode.OFB, mode.CTR}
	paddings := []padding.Padding{padding.PKCS7, padding.ANSIX923, padding.ISO10126}

	for _, bs := range []int{threefish.BlockSize256, threefish.BlockSize512, threefish.BlockSize1024} {
		m := newMaterial(t, bs)
		for _, bm := range modes {
			for _, p := range paddings {
				for _, size := range []int{0, 1, bs - 1, bs, bs + 1, 5*bs + 3} {
					plaintext := make([]byte, size)
					_, _ = rand.Read(plaintext)

					ciphertext, err := run(t, m.open(t, bm, p, transform.Encrypt), plaintext, 3, bs, 1)
					if err != nil {
						t.Fatalf("%d/%s/%s: encrypt %d bytes: %v", bs*8, bm, p, size, err)
					}
					if len(ciphertext)%bs != 0 || len(ciphertext) <= size {
						t.Fatalf("%d/%s/%s: ciphertext length %d for %d bytes", bs*8, bm, p, len(ciphertext), size)
					}
					out, err := run(t, m.open(t, bm, p, transform.Decrypt), ciphertext, 7, 2*bs)
					if err != nil {
						t.Fatalf("%d/%s/%s: decrypt %d bytes: %v", bs*8, bm, p, size, err)
					}
					if !bytes.Equal(out, plaintext) {
						t.Errorf("%d/%s/%s: round trip of %d bytes = %x, want %x", bs*8, bm, p, size, out, plaintext)
					}
				}
			}
		}
	}
}

func FuzzChunking(f *testing.F) {
	f.Add([]byte("the quick brown fox jumps over the lazy dog"), uint8(3), uint8(17))
	f.Add(make([]byte, 64), uint8(32), uint8(1))
	f.Fuzz(func(t *testing.T, plaintext []byte, a, b uint8) {
		m := material{key: make([]byte, 32), tweak: make([]byte, 16), iv: make([]byte, 32)}
		m.iv[0] = 1

		whole, err := run(t, m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt), plaintext, max(len(plaintext), 1))
		if err != nil {
			t.Fatal(err)
		}
		chunked, err := run(t, m.open(t, mode.CBC, padding.PKCS7, transform.Encrypt), plaintext, int(a)+1, int(b)+1)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(whole, chunked) {
			t.Fatalf("chunked ciphertext %x, want %x", chunked, whole)
		}

		out, err := run(t, m.open(t, mode.CBC, padding.PKCS7, transform.Decrypt), chunked, int(b)+1, int(a)+1)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, plaintext) {
			t.Fatalf("round trip = %x, want %x", out, plaintext)
		}
	})
}
