package padding

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
)

var allPaddings = []Padding{None, Zeros, PKCS7, ANSIX923, ISO10126}

func TestPKCS7RoundTrip(t *testing.T) {
	s, _ := New(PKCS7)
	data := make([]byte, 600)
	_, _ = rand.Read(data)

	for blockSize := 1; blockSize <= 255; blockSize++ {
		for _, n := range []int{0, 1, blockSize - 1, blockSize, blockSize + 1, 2*blockSize + 3} {
			x := data[:n]
			padded, err := s.Pad(x, blockSize)
			if err != nil {
				t.Fatalf("Pad(%d bytes, %d) = %v", n, blockSize, err)
			}
			if len(padded)%blockSize != 0 || len(padded) <= n || len(padded) > n+blockSize {
				t.Fatalf("Pad(%d bytes, %d) returned %d bytes", n, blockSize, len(padded))
			}
			out, err := s.Unpad(padded, blockSize)
			if err != nil {
				t.Fatalf("Unpad(Pad(%d bytes, %d)) = %v", n, blockSize, err)
			}
			if !bytes.Equal(out, x) {
				t.Fatalf("Unpad(Pad(x, %d)) = %x, want %x", blockSize, out, x)
			}
		}
	}
}

func TestPKCS7Layout(t *testing.T) {
	s, _ := New(PKCS7)
	padded, _ := s.Pad([]byte{0xaa, 0xbb, 0xcc}, 8)
	if want := []byte{0xaa, 0xbb, 0xcc, 5, 5, 5, 5, 5}; !bytes.Equal(padded, want) {
		t.Errorf("Pad() = %x, want %x", padded, want)
	}

	aligned, _ := s.Pad(make([]byte, 8), 8)
	if len(aligned) != 16 || aligned[15] != 8 {
		t.Errorf("Pad(aligned) = %x, want a full block of 0x08", aligned)
	}
}

func TestPKCS7Invalid(t *testing.T) {
	s, _ := New(PKCS7)
	tests := []struct {
		name string
		data []byte
	}{
		{"zero count", []byte{1, 2, 3, 4, 5, 6, 7, 0}},
		{"count above block size", []byte{9, 9, 9, 9, 9, 9, 9, 9}},
		{"non-uniform filler", []byte{1, 2, 3, 4, 3, 3, 2, 3}},
		{"empty", nil},
		{"unaligned", []byte{1, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Unpad(tt.data, 8); !errors.Is(err, blockcipher.ErrInvalidPadding) {
				t.Errorf("Unpad(%x) = %v, want ErrInvalidPadding", tt.data, err)
			}
		})
	}
}

func TestNone(t *testing.T) {
	s, _ := New(None)
	if _, err := s.Pad(make([]byte, 31), 32); !errors.Is(err, blockcipher.ErrSize) {
		t.Errorf("Pad(31 bytes, 32) = %v, want ErrSize", err)
	}

	data := make([]byte, 64)
	_, _ = rand.Read(data)
	padded, err := s.Pad(data, 32)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(padded, data) {
		t.Errorf("Pad() = %x, want identity", padded)
	}
	if out, err := s.Unpad(padded, 32); err != nil || !bytes.Equal(out, data) {
		t.Errorf("Unpad() = %x, %v", out, err)
	}

	if padded, err = s.Pad(nil, 32); err != nil || len(padded) != 0 {
		t.Errorf("Pad(empty) = %x, %v", padded, err)
	}
}

func TestZeros(t *testing.T) {
	s, _ := New(Zeros)
	padded, _ := s.Pad([]byte{1, 2, 3}, 4)
	if want := []byte{1, 2, 3, 0}; !bytes.Equal(padded, want) {
		t.Errorf("Pad() = %x, want %x", padded, want)
	}
	aligned, _ := s.Pad([]byte{1, 2, 3, 4}, 4)
	if len(aligned) != 4 {
		t.Errorf("Pad(aligned) added %d bytes", len(aligned)-4)
	}
	out, _ := s.Unpad(padded, 4)
	if !bytes.Equal(out, padded) {
		t.Errorf("Unpad() = %x, want no-op", out)
	}
}

func TestANSIX923(t *testing.T) {
	s, _ := New(ANSIX923)
	padded, _ := s.Pad([]byte{0xff}, 4)
	if want := []byte{0xff, 0, 0, 3}; !bytes.Equal(padded, want) {
		t.Errorf("Pad() = %x, want %x", padded, want)
	}
	if out, err := s.Unpad(padded, 4); err != nil || !bytes.Equal(out, []byte{0xff}) {
		t.Errorf("Unpad() = %x, %v", out, err)
	}
	if _, err := s.Unpad([]byte{0xff, 1, 0, 3}, 4); !errors.Is(err, blockcipher.ErrInvalidPadding) {
		t.Errorf("Unpad(non-zero filler) = %v, want ErrInvalidPadding", err)
	}
	if _, err := s.Unpad([]byte{0, 0, 0, 5}, 4); !errors.Is(err, blockcipher.ErrInvalidPadding) {
		t.Errorf("Unpad(count 5) = %v, want ErrInvalidPadding", err)
	}
}

func TestISO10126(t *testing.T) {
	s, _ := New(ISO10126)
	data := []byte("threefish")
	padded, _ := s.Pad(data, 32)
	if len(padded) != 32 || padded[31] != 23 {
		t.Fatalf("Pad() = %x", padded)
	}
	// only the count byte is structural
	padded[20] ^= 0xff
	if out, err := s.Unpad(padded, 32); err != nil || !bytes.Equal(out, data) {
		t.Errorf("Unpad() = %q, %v", out, err)
	}
	padded[31] = 0
	if _, err := s.Unpad(padded, 32); !errors.Is(err, blockcipher.ErrInvalidPadding) {
		t.Errorf("Unpad(count 0) = %v, want ErrInvalidPadding", err)
	}
}

func TestPadDoesNotModifyInput(t *testing.T) {
	backing := []byte{1, 2, 3, 0xee, 0xee, 0xee, 0xee, 0xee}
	data := backing[:3]
	for _, p := range allPaddings[1:] {
		s, _ := New(p)
		_, _ = s.Pad(data, 8)
		if !bytes.Equal(backing, []byte{1, 2, 3, 0xee, 0xee, 0xee, 0xee, 0xee}) {
			t.Fatalf("%s Pad() wrote past its input: %x", p, backing)
		}
	}
}

func TestBlockSizeLimits(t *testing.T) {
	for _, p := range allPaddings {
		s, _ := New(p)
		for _, bs := range []int{0, -1, 256} {
			if _, err := s.Pad(nil, bs); !errors.Is(err, blockcipher.ErrSize) {
				t.Errorf("%s Pad(block size %d) = %v, want ErrSize", p, bs, err)
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := map[string]Padding{
		"pkcs7":     PKCS7,
		"PKCS7":     PKCS7,
		" none ":    None,
		"Zeros":     Zeros,
		"ANSI_X923": ANSIX923,
		"ansix923":  ANSIX923,
		"ISO_10126": ISO10126,
		"iso10126":  ISO10126,
	}
	for name, want := range tests {
		if got, err := Parse(name); err != nil || got != want {
			t.Errorf("Parse(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	if _, err := Parse("PKCS5"); !errors.Is(err, blockcipher.ErrUnsupported) {
		t.Errorf("Parse(PKCS5) = %v, want ErrUnsupported", err)
	}
	if _, err := New(Padding(0)); !errors.Is(err, blockcipher.ErrUnsupported) {
		t.Errorf("New(0) = %v, want ErrUnsupported", err)
	}

	for _, p := range allPaddings {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Padding
		if err = back.UnmarshalText(text); err != nil || back != p {
			t.Errorf("UnmarshalText(%s) = %v, %v", text, back, err)
		}
	}
}

func FuzzPadRoundTrip(f *testing.F) {
	f.Add([]byte("hello"), uint8(32))
	f.Add([]byte{}, uint8(1))
	f.Fuzz(func(t *testing.T, data []byte, blockSize uint8) {
		if blockSize == 0 {
			t.SkipNow()
		}
		for _, p := range []Padding{PKCS7, ANSIX923, ISO10126} {
			s, _ := New(p)
			padded, err := s.Pad(data, int(blockSize))
			if err != nil {
				t.Fatal(err)
			}
			out, err := s.Unpad(padded, int(blockSize))
			if err != nil {
				t.Fatal(fmt.Errorf("%s: %w", p, err))
			}
			if !bytes.Equal(out, data) {
				t.Fatalf("%s Unpad(Pad(%x)) = %x", p, data, out)
			}
		}
	})
}
