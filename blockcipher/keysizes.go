package blockcipher

import "fmt"

// KeySizes is a legal size set expressed in bits, as a range with a step.
// A zero Skip means only Min and Max are legal.
type KeySizes struct {
	Min  int
	Max  int
	Skip int
}

// Exact returns a KeySizes containing only bits.
func Exact(bits int) KeySizes {
	return KeySizes{Min: bits, Max: bits}
}

func (k KeySizes) Contains(bits int) bool {
	if bits < k.Min || bits > k.Max {
		return false
	}
	if k.Skip == 0 {
		return bits == k.Min || bits == k.Max
	}
	return (bits-k.Min)%k.Skip == 0
}

// ContainsBytes is Contains for a length in bytes.
func (k KeySizes) ContainsBytes(n int) bool {
	return k.Contains(n * 8)
}

func (k KeySizes) String() string {
	switch {
	case k.Min == k.Max:
		return fmt.Sprintf("%d bits (%d bytes)", k.Min, k.Min/8)
	case k.Skip == 0:
		return fmt.Sprintf("%d or %d bits", k.Min, k.Max)
	default:
		return fmt.Sprintf("%d to %d bits in steps of %d", k.Min, k.Max, k.Skip)
	}
}
