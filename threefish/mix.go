package threefish

import "math/bits"

// Mix is the Threefish MIX function: a += b; b = rotl(b, rotation) ^ a.
func Mix(a, b uint64, rotation int) (uint64, uint64) {
	a += b
	b = bits.RotateLeft64(b, rotation) ^ a
	return a, b
}

// Unmix inverts Mix for the same rotation.
func Unmix(a, b uint64, rotation int) (uint64, uint64) {
	b = bits.RotateLeft64(b^a, -rotation)
	a -= b
	return a, b
}
