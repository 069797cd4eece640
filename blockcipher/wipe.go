package blockcipher

import (
	"crypto/rand"
	"runtime"
)

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// WipeWords overwrites w with zeros.
func WipeWords(w []uint64) {
	clear(w)
	runtime.KeepAlive(w)
}

// RandomNonZero fills b with cryptographically random bytes, none of them zero.
func RandomNonZero(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return err
	}
	var one [1]byte
	for i := range b {
		for b[i] == 0 {
			if _, err := rand.Read(one[:]); err != nil {
				return err
			}
			b[i] = one[0]
		}
	}
	Wipe(one[:])
	return nil
}
