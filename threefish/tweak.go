package threefish

import (
	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
	"lukechampine.com/uint128"
)

// positionMask covers the 96-bit position field of a Skein tweak; the top
// 32 bits of t1 carry the block type and first/final flags.
var positionMask = uint128.New(^uint64(0), 0x00000000FFFFFFFF)

// AdvanceTweak adds ctr to the position field of a Skein-style tweak in place.
// The position wraps at 2^96 and the flag bits in the top 32 bits are kept.
func AdvanceTweak(tweak []byte, ctr uint64) error {
	if len(tweak) != TweakSize {
		return blockcipher.NewSizeError("tweak", len(tweak), blockcipher.Exact(TweakSize*8))
	}

	t := uint128.FromBytes(tweak)
	flags := t.Hi &^ positionMask.Hi
	pos := t.And(positionMask).AddWrap64(ctr).And(positionMask)
	pos.Hi |= flags
	pos.PutBytes(tweak)
	return nil
}

// TweakWords splits a tweak into its two little-endian words t0, t1.
func TweakWords(tweak []byte) (t0, t1 uint64, err error) {
	if len(tweak) != TweakSize {
		return 0, 0, blockcipher.NewSizeError("tweak", len(tweak), blockcipher.Exact(TweakSize*8))
	}
	t := uint128.FromBytes(tweak)
	return t.Lo, t.Hi, nil
}
