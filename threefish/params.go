package threefish

const (
	// TweakSize The size of the tweak in bytes.
	TweakSize = 16
	// C240 is the key schedule constant
	C240 = 0x1bd11bdaa9fc1a22

	// BlockSize256 The block size of Threefish-256 in bytes.
	BlockSize256 = 32
	// BlockSize512 The block size of Threefish-512 in bytes.
	BlockSize512 = 64
	// BlockSize1024 The block size of Threefish-1024 in bytes.
	BlockSize1024 = 128

	maxWords = BlockSize1024 / 8
)

// Params fixes one Threefish variant: word count, round count and the round
// function tables published with Skein v1.3.
// Params values are copied by value and never mutated.
type Params struct {
	words  int
	rounds int

	// rotations[d%8][j] is the rotation of MIX j in round d
	rotations [8][maxWords / 2]uint8
	// permutation[i] is the word moved into position i after every round
	permutation [maxWords]uint8
}

var Params256 = Params{
	words:  4,
	rounds: 72,
	rotations: [8][maxWords / 2]uint8{
		{14, 16},
		{52, 57},
		{23, 40},
		{5, 37},
		{25, 33},
		{46, 12},
		{58, 22},
		{32, 32},
	},
	permutation: [maxWords]uint8{0, 3, 2, 1},
}

var Params512 = Params{
	words:  8,
	rounds: 72,
	rotations: [8][maxWords / 2]uint8{
		{46, 36, 19, 37},
		{33, 27, 14, 42},
		{17, 49, 36, 39},
		{44, 9, 54, 56},
		{39, 30, 34, 24},
		{13, 50, 10, 17},
		{25, 29, 39, 43},
		{8, 35, 56, 22},
	},
	permutation: [maxWords]uint8{2, 1, 4, 7, 6, 5, 0, 3},
}

var Params1024 = Params{
	words:  16,
	rounds: 80,
	rotations: [8][maxWords / 2]uint8{
		{24, 13, 8, 47, 8, 17, 22, 37},
		{38, 19, 10, 55, 49, 18, 23, 52},
		{33, 4, 51, 13, 34, 41, 59, 17},
		{5, 20, 48, 41, 47, 28, 16, 25},
		{41, 9, 37, 31, 12, 47, 44, 30},
		{16, 34, 56, 51, 4, 53, 42, 41},
		{31, 44, 47, 46, 19, 42, 44, 25},
		{9, 48, 35, 52, 23, 31, 37, 20},
	},
	permutation: [maxWords]uint8{0, 9, 2, 13, 6, 11, 4, 15, 10, 7, 12, 3, 14, 5, 8, 1},
}

// ParamsForSize returns the variant whose state size is bits (256, 512 or 1024).
func ParamsForSize(bits int) (Params, bool) {
	switch bits {
	case 256:
		return Params256, true
	case 512:
		return Params512, true
	case 1024:
		return Params1024, true
	default:
		return Params{}, false
	}
}

// Words is the number of 64-bit words in a block and in a key.
func (p Params) Words() int { return p.words }

func (p Params) Rounds() int { return p.rounds }

// BlockSize is the block and key size in bytes.
func (p Params) BlockSize() int { return p.words * 8 }

// StateSize is the block and key size in bits.
func (p Params) StateSize() int { return p.words * 64 }
