// Package bitboard holds the primitives over a 64-bit occupancy mask.
// Bit i set means cell i is occupied. The 8x8 layout is row-major, so a
// shift by 8 moves one row and a shift by 1 moves one column.
package bitboard

import "math/bits"

// Dilate8 returns every cell adjacent (diagonals included) to a set cell,
// plus the set cells themselves. No bounds masking is done here; callers
// intersect the result with the board mask.
func Dilate8(b uint64) uint64 {
	// up
	b |= b << 8
	// right
	b |= b >> 1
	// down
	b |= b >> 8
	// left
	b |= b << 1
	return b
}

func GetBit(b uint64, pos int) bool {
	return (b>>uint(pos))&1 == 1
}

// PopBit clears the lowest set bit of *b and returns its index.
// It panics if *b is empty.
func PopBit(b *uint64) int {
	if *b == 0 {
		panic("bitboard: pop from empty mask")
	}
	pos := bits.TrailingZeros64(*b)
	*b &= *b - 1
	return pos
}

func Population(b uint64) int {
	return bits.OnesCount64(b)
}
