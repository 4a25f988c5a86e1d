package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a reversi position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
// Positions are always seen from the side to move, so the two tables are
// for the mover's pieces and the opponent's pieces, not for colours.
type Zobrist struct {
	selfTable  [64]uint64
	enemyTable [64]uint64
}

func (z *Zobrist) Initialize() {
	for i := 0; i < 64; i++ {
		z.selfTable[i] = frand.Uint64n(bignum) + 1
		z.enemyTable[i] = frand.Uint64n(bignum) + 1
	}
}

func (z *Zobrist) Hash(s board.State) uint64 {
	key := uint64(0)
	self := s.Self()
	for self != 0 {
		key ^= z.selfTable[bitboard.PopBit(&self)]
	}
	enemy := s.Enemy()
	for enemy != 0 {
		key ^= z.enemyTable[bitboard.PopBit(&enemy)]
	}
	return key
}
