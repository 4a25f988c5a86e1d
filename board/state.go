// Package board implements the 6x6 reversi position as a pair of occupancy
// masks. The playable interior is embedded in an 8x8 bit layout with a
// one-cell empty ring on every side, so ray scans never need bounds checks.
package board

import (
	"errors"
	"fmt"

	"github.com/domino14/reversi/bitboard"
)

const (
	// Dim is the width and height of the playable board.
	Dim = 6
	// NumCells is the number of playable cells.
	NumCells = Dim * Dim
)

const (
	BoardMask  uint64 = 0x007E7E7E7E7E7E00
	EdgeMask   uint64 = 0x007E424242427E00
	CornerMask uint64 = 0x0042000000004200
)

var (
	ErrOverlap    = errors.New("a cell is claimed by both sides")
	ErrOutOfBoard = errors.New("a piece lies outside the playable board")
)

// State is a position seen from the side to move: self holds the mover's
// pieces and enemy the opponent's. States are values; every derivation
// returns a new one.
type State struct {
	self  uint64
	enemy uint64
}

// New returns the standard opening: each side holds two of the four
// central cells on a diagonal.
func New() State {
	return State{
		self:  0x0000001008000000,
		enemy: 0x0000000810000000,
	}
}

// FromMasks builds a state from raw masks, checking both invariants.
func FromMasks(self, enemy uint64) (State, error) {
	s := State{self: self, enemy: enemy}
	if err := s.Valid(); err != nil {
		return State{}, err
	}
	return s, nil
}

func (s State) Self() uint64  { return s.self }
func (s State) Enemy() uint64 { return s.enemy }

func (s State) Valid() error {
	if s.self&s.enemy != 0 {
		return ErrOverlap
	}
	if (s.self|s.enemy)&^BoardMask != 0 {
		return ErrOutOfBoard
	}
	return nil
}

// Index maps logical coordinates to a bit index. It panics if either
// coordinate is outside [0, Dim).
func Index(x, y int) int {
	if x < 0 || x >= Dim || y < 0 || y >= Dim {
		panic(fmt.Sprintf("board: coordinates out of range: %d,%d", x, y))
	}
	return (x + 1) + (y+1)*8
}

func X(idx int) int { return idx%8 - 1 }
func Y(idx int) int { return idx/8 - 1 }

// PlayableCells returns every empty interior cell adjacent to an enemy
// piece. These are candidates only; Branch decides whether one captures.
func (s State) PlayableCells() uint64 {
	return bitboard.Dilate8(s.enemy) & BoardMask &^ (s.self | s.enemy)
}

// Branch plays move for the side to move and flips every captured enemy
// piece. ok is false when the placement captures nothing, in which case
// the returned state must not be used. Branch panics if move is occupied.
func (s State) Branch(move int) (next State, ok bool) {
	bit := uint64(1) << uint(move)
	if (s.self|s.enemy)&bit != 0 {
		panic(fmt.Sprintf("board: move %d is on an occupied cell", move))
	}

	next = s
	next.self |= bit

	flipped := false
	for _, r := range rays {
		if next.flip(r, move) {
			flipped = true
		}
	}
	if !flipped {
		return State{}, false
	}
	return next, true
}

// flip captures along one ray from move. The cells strictly between move
// and the nearest own piece on the ray are flipped if all of them belong
// to the enemy and there is at least one.
func (s *State) flip(r ray, move int) bool {
	var line, own uint64
	if r.towardMSB {
		line = r.template << uint(move)
		own = line & s.self
		own |= own << r.shift
		own |= own << (2 * r.shift)
		own |= own << (4 * r.shift)
	} else {
		line = r.template >> uint(64-move)
		own = line & s.self
		own |= own >> r.shift
		own |= own >> (2 * r.shift)
		own |= own >> (4 * r.shift)
	}
	captured := line &^ own
	if captured == 0 || captured&^s.enemy != 0 {
		return false
	}
	s.self ^= captured
	s.enemy ^= captured
	return true
}

// Score is the static evaluation from the mover's perspective. Edge and
// corner pieces earn a bonus that shrinks to nothing as the board fills.
func (s State) Score() float32 {
	selfPop := bitboard.Population(s.self)
	enemyPop := bitboard.Population(s.enemy)
	emptyRatio := float32(NumCells-selfPop-enemyPop) / float32(NumCells)

	score := float32(selfPop)
	score -= float32(enemyPop)

	score += float32(bitboard.Population(s.self&EdgeMask)*2) * emptyRatio
	score -= float32(bitboard.Population(s.enemy&EdgeMask)*2) * emptyRatio

	score += float32(bitboard.Population(s.self&CornerMask)*4) * emptyRatio
	score -= float32(bitboard.Population(s.enemy&CornerMask)*4) * emptyRatio

	return score
}

// PieceDelta is the exact material margin for the side to move.
func (s State) PieceDelta() int {
	return bitboard.Population(s.self) - bitboard.Population(s.enemy)
}

func (s *State) SwapPlayers() {
	s.self, s.enemy = s.enemy, s.self
}

// Swapped returns the same position seen from the other side.
func (s State) Swapped() State {
	s.SwapPlayers()
	return s
}

func (s State) Empty() int {
	return NumCells - bitboard.Population(s.self|s.enemy)
}

func (s State) Full() bool {
	return s.self|s.enemy == BoardMask
}
