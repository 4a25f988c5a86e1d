package negamax

import (
	"fmt"
	"strings"

	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
)

// thanks Wikipedia:
/*
function negamax(node, depth, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node
    value := −∞
    for each child of node do
        value := max(value, −negamax(child, depth − 1, −color))
    return value
**/
// There is no alpha-beta window here; every child is searched, so the value
// at each node is exact for its depth.

// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []int
	score float32
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(move int, newPVLine PVLine, score float32) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, move)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

func (pvLine PVLine) Score() float32 {
	return pvLine.score
}

// NLBString prints the line without line breaks. The line can be cut
// short where a transposition table hit ended the recursion.
func (pvLine PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %.3f;", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, " %d: %d,%d;", i+1, board.X(m), board.Y(m))
	}
	return sb.String()
}

// myScore is the value of b for the side to move, searched depth plies.
func (s *Solver) myScore(b board.State, depth int, pv *PVLine) float32 {
	s.nodes++
	if depth == 0 {
		return b.Score()
	}
	var zval uint64
	if s.transpositionTableOptim {
		zval = s.ttable.hash(b)
		if score, ok := s.ttable.lookup(zval, b, depth); ok {
			return score
		}
	}

	var best float32
	found := false
	childPV := PVLine{}
	cands := b.PlayableCells()
	for cands != 0 {
		m := bitboard.PopBit(&cands)
		next, ok := b.Branch(m)
		if !ok {
			continue
		}
		childPV.Clear()
		score := s.enemyScore(next, depth-1, &childPV)
		if !found || score > best {
			best = score
			found = true
			pv.Update(m, childPV, score)
		}
	}
	if !found {
		// The side to move is stuck, which ends the game. There is no pass.
		best = float32(b.PieceDelta()) * TerminalScale
	}

	if s.transpositionTableOptim {
		s.ttable.store(zval, b, depth, best)
	}
	return best
}

// enemyScore is the value of b for the side that just moved: the
// opponent's value with the sign flipped.
func (s *Solver) enemyScore(b board.State, depth int, pv *PVLine) float32 {
	b.SwapPlayers()
	return -s.myScore(b, depth, pv)
}
