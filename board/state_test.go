package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/reversi/bitboard"
)

func legalMoves(s State) []int {
	var moves []int
	cands := s.PlayableCells()
	for cands != 0 {
		m := bitboard.PopBit(&cands)
		if _, ok := s.Branch(m); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

func TestCoordinates(t *testing.T) {
	is := is.New(t)
	is.Equal(Index(0, 0), 9)
	is.Equal(Index(5, 0), 14)
	is.Equal(Index(0, 5), 49)
	is.Equal(Index(5, 5), 54)
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			idx := Index(x, y)
			is.True(bitboard.GetBit(BoardMask, idx))
			is.Equal(X(idx), x)
			is.Equal(Y(idx), y)
		}
	}
}

func TestIndexOutOfRange(t *testing.T) {
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {6, 0}, {0, 6}} {
		assert.Panics(t, func() { Index(c[0], c[1]) })
	}
}

func TestMasks(t *testing.T) {
	is := is.New(t)
	is.Equal(bitboard.Population(BoardMask), NumCells)
	is.Equal(bitboard.Population(EdgeMask), 20)
	is.Equal(bitboard.Population(CornerMask), 4)
	is.Equal(EdgeMask&^BoardMask, uint64(0))
	is.Equal(CornerMask&^EdgeMask, uint64(0))
	for _, c := range [][2]int{{0, 0}, {5, 0}, {0, 5}, {5, 5}} {
		is.True(bitboard.GetBit(CornerMask, Index(c[0], c[1])))
	}
}

func TestOpening(t *testing.T) {
	is := is.New(t)
	s := New()
	is.NoErr(s.Valid())
	is.Equal(bitboard.Population(s.Self()), 2)
	is.Equal(bitboard.Population(s.Enemy()), 2)
	is.Equal(s.Score(), float32(0))
	is.Equal(s.PieceDelta(), 0)
	is.Equal(s.Empty(), 32)

	// ten empty cells touch an enemy piece; four of them capture.
	is.Equal(bitboard.Population(s.PlayableCells()), 10)
	moves := legalMoves(s)
	is.Equal(moves, []int{Index(3, 1), Index(4, 2), Index(1, 3), Index(2, 4)})

	for _, m := range moves {
		is.True(bitboard.GetBit(s.PlayableCells(), m))
		next, ok := s.Branch(m)
		is.True(ok)
		is.NoErr(next.Valid())
		is.Equal(bitboard.Population(next.Self()), 4)
		is.Equal(bitboard.Population(next.Enemy()), 1)
		flipped := s.Enemy() &^ next.Enemy()
		is.Equal(bitboard.Population(flipped), 1)
		is.Equal(next.Self(), s.Self()|flipped|uint64(1)<<uint(m))
	}
}

func TestBranchIsPure(t *testing.T) {
	is := is.New(t)
	s := Star.MustLoad()
	before := s
	a, okA := s.Branch(Index(2, 2))
	b, okB := s.Branch(Index(2, 2))
	is.True(okA && okB)
	is.Equal(a, b)
	is.Equal(s, before)
}

func TestBranchOccupied(t *testing.T) {
	s := New()
	assert.Panics(t, func() { s.Branch(Index(2, 2)) })
	assert.Panics(t, func() { s.Branch(Index(3, 2)) })
}

func TestBranchNoCapture(t *testing.T) {
	is := is.New(t)
	s := StrandedSelf.MustLoad()
	is.True(s.PlayableCells() != 0)
	is.Equal(legalMoves(s), []int(nil))

	_, ok := GappedRow.MustLoad().Branch(Index(0, 0))
	is.True(!ok)
}

func TestBranchDoesNotWrapRows(t *testing.T) {
	is := is.New(t)
	s := EdgeWrap.MustLoad()
	_, ok := s.Branch(Index(4, 0))
	is.True(!ok)
	is.Equal(legalMoves(s), []int(nil))
}

func TestBranchLongRow(t *testing.T) {
	is := is.New(t)
	s := LongRow.MustLoad()
	next, ok := s.Branch(Index(0, 0))
	is.True(ok)
	is.Equal(next.Enemy(), uint64(0))
	is.Equal(bitboard.Population(next.Self()), 6)
	is.Equal(next.PieceDelta(), 6)
}

func TestBranchAllDirections(t *testing.T) {
	is := is.New(t)
	s := Star.MustLoad()
	is.Equal(legalMoves(s), []int{Index(2, 2)})
	next, ok := s.Branch(Index(2, 2))
	is.True(ok)
	is.Equal(next.Enemy(), uint64(0))
	is.Equal(bitboard.Population(next.Self()), 17)
}

func TestBranchFillsBoard(t *testing.T) {
	is := is.New(t)
	s := NearlyFull.MustLoad()
	is.Equal(s.PlayableCells(), uint64(1)<<uint(Index(5, 3)))
	next, ok := s.Branch(Index(5, 3))
	is.True(ok)
	is.True(next.Full())
	is.Equal(next.PlayableCells(), uint64(0))
	is.Equal(next.PieceDelta(), 32)
	// no empty cells left, so the positional bonus is gone.
	is.Equal(next.Score(), float32(32))
}

func TestScore(t *testing.T) {
	// a lone corner piece against a lone interior piece.
	s, err := FromMasks(uint64(1)<<uint(Index(0, 0)), uint64(1)<<uint(Index(2, 2)))
	assert.NoError(t, err)
	assert.InDelta(t, 6.0*34.0/36.0, s.Score(), 1e-5)
	assert.InDelta(t, -6.0*34.0/36.0, s.Swapped().Score(), 1e-5)

	s, err = FromMasks(uint64(1)<<uint(Index(2, 0)), uint64(1)<<uint(Index(2, 2)))
	assert.NoError(t, err)
	assert.InDelta(t, 2.0*34.0/36.0, s.Score(), 1e-5)
}

func TestSwapPlayers(t *testing.T) {
	is := is.New(t)
	s := Star.MustLoad()
	orig := s
	s.SwapPlayers()
	is.Equal(s.Self(), orig.Enemy())
	is.Equal(s.Enemy(), orig.Self())
	s.SwapPlayers()
	is.Equal(s, orig)
	is.Equal(orig.Swapped().Swapped(), orig)
}

func TestFromMasks(t *testing.T) {
	is := is.New(t)
	_, err := FromMasks(1<<27, 1<<27)
	is.Equal(err, ErrOverlap)
	_, err = FromMasks(1, 0)
	is.Equal(err, ErrOutOfBoard)
	s, err := FromMasks(New().Self(), New().Enemy())
	is.NoErr(err)
	is.Equal(s, New())
}

// Every position reachable in a few plies keeps both invariants.
func TestReachableInvariants(t *testing.T) {
	is := is.New(t)
	var walk func(s State, plies int) int
	walk = func(s State, plies int) int {
		is.NoErr(s.Valid())
		is.True(bitboard.Population(s.Self())+bitboard.Population(s.Enemy()) <= NumCells)
		if plies == 0 {
			return 1
		}
		n := 1
		for _, m := range legalMoves(s) {
			next, ok := s.Branch(m)
			is.True(ok)
			is.True(next.PieceDelta() > s.PieceDelta()+1)
			n += walk(next.Swapped(), plies-1)
		}
		return n
	}
	is.True(walk(New(), 5) > 100)
}

func TestDisplayRoundTrip(t *testing.T) {
	is := is.New(t)
	s := Star.MustLoad()
	text := s.ToDisplayText("X", "O")
	is.Equal(text, `  0 1 2 3 4 5
0 X . X . X .
1 . O O O . .
2 X O . O X .
3 . O O O . .
4 X . X . X .
5 . . . . . .
`)
	// strip the header and the row labels.
	var rows string
	for i, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if i == 0 {
			continue
		}
		rows += line[1:] + "\n"
	}
	back, err := FromPlaintext(rows, 'X', 'O')
	is.NoErr(err)
	is.Equal(back, s)
}

func TestFromPlaintextErrors(t *testing.T) {
	_, err := FromPlaintext(". . .", 'X', 'O')
	assert.Error(t, err)
	_, err = FromPlaintext(string(Star)+"\n. . . . . .", 'X', 'O')
	assert.Error(t, err)
	_, err = FromPlaintext("Z . . . . .\n. . . . . .\n. . . . . .\n. . . . . .\n. . . . . .\n. . . . . .", 'X', 'O')
	assert.Error(t, err)
}
