package negamax

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigTTableFractionOfMem, 0.0)
	return cfg
}

func setUpSolver(t *testing.T, ttable bool) *Solver {
	cfg := testConfig()
	cfg.Set(config.ConfigTTableEnabled, ttable)
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// referenceValue is a plain minimax over explicit move lists, written
// without the solver's helpers, for cross-checking.
func referenceValue(b board.State, depth int) float32 {
	if depth == 0 {
		return b.Score()
	}
	moves := GenMoves(b)
	if len(moves) == 0 {
		return float32(b.PieceDelta()) * TerminalScale
	}
	var best float32
	for i, m := range moves {
		next, _ := b.Branch(m)
		v := -referenceValue(next.Swapped(), depth-1)
		if i == 0 || v > best {
			best = v
		}
	}
	return best
}

func referenceBestMove(b board.State, depth int) Move {
	var best Move
	for i, m := range GenMoves(b) {
		next, _ := b.Branch(m)
		v := -referenceValue(next.Swapped(), depth-1)
		if i == 0 || v > best.Score {
			best = Move{Position: m, Score: v}
		}
	}
	return best
}

// positions reachable from the opening by always playing the n-th legal move.
func samplePositions() []board.State {
	positions := []board.State{board.New()}
	for _, pick := range []int{0, 1, 2, 3} {
		b := board.New()
		for ply := 0; ply < 8; ply++ {
			moves := GenMoves(b)
			if len(moves) == 0 {
				break
			}
			next, _ := b.Branch(moves[(pick+ply)%len(moves)])
			b = next.Swapped()
		}
		if HasMove(b) {
			positions = append(positions, b)
		}
	}
	return positions
}

func TestHasMove(t *testing.T) {
	is := is.New(t)
	is.True(HasMove(board.New()))
	is.True(HasMove(board.LongRow.MustLoad()))
	// candidates exist, but none of them captures.
	is.True(board.StrandedSelf.MustLoad().PlayableCells() != 0)
	is.True(!HasMove(board.StrandedSelf.MustLoad()))
	is.True(!HasMove(board.EdgeWrap.MustLoad()))
}

func TestGenMoves(t *testing.T) {
	is := is.New(t)
	is.Equal(GenMoves(board.New()), []int{20, 29, 34, 43})
	is.Equal(GenMoves(board.Star.MustLoad()), []int{board.Index(2, 2)})
	is.Equal(len(GenMoves(board.StrandedSelf.MustLoad())), 0)
}

// Depth 2 from the opening, enumerated by hand: each of our four moves
// against each of the opponent's replies.
func TestOpeningBruteForce(t *testing.T) {
	is := is.New(t)
	b := board.New()

	expected := Move{Score: -1.0e9}
	for _, m := range GenMoves(b) {
		next, ok := b.Branch(m)
		is.True(ok)
		opp := next.Swapped()
		var bestReply float32
		for i, r := range GenMoves(opp) {
			after, ok := opp.Branch(r)
			is.True(ok)
			v := -after.Swapped().Score()
			if i == 0 || v > bestReply {
				bestReply = v
			}
		}
		if -bestReply > expected.Score {
			expected = Move{Position: m, Score: -bestReply}
		}
	}

	s := setUpSolver(t, false)
	is.Equal(s.BestMove(b, 2), expected)
	is.Equal(expected, Move{Position: 20, Score: 0})
}

func TestOpeningDepthOne(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, false)
	m := s.BestMove(board.New(), 1)
	// all four openings are symmetric, so the lowest cell wins the tie.
	is.Equal(m.Position, board.Index(3, 1))
	is.Equal(m.Score, float32(3))
}

func TestAgainstReference(t *testing.T) {
	is := is.New(t)
	for _, tt := range []bool{false, true} {
		s := setUpSolver(t, tt)
		for _, b := range samplePositions() {
			for depth := 1; depth <= 4; depth++ {
				got := s.BestMove(b, depth)
				is.Equal(got, referenceBestMove(b, depth))
				is.True(bitboard.GetBit(b.PlayableCells(), got.Position))
			}
		}
	}
}

func TestTranspositionTableDoesNotChangeResults(t *testing.T) {
	is := is.New(t)
	with := setUpSolver(t, true)
	without := setUpSolver(t, false)
	for _, b := range samplePositions() {
		is.Equal(with.BestMove(b, 5), without.BestMove(b, 5))
		is.True(with.Nodes() <= without.Nodes())
	}
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, true)
	b := samplePositions()[2]
	first := s.BestMove(b, 4)
	for i := 0; i < 3; i++ {
		is.Equal(s.BestMove(b, 4), first)
	}
}

func TestTerminalScoring(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, false)

	full, ok := board.NearlyFull.MustLoad().Branch(board.Index(5, 3))
	is.True(ok)
	is.Equal(full.PlayableCells(), uint64(0))
	pv := PVLine{}
	is.Equal(s.myScore(full, 3, &pv), float32(32)*TerminalScale)
	// at depth 0 the heuristic is used even on a finished board.
	is.Equal(s.myScore(full, 0, &pv), float32(32))

	stuck := board.StrandedSelf.MustLoad()
	is.Equal(s.myScore(stuck, 1, &pv), float32(-1)*TerminalScale)
	is.Equal(s.myScore(stuck, 4, &pv), float32(-1)*TerminalScale)
}

func TestWinningMoves(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, true)

	m := s.BestMove(board.NearlyFull.MustLoad(), 2)
	is.Equal(m, Move{Position: board.Index(5, 3), Score: 32000})

	// after the capture the opponent has no pieces, so no moves.
	m = s.BestMove(board.LongRow.MustLoad(), 3)
	is.Equal(m, Move{Position: board.Index(0, 0), Score: 6000})

	m = s.BestMove(board.GappedRow.MustLoad(), 3)
	is.Equal(m, Move{Position: board.Index(2, 0), Score: -5000})
}

func TestBestMovePreconditions(t *testing.T) {
	s := setUpSolver(t, false)
	assert.Panics(t, func() { s.BestMove(board.New(), 0) })
	assert.Panics(t, func() { s.BestMove(board.StrandedSelf.MustLoad(), 2) })
	full, _ := board.NearlyFull.MustLoad().Branch(board.Index(5, 3))
	assert.Panics(t, func() { s.BestMove(full, 2) })
}

func TestPrincipalVariation(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, false)
	m := s.BestMove(board.New(), 3)
	pv := s.PrincipalVariation()
	is.Equal(len(pv.Moves), 3)
	is.Equal(pv.Moves[0], m.Position)
	is.Equal(pv.Score(), m.Score)
	is.True(strings.HasPrefix(pv.NLBString(), "PV; val"))
}

func TestSolveNoMoves(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, false)
	_, err := s.Solve(context.Background(), board.StrandedSelf.MustLoad(), time.Second)
	is.Equal(err, ErrNoLegalMoves)
}

func TestSolveZeroTimeoutRunsFirstDepth(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, true)
	b := samplePositions()[1]
	m, err := s.Solve(context.Background(), b, 0)
	is.NoErr(err)
	is.Equal(m, referenceBestMove(b, DefaultStartDepth))
}

func TestSolveStopsAtMaxDepth(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.Set(config.ConfigSearchMaxDepth, 4)
	s, err := NewSolver(cfg)
	is.NoErr(err)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	b := board.New()
	m, err := s.Solve(ctx, b, time.Hour)
	is.NoErr(err)
	is.Equal(m, referenceBestMove(b, 4))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(len(lines), 3) // depths 2, 3 and 4
	is.True(strings.Contains(lines[0], `"depth":2`))
	is.True(strings.Contains(lines[2], `"depth":4`))
	is.True(strings.Contains(lines[2], `"message":"best-move"`))
}

func TestSolveCancelledContext(t *testing.T) {
	is := is.New(t)
	s := setUpSolver(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := board.New()
	m, err := s.Solve(ctx, b, time.Hour)
	is.NoErr(err)
	is.Equal(m, referenceBestMove(b, DefaultStartDepth))
}

func TestZeroValueSolver(t *testing.T) {
	is := is.New(t)
	s := &Solver{}
	b := board.New()
	m, err := s.Solve(context.Background(), b, 0)
	is.NoErr(err)
	is.Equal(m, referenceBestMove(b, DefaultStartDepth))
}

func TestInitRejectsBadDepths(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.Set(config.ConfigSearchStartDepth, 0)
	_, err := NewSolver(cfg)
	is.True(err != nil)

	cfg = testConfig()
	cfg.Set(config.ConfigSearchStartDepth, 5)
	cfg.Set(config.ConfigSearchMaxDepth, 3)
	_, err = NewSolver(cfg)
	is.True(err != nil)
}
