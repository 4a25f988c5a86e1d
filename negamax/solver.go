package negamax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/config"
)

const (
	// TerminalScale multiplies the final piece margin so that a decided game
	// outweighs any heuristic score at any depth.
	TerminalScale = float32(1.0e3)

	DefaultStartDepth = 2
	DefaultMaxDepth   = 20
)

var (
	ErrNoLegalMoves = errors.New("no legal moves")
)

// Move is a root search result. Score is from the mover's perspective.
type Move struct {
	Position int
	Score    float32
}

func (m Move) X() int { return board.X(m.Position) }
func (m Move) Y() int { return board.Y(m.Position) }

func (m Move) String() string {
	return fmt.Sprintf("%d,%d (%.3f)", m.X(), m.Y(), m.Score)
}

// Solver picks moves with a depth-limited negamax search. A Solver is not
// safe for concurrent use; give each goroutine its own.
type Solver struct {
	startDepth int
	maxDepth   int

	transpositionTableOptim bool
	ttable                  *TranspositionTable

	nodes              uint64
	principalVariation PVLine
}

// Init reads the search settings from cfg and sizes the transposition table.
func (s *Solver) Init(cfg *config.Config) error {
	s.startDepth = cfg.GetInt(config.ConfigSearchStartDepth)
	s.maxDepth = cfg.GetInt(config.ConfigSearchMaxDepth)
	if s.startDepth < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", config.ConfigSearchStartDepth, s.startDepth)
	}
	if s.maxDepth < s.startDepth {
		return fmt.Errorf("%s (%d) is below %s (%d)", config.ConfigSearchMaxDepth, s.maxDepth,
			config.ConfigSearchStartDepth, s.startDepth)
	}
	s.transpositionTableOptim = cfg.GetBool(config.ConfigTTableEnabled)
	if s.transpositionTableOptim {
		s.ttable = &TranspositionTable{}
		s.ttable.Reset(cfg.GetFloat64(config.ConfigTTableFractionOfMem))
	}
	return nil
}

func (s *Solver) SetTranspositionTableOptim(on bool) {
	s.transpositionTableOptim = on
	if on && s.ttable == nil {
		s.ttable = &TranspositionTable{}
		s.ttable.Reset(0)
	}
}

// depthLimits falls back to the defaults for a Solver that was never
// initialized.
func (s *Solver) depthLimits() (int, int) {
	startDepth, maxDepth := s.startDepth, s.maxDepth
	if startDepth == 0 {
		startDepth = DefaultStartDepth
	}
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	return startDepth, maxDepth
}

// Nodes is the number of positions visited by the last search call.
func (s *Solver) Nodes() uint64 {
	return s.nodes
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// HasMove reports whether the side to move has at least one capturing move.
func HasMove(b board.State) bool {
	cands := b.PlayableCells()
	for cands != 0 {
		if _, ok := b.Branch(bitboard.PopBit(&cands)); ok {
			return true
		}
	}
	return false
}

// GenMoves returns every capturing move in ascending cell order.
func GenMoves(b board.State) []int {
	var moves []int
	cands := b.PlayableCells()
	for cands != 0 {
		m := bitboard.PopBit(&cands)
		if _, ok := b.Branch(m); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// BestMove searches b to the given depth and returns the move with the
// strictly highest score; the lowest cell wins ties. It panics if depth is
// not positive or if the side to move has no legal move.
func (s *Solver) BestMove(b board.State, depth int) Move {
	if depth <= 0 {
		panic(fmt.Sprintf("negamax: search depth must be positive, got %d", depth))
	}
	cands := b.PlayableCells()
	if cands == 0 {
		panic("negamax: root search with no playable cells")
	}
	s.nodes = 0
	if s.transpositionTableOptim {
		s.ttable.newSearch()
	}

	best := Move{Score: -1.0e9}
	found := false
	pv := PVLine{}
	childPV := PVLine{}
	for cands != 0 {
		m := bitboard.PopBit(&cands)
		next, ok := b.Branch(m)
		if !ok {
			continue
		}
		childPV.Clear()
		score := s.enemyScore(next, depth-1, &childPV)
		if score > best.Score {
			best = Move{Position: m, Score: score}
			found = true
			pv.Update(m, childPV, score)
		}
	}
	if !found {
		panic("negamax: root search with no legal moves")
	}
	s.principalVariation = pv
	return best
}

// Solve deepens iteratively from the start depth, returning the result of
// the last completed depth once the deadline has passed, the maximum depth
// is reached, or ctx is done. A depth that has started always runs to
// completion, so Solve can overrun timeout by up to one iteration.
// Progress is logged through the logger attached to ctx.
func (s *Solver) Solve(ctx context.Context, b board.State, timeout time.Duration) (Move, error) {
	if !HasMove(b) {
		return Move{}, ErrNoLegalMoves
	}
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	deadline := start.Add(timeout)

	startDepth, maxDepth := s.depthLimits()
	var best Move
	for depth := startDepth; ; depth++ {
		logger.Debug().Int("depth", depth).Msg("deepening-iteratively")
		best = s.BestMove(b, depth)
		logger.Info().
			Int("depth", depth).
			Int("x", best.X()).
			Int("y", best.Y()).
			Float32("score", best.Score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", time.Since(start)).
			Str("pv", s.principalVariation.NLBString()).
			Msg("best-move")

		if depth >= maxDepth || time.Now().After(deadline) || ctx.Err() != nil {
			break
		}
	}
	if s.transpositionTableOptim {
		s.ttable.logStats()
	}
	return best, nil
}

// NewSolver is a convenience constructor for callers without a config file.
func NewSolver(cfg *config.Config) (*Solver, error) {
	s := &Solver{}
	if err := s.Init(cfg); err != nil {
		log.Error().Err(err).Msg("solver-init")
		return nil, err
	}
	return s, nil
}
