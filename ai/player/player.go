// Package player has the computer players that can sit at a game.
package player

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lukechampine.com/frand"

	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/config"
	"github.com/domino14/reversi/game"
	"github.com/domino14/reversi/negamax"
)

const (
	TimedPlayerName  = "timed"
	DepthPlayerName  = "depth"
	RandomPlayerName = "random"
)

var ErrUnknownPlayer = errors.New("unknown player")

// TimedPlayer searches with iterative deepening under a time budget.
type TimedPlayer struct {
	solver  *negamax.Solver
	timeout time.Duration
}

func NewTimedPlayer(cfg *config.Config, timeout time.Duration) (*TimedPlayer, error) {
	s, err := negamax.NewSolver(cfg)
	if err != nil {
		return nil, err
	}
	return &TimedPlayer{solver: s, timeout: timeout}, nil
}

func (p *TimedPlayer) Name() string {
	return TimedPlayerName + ":" + p.timeout.String()
}

func (p *TimedPlayer) ChooseMove(ctx context.Context, b board.State) (int, error) {
	m, err := p.solver.Solve(ctx, b, p.timeout)
	if err != nil {
		return 0, err
	}
	return m.Position, nil
}

// FixedDepthPlayer always searches to the same depth.
type FixedDepthPlayer struct {
	solver *negamax.Solver
	depth  int
}

func NewFixedDepthPlayer(cfg *config.Config, depth int) (*FixedDepthPlayer, error) {
	if depth < 1 {
		return nil, fmt.Errorf("search depth must be at least 1, got %d", depth)
	}
	s, err := negamax.NewSolver(cfg)
	if err != nil {
		return nil, err
	}
	return &FixedDepthPlayer{solver: s, depth: depth}, nil
}

func (p *FixedDepthPlayer) Name() string {
	return DepthPlayerName + ":" + strconv.Itoa(p.depth)
}

func (p *FixedDepthPlayer) ChooseMove(ctx context.Context, b board.State) (int, error) {
	if !negamax.HasMove(b) {
		return 0, negamax.ErrNoLegalMoves
	}
	return p.solver.BestMove(b, p.depth).Position, nil
}

// RandomPlayer picks uniformly among the legal moves.
type RandomPlayer struct{}

func (RandomPlayer) Name() string {
	return RandomPlayerName
}

func (RandomPlayer) ChooseMove(ctx context.Context, b board.State) (int, error) {
	moves := negamax.GenMoves(b)
	if len(moves) == 0 {
		return 0, negamax.ErrNoLegalMoves
	}
	return moves[frand.Intn(len(moves))], nil
}

// FromSpec builds a player from a short description: "timed" or
// "timed:<duration>", "depth:<n>", or "random". A bare "timed" uses the
// configured search timeout; a number without a unit is read as seconds.
func FromSpec(spec string, cfg *config.Config) (game.Player, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(spec), ":")
	switch kind {
	case TimedPlayerName:
		timeout := cfg.GetDuration(config.ConfigSearchTimeout)
		if hasArg {
			var err error
			timeout, err = parseTimeout(arg)
			if err != nil {
				return nil, err
			}
		}
		return NewTimedPlayer(cfg, timeout)
	case DepthPlayerName:
		depth, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("bad depth in %q: %w", spec, err)
		}
		return NewFixedDepthPlayer(cfg, depth)
	case RandomPlayerName:
		return RandomPlayer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, spec)
}

func parseTimeout(arg string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(arg, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(arg)
}
