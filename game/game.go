// Package game runs a reversi game between two players: it alternates
// turns, validates moves, and decides when the game is over and who won.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/negamax"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
	ErrNoPlayer    = errors.New("no player assigned to this seat")
)

// Player chooses moves for one seat. The board is always seen from the
// player's own perspective.
type Player interface {
	Name() string
	ChooseMove(ctx context.Context, b board.State) (int, error)
}

// Turn records one committed move.
type Turn struct {
	Player   int
	Position int
	Flipped  int
}

// Game is the internal game structure. The board is kept from the
// perspective of the player on turn, so after every move it is swapped.
// A seat may have a nil Player if moves for it are fed in with PlayMove.
type Game struct {
	uid     string
	board   board.State
	onturn  int
	players [2]Player
	history []Turn
}

func NewGame(p0, p1 Player) *Game {
	return &Game{
		uid:     uuid.NewString(),
		board:   board.New(),
		players: [2]Player{p0, p1},
	}
}

func (g *Game) Uid() string {
	return g.uid
}

// Board is the current position from the perspective of the player on turn.
func (g *Game) Board() board.State {
	return g.board
}

// BoardFor is the current position from the perspective of player.
func (g *Game) BoardFor(player int) board.State {
	if player == g.onturn {
		return g.board
	}
	return g.board.Swapped()
}

func (g *Game) PlayerOnTurn() int {
	return g.onturn
}

func (g *Game) Player(idx int) Player {
	return g.players[idx]
}

// Turn is the number of moves played so far.
func (g *Game) Turn() int {
	return len(g.history)
}

func (g *Game) History() []Turn {
	return g.history
}

// Playing reports whether the player on turn can move. A player with no
// capturing move ends the game; there is no pass.
func (g *Game) Playing() bool {
	return negamax.HasMove(g.board)
}

// PlayMove commits a move for the player on turn.
func (g *Game) PlayMove(pos int) error {
	if !g.Playing() {
		return ErrGameOver
	}
	if pos < 0 || pos > 63 || !bitboard.GetBit(g.board.PlayableCells(), pos) {
		return fmt.Errorf("%w: %s is not next to an opponent piece", ErrIllegalMove, FormatCoords(pos))
	}
	next, ok := g.board.Branch(pos)
	if !ok {
		return fmt.Errorf("%w: %s captures nothing", ErrIllegalMove, FormatCoords(pos))
	}
	flipped := bitboard.Population(g.board.Enemy() &^ next.Enemy())
	g.history = append(g.history, Turn{Player: g.onturn, Position: pos, Flipped: flipped})
	log.Debug().Str("game", g.uid).Int("player", g.onturn).Str("move", FormatCoords(pos)).
		Int("flipped", flipped).Msg("played-move")

	g.board = next.Swapped()
	g.onturn = 1 - g.onturn
	return nil
}

// PlayTurn asks the player on turn for a move and commits it.
func (g *Game) PlayTurn(ctx context.Context) error {
	if !g.Playing() {
		return ErrGameOver
	}
	p := g.players[g.onturn]
	if p == nil {
		return ErrNoPlayer
	}
	pos, err := p.ChooseMove(ctx, g.board)
	if err != nil {
		return err
	}
	return g.PlayMove(pos)
}

// PlayToEnd plays turns until the game is over or ctx is done.
func (g *Game) PlayToEnd(ctx context.Context) error {
	for g.Playing() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.PlayTurn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Result returns player 0's piece margin and the winner, -1 for a tie.
// It is meaningful once Playing is false.
func (g *Game) Result() (winner int, margin int) {
	margin = g.BoardFor(0).PieceDelta()
	switch {
	case margin > 0:
		winner = 0
	case margin < 0:
		winner = 1
	default:
		winner = -1
	}
	return winner, margin
}

// ToDisplayText renders the board with glyphs[i] for player i's pieces.
func (g *Game) ToDisplayText(glyphs [2]string) string {
	return g.BoardFor(0).ToDisplayText(glyphs[0], glyphs[1])
}
