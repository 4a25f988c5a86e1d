// Package automatic plays computer-vs-computer games in bulk, for
// comparing players and search settings.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/reversi/ai/player"
	"github.com/domino14/reversi/config"
	"github.com/domino14/reversi/game"
)

// GameRunner plays one game at a time between two fixed players. It is
// not safe for concurrent use; the players keep search state.
type GameRunner struct {
	config    *config.Config
	aiplayers [2]game.Player
	logchan   chan string
}

// NewGameRunner builds both players from their specs; see player.FromSpec.
func NewGameRunner(logchan chan string, cfg *config.Config, spec1, spec2 string) (*GameRunner, error) {
	r := &GameRunner{config: cfg, logchan: logchan}
	for idx, spec := range []string{spec1, spec2} {
		p, err := player.FromSpec(spec, cfg)
		if err != nil {
			return nil, err
		}
		r.aiplayers[idx] = p
	}
	return r, nil
}

// GameResult is a finished game from the point of view of the first
// runner player, whichever seat it sat in.
type GameResult struct {
	GameID    string
	FirstSeat int
	Turns     int
	Winner    int // runner player index, or -1 for a tie
	Margin    int // runner player 0's piece margin
}

// PlayGame plays one full game. If swap is set, the runner's second player
// moves first.
func (r *GameRunner) PlayGame(ctx context.Context, swap bool) (GameResult, error) {
	p0, p1 := r.aiplayers[0], r.aiplayers[1]
	firstSeat := 0
	if swap {
		p0, p1 = p1, p0
		firstSeat = 1
	}
	g := game.NewGame(p0, p1)
	if err := g.PlayToEnd(ctx); err != nil {
		return GameResult{}, err
	}

	winner, margin := g.Result()
	if swap {
		margin = -margin
		if winner != -1 {
			winner = 1 - winner
		}
	}
	res := GameResult{
		GameID:    g.Uid(),
		FirstSeat: firstSeat,
		Turns:     g.Turn(),
		Winner:    winner,
		Margin:    margin,
	}
	log.Debug().Str("game", res.GameID).Int("winner", winner).Int("margin", margin).
		Int("turns", res.Turns).Msg("game-over")

	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v,%v\n",
			res.GameID,
			r.aiplayers[0].Name(),
			r.aiplayers[1].Name(),
			firstSeat,
			res.Turns,
			winner,
			margin)
	}
	return res, nil
}
