package automatic

// Data collection for automatic games.

import (
	"context"
	"errors"
	"expvar"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/reversi/config"
	"github.com/domino14/reversi/stats"
)

const logHeader = "gameID,player1,player2,firstseat,turns,winner,margin\n"

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// Summary aggregates a batch of games from the first player's side.
type Summary struct {
	Players [2]string
	Games   int
	Wins    [2]int
	Ties    int
	Margin  stats.Statistic
	Margins []int
}

// WinRate counts a tie as half a win.
func (s *Summary) WinRate(idx int) float64 {
	if s.Games == 0 {
		return 0
	}
	return (float64(s.Wins[idx]) + float64(s.Ties)/2) / float64(s.Games)
}

func summarize(spec1, spec2 string, results []GameResult) *Summary {
	s := &Summary{Players: [2]string{spec1, spec2}, Games: len(results)}
	s.Wins[0] = lo.CountBy(results, func(r GameResult) bool { return r.Winner == 0 })
	s.Wins[1] = lo.CountBy(results, func(r GameResult) bool { return r.Winner == 1 })
	s.Ties = lo.CountBy(results, func(r GameResult) bool { return r.Winner == -1 })
	s.Margins = lo.Map(results, func(r GameResult, _ int) int { return r.Margin })
	for _, m := range s.Margins {
		s.Margin.Push(float64(m))
	}
	return s
}

// PlayGames plays numGames between the two player specs, threads games at
// a time. The first mover alternates between games. Each worker owns its
// own players, so every search stays single-threaded. If outputFilename is
// not empty a CSV line is written per game.
func PlayGames(ctx context.Context, cfg *config.Config, spec1, spec2 string,
	numGames, threads int, outputFilename string) (*Summary, error) {

	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	if threads < 1 {
		threads = 1
	}
	threads = min(threads, max(numGames, 1))

	runners := make(chan *GameRunner, threads)
	var logChan chan string
	var logWG sync.WaitGroup
	if outputFilename != "" {
		logfile, err := os.Create(outputFilename)
		if err != nil {
			return nil, err
		}
		logChan = make(chan string, 100)
		logWG.Add(1)
		go func() {
			defer logWG.Done()
			defer logfile.Close()
			logfile.WriteString(logHeader)
			for msg := range logChan {
				logfile.WriteString(msg)
			}
			log.Debug().Msg("exiting-game-logger")
		}()
	}

	for i := 0; i < threads; i++ {
		r, err := NewGameRunner(logChan, cfg, spec1, spec2)
		if err != nil {
			if logChan != nil {
				close(logChan)
				logWG.Wait()
			}
			return nil, err
		}
		runners <- r
	}

	log.Info().Int("games", numGames).Int("threads", threads).
		Str("player1", spec1).Str("player2", spec2).Msg("starting-autoplay")
	CVCCounter.Set(0)
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	results := make([]GameResult, numGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := 0; i < numGames; i++ {
		i := i
		g.Go(func() error {
			r := <-runners
			defer func() { runners <- r }()
			res, err := r.PlayGame(gctx, i%2 == 1)
			if err != nil {
				return err
			}
			results[i] = res
			CVCCounter.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if logChan != nil {
		close(logChan)
		logWG.Wait()
	}
	if err != nil {
		return nil, err
	}

	summary := summarize(spec1, spec2, results)
	log.Info().Int("games", summary.Games).Int("wins1", summary.Wins[0]).
		Int("wins2", summary.Wins[1]).Int("ties", summary.Ties).
		Float64("mean-margin", summary.Margin.Mean()).Msg("autoplay-done")
	return summary, nil
}
