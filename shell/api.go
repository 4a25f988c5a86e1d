package shell

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/reversi/ai/player"
	"github.com/domino14/reversi/automatic"
	"github.com/domino14/reversi/bitboard"
	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/config"
	"github.com/domino14/reversi/game"
	"github.com/domino14/reversi/negamax"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

// settable maps the keys `set` accepts to how their values are parsed.
var settable = map[string]func(string) (any, error){
	config.ConfigDebug: func(s string) (any, error) { return strconv.ParseBool(s) },
	config.ConfigSearchTimeout: func(s string) (any, error) {
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(s)
	},
	config.ConfigSearchStartDepth:    func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigSearchMaxDepth:      func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigTTableEnabled:       func(s string) (any, error) { return strconv.ParseBool(s) },
	config.ConfigTTableFractionOfMem: func(s string) (any, error) { return strconv.ParseFloat(s, 64) },
	config.ConfigAutoplayThreads:     func(s string) (any, error) { return strconv.Atoi(s) },
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		keys := lo.Keys(settable)
		slices.Sort(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-24s%v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	parse, ok := settable[key]
	if !ok {
		return nil, fmt.Errorf("option %v is not settable", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.config.Get(key))), nil
	}
	val, err := parse(cmd.args[1])
	if err != nil {
		return nil, err
	}
	old := sc.config.Get(key)
	sc.config.Set(key, val)
	// Rebuild the engine so the new value takes effect now.
	if err := sc.resetEngine(); err != nil {
		sc.config.Set(key, old)
		return nil, err
	}
	if key == config.ConfigDebug {
		if val.(bool) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	return msg(fmt.Sprintf("set %v to %v", key, val)), nil
}

func (sc *ShellController) resetEngine() error {
	solver, err := negamax.NewSolver(sc.config)
	if err != nil {
		return err
	}
	computer, err := player.FromSpec(player.TimedPlayerName, sc.config)
	if err != nil {
		return err
	}
	sc.solver = solver
	sc.computer = computer
	return nil
}

func (sc *ShellController) ensureEngine() error {
	if sc.solver != nil && sc.computer != nil {
		return nil
	}
	return sc.resetEngine()
}

// newGame starts a game. `new human` (the default) pits the user, playing
// X, against the computer; -first computer lets the computer open.
// `new computer` has the computer play both sides, one `ai` at a time.
func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureEngine(); err != nil {
		return nil, err
	}
	mode := "human"
	if len(cmd.args) > 0 {
		mode = cmd.args[0]
	}
	first := cmd.options.String("first")
	if first == "" {
		first = "human"
	}
	switch mode {
	case "human":
		switch first {
		case "human":
			sc.humanSeat = 0
			sc.game = game.NewGame(nil, sc.computer)
		case "computer":
			sc.humanSeat = 1
			sc.game = game.NewGame(sc.computer, nil)
		default:
			return nil, fmt.Errorf("-first must be human or computer, not %v", first)
		}
	case "computer":
		sc.humanSeat = -1
		sc.game = game.NewGame(sc.computer, sc.computer)
	default:
		return nil, fmt.Errorf("unknown game mode %v", mode)
	}
	log.Debug().Str("game", sc.game.Uid()).Str("mode", mode).Int("human-seat", sc.humanSeat).Msg("new-game")

	var out strings.Builder
	if sc.humanSeat >= 0 {
		out.WriteString("You are " + glyphX + "\n")
	}
	if sc.humanSeat == 1 {
		if err := sc.computerReplies(&out); err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(out.String(), "\n")), nil
	}
	out.WriteString(sc.boardText())
	return msg(out.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var out strings.Builder
	out.WriteString(sc.boardText())
	if sc.game.Playing() {
		fmt.Fprintf(&out, "\nTurn %d, %s to move", sc.game.Turn()+1, sc.glyphFor(sc.game.PlayerOnTurn()))
	} else {
		out.WriteString("\n" + sc.resultText())
	}
	return msg(out.String()), nil
}

func (sc *ShellController) glyphFor(seat int) string {
	if sc.humanSeat == 1 {
		seat = 1 - seat
	}
	return [2]string{glyphX, glyphO}[seat]
}

// generate lists the legal moves for the side on turn, with the
// one-ply heuristic score of each.
func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	b := sc.game.Board()
	moves := lo.Map(negamax.GenMoves(b), func(pos int, _ int) negamax.Move {
		child, _ := b.Branch(pos)
		return negamax.Move{Position: pos, Score: child.Score()}
	})
	if len(moves) == 0 {
		return msg("No legal moves."), nil
	}
	slices.SortStableFunc(moves, func(a, b negamax.Move) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	var out strings.Builder
	out.WriteString("     Move  Score\n")
	for i, m := range moves {
		fmt.Fprintf(&out, "%3d: %-6s%.3f\n", i+1, game.FormatCoords(m.Position), m.Score)
	}
	return msg(strings.TrimRight(out.String(), "\n")), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play x,y")
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	if sc.humanSeat >= 0 && sc.game.PlayerOnTurn() != sc.humanSeat {
		return nil, errNotHumanTurn
	}
	pos, err := game.ParseCoords(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(pos); err != nil {
		return nil, err
	}
	var out strings.Builder
	if sc.humanSeat >= 0 {
		if err := sc.computerReplies(&out); err != nil {
			return nil, err
		}
	} else {
		sc.writeState(&out)
	}
	return msg(strings.TrimRight(out.String(), "\n")), nil
}

// computerReplies lets the computer move while it is on turn, then shows
// the board, or the result if the game is over.
func (sc *ShellController) computerReplies(out *strings.Builder) error {
	ctx := sc.gameContext()
	for sc.game.Playing() && sc.game.PlayerOnTurn() != sc.humanSeat {
		if err := sc.game.PlayTurn(ctx); err != nil {
			return err
		}
		last := sc.game.History()[len(sc.game.History())-1]
		fmt.Fprintf(out, "Computer plays %s\n", game.FormatCoords(last.Position))
	}
	sc.writeState(out)
	return nil
}

func (sc *ShellController) writeState(out *strings.Builder) {
	out.WriteString(sc.boardText())
	if !sc.game.Playing() {
		out.WriteString("\n" + sc.resultText())
	}
}

// aiplay has the computer make the move for whoever is on turn.
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	if err := sc.ensureEngine(); err != nil {
		return nil, err
	}
	p := sc.computer
	if len(cmd.args) > 0 {
		var err error
		p, err = player.FromSpec(player.TimedPlayerName+":"+cmd.args[0], sc.config)
		if err != nil {
			return nil, err
		}
	}
	pos, err := p.ChooseMove(sc.gameContext(), sc.game.Board())
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(pos); err != nil {
		return nil, err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "Computer plays %s\n", game.FormatCoords(pos))
	if sc.humanSeat >= 0 {
		if err := sc.computerReplies(&out); err != nil {
			return nil, err
		}
	} else {
		sc.writeState(&out)
	}
	return msg(strings.TrimRight(out.String(), "\n")), nil
}

// search analyzes the position at a fixed depth without committing a move.
func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: search <depth>")
	}
	depth, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if depth < 1 {
		return nil, errors.New("depth must be at least 1")
	}
	if !negamax.HasMove(sc.game.Board()) {
		return nil, negamax.ErrNoLegalMoves
	}
	if err := sc.ensureEngine(); err != nil {
		return nil, err
	}
	start := time.Now()
	m := sc.solver.BestMove(sc.game.Board(), depth)
	pv := sc.solver.PrincipalVariation()
	return msg(fmt.Sprintf("Best move %s, score %.3f, %d nodes in %v\nPV: %s",
		game.FormatCoords(m.Position), m.Score, sc.solver.Nodes(),
		time.Since(start).Round(time.Millisecond), pv.NLBString())), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: autoplay <player1> <player2> [-n games] [-threads t] [-file f]")
	}
	numGames, err := cmd.options.IntDefault("n", 100)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigAutoplayThreads))
	if err != nil {
		return nil, err
	}
	if numGames < 1 {
		return nil, errors.New("need at least one game")
	}
	summary, err := automatic.PlayGames(sc.gameContext(), sc.config, cmd.args[0], cmd.args[1],
		numGames, threads, cmd.options.String("file"))
	if err != nil {
		return nil, err
	}
	return msg(summaryText(summary)), nil
}

func summaryText(s *automatic.Summary) string {
	var out bytes.Buffer
	fmt.Fprintf(&out, "%d games: %s won %d, %s won %d, %d ties\n",
		s.Games, s.Players[0], s.Wins[0], s.Players[1], s.Wins[1], s.Ties)
	lo95, hi95 := s.Margin.ConfidenceInterval(95)
	fmt.Fprintf(&out, "%s margin: mean %.2f, stdev %.2f, 95%% CI [%.2f, %.2f]\n",
		s.Players[0], s.Margin.Mean(), s.Margin.Stdev(), lo95, hi95)
	if s.Margin.Min() != s.Margin.Max() {
		margins := lo.Map(s.Margins, func(m int, _ int) float64 { return float64(m) })
		hist := histogram.Hist(13, margins)
		if err := histogram.Fprint(&out, hist, histogram.Linear(40)); err != nil {
			log.Err(err).Msg("histogram-error")
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// boardState is what Lua scripts see of the current game.
type boardState struct {
	Turn    int      `json:"turn"`
	OnTurn  string   `json:"on_turn"`
	Playing bool     `json:"playing"`
	Rows    []string `json:"rows"`
	Margin  int      `json:"margin"`
	Moves   []string `json:"moves"`
}

func (sc *ShellController) state() (*boardState, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	seat0 := sc.game.BoardFor(0)
	rows := make([]string, board.Dim)
	glyphs := [2]byte{glyphX[0], glyphO[0]}
	if sc.humanSeat == 1 {
		glyphs = [2]byte{glyphO[0], glyphX[0]}
	}
	for y := 0; y < board.Dim; y++ {
		row := make([]byte, board.Dim)
		for x := 0; x < board.Dim; x++ {
			idx := board.Index(x, y)
			switch {
			case bitboard.GetBit(seat0.Self(), idx):
				row[x] = glyphs[0]
			case bitboard.GetBit(seat0.Enemy(), idx):
				row[x] = glyphs[1]
			default:
				row[x] = '.'
			}
		}
		rows[y] = string(row)
	}
	// margin is X's
	_, margin := sc.game.Result()
	if sc.humanSeat == 1 {
		margin = -margin
	}
	return &boardState{
		Turn:    sc.game.Turn(),
		OnTurn:  sc.glyphFor(sc.game.PlayerOnTurn()),
		Playing: sc.game.Playing(),
		Rows:    rows,
		Margin:  margin,
		Moves:   lo.Map(negamax.GenMoves(sc.game.Board()), func(pos int, _ int) string { return game.FormatCoords(pos) }),
	}, nil
}
