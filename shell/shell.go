package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/domino14/reversi/config"
	"github.com/domino14/reversi/game"
	"github.com/domino14/reversi/negamax"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
	errNotHumanTurn      = errors.New("it is not your turn")
	errQuit              = errors.New("quit")
)

// Glyphs for seat 0 and seat 1. The human is always X.
const (
	glyphX = "X"
	glyphO = "O"
)

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	output *termenv.Output
	config *config.Config

	game      *game.Game
	humanSeat int // -1 when the computer plays both seats
	computer  game.Player
	solver    *negamax.Solver
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	prompt := "reversi> "
	output := termenv.NewOutput(os.Stderr)
	if output.Profile != termenv.Ascii {
		prompt = output.String("reversi>").Foreground(output.Color("1")).String() + " "
	}
	sc := &ShellController{config: cfg, output: output, humanSeat: -1}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), "reversi_readline.tmp"),
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments,
// and -option value pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	// handle options
	lastWasOption := false
	lastOption := ""
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if lastWasOption {
				return nil, errWrongOptionSyntax
			}
			lastWasOption = true
			lastOption = fields[idx][1:]
			continue
		}
		if lastWasOption {
			lastWasOption = false
			options[lastOption] = append(options[lastOption], fields[idx])
		} else {
			args = append(args, fields[idx])
		}
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	log.Debug().Msgf("cmd: %v, args: %v, options: %v", cmd, args, options)

	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func (sc *ShellController) standardModeSwitch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "gen":
		return sc.generate(cmd)
	case "play":
		return sc.play(cmd)
	case "ai":
		return sc.aiplay(cmd)
	case "search":
		return sc.search(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	}
	log.Info().Msgf("command %v not found", cmd.cmd)
	return nil, nil
}

// Execute runs a single command line, as when the binary is given
// arguments instead of being run interactively.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	sc.executeLine(sig, strings.TrimSpace(line))
}

func (sc *ShellController) executeLine(sig chan os.Signal, line string) bool {
	resp, err := sc.standardModeSwitch(line)
	switch {
	case errors.Is(err, errQuit):
		sig <- syscall.SIGINT
		return false
	case errors.Is(err, errNoData):
	case err != nil:
		sc.showError(err)
	case resp != nil && resp.message != "":
		sc.showMessage(resp.message)
	}
	return true
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if !sc.executeLine(sig, strings.TrimSpace(line)) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	log.Debug().Msg("cleaning up shell")
}

func (sc *ShellController) glyphs() [2]string {
	g := [2]string{glyphX, glyphO}
	if sc.humanSeat == 1 {
		g = [2]string{glyphO, glyphX}
	}
	if sc.output == nil || sc.output.Profile == termenv.Ascii {
		return g
	}
	// X red, O blue.
	for i := range g {
		color := "4"
		if g[i] == glyphX {
			color = "1"
		}
		g[i] = sc.output.String(g[i]).Foreground(sc.output.Color(color)).Bold().String()
	}
	return g
}

func (sc *ShellController) boardText() string {
	return strings.TrimRight(sc.game.ToDisplayText(sc.glyphs()), "\n")
}

// resultText is the final line of a game, told from the human's side when
// there is one.
func (sc *ShellController) resultText() string {
	winner, margin := sc.game.Result()
	if sc.humanSeat >= 0 {
		if sc.humanSeat == 1 {
			margin = -margin
		}
		switch {
		case margin < 0:
			return fmt.Sprintf("You lost by %d pieces!", -margin)
		case margin > 0:
			return fmt.Sprintf("You won by %d pieces!", margin)
		}
		return "You tied!"
	}
	if winner == -1 {
		return "The game is a tie!"
	}
	if margin < 0 {
		margin = -margin
	}
	return fmt.Sprintf("%s won by %d pieces!", [2]string{glyphX, glyphO}[winner], margin)
}

func (sc *ShellController) gameContext() context.Context {
	return log.Logger.WithContext(context.Background())
}
