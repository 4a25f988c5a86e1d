package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/reversi/game"
	"github.com/domino14/reversi/negamax"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-n", "-threads")
	Args    []string // Possible argument values (for non-option arguments)
}

var playerSpecs = []string{"timed", "timed:", "depth:", "random"}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-first"},
		Args:    []string{"human", "computer"},
	},
	"autoplay": {
		Options: []string{"-n", "-threads", "-file"},
		Args:    playerSpecs,
	},
	"set": {
		Args: []string{
			"debug", "search-timeout", "search-start-depth", "search-max-depth",
			"ttable-enabled", "ttable-fraction-of-mem", "autoplay-threads",
		},
	},
	"help": {
		Args: []string{"new", "play", "ai", "search", "autoplay", "set", "script"},
	},
}

var commandNames = []string{
	"help", "new", "show", "gen", "play", "ai", "search", "autoplay", "set",
	"script", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// If we can't parse, fall back to simple space splitting
		fields = strings.Fields(text)
	}

	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-first":
			completions = []string{"human", "computer"}
		case cmdName == "set" && (lastCompleteField == "debug" || lastCompleteField == "ttable-enabled"):
			completions = boolValues
		case cmdName == "play":
			completions = c.legalMoves()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}

	return matches, len(prefix)
}

func (c *ShellCompleter) legalMoves() []string {
	if c.sc == nil || c.sc.game == nil {
		return nil
	}
	var moves []string
	for _, pos := range negamax.GenMoves(c.sc.game.Board()) {
		moves = append(moves, game.FormatCoords(pos))
	}
	return moves
}
