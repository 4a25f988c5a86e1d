package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/reversi/board"
)

var ErrBadCoords = errors.New("coordinates must look like x,y with x and y in 0-5")

// ParseCoords turns "x,y" into a cell index.
func ParseCoords(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 || s[1] != ',' {
		return 0, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	x, y := int(s[0]-'0'), int(s[2]-'0')
	if x < 0 || x >= board.Dim || y < 0 || y >= board.Dim {
		return 0, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	return board.Index(x, y), nil
}

func FormatCoords(idx int) string {
	return fmt.Sprintf("%d,%d", board.X(idx), board.Y(idx))
}
