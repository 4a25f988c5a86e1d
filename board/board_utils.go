package board

import (
	"fmt"
	"strings"

	"github.com/domino14/reversi/bitboard"
)

// ToDisplayText renders the board with a column header and one row per y.
// Empty cells are shown as a dot.
func (s State) ToDisplayText(selfGlyph, enemyGlyph string) string {
	var sb strings.Builder
	sb.WriteString(" ")
	for x := 0; x < Dim; x++ {
		fmt.Fprintf(&sb, " %d", x)
	}
	sb.WriteString("\n")
	for y := 0; y < Dim; y++ {
		fmt.Fprintf(&sb, "%d", y)
		for x := 0; x < Dim; x++ {
			idx := Index(x, y)
			sb.WriteString(" ")
			switch {
			case bitboard.GetBit(s.self, idx):
				sb.WriteString(selfGlyph)
			case bitboard.GetBit(s.enemy, idx):
				sb.WriteString(enemyGlyph)
			default:
				sb.WriteString(".")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FromPlaintext parses Dim rows of Dim cells. selfGlyph and enemyGlyph
// mark pieces, '.' marks an empty cell; spaces are ignored.
func FromPlaintext(text string, selfGlyph, enemyGlyph rune) (State, error) {
	var self, enemy uint64
	y := 0
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line == "" {
			continue
		}
		if y >= Dim {
			return State{}, fmt.Errorf("too many rows: want %d", Dim)
		}
		cells := []rune(line)
		if len(cells) != Dim {
			return State{}, fmt.Errorf("row %d has %d cells, want %d", y, len(cells), Dim)
		}
		for x, ch := range cells {
			bit := uint64(1) << uint(Index(x, y))
			switch ch {
			case selfGlyph:
				self |= bit
			case enemyGlyph:
				enemy |= bit
			case '.':
			default:
				return State{}, fmt.Errorf("unexpected character %q at %d,%d", ch, x, y)
			}
		}
		y++
	}
	if y != Dim {
		return State{}, fmt.Errorf("got %d rows, want %d", y, Dim)
	}
	return FromMasks(self, enemy)
}
