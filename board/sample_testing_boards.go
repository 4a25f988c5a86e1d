package board

// Sample positions used by tests across packages. X is the side to move,
// O is the opponent.

// VsWho is a plaintext board.
type VsWho string

const (
	// StrandedSelf has candidate cells for X but no capturing move.
	StrandedSelf VsWho = `
O O . . . .
. . . . . .
. . . . . .
. . . . . .
. . . . . .
. . . . . X
`
	// LongRow lets X capture four pieces along the top edge from 0,0.
	LongRow VsWho = `
. O O O O X
. . . . . .
. . . . . .
. . . . . .
. . . . . .
. . . . . .
`
	// GappedRow has an empty cell inside the run, so 0,0 captures nothing.
	GappedRow VsWho = `
. O . O X .
. . . . . .
. . . . . .
. . . . . .
. . . . . .
. . . . . .
`
	// EdgeWrap would capture 5,0 from 4,0 if rays wrapped onto the next row.
	EdgeWrap VsWho = `
. . . . . O
X . . . . .
. . . . . .
. . . . . .
. . . . . .
. . . . . .
`
	// Star captures in several directions at once from 2,2.
	Star VsWho = `
X . X . X .
. O O O . .
X O . O X .
. O O O . .
X . X . X .
. . . . . .
`
	// NearlyFull is one move from a full board.
	NearlyFull VsWho = `
X X X X X X
X X X X X X
X X O O O X
X X O O O .
X X X X X X
X X X X X X
`
)

// MustLoad parses a sample board with X as self and O as enemy. It panics
// on a malformed board.
func (v VsWho) MustLoad() State {
	s, err := FromPlaintext(string(v), 'X', 'O')
	if err != nil {
		panic(err)
	}
	return s
}
