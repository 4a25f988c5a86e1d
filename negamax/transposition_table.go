package negamax

import (
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/reversi/board"
	"github.com/domino14/reversi/zobrist"
)

const entrySize = 24

const (
	minSizePowerOf2 = 16
	maxSizePowerOf2 = 22
)

// 24 bytes (entrySize)
type TableEntry struct {
	// The full masks are kept so a hit is never a different position that
	// happens to share the hash. This keeps the search exact.
	self       uint64
	enemy      uint64
	score      float32
	generation uint16
	depth      uint8
}

// TranspositionTable memoizes exact negamax values. Entries from earlier
// searches are ignored by bumping the generation instead of clearing.
type TranspositionTable struct {
	table        []TableEntry
	sizePowerOf2 int
	sizeMask     uint64
	generation   uint16

	created      uint64
	lookups      uint64
	hits         uint64
	t2collisions uint64

	zobrist *zobrist.Zobrist
}

func (t *TranspositionTable) hash(b board.State) uint64 {
	return t.zobrist.Hash(b)
}

func (t *TranspositionTable) lookup(zval uint64, b board.State, depth int) (float32, bool) {
	t.lookups++
	idx := zval & t.sizeMask
	e := &t.table[idx]
	if e.generation != t.generation {
		return 0, false
	}
	if e.self != b.Self() || e.enemy != b.Enemy() || int(e.depth) != depth {
		// There is another unrelated node at this position.
		t.t2collisions++
		return 0, false
	}
	t.hits++
	return e.score, true
}

func (t *TranspositionTable) store(zval uint64, b board.State, depth int, score float32) {
	idx := zval & t.sizeMask
	// just overwrite whatever is there for now.
	t.table[idx] = TableEntry{
		self:       b.Self(),
		enemy:      b.Enemy(),
		score:      score,
		generation: t.generation,
		depth:      uint8(depth),
	}
	t.created++
}

// newSearch invalidates every entry. Generation 0 marks never-written
// entries, so it is skipped.
func (t *TranspositionTable) newSearch() {
	t.generation++
	if t.generation == 0 {
		clear(t.table)
		t.generation = 1
	}
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.t2collisions = 0
}

// Reset sizes the table to a fraction of system memory, clamped to a
// power of two between 2^16 and 2^22 entries.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	power := minSizePowerOf2
	if desiredNElems >= 1 {
		power = int(math.Log2(desiredNElems))
	}
	t.resize(power)

	log.Debug().Int("num-elems", len(t.table)).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", len(t.table)*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
}

func (t *TranspositionTable) resize(power int) {
	power = max(minSizePowerOf2, min(maxSizePowerOf2, power))
	numElems := 1 << power
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	t.sizePowerOf2 = power
	t.sizeMask = uint64(numElems - 1)
	t.generation = 0

	if t.zobrist == nil {
		t.zobrist = &zobrist.Zobrist{}
		t.zobrist.Initialize()
	}
}

func (t *TranspositionTable) logStats() {
	log.Debug().
		Uint64("created", t.created).
		Uint64("lookups", t.lookups).
		Uint64("hits", t.hits).
		Uint64("t2-collisions", t.t2collisions).
		Msg("transposition-table-stats")
}
