package engine

import (
	"github.com/hailam/othelloplay/internal/board"
)

// Bound indicates the type of bound stored in the transposition table.
type Bound uint8

const (
	BoundExact Bound = iota // Exact score
	BoundLower              // Failed high (beta cutoff)
	BoundUpper              // Failed low
)

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "exact"
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	}
	return "unknown"
}

// DefaultTableSlots is the number of slots in each side's table.
const DefaultTableSlots = 1_000_000

// Popularity bookkeeping for replacement.
const (
	popularityFresh   = 16 // Set on every write
	popularityCap     = 32 // Hits saturate here
	popularityFloor   = 4  // A foreign entry at or below this is evicted
	collisionPenalty  = 4  // Charged to a deeper or equal foreign entry on a store
	shallowPenalty    = 8  // Charged to a shallower foreign entry on a store
	fillSampleEntries = 1000
)

// TTEntry represents an entry in the transposition table.
// The full occupancy pair is kept so a colliding position is never
// mistaken for a hit.
type TTEntry struct {
	First      board.Bitboard // Occupancy of First, for verification
	Second     board.Bitboard // Occupancy of Second, for verification
	Value      int32          // Score (bounded by Bound)
	Move       board.Square   // Best move found
	Depth      int8           // Remaining depth the value was searched to
	Bound      Bound          // Type of bound
	Popularity uint8          // Replacement counter
	used       bool
}

func (e *TTEntry) matches(pos *board.Position) bool {
	return e.used && e.First == pos.Occupancy(board.First) && e.Second == pos.Occupancy(board.Second)
}

// TTStats counts table traffic since the last Clear.
type TTStats struct {
	Probes     uint64
	Hits       uint64
	Collisions uint64
	Stores     uint64
	Rejected   uint64
}

// HitRate returns the hit rate as a percentage.
func (s TTStats) HitRate() float64 {
	if s.Probes == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Probes) * 100
}

// TranspositionTable is a fixed-size, direct-mapped cache of search results.
// There is one table per side to move; a slot is chosen by the position hash
// modulo the table size, with no chaining.
//
// The table is not safe for concurrent use; each Engine owns its own.
type TranspositionTable struct {
	tables [2][]TTEntry
	size   uint64
	stats  TTStats
}

// NewTranspositionTable creates a table with the given number of slots per
// side to move. Non-positive sizes fall back to DefaultTableSlots.
func NewTranspositionTable(slots int) *TranspositionTable {
	if slots <= 0 {
		slots = DefaultTableSlots
	}
	return &TranspositionTable{
		tables: [2][]TTEntry{
			make([]TTEntry, slots),
			make([]TTEntry, slots),
		},
		size: uint64(slots),
	}
}

func (tt *TranspositionTable) slot(pos *board.Position, side board.Side) *TTEntry {
	return &tt.tables[side][pos.Hash()%tt.size]
}

// Lookup returns the entry for pos with side to move.
// A slot holding another position counts as a miss and loses popularity.
func (tt *TranspositionTable) Lookup(pos *board.Position, side board.Side) (TTEntry, bool) {
	tt.stats.Probes++

	entry := tt.slot(pos, side)
	if !entry.used {
		return TTEntry{}, false
	}

	if !entry.matches(pos) {
		tt.stats.Collisions++
		if entry.Popularity > 0 {
			entry.Popularity--
		}
		return TTEntry{}, false
	}

	tt.stats.Hits++
	if entry.Popularity < popularityCap {
		entry.Popularity++
	}
	return *entry, true
}

// boundFor classifies a fail-soft result against the window it was searched with.
func boundFor(value, alphaOrig, beta int32) Bound {
	switch {
	case value <= alphaOrig:
		return BoundUpper
	case value >= beta:
		return BoundLower
	}
	return BoundExact
}

// Store saves a search result for pos with side to move.
//
// A slot holding another position is charged a popularity penalty and only
// taken over once its popularity is at or below the floor. Shallower entries
// are charged more, so they give way sooner. A slot holding the same position
// is refreshed when the new result is deeper, or equally deep and at least as
// precise.
func (tt *TranspositionTable) Store(pos *board.Position, side board.Side, value int32, move board.Square, alphaOrig, beta int32, depth int) {
	bound := boundFor(value, alphaOrig, beta)
	entry := tt.slot(pos, side)

	if entry.used {
		if entry.matches(pos) {
			if depth < int(entry.Depth) || (depth == int(entry.Depth) && bound != BoundExact && entry.Bound == BoundExact) {
				tt.stats.Rejected++
				return
			}
		} else {
			penalty := uint8(collisionPenalty)
			if int(entry.Depth) < depth {
				penalty = shallowPenalty
			}
			if entry.Popularity > penalty {
				entry.Popularity -= penalty
			} else {
				entry.Popularity = 0
			}
			if entry.Popularity > popularityFloor {
				tt.stats.Rejected++
				return
			}
		}
	}

	tt.stats.Stores++
	*entry = TTEntry{
		First:      pos.Occupancy(board.First),
		Second:     pos.Occupancy(board.Second),
		Value:      value,
		Move:       move,
		Depth:      int8(depth),
		Bound:      bound,
		Popularity: popularityFresh,
		used:       true,
	}
}

// Clear empties both tables and resets the statistics.
func (tt *TranspositionTable) Clear() {
	for s := range tt.tables {
		clear(tt.tables[s])
	}
	tt.stats = TTStats{}
}

// Stats returns the traffic counters.
func (tt *TranspositionTable) Stats() TTStats {
	return tt.stats
}

// Fill returns the permille (parts per thousand) of sampled slots in use
// across both tables.
func (tt *TranspositionTable) Fill() int {
	sampleSize := fillSampleEntries
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	used := 0
	for s := range tt.tables {
		for i := 0; i < sampleSize; i++ {
			if tt.tables[s][i].used {
				used++
			}
		}
	}

	return (used * 1000) / (2 * sampleSize)
}

// Size returns the number of slots per side to move.
func (tt *TranspositionTable) Size() int {
	return int(tt.size)
}
