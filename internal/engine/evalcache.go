package engine

import "github.com/hailam/othelloplay/internal/board"

// StabilityEntry stores cached stable-disc counts for both sides, with the
// occupancy they were computed for.
type StabilityEntry struct {
	First        board.Bitboard
	Second       board.Bitboard
	StableFirst  uint8
	StableSecond uint8
	used         bool
}

// StabilityCache is a direct-mapped cache of stable-disc counts, indexed by
// position hash. Stability only depends on occupancy, so one entry serves
// both sides to move.
type StabilityCache struct {
	entries []StabilityEntry
	mask    uint64
}

// NewStabilityCache creates a cache with at most the given number of slots,
// rounded down to a power of 2.
func NewStabilityCache(slots int) *StabilityCache {
	size := 1
	for size*2 <= slots {
		size *= 2
	}

	return &StabilityCache{
		entries: make([]StabilityEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up the stable counts for pos. A slot holding another
// occupancy is a miss, even when the hashes agree.
func (sc *StabilityCache) Probe(pos *board.Position) (first, second int, found bool) {
	entry := &sc.entries[pos.Hash()&sc.mask]
	if entry.used && entry.First == pos.Occupancy(board.First) && entry.Second == pos.Occupancy(board.Second) {
		return int(entry.StableFirst), int(entry.StableSecond), true
	}
	return 0, 0, false
}

// Store saves the stable counts for pos, replacing whatever held the slot.
func (sc *StabilityCache) Store(pos *board.Position, first, second int) {
	sc.entries[pos.Hash()&sc.mask] = StabilityEntry{
		First:        pos.Occupancy(board.First),
		Second:       pos.Occupancy(board.Second),
		StableFirst:  uint8(first),
		StableSecond: uint8(second),
		used:         true,
	}
}

// Clear clears the cache.
func (sc *StabilityCache) Clear() {
	clear(sc.entries)
}
