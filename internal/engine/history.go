package engine

import (
	"sort"

	"github.com/hailam/othelloplay/internal/board"
)

// maxHistoryShift caps the reward exponent so scores stay within uint64.
const maxHistoryShift = 40

// HistoryTable scores squares by how often placing on them caused a cutoff,
// independent of the position they were played in.
type HistoryTable struct {
	scores [64]uint64
}

// NewHistoryTable creates an empty history table.
func NewHistoryTable() *HistoryTable {
	return &HistoryTable{}
}

// Reset zeroes every score. Called at the start of each move request.
func (h *HistoryTable) Reset() {
	h.scores = [64]uint64{}
}

// Decay halves every score. Called before each iterative-deepening pass so
// older information fades without being discarded.
func (h *HistoryTable) Decay() {
	for i := range h.scores {
		h.scores[i] /= 2
	}
}

// Reward credits sq with 2^depth for causing a cutoff at the given depth.
func (h *HistoryTable) Reward(sq board.Square, depth int) {
	if !sq.IsValid() || depth < 0 {
		return
	}
	if depth > maxHistoryShift {
		depth = maxHistoryShift
	}
	h.scores[sq] += 1 << uint(depth)
}

// Score returns the ordering score of sq.
func (h *HistoryTable) Score(sq board.Square) uint64 {
	if !sq.IsValid() {
		return 0
	}
	return h.scores[sq]
}

// Order returns the squares of moves best-first: first (typically the
// transposition table move) leads if it is among them, the rest follow by
// descending history score with ties broken by square index.
func (h *HistoryTable) Order(moves board.Bitboard, first board.Square) []board.Square {
	list := moves.Squares()

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a == first {
			return b != first
		}
		if b == first {
			return false
		}
		return h.scores[a] > h.scores[b]
	})

	return list
}
