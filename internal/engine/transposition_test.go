package engine

import (
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/othelloplay/internal/board"
)

func twoPositions() (board.Position, board.Position) {
	a := board.NewPosition()
	b := board.NewPosition()
	b.ApplyMove(board.NewSquare(2, 3), board.First)
	return a, b
}

func TestBoundFor(t *testing.T) {
	tests := []struct {
		value, alpha, beta int32
		want               Bound
	}{
		{-10, -5, 5, BoundUpper},
		{-5, -5, 5, BoundUpper},
		{0, -5, 5, BoundExact},
		{5, -5, 5, BoundLower},
		{9, -5, 5, BoundLower},
		{WinScore, -Infinity, Infinity, BoundExact},
	}

	for _, tc := range tests {
		if got := boundFor(tc.value, tc.alpha, tc.beta); got != tc.want {
			t.Errorf("boundFor(%d, %d, %d) = %s, want %s", tc.value, tc.alpha, tc.beta, got, tc.want)
		}
	}
}

func TestTranspositionStoreLookup(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1024)
	pos, _ := twoPositions()

	_, ok := tt.Lookup(&pos, board.First)
	is.True(!ok)

	sq := board.NewSquare(2, 3)
	tt.Store(&pos, board.First, 17, sq, -100, 100, 4)

	entry, ok := tt.Lookup(&pos, board.First)
	is.True(ok)
	is.Equal(entry.Value, int32(17))
	is.Equal(entry.Move, sq)
	is.Equal(entry.Depth, int8(4))
	is.Equal(entry.Bound, BoundExact)
	is.Equal(entry.First, pos.Occupancy(board.First))
	is.Equal(entry.Second, pos.Occupancy(board.Second))

	// Tables are per side to move.
	_, ok = tt.Lookup(&pos, board.Second)
	is.True(!ok)

	stats := tt.Stats()
	is.Equal(stats.Probes, uint64(3))
	is.Equal(stats.Hits, uint64(1))
	is.Equal(stats.Stores, uint64(1))

	tt.Clear()
	_, ok = tt.Lookup(&pos, board.First)
	is.True(!ok)
	is.Equal(tt.Stats().Hits, uint64(0))
}

func TestTranspositionSamePositionReplacement(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(16)
	pos, _ := twoPositions()
	a, b := board.NewSquare(2, 3), board.NewSquare(3, 2)

	tt.Store(&pos, board.First, 10, a, -100, 100, 4)

	// Shallower never overwrites.
	tt.Store(&pos, board.First, 99, b, -100, 100, 3)
	entry, _ := tt.Lookup(&pos, board.First)
	is.Equal(entry.Value, int32(10))

	// Same depth, weaker bound, does not overwrite an exact value.
	tt.Store(&pos, board.First, 99, b, -100, 50, 4)
	entry, _ = tt.Lookup(&pos, board.First)
	is.Equal(entry.Bound, BoundExact)
	is.Equal(entry.Move, a)

	// Same depth, exact, overwrites.
	tt.Store(&pos, board.First, 20, b, -100, 100, 4)
	entry, _ = tt.Lookup(&pos, board.First)
	is.Equal(entry.Value, int32(20))
	is.Equal(entry.Move, b)

	// Deeper bound overwrites.
	tt.Store(&pos, board.First, 60, a, -100, 50, 5)
	entry, _ = tt.Lookup(&pos, board.First)
	is.Equal(entry.Bound, BoundLower)
	is.Equal(entry.Depth, int8(5))
}

func TestTranspositionCollisionPopularity(t *testing.T) {
	is := is.New(t)
	// A single slot forces every position to collide.
	tt := NewTranspositionTable(1)
	a, b := twoPositions()

	tt.Store(&a, board.First, 1, board.NewSquare(2, 3), -100, 100, 5)

	// Shallower foreign stores are refused until popularity wears down.
	tt.Store(&b, board.First, 2, board.NewSquare(4, 2), -100, 100, 3)
	_, ok := tt.Lookup(&b, board.First)
	is.True(!ok)
	tt.Store(&b, board.First, 2, board.NewSquare(4, 2), -100, 100, 3)
	_, ok = tt.Lookup(&a, board.First)
	is.True(ok)

	// Misses above cost popularity too; the next store evicts.
	tt.Store(&b, board.First, 2, board.NewSquare(4, 2), -100, 100, 3)
	entry, ok := tt.Lookup(&b, board.First)
	is.True(ok)
	is.Equal(entry.Value, int32(2))
	is.Equal(entry.Popularity, uint8(popularityFresh+1))

	_, ok = tt.Lookup(&a, board.First)
	is.True(!ok)

	// A deeper foreign store still respects the floor, but wears the
	// shallower entry down twice as fast: 16 -> 8 (kept), miss -> 7, 7 -> 0.
	tt.Store(&a, board.First, 3, board.NewSquare(2, 3), -100, 100, 7)
	_, ok = tt.Lookup(&a, board.First)
	is.True(!ok)
	tt.Store(&a, board.First, 3, board.NewSquare(2, 3), -100, 100, 7)
	entry, ok = tt.Lookup(&a, board.First)
	is.True(ok)
	is.Equal(entry.Value, int32(3))
	is.Equal(entry.Depth, int8(7))

	is.True(tt.Stats().Collisions > 0)
	is.True(tt.Stats().Rejected > 0)
}

func TestTranspositionPopularShallowEntrySurvives(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1)
	a, b := twoPositions()

	tt.Store(&a, board.First, 1, board.NewSquare(2, 3), -100, 100, 2)
	for i := 0; i < popularityCap; i++ {
		tt.Lookup(&a, board.First)
	}

	// At the cap, one deeper store is not enough to evict: 32 -> 24.
	tt.Store(&b, board.First, 2, board.NewSquare(4, 2), -100, 100, 9)
	entry, ok := tt.Lookup(&a, board.First)
	is.True(ok)
	is.Equal(entry.Depth, int8(2))
	is.Equal(tt.Stats().Rejected, uint64(1))
}

func TestTranspositionPopularityWornByMisses(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1)
	a, b := twoPositions()

	tt.Store(&a, board.First, 1, board.NewSquare(2, 3), -100, 100, 5)
	for i := 0; i < popularityFresh; i++ {
		tt.Lookup(&b, board.First)
	}

	// Popularity is exhausted, so even a shallow store takes the slot.
	tt.Store(&b, board.First, 2, board.NewSquare(4, 2), -100, 100, 1)
	_, ok := tt.Lookup(&b, board.First)
	is.True(ok)
}

func TestTranspositionFill(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(4)
	is.Equal(tt.Fill(), 0)

	a, b := twoPositions()
	tt.Store(&a, board.First, 0, board.Pass, -1, 1, 1)
	tt.Store(&b, board.Second, 0, board.Pass, -1, 1, 1)
	is.Equal(tt.Fill(), 250)
}

func TestHistoryTable(t *testing.T) {
	is := is.New(t)
	h := NewHistoryTable()

	c4, d3, e6, f5 := board.NewSquare(2, 3), board.NewSquare(3, 2), board.NewSquare(4, 5), board.NewSquare(5, 4)
	moves := board.SquareBB(c4) | board.SquareBB(d3) | board.SquareBB(e6) | board.SquareBB(f5)

	// No history: ascending square order.
	is.Equal(h.Order(moves, board.Pass), []board.Square{d3, c4, f5, e6})

	h.Reward(e6, 3)
	h.Reward(c4, 1)
	is.Equal(h.Score(e6), uint64(8))
	is.Equal(h.Score(c4), uint64(2))
	is.Equal(h.Order(moves, board.Pass), []board.Square{e6, c4, d3, f5})

	// The table move leads regardless of history.
	is.Equal(h.Order(moves, f5), []board.Square{f5, e6, c4, d3})
	// A table move that is not legal is ignored.
	is.Equal(h.Order(moves, board.NewSquare(0, 0)), []board.Square{e6, c4, d3, f5})

	h.Decay()
	is.Equal(h.Score(e6), uint64(4))
	is.Equal(h.Score(c4), uint64(1))

	h.Reset()
	is.Equal(h.Score(e6), uint64(0))

	h.Reward(board.Pass, 3)
	is.Equal(h.Score(board.Pass), uint64(0))
}

func TestTimeManager(t *testing.T) {
	is := is.New(t)
	tm := NewTimeManager()

	tm.Init(-1, 40)
	is.True(tm.Unlimited())
	is.True(!tm.ShouldStop())
	_, ok := tm.Deadline()
	is.True(!ok)

	tm.Init(30000, 60)
	is.Equal(tm.Budget().Milliseconds(), int64(1000))
	_, ok = tm.Deadline()
	is.True(ok)

	// One square left: capped at 95% of the clock.
	tm.Init(1000, 1)
	is.Equal(tm.Budget().Milliseconds(), int64(950))

	// Nearly flagged: never below the floor.
	tm.Init(0, 20)
	is.Equal(tm.Budget(), minMoveTime)
}
