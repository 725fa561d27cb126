package engine

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/pkg/errors"
	"lukechampine.com/frand"

	"github.com/hailam/othelloplay/internal/board"
)

// minimaxFixture is a midgame position with White to move.
const minimaxFixture = "        " +
	"     w  " +
	"b wwwww " +
	"wbwwbw  " +
	" bbbw w " +
	"bbbwww  " +
	"  bw    " +
	"  b     "

type sample struct {
	pos   board.Position
	side  board.Side
	moves int
}

// samplePositions plays seeded random openings of varying length.
func samplePositions(t *testing.T, n int) []sample {
	t.Helper()

	var seed [32]byte
	copy(seed[:], "engine-sample-positions-seed-000")
	rng := frand.NewCustom(seed[:], 1024, 12)

	out := make([]sample, 0, n)
	for len(out) < n {
		pos := board.NewPosition()
		side := board.First
		plies := 6 + rng.Intn(30)

		moves := 0
		for ; moves < plies && !pos.IsTerminal(); moves++ {
			legal := pos.MoveList(side)
			sq := board.Pass
			if len(legal) > 0 {
				sq = legal[rng.Intn(len(legal))]
			}
			if !pos.ApplyMove(sq, side) {
				t.Fatalf("random playout produced illegal move %s", sq)
			}
			side = side.Opposite()
		}
		out = append(out, sample{pos: pos, side: side, moves: moves})
	}
	return out
}

// plainNegamax is full-window negamax with no pruning, table or ordering.
func plainNegamax(eval Evaluator, pos *board.Position, side board.Side, depth, elapsed int) int32 {
	if depth == 0 || pos.IsTerminal() {
		return eval.Score(pos, side, elapsed)
	}

	opp := side.Opposite()
	moves := pos.LegalMoves(side)
	if moves == 0 {
		return -plainNegamax(eval, pos, opp, depth-1, elapsed+1)
	}

	best := -Infinity
	for moves != 0 {
		child, _ := pos.CopyAndApplyMove(moves.PopLSB(), side)
		if v := -plainNegamax(eval, &child, opp, depth-1, elapsed+1); v > best {
			best = v
		}
	}
	return best
}

func TestNegascoutMatchesNegamax(t *testing.T) {
	fixture := mustParse(t, minimaxFixture)

	cases := []sample{{pos: fixture, side: board.White, moves: 30}}
	cases = append(cases, samplePositions(t, 6)...)

	configs := []struct {
		name     string
		useTable bool
		eval     func() Evaluator
	}{
		{"phase/table", true, func() Evaluator { return NewPhaseEvaluator(1 << 12) }},
		{"phase/store-only", false, func() Evaluator { return NewPhaseEvaluator(1 << 12) }},
		{"coin/table", true, func() Evaluator { return CoinEvaluator{} }},
	}

	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			for i, c := range cases {
				eval := cfg.eval()
				want := plainNegamax(eval, &c.pos, c.side, 4, c.moves)

				eng := NewEngine(Options{TableSlots: 1 << 14, ProbeTable: cfg.useTable, Evaluator: eval})
				_, got, err := eng.SearchDepth(context.Background(), &c.pos, c.side, c.moves, 4)
				if err != nil {
					t.Fatalf("case %d: %v", i, err)
				}
				if got != want {
					t.Errorf("case %d: negascout %d, negamax %d\n%s", i, got, want, c.pos.String())
				}
			}
		})
	}
}

func TestNegascoutBestMoveIsLegal(t *testing.T) {
	is := is.New(t)
	pos := mustParse(t, minimaxFixture)

	eng := NewEngine(Options{TableSlots: 1 << 14, ProbeTable: true})
	move, _, err := eng.SearchDepth(context.Background(), &pos, board.White, 30, 3)
	is.NoErr(err)
	is.True(pos.CheckMove(move, board.White))
	is.True(move != board.Pass)
}

func TestCoinMinimaxFixture(t *testing.T) {
	is := is.New(t)
	pos := mustParse(t, minimaxFixture)

	eval := CoinEvaluator{}
	eng := NewEngine(Options{TableSlots: 1 << 10, Evaluator: eval})
	move, score, err := eng.SearchDepth(context.Background(), &pos, board.White, 0, 2)
	is.NoErr(err)

	// The chosen move must achieve the two-ply value.
	child, ok := pos.CopyAndApplyMove(move, board.White)
	is.True(ok)
	is.Equal(-plainNegamax(eval, &child, board.Black, 1, 1), score)
	is.Equal(plainNegamax(eval, &pos, board.White, 2, 0), score)
	t.Logf("two-ply move %s scores %d", move, score)
}

func TestSearchPassNode(t *testing.T) {
	is := is.New(t)

	// First cannot move, Second can.
	pos := board.Empty()
	pos.Place(board.Second, board.NewSquare(0, 0))
	pos.Place(board.First, board.NewSquare(1, 0))

	eng := NewEngine(Options{TableSlots: 64})
	move, score, err := eng.SearchDepth(context.Background(), &pos, board.First, 10, 3)
	is.NoErr(err)
	is.Equal(move, board.Pass)
	// Second captures the only First disc and wins.
	is.Equal(score, -WinScore)
}

func TestSearchAbortsOnCancelledContext(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := NewEngine(DefaultOptions())
	_, _, err := eng.SearchDepth(ctx, &pos, board.First, 0, 6)
	is.True(errors.Is(err, ErrSearchAborted))
}
