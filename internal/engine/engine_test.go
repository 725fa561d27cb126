package engine

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/othelloplay/internal/board"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.TableSlots = 1 << 16
	return opts
}

func TestFindBestMoveOpening(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition()
	eng := NewEngine(testOptions())

	var infos []SearchInfo
	eng.OnInfo = func(info SearchInfo) { infos = append(infos, info) }

	res := eng.FindBestMove(context.Background(), &pos, board.First, 0, SearchLimits{Depth: 5})
	is.True(pos.CheckMove(res.Move, board.First))
	is.Equal(res.Depth, 5)
	is.True(!res.Solved)
	is.Equal(len(infos), 5)
	for i, info := range infos {
		is.Equal(info.Depth, i+1)
	}
	is.Equal(infos[4].Move, res.Move)

	t.Logf("best move: %s (score %d, nodes %d)", res.Move, res.Score, res.Nodes)
}

// TestSearchDeterminism checks that a fresh engine always picks the same move
// at a fixed depth, whatever another engine saw before.
func TestSearchDeterminism(t *testing.T) {
	for i, p := range samplePositions(t, 5) {
		pos := p.pos
		if !pos.HasLegalMove(p.side) {
			continue
		}

		first := NewEngine(testOptions()).FindBestMove(context.Background(), &pos, p.side, p.moves, SearchLimits{Depth: 4})

		// Warm another engine on unrelated positions, then reset it.
		used := NewEngine(testOptions())
		opening := board.NewPosition()
		used.FindBestMove(context.Background(), &opening, board.First, 0, SearchLimits{Depth: 5})
		used.Clear()
		second := used.FindBestMove(context.Background(), &pos, p.side, p.moves, SearchLimits{Depth: 4})

		third := NewEngine(testOptions()).FindBestMove(context.Background(), &pos, p.side, p.moves, SearchLimits{Depth: 4})

		if first.Move != second.Move || first.Move != third.Move {
			t.Errorf("position %d: moves %s, %s, %s", i, first.Move, second.Move, third.Move)
		}
		if first.Score != second.Score || first.Score != third.Score {
			t.Errorf("position %d: scores %d, %d, %d", i, first.Score, second.Score, third.Score)
		}
	}
}

func TestFindBestMoveFallbackWhenNoDepthCompletes(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition()
	eng := NewEngine(testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := eng.FindBestMove(ctx, &pos, board.First, 0, SearchLimits{})
	is.Equal(res.Depth, 0)
	is.Equal(res.Move, pos.LegalMoves(board.First).LSB())
	is.True(pos.CheckMove(res.Move, board.First))
}

func TestFindBestMoveRespectsMoveTime(t *testing.T) {
	is := is.New(t)
	pos := mustParse(t, minimaxFixture)
	eng := NewEngine(testOptions())

	start := time.Now()
	res := eng.FindBestMove(context.Background(), &pos, board.White, 30, SearchLimits{MoveTime: 50 * time.Millisecond})
	elapsed := time.Since(start)

	is.True(pos.CheckMove(res.Move, board.White))
	is.True(res.Depth < MaxSearchDepth)
	// Generous bound: the deadline is polled a few plies above the leaves.
	is.True(elapsed < 2*time.Second)
}

func TestFindBestMovePass(t *testing.T) {
	is := is.New(t)

	pos := board.Empty()
	pos.Place(board.Second, board.NewSquare(0, 0))
	pos.Place(board.First, board.NewSquare(1, 0))

	eng := NewEngine(testOptions())
	res := eng.FindBestMove(context.Background(), &pos, board.First, 10, SearchLimits{})
	is.Equal(res.Move, board.Pass)

	res = eng.FindBestMove(context.Background(), &pos, board.Second, 10, SearchLimits{})
	is.Equal(res.Move, board.NewSquare(2, 0))
}

func TestFindBestMoveUsesEndgameSolver(t *testing.T) {
	is := is.New(t)

	pos, side := endgamePosition(t, 8)
	if pos.LegalMoves(side).PopCount() < 2 {
		t.Skip("sampled endgame has a forced move")
	}

	eng := NewEngine(testOptions())
	res := eng.FindBestMove(context.Background(), &pos, side, 60-pos.Empties(), SearchLimits{})
	is.True(res.Solved)
	is.True(pos.CheckMove(res.Move, side))

	child, _ := pos.CopyAndApplyMove(res.Move, side)
	is.Equal(-exactDiff(&child, side.Opposite()), res.Score)
}

func TestEngineOptionsDefaults(t *testing.T) {
	is := is.New(t)

	eng := NewEngine(Options{MaxDepth: 500, EndgameEmpties: -3})
	is.Equal(eng.Options().MaxDepth, MaxSearchDepth)
	is.Equal(eng.Options().EndgameEmpties, 0)
	is.Equal(eng.Table().Size(), DefaultTableSlots)

	_, ok := eng.Evaluator().(*PhaseEvaluator)
	is.True(ok)

	def := DefaultOptions()
	is.True(def.ProbeTable)
	is.Equal(def.EndgameEmpties, DefaultEndgameEmpties)
}
