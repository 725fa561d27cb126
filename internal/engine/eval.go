package engine

import (
	"math"

	"github.com/hailam/othelloplay/internal/board"
)

// Score bounds
const (
	Infinity int32 = math.MaxInt32     // Window bound, never returned as a value
	WinScore int32 = math.MaxInt32 - 1 // Finished game won by the evaluated side
)

// Evaluator scores a position from side's point of view.
type Evaluator interface {
	Score(pos *board.Position, side board.Side, movesPlayed int) int32
}

// terminalScore saturates a finished game. Only a strict majority counts as
// a win, so a drawn game scores as a loss for either side.
func terminalScore(pos *board.Position, side board.Side) int32 {
	if pos.Count(side) > pos.Count(side.Opposite()) {
		return WinScore
	}
	return -WinScore
}

// IsWinScore reports whether score is a saturated game result.
func IsWinScore(score int32) bool {
	return score >= WinScore || score <= -WinScore
}

// Static square weights, [y][x]. Corners are prized, squares handing the
// opponent a corner are penalised.
var utilityMatrix = [board.Size][board.Size]int32{
	{50, -2, 2, 2, 2, 2, -2, 50},
	{-2, -9, 0, 0, 0, 0, -9, -2},
	{2, 1, 0, 0, 0, 1, 0, 2},
	{2, 1, 0, 0, 0, 0, 0, 2},
	{2, 1, 0, 0, 0, 0, 0, 2},
	{2, 1, 1, 0, 0, 1, 0, 2},
	{-2, -9, 0, 0, 0, 0, -9, -2},
	{50, -2, 2, 2, 2, 2, -2, 50},
}

// utilityScale multiplies the raw weight difference.
const utilityScale = 10

var squareUtility [64]int32

func init() {
	for sq := board.Square(0); sq < board.Pass; sq++ {
		squareUtility[sq] = utilityMatrix[sq.Y()][sq.X()]
	}
}

// phaseWeights is one band of the evaluation blend.
type phaseWeights struct {
	coin, mobility, utility, stability int64
}

func (w phaseWeights) sum() int64 {
	return w.coin + w.mobility + w.utility + w.stability
}

// Bands by moves played: <20, <30, <40, rest.
var phaseBands = [4]phaseWeights{
	{coin: 5, mobility: 40, utility: 40, stability: 15},
	{coin: 10, mobility: 30, utility: 35, stability: 25},
	{coin: 20, mobility: 20, utility: 25, stability: 35},
	{coin: 40, mobility: 10, utility: 15, stability: 35},
}

func phaseFor(movesPlayed int) phaseWeights {
	switch {
	case movesPlayed < 20:
		return phaseBands[0]
	case movesPlayed < 30:
		return phaseBands[1]
	case movesPlayed < 40:
		return phaseBands[2]
	}
	return phaseBands[3]
}

// parity is the normalised difference 100*(a-b)/(a+b), 0 when both are 0.
func parity(a, b int) int64 {
	if a+b == 0 {
		return 0
	}
	return int64(100 * (a - b) / (a + b))
}

func utilityOf(bb board.Bitboard) int32 {
	var total int32
	for bb != 0 {
		total += squareUtility[bb.PopLSB()]
	}
	return total
}

// PhaseEvaluator blends coin, mobility, positional and stability parity with
// weights that shift from mobility toward disc count as the game goes on.
// Features are computed for First and negated for Second.
type PhaseEvaluator struct {
	stability *StabilityCache
}

// NewPhaseEvaluator creates an evaluator with a stability cache of the given
// size in slots. A non-positive size disables caching.
func NewPhaseEvaluator(cacheSlots int) *PhaseEvaluator {
	e := &PhaseEvaluator{}
	if cacheSlots > 0 {
		e.stability = NewStabilityCache(cacheSlots)
	}
	return e
}

// Score implements Evaluator.
func (e *PhaseEvaluator) Score(pos *board.Position, side board.Side, movesPlayed int) int32 {
	if pos.IsTerminal() {
		return terminalScore(pos, side)
	}

	score := e.firstScore(pos, movesPlayed)
	if side != board.First {
		return -score
	}
	return score
}

// Clear drops cached stability counts.
func (e *PhaseEvaluator) Clear() {
	if e.stability != nil {
		e.stability.Clear()
	}
}

func (e *PhaseEvaluator) firstScore(pos *board.Position, movesPlayed int) int32 {
	const us, them = board.First, board.Second

	coin := parity(pos.Count(us), pos.Count(them))
	mobility := parity(pos.LegalMoves(us).PopCount(), pos.LegalMoves(them).PopCount())
	utility := int64(utilityScale * (utilityOf(pos.Occupancy(us)) - utilityOf(pos.Occupancy(them))))

	stableUs, stableThem := e.stableCounts(pos)
	stability := parity(stableUs, stableThem)

	w := phaseFor(movesPlayed)
	total := w.coin*coin + w.mobility*mobility + w.utility*utility + w.stability*stability
	return int32(total / w.sum())
}

func (e *PhaseEvaluator) stableCounts(pos *board.Position) (int, int) {
	if e.stability == nil {
		return pos.StableDiscs(board.First).PopCount(), pos.StableDiscs(board.Second).PopCount()
	}

	if first, second, ok := e.stability.Probe(pos); ok {
		return first, second
	}

	first := pos.StableDiscs(board.First).PopCount()
	second := pos.StableDiscs(board.Second).PopCount()
	e.stability.Store(pos, first, second)
	return first, second
}

// CoinEvaluator scores by plain disc difference. It is the fixed-depth
// reference heuristic used by the minimax harness.
type CoinEvaluator struct{}

// Score implements Evaluator.
func (CoinEvaluator) Score(pos *board.Position, side board.Side, _ int) int32 {
	if pos.IsTerminal() {
		return terminalScore(pos, side)
	}
	return int32(pos.Count(side) - pos.Count(side.Opposite()))
}
