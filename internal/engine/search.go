package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hailam/othelloplay/internal/board"
)

// Search constants
const (
	MaxSearchDepth = 64 // Hard cap on iterative deepening
	timeCheckDepth = 3  // Remaining depth at which the deadline is polled
)

// ErrSearchAborted is returned when a search pass is cancelled before it
// completes. The partial result of that pass must be discarded.
var ErrSearchAborted = errors.New("search aborted")

// searcher runs one negascout pass. It borrows the engine's tables.
type searcher struct {
	ctx     context.Context
	eval    Evaluator
	tt      *TranspositionTable
	history *HistoryTable
	probe   bool
	nodes   uint64
}

// negascout returns the fail-soft value of pos for side and the move that
// achieved it. elapsed is the number of plies played so far in the game,
// passes included.
func (s *searcher) negascout(pos *board.Position, side board.Side, depth int, alpha, beta int32, elapsed int) (int32, board.Square, error) {
	s.nodes++

	if depth == timeCheckDepth && s.ctx.Err() != nil {
		return 0, board.Pass, ErrSearchAborted
	}

	if depth <= 0 || pos.IsTerminal() {
		return s.eval.Score(pos, side, elapsed), board.Pass, nil
	}

	opp := side.Opposite()

	// Forced pass: the opponent moves on the same board.
	if !pos.HasLegalMove(side) {
		v, _, err := s.negascout(pos, opp, depth-1, -beta, -alpha, elapsed+1)
		if err != nil {
			return 0, board.Pass, err
		}
		return -v, board.Pass, nil
	}

	// Probe transposition table. Only results searched to exactly this depth
	// may cut, so a cached value never differs from a fresh one.
	ttMove := board.Pass
	if s.probe {
		if entry, ok := s.tt.Lookup(pos, side); ok {
			ttMove = entry.Move
			if int(entry.Depth) == depth {
				switch entry.Bound {
				case BoundExact:
					return entry.Value, entry.Move, nil
				case BoundLower:
					alpha = max(alpha, entry.Value)
				case BoundUpper:
					beta = min(beta, entry.Value)
				}
				if alpha >= beta {
					return entry.Value, entry.Move, nil
				}
			}
		}
	}

	alphaOrig := alpha
	moves := s.history.Order(pos.LegalMoves(side), ttMove)

	bestValue := -Infinity
	bestMove := moves[0]

	for i, sq := range moves {
		child, _ := pos.CopyAndApplyMove(sq, side)

		var score int32
		if i == 0 {
			v, _, err := s.negascout(&child, opp, depth-1, -beta, -alpha, elapsed+1)
			if err != nil {
				return 0, board.Pass, err
			}
			score = -v
		} else {
			// Scout with a null window, re-search only if it lands inside.
			v, _, err := s.negascout(&child, opp, depth-1, -alpha-1, -alpha, elapsed+1)
			if err != nil {
				return 0, board.Pass, err
			}
			score = -v

			if alpha < score && score < beta {
				v, _, err = s.negascout(&child, opp, depth-1, -beta, -score, elapsed+1)
				if err != nil {
					return 0, board.Pass, err
				}
				score = -v
			}
		}

		if score > bestValue {
			bestValue = score
			bestMove = sq
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			s.history.Reward(sq, depth)
			break
		}
	}

	s.tt.Store(pos, side, bestValue, bestMove, alphaOrig, beta, depth)
	return bestValue, bestMove, nil
}
