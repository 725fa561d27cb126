package engine

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/hailam/othelloplay/internal/board"
)

// Endgame solver constants
const (
	endgamePollMask = 1<<12 - 1 // Poll the context every 4096 nodes
	discWindow      = 65        // Beyond any final disc difference
)

// endgameSolver searches to the end of the game and scores the final disc
// difference exactly.
type endgameSolver struct {
	ctx   context.Context
	nodes uint64
}

func newEndgameSolver(ctx context.Context) *endgameSolver {
	return &endgameSolver{ctx: ctx}
}

// Solve returns side's best move and the final disc difference it forces.
func (s *endgameSolver) Solve(pos *board.Position, side board.Side) (board.Square, int32, error) {
	moves := pos.LegalMoves(side)
	if moves == 0 {
		v, err := s.alphaBeta(pos, side, -discWindow, discWindow)
		return board.Pass, v, err
	}

	opp := side.Opposite()
	alpha, beta := int32(-discWindow), int32(discWindow)
	best := moves.LSB()

	for _, sq := range fastestFirst(pos, side, moves) {
		child, _ := pos.CopyAndApplyMove(sq, side)
		v, err := s.alphaBeta(&child, opp, -beta, -alpha)
		if err != nil {
			return board.Pass, 0, err
		}
		if -v > alpha {
			alpha = -v
			best = sq
		}
	}

	return best, alpha, nil
}

func (s *endgameSolver) alphaBeta(pos *board.Position, side board.Side, alpha, beta int32) (int32, error) {
	s.nodes++
	if s.nodes&endgamePollMask == 0 && s.ctx.Err() != nil {
		return 0, ErrSearchAborted
	}

	opp := side.Opposite()
	moves := pos.LegalMoves(side)

	if moves == 0 {
		if !pos.HasLegalMove(opp) {
			return int32(pos.Count(side) - pos.Count(opp)), nil
		}
		v, err := s.alphaBeta(pos, opp, -beta, -alpha)
		return -v, err
	}

	best := int32(-discWindow)
	for _, sq := range fastestFirst(pos, side, moves) {
		child, _ := pos.CopyAndApplyMove(sq, side)
		v, err := s.alphaBeta(&child, opp, -beta, -alpha)
		if err != nil {
			return 0, err
		}
		v = -v

		if v > best {
			best = v
		}
		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			break
		}
	}

	return best, nil
}

// fastestFirst orders moves by the opponent's reply count, fewest first.
func fastestFirst(pos *board.Position, side board.Side, moves board.Bitboard) []board.Square {
	type scored struct {
		sq      board.Square
		replies int
	}

	list := make([]scored, 0, moves.PopCount())
	for moves != 0 {
		sq := moves.PopLSB()
		child, _ := pos.CopyAndApplyMove(sq, side)
		list = append(list, scored{sq, child.LegalMoves(side.Opposite()).PopCount()})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].replies < list[j].replies
	})

	return lo.Map(list, func(m scored, _ int) board.Square { return m.sq })
}
