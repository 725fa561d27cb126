package board

// maxRun is the longest run of opponent discs that can sit between a
// placement and a bracketing disc on an 8-wide board.
const maxRun = 6

// generateMoves returns every empty square where own can bracket at least one
// opponent disc. For each direction the own discs are shifted across runs of
// opponent discs, then one more step onto an empty square.
func generateMoves(own, opp Bitboard) Bitboard {
	empty := ^(own | opp)
	var moves Bitboard

	for _, shift := range directionShift {
		run := shift(own) & opp
		for i := 1; i < maxRun; i++ {
			run |= shift(run) & opp
		}
		moves |= shift(run) & empty
	}

	return moves
}

// flipsFrom returns the opponent discs flipped by own placing at sq.
// A direction contributes only when its walk over opponent discs ends on an own disc.
func flipsFrom(own, opp Bitboard, sq Square) Bitboard {
	var flipped Bitboard
	origin := SquareBB(sq)

	for _, shift := range directionShift {
		var run Bitboard
		cur := shift(origin)
		for cur&opp != 0 {
			run |= cur
			cur = shift(cur)
		}
		if cur&own != 0 {
			flipped |= run
		}
	}

	return flipped
}

// LegalMoves returns the cached bitboard of squares side may play on.
func (p *Position) LegalMoves(side Side) Bitboard {
	return p.moves[side]
}

// HasLegalMove returns true if side has at least one placement.
func (p *Position) HasLegalMove(side Side) bool {
	return p.moves[side] != 0
}

// IsTerminal returns true if neither side can place a disc.
func (p *Position) IsTerminal() bool {
	return p.moves[First]|p.moves[Second] == 0
}

// CheckMove reports whether side may play sq. Pass is legal only when side
// has no placement.
func (p *Position) CheckMove(sq Square, side Side) bool {
	if sq == Pass {
		return !p.HasLegalMove(side)
	}
	if sq > Pass {
		return false
	}
	return p.moves[side].IsSet(sq)
}

// Flips returns the discs that side playing sq would turn over.
// The result is empty for illegal placements.
func (p *Position) Flips(sq Square, side Side) Bitboard {
	if !p.CheckMove(sq, side) || sq == Pass {
		return 0
	}
	return flipsFrom(p.occ[side], p.occ[side.Opposite()], sq)
}

// MoveList returns side's legal squares in ascending order.
func (p *Position) MoveList(side Side) []Square {
	return p.moves[side].Squares()
}

// updateMoves recomputes the legal-move cache for both sides.
func (p *Position) updateMoves() {
	p.moves[First] = generateMoves(p.occ[First], p.occ[Second])
	p.moves[Second] = generateMoves(p.occ[Second], p.occ[First])
}
