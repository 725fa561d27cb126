package board

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Position represents an Othello position: one occupancy bitboard per side
// plus the legal-move bitboards derived from them.
//
// Position is a value type. Assigning it copies the board; mutation happens
// only through Place and ApplyMove, both of which refresh the move cache.
type Position struct {
	occ   [2]Bitboard // Discs of each side, always disjoint
	moves [2]Bitboard // Cached legal placements of each side
}

// NewPosition creates the standard four-disc opening.
func NewPosition() Position {
	var p Position
	p.occ[First] = SquareBB(NewSquare(4, 3)) | SquareBB(NewSquare(3, 4))
	p.occ[Second] = SquareBB(NewSquare(3, 3)) | SquareBB(NewSquare(4, 4))
	p.updateMoves()
	return p
}

// Empty returns a position with no discs.
func Empty() Position {
	return Position{}
}

// FromBitboards builds a position from explicit occupancy. Discs claimed by
// both sides are kept by first.
func FromBitboards(first, second Bitboard) Position {
	var p Position
	p.occ[First] = first
	p.occ[Second] = second &^ first
	p.updateMoves()
	return p
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() Position {
	return *p
}

// IsOccupied returns true if any disc sits on sq.
func (p *Position) IsOccupied(sq Square) bool {
	return (p.occ[First] | p.occ[Second]).IsSet(sq)
}

// Owner returns the side owning sq, and false if sq is empty.
func (p *Position) Owner(sq Square) (Side, bool) {
	switch {
	case p.occ[First].IsSet(sq):
		return First, true
	case p.occ[Second].IsSet(sq):
		return Second, true
	}
	return First, false
}

// Occupancy returns the discs of side.
func (p *Position) Occupancy(side Side) Bitboard {
	return p.occ[side]
}

// Occupied returns every disc on the board.
func (p *Position) Occupied() Bitboard {
	return p.occ[First] | p.occ[Second]
}

// Place sets sq to side without flipping anything. It is meant for building
// fixture positions, not for play.
func (p *Position) Place(side Side, sq Square) {
	if !sq.IsValid() {
		return
	}
	bb := SquareBB(sq)
	p.occ[side] |= bb
	p.occ[side.Opposite()] &^= bb
	p.updateMoves()
	assertDisjoint(p)
}

// ApplyMove plays sq for side. It returns false, leaving the board untouched,
// when the move is illegal. A pass succeeds only if side has no placement and
// never changes the board.
func (p *Position) ApplyMove(sq Square, side Side) bool {
	if !p.CheckMove(sq, side) {
		return false
	}
	if sq == Pass {
		return true
	}

	opp := side.Opposite()
	flipped := flipsFrom(p.occ[side], p.occ[opp], sq)

	p.occ[side] |= flipped | SquareBB(sq)
	p.occ[opp] &^= flipped
	p.updateMoves()
	assertDisjoint(p)

	return true
}

// CopyAndApplyMove returns a copy of the position with sq played by side.
// The receiver is not modified. The boolean mirrors ApplyMove.
func (p *Position) CopyAndApplyMove(sq Square, side Side) (Position, bool) {
	child := *p
	ok := child.ApplyMove(sq, side)
	return child, ok
}

// Count returns the number of discs side has on the board.
func (p *Position) Count(side Side) int {
	return p.occ[side].PopCount()
}

// Empties returns the number of empty squares.
func (p *Position) Empties() int {
	return 64 - p.Occupied().PopCount()
}

// Winner returns the side with more discs, and false on a tie.
func (p *Position) Winner() (Side, bool) {
	first, second := p.Count(First), p.Count(Second)
	switch {
	case first > second:
		return First, true
	case second > first:
		return Second, true
	}
	return First, false
}

// Hash returns a 64-bit digest of the occupancy pair.
func (p *Position) Hash() uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(p.occ[First]))
	binary.LittleEndian.PutUint64(buf[8:], uint64(p.occ[Second]))
	return xxhash.Sum64(buf[:])
}

// String returns a visual representation of the position.
// Black discs print as X and white discs as O.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for y := 0; y < Size; y++ {
		sb.WriteByte(byte('1' + y))
		sb.WriteByte(' ')
		for x := 0; x < Size; x++ {
			sq := NewSquare(x, y)
			switch {
			case p.occ[First].IsSet(sq):
				sb.WriteString("X ")
			case p.occ[Second].IsSet(sq):
				sb.WriteString("O ")
			default:
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
