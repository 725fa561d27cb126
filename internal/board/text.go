package board

import (
	"fmt"
	"strings"
)

// ParseBoard builds a position from 64 cells in row-major order, starting at
// (0,0). 'b' places a First disc, 'w' a Second disc, anything else (spaces
// included) leaves the square empty. Line breaks are ignored so fixtures can
// be written one row per line.
//
// Discs are placed directly; no move legality is checked.
func ParseBoard(s string) (Position, error) {
	cells := strings.NewReplacer("\n", "", "\r", "").Replace(s)
	if len(cells) != 64 {
		return Position{}, fmt.Errorf("invalid board: expected 64 cells, got %d", len(cells))
	}

	var first, second Bitboard
	for i := 0; i < len(cells); i++ {
		switch cells[i] {
		case 'b', 'B':
			first |= SquareBB(Square(i))
		case 'w', 'W':
			second |= SquareBB(Square(i))
		}
	}

	return FromBitboards(first, second), nil
}

// Cells returns the inverse of ParseBoard: 64 characters, 'b', 'w' or ' '.
func (p *Position) Cells() string {
	var sb strings.Builder
	sb.Grow(64)
	for sq := Square(0); sq < Pass; sq++ {
		switch {
		case p.occ[First].IsSet(sq):
			sb.WriteByte('b')
		case p.occ[Second].IsSet(sq):
			sb.WriteByte('w')
		default:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
