package board

import (
	"math/bits"
	"strings"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = (0,0), Bit 7 = (7,0), Bit 56 = (0,7), Bit 63 = (7,7).
type Bitboard uint64

// Column masks
const (
	FileA Bitboard = 0x0101010101010101
	FileH Bitboard = 0x8080808080808080
)

// Row masks
const (
	Row1 Bitboard = 0x00000000000000FF
	Row8 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	NoSquares Bitboard = 0
	Universe  Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH

	Corners Bitboard = 1<<0 | 1<<7 | 1<<56 | 1<<63
	Edges   Bitboard = FileA | FileH | Row1 | Row8
)

// SquareBB returns a bitboard with only the given square set.
// Pass maps to the empty bitboard.
func SquareBB(sq Square) Bitboard {
	if sq >= Pass {
		return 0
	}
	return 1 << sq
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | SquareBB(sq)
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ SquareBB(sq)
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&SquareBB(sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit (lowest square index), or Pass if empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return Pass
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Shift operations. East is x+1, South is y+1; the file masks drop bits that
// would wrap around the east/west edges.

// North shifts the bitboard one row up (y-1).
func (b Bitboard) North() Bitboard {
	return b >> 8
}

// South shifts the bitboard one row down (y+1).
func (b Bitboard) South() Bitboard {
	return b << 8
}

// East shifts the bitboard one column right (x+1).
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts the bitboard one column left (x-1).
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileH
}

// NorthEast shifts the bitboard toward (7,0).
func (b Bitboard) NorthEast() Bitboard {
	return (b >> 7) & NotFileA
}

// NorthWest shifts the bitboard toward (0,0).
func (b Bitboard) NorthWest() Bitboard {
	return (b >> 9) & NotFileH
}

// SouthEast shifts the bitboard toward (7,7).
func (b Bitboard) SouthEast() Bitboard {
	return (b << 9) & NotFileA
}

// SouthWest shifts the bitboard toward (0,7).
func (b Bitboard) SouthWest() Bitboard {
	return (b << 7) & NotFileH
}

// Direction enumerates the eight ray directions.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
	NumDirections
)

// directionShift maps each direction to its shift.
var directionShift = [NumDirections]func(Bitboard) Bitboard{
	North:     Bitboard.North,
	NorthEast: Bitboard.NorthEast,
	East:      Bitboard.East,
	SouthEast: Bitboard.SouthEast,
	South:     Bitboard.South,
	SouthWest: Bitboard.SouthWest,
	West:      Bitboard.West,
	NorthWest: Bitboard.NorthWest,
}

// Shift moves every bit one step in direction d.
func (b Bitboard) Shift(d Direction) Bitboard {
	return directionShift[d](b)
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 4) % NumDirections
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for y := 0; y < Size; y++ {
		sb.WriteByte(byte('1' + y))
		sb.WriteByte(' ')
		for x := 0; x < Size; x++ {
			if b.IsSet(NewSquare(x, y)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Squares returns a slice of all squares that are set, in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
