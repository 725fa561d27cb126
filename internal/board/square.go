// Package board implements the Othello board representation using bitboards.
package board

import "fmt"

// Square represents a square on the board (0-63).
// Index is y*8+x: (0,0)=a1 is 0, (7,0)=h1 is 7, (0,7)=a8 is 56, (7,7)=h8 is 63.
type Square uint8

// Pass is the sentinel for "no placement", the (-1,-1) coordinate pair.
const Pass Square = 64

// Size is the board width and height.
const Size = 8

// NewSquare creates a square from column x and row y (0-indexed).
func NewSquare(x, y int) Square {
	return Square(y*Size + x)
}

// FromCoords converts a coordinate pair into a square. (-1,-1) yields Pass.
func FromCoords(x, y int) (Square, error) {
	if x == -1 && y == -1 {
		return Pass, nil
	}
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return Pass, fmt.Errorf("invalid coordinates: (%d, %d)", x, y)
	}
	return NewSquare(x, y), nil
}

// X returns the column of the square (0-7).
func (sq Square) X() int {
	return int(sq) & 7
}

// Y returns the row of the square (0-7).
func (sq Square) Y() int {
	return int(sq) >> 3
}

// Coords returns (x, y), or (-1, -1) for Pass.
func (sq Square) Coords() (int, int) {
	if sq >= Pass {
		return -1, -1
	}
	return sq.X(), sq.Y()
}

// IsValid returns true if the square is a real board square (0-63).
func (sq Square) IsValid() bool {
	return sq < Pass
}

// String returns the square as column letter and row digit (e.g., "d3"), or "pass".
func (sq Square) String() string {
	if sq >= Pass {
		return "pass"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.X(), '1'+sq.Y())
}

// ParseSquare parses "d3"-style notation or "pass".
func ParseSquare(s string) (Square, error) {
	if s == "pass" || s == "--" {
		return Pass, nil
	}
	if len(s) != 2 {
		return Pass, fmt.Errorf("invalid square: %s", s)
	}

	x := int(s[0] - 'a')
	y := int(s[1] - '1')

	if x < 0 || x > 7 || y < 0 || y > 7 {
		return Pass, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(x, y), nil
}

// Side is one of the two players. First moves first and plays Black.
type Side uint8

const (
	First Side = iota
	Second
)

// Conventional colour names.
const (
	Black = First
	White = Second
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == First {
		return "black"
	}
	return "white"
}

// ParseSide accepts "black"/"white", "first"/"second" or their initials.
func ParseSide(s string) (Side, error) {
	switch s {
	case "black", "Black", "BLACK", "b", "first", "First":
		return First, nil
	case "white", "White", "WHITE", "w", "second", "Second":
		return Second, nil
	}
	return First, fmt.Errorf("invalid side: %q", s)
}
