package book

import "github.com/hailam/othelloplay/internal/board"

// symmetry maps a square onto its image under one of the board symmetries
// that leave the opening position unchanged.
type symmetry func(x, y int) (int, int)

var openingSymmetries = []symmetry{
	func(x, y int) (int, int) { return x, y },         // identity
	func(x, y int) (int, int) { return y, x },         // main diagonal
	func(x, y int) (int, int) { return 7 - x, 7 - y }, // half turn
	func(x, y int) (int, int) { return 7 - y, 7 - x }, // anti-diagonal
}

func (s symmetry) apply(sq board.Square) board.Square {
	return board.NewSquare(s(sq.X(), sq.Y()))
}

// Reference lines, written for Black opening at f5.
var (
	openingMove = board.NewSquare(5, 4) // f5

	// White's replies with their weights.
	openingReplies = []Entry{
		{Move: board.NewSquare(3, 5), Weight: 3}, // d6, perpendicular
		{Move: board.NewSquare(5, 5), Weight: 2}, // f6, diagonal
		{Move: board.NewSquare(5, 3), Weight: 1}, // f4, parallel
	}
)

// Standard returns a book covering the first two plies: Black's four
// equivalent openings and White's usual replies to each.
func Standard() *Book {
	b := New()
	start := board.NewPosition()

	for _, sym := range openingSymmetries {
		first := sym.apply(openingMove)
		b.Add(&start, board.First, first, 1)

		after, ok := start.CopyAndApplyMove(first, board.First)
		if !ok {
			continue
		}
		for _, reply := range openingReplies {
			b.Add(&after, board.Second, sym.apply(reply.Move), reply.Weight)
		}
	}

	return b
}
