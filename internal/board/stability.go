package board

// axis is one of the four lines through a square.
type axis uint8

const (
	axisRow axis = iota
	axisColumn
	axisDiagonal     // NorthEast-SouthWest
	axisAntiDiagonal // NorthWest-SouthEast
	numAxes
)

// maxStabilityPasses bounds the fixed-point propagation.
const maxStabilityPasses = 8

// Pre-computed stability tables
var (
	lineMask     [numAxes][64]Bitboard // Full line through a square along an axis, square included
	neighborMask [numAxes][64]Bitboard // On-board neighbours along an axis
)

var axisDirections = [numAxes][2]Direction{
	axisRow:          {East, West},
	axisColumn:       {North, South},
	axisDiagonal:     {NorthEast, SouthWest},
	axisAntiDiagonal: {NorthWest, SouthEast},
}

func init() {
	initStabilityMasks()
}

func initStabilityMasks() {
	for sq := Square(0); sq < Pass; sq++ {
		origin := SquareBB(sq)
		for a := axisRow; a < numAxes; a++ {
			line := origin
			var near Bitboard
			for _, d := range axisDirections[a] {
				near |= origin.Shift(d)
				for ray := origin.Shift(d); ray != 0; ray = ray.Shift(d) {
					line |= ray
				}
			}
			lineMask[a][sq] = line
			neighborMask[a][sq] = near
		}
	}
}

// StableDiscs returns an under-approximation of side's discs that can never
// be flipped. Propagation starts from side's corners; without one the result
// is empty.
//
// A disc is stable when, on every axis, its line is completely filled or both
// of its neighbours on that axis are stable or off the board.
func (p *Position) StableDiscs(side Side) Bitboard {
	own := p.occ[side]
	stable := own & Corners
	if stable == 0 {
		return 0
	}

	occupied := p.Occupied()

	for pass := 0; pass < maxStabilityPasses; pass++ {
		added := false

		candidates := own &^ stable
		for candidates != 0 {
			sq := candidates.PopLSB()
			if isAnchored(sq, occupied, stable) {
				stable |= SquareBB(sq)
				added = true
			}
		}

		if !added {
			break
		}
	}

	return stable
}

func isAnchored(sq Square, occupied, stable Bitboard) bool {
	for a := axisRow; a < numAxes; a++ {
		line := lineMask[a][sq]
		if occupied&line == line {
			continue
		}
		near := neighborMask[a][sq]
		if stable&near != near {
			return false
		}
	}
	return true
}
