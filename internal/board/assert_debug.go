//go:build othellodebug

package board

import "fmt"

// assertDisjoint panics if a square is owned by both sides.
func assertDisjoint(p *Position) {
	if overlap := p.occ[First] & p.occ[Second]; overlap != 0 {
		panic(fmt.Sprintf("board: overlapping occupancy\n%s", overlap))
	}
}
