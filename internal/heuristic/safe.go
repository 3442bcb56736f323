package heuristic

import "github.com/hailam/dotsplay/internal/board"

// Adjacency selects which existing edges make a safe move good.
type Adjacency int

const (
	// Corner prefers moves forming a right angle with an existing edge.
	// Each such edge adds one more entry for the move to Good.
	Corner Adjacency = iota
	// Neighbour prefers moves touching a collinear edge, a border or the
	// edge of the same cell meeting the move's end point.
	Neighbour
)

// SafeSet is the result of SafeMoves.
type SafeSet struct {
	Safe []board.Move // no adjacent cell reaches three closed sides
	Good []board.Move // safe moves next to existing structure
}

// SafeMoves classifies the open edges whose adjacent cells both have fewer
// than two closed sides, so playing them never offers a capture.
func SafeMoves(b *board.Board, counts Counts, adj Adjacency, p board.Player, source string) SafeSet {
	var set SafeSet
	w, h := b.Width(), b.Height()
	has := func(x, y int, o board.Orientation) bool { return b.HasEdge(x, y, o) }

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x+1 < w && !has(x, y, board.Vertical) && counts[x][y] < 2 && counts[x+1][y] < 2 {
				m := board.NewMove(x, y, board.Vertical, p, source)
				set.Safe = append(set.Safe, m)
				if adj == Corner {
					// bottom left, bottom right, top left, top right
					for _, hit := range []bool{
						has(x, y, board.Horizontal),
						has(x+1, y, board.Horizontal),
						y > 0 && has(x, y-1, board.Horizontal),
						y > 0 && has(x+1, y-1, board.Horizontal),
					} {
						if hit {
							set.Good = append(set.Good, m)
						}
					}
				} else if has(x, y, board.Horizontal) || y == 0 || has(x, y-1, board.Vertical) ||
					y+1 == h || has(x, y+1, board.Vertical) {
					set.Good = append(set.Good, m)
				}
			}

			if y+1 < h && !has(x, y, board.Horizontal) && counts[x][y] < 2 && counts[x][y+1] < 2 {
				m := board.NewMove(x, y, board.Horizontal, p, source)
				set.Safe = append(set.Safe, m)
				if adj == Corner {
					// top right, top left, bottom right, bottom left
					for _, hit := range []bool{
						has(x, y, board.Vertical),
						x > 0 && has(x-1, y, board.Vertical),
						has(x, y+1, board.Vertical),
						x > 0 && has(x-1, y+1, board.Vertical),
					} {
						if hit {
							set.Good = append(set.Good, m)
						}
					}
				} else if has(x, y, board.Vertical) || x == 0 || has(x-1, y, board.Horizontal) ||
					x+1 == w || has(x+1, y, board.Horizontal) {
					set.Good = append(set.Good, m)
				}
			}
		}
	}
	return set
}

// SafeMove picks a random good move, then a random safe move.
func SafeMove(b *board.Board, counts Counts, adj Adjacency, p board.Player, source string) (board.Move, bool) {
	set := SafeMoves(b, counts, adj, p, source)
	if m, ok := Pick(set.Good); ok {
		return m, true
	}
	return Pick(set.Safe)
}
