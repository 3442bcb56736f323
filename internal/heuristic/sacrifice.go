package heuristic

import "github.com/hailam/dotsplay/internal/board"

// SacrificeMoves returns edges that hand the opponent exactly one cell. It
// looks at cells with two closed sides: playing one of the two open sides
// gives the cell away, and the cells behind both open sides must have fewer
// than two closed sides so the capture does not continue into them.
//
// A candidate appears once per matching pattern.
func SacrificeMoves(b *board.Board, counts Counts, p board.Player, source string) []board.Move {
	var moves []board.Move
	w, h := b.Width(), b.Height()

	// calm reports whether the cell at (x, y) is outside the grid or has
	// fewer than two closed sides.
	calm := func(x, y int) bool {
		return !b.InBounds(x, y) || counts[x][y] < 2
	}
	add := func(x, y int, o board.Orientation) {
		if x < 0 || y < 0 {
			return
		}
		if o == board.Vertical && x+1 >= w || o == board.Horizontal && y+1 >= h {
			return
		}
		moves = append(moves, board.NewMove(x, y, o, p, source))
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if counts[x][y] != 2 {
				continue
			}
			s := sidesOf(b, x, y)
			switch {
			case s.left && s.top:
				if calm(x+1, y) && calm(x, y+1) {
					add(x, y, board.Vertical)
					add(x, y, board.Horizontal)
				}
			case s.right && s.top:
				if calm(x-1, y) && calm(x, y+1) {
					add(x-1, y, board.Vertical)
					add(x, y, board.Horizontal)
				}
			case s.left && s.bottom:
				if calm(x+1, y) && calm(x, y-1) {
					add(x, y, board.Vertical)
					add(x, y-1, board.Horizontal)
				}
			case s.right && s.bottom:
				if calm(x-1, y) && calm(x, y-1) {
					add(x-1, y, board.Vertical)
					add(x, y-1, board.Horizontal)
				}
			case s.left && s.right:
				if calm(x, y-1) && calm(x, y+1) {
					add(x, y-1, board.Horizontal)
					add(x, y, board.Horizontal)
				}
			case s.top && s.bottom:
				if calm(x-1, y) && calm(x+1, y) {
					add(x, y, board.Vertical)
					add(x-1, y, board.Vertical)
				}
			}
		}
	}
	return moves
}
