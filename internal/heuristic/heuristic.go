// Package heuristic holds the move finders the strategies are composed of.
// Every finder is a pure function of the board and never mutates it.
package heuristic

import (
	"lukechampine.com/frand"

	"github.com/hailam/dotsplay/internal/board"
)

// Counts holds the surrounding-edge count of every cell, indexed [x][y].
type Counts [][]int

// SurroundingCounts computes the surrounding-edge count of every cell.
func SurroundingCounts(b *board.Board) Counts {
	c := make(Counts, b.Width())
	for x := range c {
		c[x] = make([]int, b.Height())
		for y := range c[x] {
			c[x][y] = b.CountSurroundingEdges(x, y)
		}
	}
	return c
}

// CaptureMove returns the move completing the first cell found with three
// closed sides, scanning columns left to right and each column top to
// bottom. The missing side is reported in the order right, bottom, left, top.
func CaptureMove(b *board.Board, p board.Player, source string) (board.Move, bool) {
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if m, ok := completing(b, x, y, p, source); ok {
				return m, true
			}
		}
	}
	return board.Move{}, false
}

func completing(b *board.Board, x, y int, p board.Player, source string) (board.Move, bool) {
	if b.Cell(x, y).Owner != board.NoPlayer || b.CountSurroundingEdges(x, y) != 3 {
		return board.Move{}, false
	}
	s := sidesOf(b, x, y)
	switch {
	case !s.right:
		return board.NewMove(x, y, board.Vertical, p, source), true
	case !s.bottom:
		return board.NewMove(x, y, board.Horizontal, p, source), true
	case !s.left:
		return board.NewMove(x-1, y, board.Vertical, p, source), true
	default:
		return board.NewMove(x, y-1, board.Horizontal, p, source), true
	}
}

// sides records which sides of a cell are closed, borders included.
type sides struct {
	right, bottom, left, top bool
}

func sidesOf(b *board.Board, x, y int) sides {
	c := b.Cell(x, y)
	return sides{
		right:  x+1 >= b.Width() || c.Right != board.NoPlayer,
		bottom: y+1 >= b.Height() || c.Bottom != board.NoPlayer,
		left:   x == 0 || b.Cell(x-1, y).Right != board.NoPlayer,
		top:    y == 0 || b.Cell(x, y-1).Bottom != board.NoPlayer,
	}
}

// FirstMove returns the first open edge in ValidMoves order.
func FirstMove(b *board.Board, p board.Player, source string) (board.Move, error) {
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if x+1 < b.Width() && !b.HasEdge(x, y, board.Vertical) {
				return board.NewMove(x, y, board.Vertical, p, source), nil
			}
			if y+1 < b.Height() && !b.HasEdge(x, y, board.Horizontal) {
				return board.NewMove(x, y, board.Horizontal, p, source), nil
			}
		}
	}
	return board.Move{}, board.ErrNoMovesAvailable
}

// RandomMove returns a uniformly random open edge.
func RandomMove(b *board.Board, p board.Player, source string) (board.Move, error) {
	moves := b.ValidMoves()
	if len(moves) == 0 {
		return board.Move{}, board.ErrNoMovesAvailable
	}
	m := moves[frand.Intn(len(moves))]
	m.Player, m.Source = p, source
	return m, nil
}

// Pick returns a uniformly random element of moves. A move listed several
// times is proportionally more likely.
func Pick(moves []board.Move) (board.Move, bool) {
	if len(moves) == 0 {
		return board.Move{}, false
	}
	return moves[frand.Intn(len(moves))], true
}
