// Package chain analyses the chains of cells left on a board once no safe
// move remains. Nodes are unclaimed cells, edges are the open lines between
// two of them.
package chain

import (
	"errors"
	"fmt"

	"github.com/hailam/dotsplay/internal/board"
)

// ErrDirection is returned when two cells expected to share an edge are not
// adjacent.
var ErrDirection = errors.New("cannot determine edge direction")

// Node is a cell of the board.
type Node struct {
	X, Y int
}

// Path is an open line between two unclaimed cells. A is the left or upper
// cell. CountA and CountB are the surrounding-edge counts of the cells when
// the graph was built.
type Path struct {
	A, B   Node
	CountA int
	CountB int
}

// Other returns the end of p that is not n.
func (p Path) Other(n Node) Node {
	if p.A == n {
		return p.B
	}
	return p.A
}

// Touches reports whether n is an end of p.
func (p Path) Touches(n Node) bool {
	return p.A == n || p.B == n
}

// Graph is the dual graph of the open lines of a board.
type Graph struct {
	width  int
	height int
	counts []int
	paths  []Path
	adj    [][]int // path indices per cell, indexed x*height + y
}

// Build creates the graph for b. Paths are ordered like board.ValidMoves.
func Build(b *board.Board) *Graph {
	w, h := b.Width(), b.Height()
	g := &Graph{
		width:  w,
		height: h,
		counts: make([]int, w*h),
		adj:    make([][]int, w*h),
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			g.counts[g.idx(Node{x, y})] = b.CountSurroundingEdges(x, y)
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if b.Cell(x, y).Owner != board.NoPlayer {
				continue
			}
			if x+1 < w && !b.HasEdge(x, y, board.Vertical) && b.Cell(x+1, y).Owner == board.NoPlayer {
				g.add(Node{x, y}, Node{x + 1, y})
			}
			if y+1 < h && !b.HasEdge(x, y, board.Horizontal) && b.Cell(x, y+1).Owner == board.NoPlayer {
				g.add(Node{x, y}, Node{x, y + 1})
			}
		}
	}
	return g
}

func (g *Graph) idx(n Node) int { return n.X*g.height + n.Y }

func (g *Graph) add(a, b Node) {
	i := len(g.paths)
	g.paths = append(g.paths, Path{A: a, B: b, CountA: g.count(a), CountB: g.count(b)})
	g.adj[g.idx(a)] = append(g.adj[g.idx(a)], i)
	g.adj[g.idx(b)] = append(g.adj[g.idx(b)], i)
}

func (g *Graph) count(n Node) int { return g.counts[g.idx(n)] }

// Paths returns the paths of the graph.
func (g *Graph) Paths() []Path { return g.paths }

// Edges returns the indices of the paths leaving n.
func (g *Graph) Edges(n Node) []int { return g.adj[g.idx(n)] }

// Move converts p to the edge move that closes it.
func (p Path) Move(player board.Player, source string) (board.Move, error) {
	return EdgeBetween(p.A, p.B, player, source)
}

// EdgeBetween returns the move for the line shared by two neighbouring
// cells.
func EdgeBetween(a, b Node, player board.Player, source string) (board.Move, error) {
	switch {
	case a.Y == b.Y && a.X+1 == b.X:
		return board.NewMove(a.X, a.Y, board.Vertical, player, source), nil
	case a.Y == b.Y && b.X+1 == a.X:
		return board.NewMove(b.X, b.Y, board.Vertical, player, source), nil
	case a.X == b.X && a.Y+1 == b.Y:
		return board.NewMove(a.X, a.Y, board.Horizontal, player, source), nil
	case a.X == b.X && b.Y+1 == a.Y:
		return board.NewMove(b.X, b.Y, board.Horizontal, player, source), nil
	}
	return board.Move{}, fmt.Errorf("%w: cells (%d,%d) and (%d,%d) are not adjacent", ErrDirection, a.X, a.Y, b.X, b.Y)
}
