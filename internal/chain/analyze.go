package chain

import (
	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/board"
)

// Analysis is the result of Analyze.
type Analysis struct {
	// Best is the index of the chosen path, -1 if the graph has none.
	Best int
	// Length is the chain length opened by Best.
	Length int
	// Greedy is set when a chain of length one stopped the search early.
	Greedy bool
	// Lengths holds the computed length per path, 0 where none was computed.
	Lengths []int
}

// Analyze measures the chains of the graph and picks the path opening the
// shortest one.
//
// First every chain start, a path from a cell with one closed side into a
// cell with two, is followed forward through cells with two closed sides.
// A start of length one is returned at once. Then the paths no walk has
// consumed yet are walked the same way, which covers closed loops. The
// shortest length wins and ties go to the path found first. Chains are only
// walked away from the start cell, never back past it.
func (g *Graph) Analyze() Analysis {
	a := Analysis{Best: -1, Lengths: make([]int, len(g.paths))}
	consumed := make([]bool, len(g.paths))

	for i, p := range g.paths {
		var low, high Node
		switch {
		case p.CountA == 1 && p.CountB == 2:
			low, high = p.A, p.B
		case p.CountA == 2 && p.CountB == 1:
			low, high = p.B, p.A
		default:
			continue
		}
		consumed[i] = true
		n := g.walk(i, low, high, consumed)
		a.Lengths[i] = n
		if n == 1 {
			a.Best, a.Length, a.Greedy = i, 1, true
			return a
		}
	}

	for i, p := range g.paths {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		a.Lengths[i] = g.walk(i, p.A, p.B, consumed)
	}

	for i, n := range a.Lengths {
		if n > 0 && (a.Best < 0 || n < a.Length) {
			a.Best, a.Length = i, n
		}
	}
	return a
}

// walk follows the chain entered through path origin from cell from into
// cell at and returns the chain length. Every path walked is marked in
// consumed. The visited set is local to one walk.
func (g *Graph) walk(origin int, from, at Node, consumed []bool) int {
	if g.count(at) != 2 {
		return 1
	}
	visited := map[int]bool{origin: true}
	length := 1
	for g.count(at) == 2 {
		next := g.next(at, from, visited)
		if next < 0 {
			return length
		}
		visited[next] = true
		consumed[next] = true
		length++
		from, at = at, g.paths[next].Other(at)
	}
	// the chain ended on a cell the opponent cannot take
	return length - 1
}

// next returns the first unvisited path leaving at that does not lead back
// to from, or -1.
func (g *Graph) next(at, from Node, visited map[int]bool) int {
	for _, i := range g.adj[g.idx(at)] {
		if !visited[i] && !g.paths[i].Touches(from) {
			return i
		}
	}
	return -1
}

// SmallestChainMove returns the move opening the shortest chain of b.
func SmallestChainMove(b *board.Board, p board.Player, source string) (board.Move, error) {
	g := Build(b)
	if len(g.paths) == 0 {
		return board.Move{}, board.ErrNoMovesAvailable
	}
	a := g.Analyze()
	path := g.paths[a.Best]
	log.Debug().
		Str("source", source).
		Int("paths", len(g.paths)).
		Int("length", a.Length).
		Bool("greedy", a.Greedy).
		Msg("smallest chain")
	return path.Move(p, source)
}
