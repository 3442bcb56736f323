package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Orientation selects which of a cell's two owned edges a move places.
type Orientation uint8

const (
	// Vertical is the right edge of the cell.
	Vertical Orientation = iota
	// Horizontal is the bottom edge of the cell.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "h"
	}
	return "v"
}

// Move places one edge. X and Y name the cell whose right (Vertical) or
// bottom (Horizontal) edge is set. Source identifies the actor that produced
// the move and is checked against the board's player labels.
type Move struct {
	X           int
	Y           int
	Orientation Orientation
	Player      Player
	Source      string
}

// NewMove creates a move for player p.
func NewMove(x, y int, o Orientation, p Player, source string) Move {
	return Move{X: x, Y: y, Orientation: o, Player: p, Source: source}
}

// SameEdge reports whether both moves target the same edge.
func (m Move) SameEdge(o Move) bool {
	return m.X == o.X && m.Y == o.Y && m.Orientation == o.Orientation
}

// String returns the protocol form of the move, e.g. "2,3,v".
func (m Move) String() string {
	return strconv.Itoa(m.X) + "," + strconv.Itoa(m.Y) + "," + m.Orientation.String()
}

// ParseMove parses the protocol form "x,y,v" or "x,y,h". Player and source
// are left for the caller to fill in.
func ParseMove(s string) (Move, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return Move{}, fmt.Errorf("invalid move string: %q", s)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move x %q: %w", parts[0], err)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move y %q: %w", parts[1], err)
	}
	var o Orientation
	switch parts[2] {
	case "v", "V":
		o = Vertical
	case "h", "H":
		o = Horizontal
	default:
		return Move{}, fmt.Errorf("invalid orientation: %q", parts[2])
	}
	return Move{X: x, Y: y, Orientation: o}, nil
}
