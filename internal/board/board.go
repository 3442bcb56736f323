package board

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// HumanLabel is the default player label.
const HumanLabel = "Human"

// Cell is one box of the grid. It owns only its right and bottom edges; the
// left and top edges belong to the neighbouring cells or to the border.
type Cell struct {
	Owner  Player
	Right  Player
	Bottom Player
}

// Board is the dots-and-boxes game state. It is not safe for concurrent use.
type Board struct {
	width  int
	height int
	cells  []Cell // column-major: index x*height + y

	current   Player
	labels    [3]string
	movesMade int
	remaining int
	score     [3]int
	winner    Outcome

	lastMove    Move
	hasLastMove bool

	// history[:pointer] is the applied line, history[pointer:] can be redone.
	history []Move
	pointer int
}

// ApplyOptions modifies ApplyMoveWith.
type ApplyOptions struct {
	SkipHistory bool // do not record the move, it cannot be undone
	IgnoreTurn  bool // skip the current-player and source-label checks
}

// NewBoard creates an empty board of width x height cells. Player 1 moves
// first and both players are labelled HumanLabel.
func NewBoard(width, height int) *Board {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b := &Board{
		width:   width,
		height:  height,
		cells:   make([]Cell, width*height),
		current: Player1,
		labels:  [3]string{"", HumanLabel, HumanLabel},
	}
	b.remaining = b.TotalEdges()
	if b.remaining == 0 {
		b.winner = b.outcome()
	}
	return b
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// TotalEdges returns the number of placeable edges of an empty board.
func (b *Board) TotalEdges() int {
	return 2*b.width*b.height - b.width - b.height
}

// CurrentPlayer returns the player to move.
func (b *Board) CurrentPlayer() Player { return b.current }

// Label returns the actor label of p.
func (b *Board) Label(p Player) string {
	if !p.Valid() {
		return ""
	}
	return b.labels[p]
}

// SetLabel sets the actor label of p. Moves for p must carry this label as
// their Source unless the turn check is skipped.
func (b *Board) SetLabel(p Player, label string) {
	if p.Valid() {
		b.labels[p] = label
	}
}

// Score returns the number of cells owned by p.
func (b *Board) Score(p Player) int {
	if !p.Valid() {
		return 0
	}
	return b.score[p]
}

// Winner returns the game outcome.
func (b *Board) Winner() Outcome { return b.winner }

// GameOver reports whether all edges are placed.
func (b *Board) GameOver() bool { return b.winner != Ongoing }

// MovesMade returns the number of edges placed.
func (b *Board) MovesMade() int { return b.movesMade }

// RemainingMoves returns the number of open edges.
func (b *Board) RemainingMoves() int { return b.remaining }

// LastMove returns the most recently applied move.
func (b *Board) LastMove() (Move, bool) { return b.lastMove, b.hasLastMove }

// History returns a copy of the full move history including redo-able
// entries beyond the pointer.
func (b *Board) History() []Move {
	out := make([]Move, len(b.history))
	copy(out, b.history)
	return out
}

// HistoryPointer returns the number of history entries currently applied.
func (b *Board) HistoryPointer() int { return b.pointer }

// InBounds reports whether (x, y) is a cell of the grid.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Board) idx(x, y int) int { return x*b.height + y }

// Cell returns the cell at (x, y). The coordinates must be in bounds.
func (b *Board) Cell(x, y int) Cell { return b.cells[b.idx(x, y)] }

// HasEdge reports whether the edge named by (x, y, o) is set.
func (b *Board) HasEdge(x, y int, o Orientation) bool {
	c := b.cells[b.idx(x, y)]
	if o == Horizontal {
		return c.Bottom != NoPlayer
	}
	return c.Right != NoPlayer
}

// CountSurroundingEdges returns how many of the four sides of (x, y) are
// closed. Border sides always count.
func (b *Board) CountSurroundingEdges(x, y int) int {
	n := 0
	c := b.cells[b.idx(x, y)]
	if x+1 >= b.width || c.Right != NoPlayer {
		n++
	}
	if y+1 >= b.height || c.Bottom != NoPlayer {
		n++
	}
	if x == 0 || b.cells[b.idx(x-1, y)].Right != NoPlayer {
		n++
	}
	if y == 0 || b.cells[b.idx(x, y-1)].Bottom != NoPlayer {
		n++
	}
	return n
}

// Validate checks m against the board. With enforceTurn the mover must be
// the current player and carry that player's label. A nil error means
// ApplyMoveWith would succeed.
func (b *Board) Validate(m Move, enforceTurn bool) error {
	if enforceTurn {
		if m.Player != b.current {
			return invalid(m, ErrWrongPlayer, "player %s is to move", b.current)
		}
		if m.Source != b.labels[b.current] {
			return invalid(m, ErrWrongSource, "expected %q for player %s", b.labels[b.current], b.current)
		}
	} else if !m.Player.Valid() {
		return invalid(m, ErrWrongPlayer, "unknown player %d", m.Player)
	}
	if !b.InBounds(m.X, m.Y) {
		return invalid(m, ErrOutOfBounds, "board is %dx%d", b.width, b.height)
	}
	c := b.cells[b.idx(m.X, m.Y)]
	if m.Orientation == Horizontal {
		if m.Y+1 >= b.height {
			return invalid(m, ErrEdgeOutOfRange, "horizontal edge on the bottom border")
		}
		if c.Bottom != NoPlayer {
			return invalid(m, ErrEdgeOccupied, "bottom edge set by player %s", c.Bottom)
		}
		return nil
	}
	if m.X+1 >= b.width {
		return invalid(m, ErrEdgeOutOfRange, "vertical edge on the right border")
	}
	if c.Right != NoPlayer {
		return invalid(m, ErrEdgeOccupied, "right edge set by player %s", c.Right)
	}
	return nil
}

// IsMoveValid reports whether m may be applied by the player to move.
func (b *Board) IsMoveValid(m Move) bool {
	return b.Validate(m, true) == nil
}

// ApplyMove validates and applies m for the current player, recording it in
// the history. It returns the number of cells captured.
func (b *Board) ApplyMove(m Move) (int, error) {
	return b.ApplyMoveWith(m, ApplyOptions{})
}

// ApplyMoveWith applies m with the given options. On error the board is
// unchanged. Recording a move discards any redo-able history first.
func (b *Board) ApplyMoveWith(m Move, opts ApplyOptions) (int, error) {
	if err := b.Validate(m, !opts.IgnoreTurn); err != nil {
		return 0, err
	}

	i := b.idx(m.X, m.Y)
	if m.Orientation == Horizontal {
		b.cells[i].Bottom = m.Player
	} else {
		b.cells[i].Right = m.Player
	}

	captured := b.capture(m.X, m.Y, m.Player)
	if m.Orientation == Horizontal {
		captured += b.capture(m.X, m.Y+1, m.Player)
	} else {
		captured += b.capture(m.X+1, m.Y, m.Player)
	}
	if captured == 0 {
		b.current = b.current.Other()
	}

	b.lastMove, b.hasLastMove = m, true
	if !opts.SkipHistory {
		b.TruncateHistory()
		b.history = append(b.history, m)
		b.pointer++
	}
	b.movesMade++
	b.remaining--
	if b.remaining == 0 {
		b.winner = b.outcome()
	}
	return captured, nil
}

func (b *Board) capture(x, y int, p Player) int {
	if !b.InBounds(x, y) {
		return 0
	}
	i := b.idx(x, y)
	if b.cells[i].Owner != NoPlayer || b.CountSurroundingEdges(x, y) != 4 {
		return 0
	}
	b.cells[i].Owner = p
	b.score[p]++
	return 1
}

func (b *Board) outcome() Outcome {
	switch {
	case b.score[Player1] > b.score[Player2]:
		return Player1Wins
	case b.score[Player2] > b.score[Player1]:
		return Player2Wins
	}
	return Draw
}

// UndoOneMove reverts the last applied history entry. The entry stays in the
// history and can be re-applied with RedoOneMove until TruncateHistory or a
// new recorded move discards it.
func (b *Board) UndoOneMove() error {
	if b.pointer == 0 {
		return ErrNoHistory
	}
	b.pointer--
	m := b.history[b.pointer]

	// A cell next to the removed edge can no longer be complete.
	b.release(m.X, m.Y)
	if m.Orientation == Horizontal {
		b.cells[b.idx(m.X, m.Y)].Bottom = NoPlayer
		b.release(m.X, m.Y+1)
	} else {
		b.cells[b.idx(m.X, m.Y)].Right = NoPlayer
		b.release(m.X+1, m.Y)
	}

	if b.pointer > 0 {
		b.current = m.Player
	} else {
		b.current = Player1
	}
	b.movesMade--
	b.remaining++
	b.winner = Ongoing
	if b.pointer > 0 {
		b.lastMove, b.hasLastMove = b.history[b.pointer-1], true
	} else {
		b.lastMove, b.hasLastMove = Move{}, false
	}
	return nil
}

func (b *Board) release(x, y int) {
	if !b.InBounds(x, y) {
		return
	}
	i := b.idx(x, y)
	if owner := b.cells[i].Owner; owner != NoPlayer {
		b.score[owner]--
		b.cells[i].Owner = NoPlayer
	}
}

// RedoOneMove re-applies the history entry after the pointer.
func (b *Board) RedoOneMove() error {
	if b.pointer >= len(b.history) {
		return ErrNoHistory
	}
	m := b.history[b.pointer]
	if _, err := b.ApplyMoveWith(m, ApplyOptions{SkipHistory: true, IgnoreTurn: true}); err != nil {
		return err
	}
	b.pointer++
	return nil
}

// TruncateHistory discards every history entry beyond the pointer.
func (b *Board) TruncateHistory() {
	b.history = b.history[:b.pointer]
}

// ValidMoves returns every open edge as a move for the current player,
// labelled with that player's label. Columns are scanned left to right and
// each column top to bottom, the right edge before the bottom edge.
func (b *Board) ValidMoves() []Move {
	moves := make([]Move, 0, b.remaining)
	source := b.labels[b.current]
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			c := b.cells[b.idx(x, y)]
			if x+1 < b.width && c.Right == NoPlayer {
				moves = append(moves, Move{X: x, Y: y, Orientation: Vertical, Player: b.current, Source: source})
			}
			if y+1 < b.height && c.Bottom == NoPlayer {
				moves = append(moves, Move{X: x, Y: y, Orientation: Horizontal, Player: b.current, Source: source})
			}
		}
	}
	return moves
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	nb := *b
	nb.cells = make([]Cell, len(b.cells))
	copy(nb.cells, b.cells)
	nb.history = make([]Move, len(b.history))
	copy(nb.history, b.history)
	return &nb
}

// ContentHash returns a hex SHA-1 over the size, every cell and the player to
// move.
func (b *Board) ContentHash() string {
	return b.hash("")
}

// GameHash is ContentHash prefixed with a game name. Network peers compare
// it to detect a desynchronised board.
func (b *Board) GameHash(name string) string {
	return b.hash(name + "-")
}

func (b *Board) hash(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(strconv.Itoa(b.width))
	sb.WriteByte('-')
	sb.WriteString(strconv.Itoa(b.height))
	sb.WriteByte('-')
	for x := 0; x < b.width; x++ {
		if x > 0 {
			sb.WriteByte('_')
		}
		for y := 0; y < b.height; y++ {
			if y > 0 {
				sb.WriteByte(';')
			}
			c := b.cells[b.idx(x, y)]
			sb.WriteString(strconv.Itoa(int(c.Owner)))
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(c.Right)))
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(c.Bottom)))
		}
	}
	sb.WriteByte('-')
	sb.WriteString(strconv.Itoa(int(b.current)))
	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// String renders the board as ASCII art, one text row per cell row plus the
// horizontal edges between them.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("+---", b.width))
	sb.WriteString("+\n")
	for y := 0; y < b.height; y++ {
		sb.WriteByte('|')
		for x := 0; x < b.width; x++ {
			c := b.cells[b.idx(x, y)]
			if c.Owner != NoPlayer {
				sb.WriteString(" " + c.Owner.String() + " ")
			} else {
				sb.WriteString("   ")
			}
			if x+1 >= b.width || c.Right != NoPlayer {
				sb.WriteByte('|')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
		for x := 0; x < b.width; x++ {
			if y+1 >= b.height || b.cells[b.idx(x, y)].Bottom != NoPlayer {
				sb.WriteString("+---")
			} else {
				sb.WriteString("+   ")
			}
		}
		sb.WriteString("+\n")
	}
	sb.WriteString("Player 1 (" + b.labels[Player1] + "): " + strconv.Itoa(b.score[Player1]))
	sb.WriteString("  Player 2 (" + b.labels[Player2] + "): " + strconv.Itoa(b.score[Player2]) + "\n")
	if b.winner != Ongoing {
		sb.WriteString("Result: " + b.winner.String() + "\n")
	} else {
		sb.WriteString("To move: player " + b.current.String() + "\n")
	}
	return sb.String()
}
