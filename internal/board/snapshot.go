package board

// Snapshot is a detached copy of the complete board state.
type Snapshot struct {
	Width       int
	Height      int
	Cells       []Cell
	Current     Player
	Labels      [3]string
	MovesMade   int
	Remaining   int
	Score       [3]int
	Winner      Outcome
	LastMove    Move
	HasLastMove bool
	History     []Move
	Pointer     int
}

// Snapshot captures the board state.
func (b *Board) Snapshot() Snapshot {
	c := b.Clone()
	return Snapshot{
		Width:       c.width,
		Height:      c.height,
		Cells:       c.cells,
		Current:     c.current,
		Labels:      c.labels,
		MovesMade:   c.movesMade,
		Remaining:   c.remaining,
		Score:       c.score,
		Winner:      c.winner,
		LastMove:    c.lastMove,
		HasLastMove: c.hasLastMove,
		History:     c.history,
		Pointer:     c.pointer,
	}
}

// Restore replaces the board state with s.
func (b *Board) Restore(s Snapshot) {
	b.width, b.height = s.Width, s.Height
	b.cells = make([]Cell, len(s.Cells))
	copy(b.cells, s.Cells)
	b.current = s.Current
	b.labels = s.Labels
	b.movesMade, b.remaining = s.MovesMade, s.Remaining
	b.score = s.Score
	b.winner = s.Winner
	b.lastMove, b.hasLastMove = s.LastMove, s.HasLastMove
	b.history = make([]Move, len(s.History))
	copy(b.history, s.History)
	b.pointer = s.Pointer
}
