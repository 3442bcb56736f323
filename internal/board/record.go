package board

import "fmt"

// Board size limits accepted from saved games and configuration.
const (
	MinSize     = 3
	MaxSize     = 50
	DefaultSize = 5
)

// RecordMove is one history entry of a saved game.
type RecordMove struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Horizontal int    `json:"h"`
	Player     int    `json:"p"`
	Source     string `json:"a"`
}

// Record is the replayable form of a game: the board size, the player
// labels and the full move history with the active pointer.
type Record struct {
	SizeX    int               `json:"size_x"`
	SizeY    int               `json:"size_y"`
	PlayerAI map[string]string `json:"player_ai"`
	Pointer  int               `json:"move_history_pointer"`
	Moves    []RecordMove      `json:"move_history"`
}

// Record exports the board, including redo-able history entries.
func (b *Board) Record() Record {
	rec := Record{
		SizeX: b.width,
		SizeY: b.height,
		PlayerAI: map[string]string{
			"1": b.labels[Player1],
			"2": b.labels[Player2],
		},
		Pointer: b.pointer,
		Moves:   make([]RecordMove, 0, len(b.history)),
	}
	for _, m := range b.history {
		rm := RecordMove{X: m.X, Y: m.Y, Player: int(m.Player), Source: m.Source}
		if m.Orientation == Horizontal {
			rm.Horizontal = 1
		}
		rec.Moves = append(rec.Moves, rm)
	}
	return rec
}

// FromRecord rebuilds a board by replaying the recorded moves without turn
// checks and then undoing back to the recorded pointer. Sizes are clamped to
// MinSize..MaxSize and a pointer past the end of the history is clamped to
// its length.
func FromRecord(rec Record) (*Board, error) {
	b := NewBoard(clampSize(rec.SizeX), clampSize(rec.SizeY))
	for p := Player1; p <= Player2; p++ {
		if label := rec.PlayerAI[p.String()]; label != "" {
			b.labels[p] = label
		}
	}

	for i, rm := range rec.Moves {
		m := Move{X: rm.X, Y: rm.Y, Player: Player(rm.Player), Source: rm.Source}
		if rm.Horizontal == 1 {
			m.Orientation = Horizontal
		}
		if _, err := b.ApplyMoveWith(m, ApplyOptions{IgnoreTurn: true}); err != nil {
			return nil, fmt.Errorf("replaying move %d: %w", i+1, err)
		}
	}

	pointer := rec.Pointer
	if pointer < 0 {
		pointer = 0
	}
	for b.pointer > pointer {
		if err := b.UndoOneMove(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func clampSize(n int) int {
	switch {
	case n == 0:
		return DefaultSize
	case n < MinSize:
		return MinSize
	case n > MaxSize:
		return MaxSize
	}
	return n
}
