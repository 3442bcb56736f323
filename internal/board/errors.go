package board

import (
	"errors"
	"fmt"
)

// ErrInvalidMove matches every validation failure returned by Validate and
// ApplyMove.
var ErrInvalidMove = errors.New("invalid move")

// Validation failures. Use errors.Is to test for a specific reason.
var (
	ErrWrongPlayer    = errors.New("wrong player")
	ErrWrongSource    = errors.New("wrong source tag")
	ErrOutOfBounds    = errors.New("coordinates out of bounds")
	ErrEdgeOutOfRange = errors.New("edge outside the grid")
	ErrEdgeOccupied   = errors.New("edge already set")
)

var (
	// ErrNoMovesAvailable is returned when a move is requested for a board
	// without any open edge.
	ErrNoMovesAvailable = errors.New("no moves available")

	// ErrNoHistory is returned by UndoOneMove and RedoOneMove when there is
	// nothing to undo or redo.
	ErrNoHistory = errors.New("no history entry")
)

// MoveError describes a rejected move.
type MoveError struct {
	Move   Move
	Reason error
	Detail string
}

func (e *MoveError) Error() string {
	msg := fmt.Sprintf("%s %s (player %s, source %q): %s", ErrInvalidMove, e.Move, e.Move.Player, e.Move.Source, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes both ErrInvalidMove and the specific reason.
func (e *MoveError) Unwrap() []error {
	return []error{ErrInvalidMove, e.Reason}
}

func invalid(m Move, reason error, format string, args ...any) error {
	return &MoveError{Move: m, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
