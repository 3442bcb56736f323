// Package netplay mirrors games between network peers over websockets.
// Every frame is one JSON object tagged with message_type.
package netplay

import (
	"encoding/json"
	"fmt"

	"github.com/hailam/dotsplay/internal/board"
)

// Message types
const (
	TypeWelcome     = "WelcomeMsg"
	TypeGameState   = "GameStateMsg"
	TypeMove        = "MoveMsg"
	TypeInvalidMove = "InvalidMoveMsg"
	TypeChat        = "ChatMsg"
	TypeKeepAlive   = "KeepAliveMsg"
)

// envelope is decoded first to find the message type.
type envelope struct {
	MessageType string `json:"message_type"`
}

// WelcomeMsg tells a peer which seat it got. ForPlayer is 0 for spectators.
type WelcomeMsg struct {
	MessageType string `json:"message_type"`
	ForPlayer   int    `json:"for_player"`
	GameName    string `json:"game_name"`
	Room        string `json:"room"`
}

// GameStateMsg is the full board as seen by one peer.
type GameStateMsg struct {
	MessageType    string     `json:"message_type"`
	ForPlayer      int        `json:"for_player"`
	GameName       string     `json:"game_name"`
	SizeX          int        `json:"size_x"`
	SizeY          int        `json:"size_y"`
	Boxes          [][][3]int `json:"boxes"` // [x][y] = owner, right edge, bottom edge
	CurrentPlayer  int        `json:"current_player"`
	PlayerAI1      string     `json:"player_ai_1"`
	PlayerAI2      string     `json:"player_ai_2"`
	Winner         int        `json:"winner"`
	WinCounter1    int        `json:"win_counter_1"`
	WinCounter2    int        `json:"win_counter_2"`
	MovesMade      int        `json:"moves_made"`
	RemainingMoves int        `json:"remaining_moves"`
	Pointer        int        `json:"move_history_pointer"`
	LastMove       *MoveMsg   `json:"last_move,omitempty"`
	GameboardHash  string     `json:"gameboard_hash"`
}

// MoveMsg asks to draw an edge. GameboardHash must match the receiver's
// board or the move is refused.
type MoveMsg struct {
	MessageType   string `json:"message_type"`
	GameName      string `json:"game_name"`
	GameboardHash string `json:"gameboard_hash"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Horizontal    int    `json:"horizontal"` // 0 vertical, 1 horizontal
}

// InvalidMoveMsg refuses a MoveMsg.
type InvalidMoveMsg struct {
	MessageType  string `json:"message_type"`
	ErrorMessage string `json:"error_message"`
}

// ChatMsg is relayed to the other peers of a room.
type ChatMsg struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	Context     string `json:"context"`
}

// KeepAliveMsg is answered in kind.
type KeepAliveMsg struct {
	MessageType string `json:"message_type"`
}

// NewGameState describes b to the peer in seat forPlayer. The peer's own
// seat is labelled "You" and the other "Remote", unless a strategy plays it.
func NewGameState(forPlayer board.Player, name string, b *board.Board) GameStateMsg {
	msg := GameStateMsg{
		MessageType:    TypeGameState,
		ForPlayer:      int(forPlayer),
		GameName:       name,
		SizeX:          b.Width(),
		SizeY:          b.Height(),
		Boxes:          make([][][3]int, b.Width()),
		CurrentPlayer:  int(b.CurrentPlayer()),
		PlayerAI1:      seatLabel(b, board.Player1, forPlayer),
		PlayerAI2:      seatLabel(b, board.Player2, forPlayer),
		Winner:         int(b.Winner()),
		WinCounter1:    b.Score(board.Player1),
		WinCounter2:    b.Score(board.Player2),
		MovesMade:      b.MovesMade(),
		RemainingMoves: b.RemainingMoves(),
		Pointer:        b.HistoryPointer(),
		GameboardHash:  b.GameHash(name),
	}
	for x := range msg.Boxes {
		msg.Boxes[x] = make([][3]int, b.Height())
		for y := range msg.Boxes[x] {
			c := b.Cell(x, y)
			msg.Boxes[x][y] = [3]int{int(c.Owner), int(c.Right), int(c.Bottom)}
		}
	}
	if m, ok := b.LastMove(); ok {
		mm := NewMoveMsg(name, "", m)
		msg.LastMove = &mm
	}
	return msg
}

func seatLabel(b *board.Board, seat, forPlayer board.Player) string {
	label := b.Label(seat)
	switch {
	case label != board.HumanLabel:
		return label
	case seat == forPlayer:
		return "You"
	}
	return "Remote"
}

// NewMoveMsg encodes m for the game name and board hash.
func NewMoveMsg(name, hash string, m board.Move) MoveMsg {
	msg := MoveMsg{MessageType: TypeMove, GameName: name, GameboardHash: hash, X: m.X, Y: m.Y}
	if m.Orientation == board.Horizontal {
		msg.Horizontal = 1
	}
	return msg
}

// Move returns the board move of msg for player p.
func (msg MoveMsg) Move(p board.Player, source string) (board.Move, error) {
	var o board.Orientation
	switch msg.Horizontal {
	case 0:
		o = board.Vertical
	case 1:
		o = board.Horizontal
	default:
		return board.Move{}, fmt.Errorf("invalid horizontal flag %d", msg.Horizontal)
	}
	return board.NewMove(msg.X, msg.Y, o, p, source), nil
}

// messageType returns the message_type of a raw frame.
func messageType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	return env.MessageType, nil
}
