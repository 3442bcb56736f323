package netplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
)

// KeepAliveInterval is how often a Peer sends KeepAliveMsg.
const KeepAliveInterval = 5 * time.Second

// errGameOver ends Play once the game is finished.
var errGameOver = errors.New("game over")

// Board rebuilds the board described by msg. The history is not part of
// the message, so the result cannot undo.
func (msg GameStateMsg) Board() (*board.Board, error) {
	if msg.SizeX < 1 || msg.SizeY < 1 || len(msg.Boxes) != msg.SizeX {
		return nil, fmt.Errorf("malformed game state %dx%d with %d columns", msg.SizeX, msg.SizeY, len(msg.Boxes))
	}
	b := board.NewBoard(msg.SizeX, msg.SizeY)
	s := b.Snapshot()
	for x, col := range msg.Boxes {
		if len(col) != msg.SizeY {
			return nil, fmt.Errorf("malformed game state: column %d has %d cells", x, len(col))
		}
		for y, box := range col {
			s.Cells[x*msg.SizeY+y] = board.Cell{
				Owner:  board.Player(box[0]),
				Right:  board.Player(box[1]),
				Bottom: board.Player(box[2]),
			}
		}
	}
	s.Current = board.Player(msg.CurrentPlayer)
	s.Score[board.Player1], s.Score[board.Player2] = msg.WinCounter1, msg.WinCounter2
	s.Winner = board.Outcome(msg.Winner)
	s.MovesMade, s.Remaining = msg.MovesMade, msg.RemainingMoves
	b.Restore(s)
	return b, nil
}

// Peer is a client that lets a strategy play one seat of a remote room.
type Peer struct {
	conn     *websocket.Conn
	strategy ai.Strategy

	// OnState, if set, observes every game state received.
	OnState func(GameStateMsg)
}

// Dial connects to a room websocket, e.g. ws://host:2345/ws/<room>.
func Dial(ctx context.Context, url string, st ai.Strategy) (*Peer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Peer{conn: conn, strategy: st}, nil
}

// Play runs the peer until the game is over, the context ends or the
// connection fails. It returns the final state seen.
func (p *Peer) Play(ctx context.Context) (GameStateMsg, error) {
	defer p.conn.Close()

	g, ctx := errgroup.WithContext(ctx)
	states := make(chan GameStateMsg, 8)
	out := make(chan any, 8)
	var last GameStateMsg

	// read pump
	g.Go(func() error {
		defer close(states)
		for {
			_, data, err := p.conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			t, err := messageType(data)
			if err != nil {
				return err
			}
			switch t {
			case TypeGameState:
				var s GameStateMsg
				if err := json.Unmarshal(data, &s); err != nil {
					return err
				}
				select {
				case states <- s:
				case <-ctx.Done():
					return nil
				}
			case TypeInvalidMove:
				var m InvalidMoveMsg
				if err := json.Unmarshal(data, &m); err == nil {
					log.Warn().Str("error", m.ErrorMessage).Msg("move refused")
				}
			case TypeChat:
				var m ChatMsg
				if err := json.Unmarshal(data, &m); err == nil {
					log.Info().Str("text", m.Text).Msg("chat")
				}
			}
		}
	})

	// write pump
	g.Go(func() error {
		keepAlive := time.NewTicker(KeepAliveInterval)
		defer keepAlive.Stop()
		for {
			var v any
			select {
			case <-ctx.Done():
				p.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				p.conn.Close()
				return nil
			case v = <-out:
			case <-keepAlive.C:
				v = KeepAliveMsg{MessageType: TypeKeepAlive}
			}
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteJSON(v); err != nil {
				return err
			}
		}
	})

	// player
	g.Go(func() error {
		for s := range states {
			last = s
			if p.OnState != nil {
				p.OnState(s)
			}
			if s.Winner != int(board.Ongoing) {
				return errGameOver
			}
			seat := board.Player(s.ForPlayer)
			if seat == board.NoPlayer || s.CurrentPlayer != s.ForPlayer {
				continue
			}

			b, err := s.Board()
			if err != nil {
				return err
			}
			b.SetLabel(seat, p.strategy.Name())
			m, err := p.strategy.NextMove(ctx, b, seat)
			if err != nil {
				return fmt.Errorf("%s: %w", p.strategy.Name(), err)
			}
			log.Debug().Str("move", m.String()).Str("seat", seat.String()).Msg("sending move")
			select {
			case out <- NewMoveMsg(s.GameName, s.GameboardHash, m):
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errGameOver) {
		err = nil
	}
	return last, err
}
