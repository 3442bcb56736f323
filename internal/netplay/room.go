package netplay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/storage"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Room is one game shared by up to two player peers and any number of
// spectators. A seat labelled with a strategy name is played by the server.
type Room struct {
	id       string
	name     string
	store    *storage.Storage
	maxMoves int
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	board    *board.Board
	clients  map[*Client]struct{}
	seats    [3]*Client
	started  time.Time
	thinking bool
	recorded bool
}

// Client is one websocket peer of a room.
type Client struct {
	conn   *websocket.Conn
	room   *Room
	player board.Player // NoPlayer for spectators
	sendCh chan any
}

func newRoom(parent context.Context, id string, b *board.Board, opts HubOptions) *Room {
	ctx, cancel := context.WithCancel(parent)
	return &Room{
		id:       id,
		name:     opts.GameName,
		store:    opts.Store,
		maxMoves: opts.MaxMoves,
		interval: opts.AIInterval,
		ctx:      ctx,
		cancel:   cancel,
		board:    b,
		clients:  make(map[*Client]struct{}),
		started:  time.Now(),
	}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// Name returns the game name peers must quote in moves.
func (r *Room) Name() string { return r.name }

// Hash returns the current game hash.
func (r *Room) Hash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.GameHash(r.name)
}

// Close stops server-side play and disconnects all peers.
func (r *Room) Close() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		c.conn.Close()
	}
}

// ServeWS upgrades the request and runs the peer until it disconnects.
func (r *Room) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", r.id).Msg("websocket upgrade failed")
		return
	}
	c := &Client{conn: conn, room: r, sendCh: make(chan any, sendBuffer)}

	r.mu.Lock()
	r.clients[c] = struct{}{}
	for p := board.Player1; p <= board.Player2; p++ {
		if r.seats[p] == nil && r.board.Label(p) == board.HumanLabel {
			r.seats[p] = c
			c.player = p
			break
		}
	}
	c.send(WelcomeMsg{MessageType: TypeWelcome, ForPlayer: int(c.player), GameName: r.name, Room: r.id})
	c.send(NewGameState(c.player, r.name, r.board))
	r.mu.Unlock()

	log.Info().Str("room", r.id).Str("seat", c.player.String()).Msg("peer joined")
	r.maybePlayAI()

	go c.writer()
	c.reader()
}

func (c *Client) send(v any) {
	select {
	case c.sendCh <- v:
	default:
		log.Warn().Str("room", c.room.id).Msg("send buffer full, dropping message")
	}
}

func (c *Client) writer() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case v, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(v); err != nil {
				log.Debug().Err(err).Str("room", c.room.id).Msg("write failed")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) reader() {
	r := c.room
	defer func() {
		c.conn.Close()
		r.mu.Lock()
		delete(r.clients, c)
		if c.player != board.NoPlayer && r.seats[c.player] == c {
			r.seats[c.player] = nil
		}
		close(c.sendCh)
		r.mu.Unlock()
		log.Info().Str("room", r.id).Str("seat", c.player.String()).Msg("peer left")
	}()

	c.conn.SetReadLimit(1 << 16)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("room", r.id).Msg("read failed")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	t, err := messageType(data)
	if err != nil {
		c.send(InvalidMoveMsg{MessageType: TypeInvalidMove, ErrorMessage: "malformed message: " + err.Error()})
		return
	}

	switch t {
	case TypeMove:
		var msg MoveMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(InvalidMoveMsg{MessageType: TypeInvalidMove, ErrorMessage: err.Error()})
			return
		}
		if err := c.room.move(c.player, msg); err != nil {
			log.Debug().Err(err).Str("room", c.room.id).Msg("move refused")
			c.send(InvalidMoveMsg{MessageType: TypeInvalidMove, ErrorMessage: err.Error()})
			return
		}
		c.room.maybePlayAI()
	case TypeChat:
		var msg ChatMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		msg.MessageType = TypeChat
		c.room.relay(c, msg)
	case TypeKeepAlive:
		c.send(KeepAliveMsg{MessageType: TypeKeepAlive})
	default:
		c.send(InvalidMoveMsg{MessageType: TypeInvalidMove, ErrorMessage: fmt.Sprintf("unknown message type %q", t)})
	}
}

// move applies a peer's move after checking the game name, the board hash
// and the seat, then sends the new state to everyone.
func (r *Room) move(p board.Player, msg MoveMsg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.GameName != r.name {
		return fmt.Errorf("wrong game name %q, this is %q", msg.GameName, r.name)
	}
	if msg.GameboardHash != r.board.GameHash(r.name) {
		return fmt.Errorf("game board hash mismatch, boards are out of sync")
	}
	if p == board.NoPlayer {
		return fmt.Errorf("spectators cannot move: %w", board.ErrWrongPlayer)
	}
	return r.apply(p, msg)
}

// apply plays msg for p and broadcasts the result. r.mu must be held.
func (r *Room) apply(p board.Player, msg MoveMsg) error {
	m, err := msg.Move(p, r.board.Label(p))
	if err != nil {
		return err
	}
	if _, err := r.board.ApplyMove(m); err != nil {
		return err
	}
	r.broadcastState()
	if r.board.GameOver() {
		r.finish()
	}
	return nil
}

// broadcastState sends every peer its view of the board. r.mu must be held.
func (r *Room) broadcastState() {
	for c := range r.clients {
		c.send(NewGameState(c.player, r.name, r.board))
	}
}

func (r *Room) relay(from *Client, msg ChatMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c != from {
			c.send(msg)
		}
	}
}

// finish records a finished game once. r.mu must be held.
func (r *Room) finish() {
	if r.recorded {
		return
	}
	r.recorded = true
	b := r.board
	log.Info().
		Str("room", r.id).
		Str("result", b.Winner().String()).
		Int("score1", b.Score(board.Player1)).
		Int("score2", b.Score(board.Player2)).
		Msg("game finished")
	if r.store == nil {
		return
	}
	if err := r.store.RecordMatch(storage.ResultOf(b, time.Since(r.started))); err != nil {
		log.Warn().Err(err).Str("room", r.id).Msg("recording match")
	}
}

// maybePlayAI starts server-side play if a strategy is to move.
func (r *Room) maybePlayAI() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.thinking || r.board.GameOver() || r.board.Label(r.board.CurrentPlayer()) == board.HumanLabel {
		return
	}
	r.thinking = true
	go r.playAI()
}

// playAI plays strategy moves until a human is to move or the game ends.
func (r *Room) playAI() {
	strategies := make(map[string]ai.Strategy)
	defer func() {
		r.mu.Lock()
		r.thinking = false
		r.mu.Unlock()
	}()

	for r.ctx.Err() == nil {
		r.mu.Lock()
		p := r.board.CurrentPlayer()
		label := r.board.Label(p)
		if r.board.GameOver() || label == board.HumanLabel {
			r.mu.Unlock()
			return
		}
		b := r.board.Clone()
		r.mu.Unlock()

		st, ok := strategies[label]
		if !ok {
			var err error
			if st, err = ai.New(label, ai.Options{MaxMoves: r.maxMoves}); err != nil {
				log.Error().Err(err).Str("room", r.id).Msg("no strategy for seat")
				return
			}
			strategies[label] = st
		}

		if r.interval > 0 {
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(r.interval):
			}
		}

		m, err := st.NextMove(r.ctx, b, p)
		if err != nil {
			log.Warn().Err(err).Str("room", r.id).Str("ai", label).Msg("strategy failed")
			return
		}

		r.mu.Lock()
		hash := b.GameHash(r.name)
		if hash != r.board.GameHash(r.name) {
			// the board changed under the search, think again
			r.mu.Unlock()
			continue
		}
		err = r.apply(p, NewMoveMsg(r.name, hash, m))
		r.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Str("room", r.id).Str("move", m.String()).Msg("strategy move rejected")
			return
		}
	}
}
