package netplay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/storage"
)

// ErrRoomNotFound is returned for unknown room ids.
var ErrRoomNotFound = errors.New("room not found")

// HubOptions configures new rooms.
type HubOptions struct {
	GameName string
	Width    int
	Height   int
	MaxMoves int
	// AIInterval is the pause before each server-side strategy move.
	AIInterval time.Duration
	// Store records finished games. May be nil.
	Store *storage.Storage
}

// Hub owns the rooms of a server.
type Hub struct {
	opts   HubOptions
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewHub creates an empty hub.
func NewHub(opts HubOptions) *Hub {
	if opts.GameName == "" {
		opts.GameName = "Network Game"
	}
	if opts.Width == 0 {
		opts.Width = board.DefaultSize
	}
	if opts.Height == 0 {
		opts.Height = board.DefaultSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{opts: opts, ctx: ctx, cancel: cancel, rooms: make(map[string]*Room)}
}

// RoomRequest is the body of POST /api/new. Zero fields take the hub
// defaults.
type RoomRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// RoomInfo describes a room.
type RoomInfo struct {
	ID       string `json:"room"`
	GameName string `json:"game_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	Hash     string `json:"gameboard_hash"`
	Finished bool   `json:"finished"`
}

// CreateRoom opens a room with a new board.
func (h *Hub) CreateRoom(req RoomRequest) (*Room, error) {
	w, ht := req.Width, req.Height
	if w == 0 {
		w = h.opts.Width
	}
	if ht == 0 {
		ht = h.opts.Height
	}
	if w < board.MinSize || w > board.MaxSize || ht < board.MinSize || ht > board.MaxSize {
		return nil, errors.New("board size out of range")
	}

	b := board.NewBoard(w, ht)
	for p, label := range map[board.Player]string{board.Player1: req.Player1, board.Player2: req.Player2} {
		if label == "" {
			continue
		}
		if !ai.IsKnown(label) {
			return nil, errors.New("unknown player " + label)
		}
		b.SetLabel(p, label)
	}

	id := uuid.New().String()
	r := newRoom(h.ctx, id, b, h.opts)

	h.mu.Lock()
	h.rooms[id] = r
	h.mu.Unlock()

	log.Info().Str("room", id).Int("width", w).Int("height", ht).
		Str("player1", b.Label(board.Player1)).Str("player2", b.Label(board.Player2)).
		Msg("room created")
	return r, nil
}

// Room returns the room with the given id.
func (h *Hub) Room(id string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Rooms describes every room, ordered by id.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Info describes the room.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:       r.id,
		GameName: r.name,
		Width:    r.board.Width(),
		Height:   r.board.Height(),
		Player1:  r.board.Label(board.Player1),
		Player2:  r.board.Label(board.Player2),
		Hash:     r.board.GameHash(r.name),
		Finished: r.board.GameOver(),
	}
}

// Close closes every room.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, r := range h.rooms {
		r.Close()
		delete(h.rooms, id)
	}
}

// Router returns the HTTP routes of the hub.
func (h *Hub) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.Rooms())
	})

	r.Post("/api/new", func(w http.ResponseWriter, r *http.Request) {
		var req RoomRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
		}
		room, err := h.CreateRoom(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, room.Info())
	})

	r.Get("/ws/{room}", func(w http.ResponseWriter, r *http.Request) {
		room, err := h.Room(chi.URLParam(r, "room"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		room.ServeWS(w, r)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}

// requestLogger logs each request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
