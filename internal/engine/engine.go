package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/chain"
	"github.com/hailam/dotsplay/internal/heuristic"
)

// ErrSearchCancelled is returned when a search was stopped before it
// finished.
var ErrSearchCancelled = errors.New("search cancelled")

// DefaultMaxMoves is the number of open edges above which the engine does
// not search.
const DefaultMaxMoves = 42

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	Move     board.Move
	Examined int // root moves searched so far
	Total    int // root moves
}

// MoveFinder picks a move without searching.
type MoveFinder interface {
	NextMove(ctx context.Context, b *board.Board, p board.Player) (board.Move, error)
}

// Options configures an Engine.
type Options struct {
	// MaxMoves is the number of open edges above which Fallback decides
	// instead of the search. Zero means DefaultMaxMoves.
	MaxMoves int
	// Fallback decides positions too open to search. Nil uses the
	// smallest-chain analysis.
	Fallback MoveFinder
}

// Engine is the dots-and-boxes search engine. One search runs at a time.
type Engine struct {
	opts Options

	mu     sync.Mutex
	cancel context.CancelFunc

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine.
func NewEngine(opts Options) *Engine {
	if opts.MaxMoves <= 0 {
		opts.MaxMoves = DefaultMaxMoves
	}
	return &Engine{opts: opts}
}

// MaxMoves returns the search ceiling.
func (e *Engine) MaxMoves() int {
	return e.opts.MaxMoves
}

// SetMaxMoves sets the search ceiling. Values below 1 are ignored.
func (e *Engine) SetMaxMoves(n int) {
	if n > 0 {
		e.opts.MaxMoves = n
	}
}

// FindBestMove returns a move for p, who must be the player to move on b.
// A capture is taken without searching, and positions with more open edges
// than the ceiling are handed to the fallback. b is never modified.
func (e *Engine) FindBestMove(ctx context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if b.CurrentPlayer() != p {
		return board.Move{}, fmt.Errorf("engine: player %s asked to move, player %s is to move: %w",
			p, b.CurrentPlayer(), board.ErrWrongPlayer)
	}
	source := b.Label(p)
	if m, ok := heuristic.CaptureMove(b, p, source); ok {
		return m, nil
	}
	if b.RemainingMoves() == 0 {
		return board.Move{}, board.ErrNoMovesAvailable
	}

	if b.RemainingMoves() > e.opts.MaxMoves {
		log.Debug().
			Int("remaining", b.RemainingMoves()).
			Int("max", e.opts.MaxMoves).
			Msg("too many open edges, not searching")
		m, err := e.fallback(ctx, b.Clone(), p)
		if err != nil {
			return board.Move{}, err
		}
		m.Player, m.Source = p, source
		return m, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
		cancel()
	}()

	m, _, err := NewSearcher(b).FindBestMove(ctx, e.OnInfo)
	return m, err
}

func (e *Engine) fallback(ctx context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if e.opts.Fallback != nil {
		return e.opts.Fallback.NextMove(ctx, b, p)
	}
	m, err := chain.SmallestChainMove(b, p, b.Label(p))
	if errors.Is(err, board.ErrNoMovesAvailable) {
		return heuristic.RandomMove(b, p, b.Label(p))
	}
	return m, err
}

// Stop stops the current search. The search returns the best move found so
// far with ErrSearchCancelled.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Perft counts the turn sequences of the given depth from b, each turn
// being an edge plus the captures that follow it. Depths below 1 count the
// position itself.
func (e *Engine) Perft(b *board.Board, depth int) uint64 {
	return NewSearcher(b).perft(depth)
}

func (s *Searcher) perft(depth int) uint64 {
	if depth <= 0 || s.pos.GameOver() {
		return 1
	}
	moves := s.pos.ValidMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		n, err := s.makeTurn(m)
		if err != nil {
			panic(err)
		}
		nodes += s.perft(depth - 1)
		s.takeBack(n)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch {
	case score >= Infinity || score <= -Infinity:
		return "none"
	case score > WinScore-1000:
		return fmt.Sprintf("won %+d", score-WinScore)
	case score < -WinScore+1000:
		return fmt.Sprintf("lost %+d", score+WinScore)
	case score > MajorityScore-1000:
		return fmt.Sprintf("decided %+d", score-MajorityScore)
	case score < -MajorityScore+1000:
		return fmt.Sprintf("decided %+d", score+MajorityScore)
	}
	return fmt.Sprintf("%+d", score)
}
