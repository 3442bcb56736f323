package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/heuristic"
)

// Search constants
const (
	Infinity      = 1000000000 // sentinel, also returned by cancelled nodes
	WinScore      = 100000
	MajorityScore = 50000
	DecidedScore  = 9000 // evaluations beyond this end the recursion
	BaseDepth     = 4
)

// Searcher performs the alpha-beta search. It owns a private copy of the
// board and every move it plays is undone before the frame returns.
type Searcher struct {
	pos      *board.Board
	original board.Player
	nodes    uint64
}

// NewSearcher creates a searcher for the player to move on b.
func NewSearcher(b *board.Board) *Searcher {
	return &Searcher{pos: b.Clone(), original: b.CurrentPlayer()}
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Evaluate scores b from the point of view of p: the score difference,
// shifted by WinScore once the game is over or by MajorityScore once either
// side owns more than half of the cells.
func Evaluate(b *board.Board, p board.Player) int {
	own, other := b.Score(p), b.Score(p.Other())
	eval := own - other

	switch b.Winner() {
	case board.Ongoing:
	case board.Draw:
		return eval
	default:
		if b.Winner().Winner() == p {
			return eval + WinScore
		}
		return eval - WinScore
	}

	cells := b.Width() * b.Height()
	if 2*own > cells {
		return eval + MajorityScore
	}
	if 2*other > cells {
		return eval - MajorityScore
	}
	return eval
}

// makeTurn plays m and, if it captured, every capture that follows, so the
// opponent moves next. It returns the number of board moves applied.
func (s *Searcher) makeTurn(m board.Move) (int, error) {
	if _, err := s.pos.ApplyMove(m); err != nil {
		return 0, err
	}
	n := 1
	for s.pos.CurrentPlayer() == m.Player && !s.pos.GameOver() {
		c, ok := heuristic.CaptureMove(s.pos, m.Player, m.Source)
		if !ok {
			break
		}
		if _, err := s.pos.ApplyMove(c); err != nil {
			s.takeBack(n)
			return 0, err
		}
		n++
	}
	return n, nil
}

// takeBack undoes n moves and drops them from the history.
func (s *Searcher) takeBack(n int) {
	for i := 0; i < n; i++ {
		if err := s.pos.UndoOneMove(); err != nil {
			panic(fmt.Sprintf("engine: undo %d of %d: %v", i+1, n, err))
		}
	}
	s.pos.TruncateHistory()
}

// search is the recursive alpha-beta search. Values are from player 1's
// point of view: player 1 maximises and player 2 minimises. A cancelled
// context makes every frame return Infinity.
func (s *Searcher) search(ctx context.Context, depth, alpha, beta int) (int, error) {
	if ctx.Err() != nil {
		return Infinity, nil
	}
	s.nodes++

	eval := Evaluate(s.pos, board.Player1)
	if abs(eval) > DecidedScore || depth == 0 {
		return eval, nil
	}

	moves := s.pos.ValidMoves()
	if len(moves) == 0 {
		if !s.pos.GameOver() {
			log.Warn().Int("eval", eval).Int("depth", depth).Msg("no moves in an unfinished position")
		}
		return eval, nil
	}

	maximizing := s.pos.CurrentPlayer() == board.Player1
	value := Infinity
	if maximizing {
		value = -Infinity
	}

	for _, m := range moves {
		n, err := s.makeTurn(m)
		if err != nil {
			return 0, err
		}
		v, err := s.search(ctx, depth-1, alpha, beta)
		s.takeBack(n)
		if err != nil {
			return 0, err
		}
		if ctx.Err() != nil {
			return Infinity, nil
		}

		if maximizing {
			value = max(value, v)
			alpha = max(alpha, value)
		} else {
			value = min(value, v)
			beta = min(beta, value)
		}
		if alpha >= beta {
			break
		}
	}
	return value, nil
}

// rootDepth returns the search depth for a root with n moves.
func rootDepth(n int) int {
	depth := BaseDepth
	if n < 30 {
		depth++
	}
	if n < 15 {
		depth++
	}
	return depth
}

// stopRoot reports whether the root can stop after a move, given the number
// of root moves, how many of them came out as exactly 0 and the best value.
// A positive value ends a search deeper than 3. A best value of 0 repeated by
// more than a tenth of the moves ends a search deeper than 5, which only
// happens for roots of 11 to 14 moves.
func stopRoot(depth, total, zeros, best int) bool {
	if depth > 3 && best > 0 {
		return true
	}
	return depth > 5 && best == 0 && total > 10 && zeros > total/10
}

// FindBestMove searches every turn of the player to move in random order
// and returns the best one with its value for that player.
//
// The root stops early once a move with a positive value is found, and on
// deep searches of wide roots once more than a tenth of the moves came out
// as exactly 0 while nothing better was found.
//
// On cancellation it returns the best move found so far together with an
// error wrapping ErrSearchCancelled.
func (s *Searcher) FindBestMove(ctx context.Context, onInfo func(SearchInfo)) (board.Move, int, error) {
	moves := s.pos.ValidMoves()
	if len(moves) == 0 {
		return board.Move{}, 0, board.ErrNoMovesAvailable
	}
	frand.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	total := len(moves)
	depth := rootDepth(total)
	start := time.Now()
	best := -Infinity
	var bestMove board.Move
	zeros := 0

	log.Debug().
		Int("moves", total).
		Int("depth", depth).
		Str("player", s.original.String()).
		Msg("search started")

	for i, m := range moves {
		if ctx.Err() != nil {
			break
		}

		n, err := s.makeTurn(m)
		if err != nil {
			return board.Move{}, 0, err
		}
		v, err := s.search(ctx, depth-1, -Infinity, Infinity)
		s.takeBack(n)
		if err != nil {
			return board.Move{}, 0, err
		}
		if ctx.Err() != nil {
			break
		}

		if s.original == board.Player2 {
			v = -v
		}
		if v == 0 {
			zeros++
		}
		if v > best {
			best, bestMove = v, m
		}

		if onInfo != nil {
			onInfo(SearchInfo{
				Depth:    depth,
				Score:    best,
				Nodes:    s.nodes,
				Time:     time.Since(start),
				Move:     bestMove,
				Examined: i + 1,
				Total:    total,
			})
		}

		if stopRoot(depth, total, zeros, best) {
			log.Debug().Int("examined", i+1).Int("zeros", zeros).Int("best", best).Msg("root stopped early")
			break
		}
	}

	log.Debug().
		Str("move", bestMove.String()).
		Int("score", best).
		Uint64("nodes", s.nodes).
		Dur("elapsed", time.Since(start)).
		Msg("search finished")

	if err := ctx.Err(); err != nil {
		return bestMove, best, fmt.Errorf("%w: %w", ErrSearchCancelled, err)
	}
	return bestMove, best, nil
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
