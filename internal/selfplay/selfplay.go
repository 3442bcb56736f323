// Package selfplay runs matches between two strategies.
package selfplay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/storage"
)

// Options configures a match.
type Options struct {
	Width    int
	Height   int
	Player1  string // strategy starting the even-numbered games
	Player2  string
	Games    int
	Parallel int // concurrent games, 0 means 1
	MaxMoves int
	// Store records every finished game. May be nil.
	Store *storage.Storage
}

// Summary counts the results by strategy name.
type Summary struct {
	Games int
	Wins  map[string]int
	Draws int
	Cells map[string]int
}

// PlayGame plays one game to the end with first as player 1.
func PlayGame(ctx context.Context, w, h int, first, second ai.Strategy) (*board.Board, error) {
	b := board.NewBoard(w, h)
	b.SetLabel(board.Player1, first.Name())
	b.SetLabel(board.Player2, second.Name())
	seats := map[board.Player]ai.Strategy{board.Player1: first, board.Player2: second}

	for !b.GameOver() {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		p := b.CurrentPlayer()
		m, err := seats[p].NextMove(ctx, b, p)
		if err != nil {
			return b, fmt.Errorf("%s as player %s: %w", seats[p].Name(), p, err)
		}
		if _, err := b.ApplyMove(m); err != nil {
			return b, fmt.Errorf("%s played %s: %w", seats[p].Name(), m, err)
		}
	}
	return b, nil
}

// Run plays opts.Games games, swapping the starting side every game.
func Run(ctx context.Context, opts Options) (Summary, error) {
	sum := Summary{Wins: make(map[string]int), Cells: make(map[string]int)}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	for _, name := range []string{opts.Player1, opts.Player2} {
		if _, err := ai.New(name, ai.Options{}); err != nil {
			return sum, err
		}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for i := 0; i < opts.Games; i++ {
		i := i
		g.Go(func() error {
			// strategies keep search state, so every game gets its own
			first, _ := ai.New(opts.Player1, ai.Options{MaxMoves: opts.MaxMoves})
			second, _ := ai.New(opts.Player2, ai.Options{MaxMoves: opts.MaxMoves})
			if i%2 == 1 {
				first, second = second, first
			}

			start := time.Now()
			b, err := PlayGame(ctx, opts.Width, opts.Height, first, second)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			result := storage.ResultOf(b, time.Since(start))
			log.Info().
				Int("game", i+1).
				Str("player1", result.Player1).
				Str("player2", result.Player2).
				Int("score1", result.Score1).
				Int("score2", result.Score2).
				Str("result", result.Outcome.String()).
				Msg("game finished")

			mu.Lock()
			sum.add(result)
			mu.Unlock()

			if opts.Store != nil {
				return opts.Store.RecordMatch(result)
			}
			return nil
		})
	}

	err := g.Wait()
	return sum, err
}

func (s *Summary) add(r storage.MatchResult) {
	s.Games++
	s.Cells[r.Player1] += r.Score1
	s.Cells[r.Player2] += r.Score2
	switch r.Outcome {
	case board.Player1Wins:
		s.Wins[r.Player1]++
	case board.Player2Wins:
		s.Wins[r.Player2]++
	default:
		s.Draws++
	}
}
