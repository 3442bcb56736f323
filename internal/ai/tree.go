package ai

import (
	"context"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/engine"
)

// Tree searches the game tree once few enough edges remain and plays like
// Cluster before that.
type Tree struct {
	eng *engine.Engine
}

// NewTree returns a Tree strategy with the given options.
func NewTree(opts Options) *Tree {
	eng := engine.NewEngine(engine.Options{
		MaxMoves: opts.MaxMoves,
		Fallback: Cluster{},
	})
	eng.OnInfo = opts.OnInfo
	return &Tree{eng: eng}
}

func (*Tree) Name() string { return TreeName }

// Engine returns the underlying search engine.
func (t *Tree) Engine() *engine.Engine { return t.eng }

func (t *Tree) NextMove(ctx context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(t.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	m, err := t.eng.FindBestMove(ctx, b, p)
	if m.Player != board.NoPlayer {
		m.Source = t.Name()
	}
	if err != nil {
		return m, err
	}
	chosen(t.Name(), p, "search", m)
	return m, nil
}

// Stop cancels a running search.
func (t *Tree) Stop() { t.eng.Stop() }
