package ai

import (
	"context"
	"errors"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/chain"
	"github.com/hailam/dotsplay/internal/heuristic"
)

// Stupid plays the first open edge.
type Stupid struct{}

func (Stupid) Name() string { return StupidName }

func (s Stupid) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(s.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	return heuristic.FirstMove(b, p, s.Name())
}

// Random plays a random open edge.
type Random struct{}

func (Random) Name() string { return RandomName }

func (r Random) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(r.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	return heuristic.RandomMove(b, p, r.Name())
}

// Simple captures when it can and plays randomly otherwise.
type Simple struct{}

func (Simple) Name() string { return SimpleName }

func (s Simple) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(s.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	if m, ok := heuristic.CaptureMove(b, p, s.Name()); ok {
		chosen(s.Name(), p, "capture", m)
		return m, nil
	}
	return random(s.Name(), b, p)
}

// Normal captures, then avoids offering a capture, preferring edges next to
// existing ones.
type Normal struct{}

func (Normal) Name() string { return NormalName }

func (n Normal) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(n.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	if m, ok := heuristic.CaptureMove(b, p, n.Name()); ok {
		chosen(n.Name(), p, "capture", m)
		return m, nil
	}
	counts := heuristic.SurroundingCounts(b)
	if m, ok := heuristic.SafeMove(b, counts, heuristic.Neighbour, p, n.Name()); ok {
		chosen(n.Name(), p, "safe", m)
		return m, nil
	}
	return random(n.Name(), b, p)
}

// Better plays like Normal with corner preference and, without a safe
// move, gives away a single cell if it can.
type Better struct{}

func (Better) Name() string { return BetterName }

func (bt Better) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(bt.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	if m, ok := heuristic.CaptureMove(b, p, bt.Name()); ok {
		chosen(bt.Name(), p, "capture", m)
		return m, nil
	}
	counts := heuristic.SurroundingCounts(b)
	if m, ok := heuristic.SafeMove(b, counts, heuristic.Corner, p, bt.Name()); ok {
		chosen(bt.Name(), p, "safe", m)
		return m, nil
	}
	if m, ok := heuristic.Pick(heuristic.SacrificeMoves(b, counts, p, bt.Name())); ok {
		chosen(bt.Name(), p, "sacrifice", m)
		return m, nil
	}
	return random(bt.Name(), b, p)
}

// Cluster plays like Better but, without a safe move, opens the shortest
// chain.
type Cluster struct{}

func (Cluster) Name() string { return ClusterName }

func (c Cluster) NextMove(_ context.Context, b *board.Board, p board.Player) (board.Move, error) {
	if err := checkTurn(c.Name(), b, p); err != nil {
		return board.Move{}, err
	}
	if m, ok := heuristic.CaptureMove(b, p, c.Name()); ok {
		chosen(c.Name(), p, "capture", m)
		return m, nil
	}
	counts := heuristic.SurroundingCounts(b)
	if m, ok := heuristic.SafeMove(b, counts, heuristic.Corner, p, c.Name()); ok {
		chosen(c.Name(), p, "safe", m)
		return m, nil
	}
	m, err := chain.SmallestChainMove(b, p, c.Name())
	switch {
	case err == nil:
		chosen(c.Name(), p, "chain", m)
		return m, nil
	case errors.Is(err, board.ErrNoMovesAvailable):
		// only border edges left
		return random(c.Name(), b, p)
	}
	return board.Move{}, err
}

func random(name string, b *board.Board, p board.Player) (board.Move, error) {
	m, err := heuristic.RandomMove(b, p, name)
	if err != nil {
		return board.Move{}, err
	}
	chosen(name, p, "random", m)
	return m, nil
}
