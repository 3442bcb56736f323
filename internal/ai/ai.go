// Package ai implements the computer players. Every strategy returns moves
// labelled with its own name, so the board must carry that name as the
// player's label before the move is applied.
package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/engine"
)

// Strategy names.
const (
	StupidName  = "StupidAI"
	RandomName  = "RandomAI"
	SimpleName  = "SimpleAI"
	NormalName  = "NormalAI"
	BetterName  = "BetterAI"
	ClusterName = "ClusterAI"
	TreeName    = "TreeAI"
)

// ErrUnknownStrategy is returned by New for an unregistered name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy picks the next move for a player.
type Strategy interface {
	Name() string
	NextMove(ctx context.Context, b *board.Board, p board.Player) (board.Move, error)
}

// Options configures the strategies built by New.
type Options struct {
	// MaxMoves is the TreeAI search ceiling, see engine.Options.
	MaxMoves int
	// OnInfo receives TreeAI search progress.
	OnInfo func(engine.SearchInfo)
}

var registry = map[string]func(Options) Strategy{
	StupidName:  func(Options) Strategy { return Stupid{} },
	RandomName:  func(Options) Strategy { return Random{} },
	SimpleName:  func(Options) Strategy { return Simple{} },
	NormalName:  func(Options) Strategy { return Normal{} },
	BetterName:  func(Options) Strategy { return Better{} },
	ClusterName: func(Options) Strategy { return Cluster{} },
	TreeName:    func(o Options) Strategy { return NewTree(o) },
}

// New returns the strategy registered under name.
func New(name string, opts Options) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return f(opts), nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether label names a strategy or a human player.
func IsKnown(label string) bool {
	if label == board.HumanLabel {
		return true
	}
	_, ok := registry[label]
	return ok
}

// checkTurn rejects a request for a player who is not to move.
func checkTurn(name string, b *board.Board, p board.Player) error {
	if b.CurrentPlayer() != p {
		return fmt.Errorf("%s: player %s asked to move, player %s is to move: %w",
			name, p, b.CurrentPlayer(), board.ErrWrongPlayer)
	}
	return nil
}

func chosen(name string, p board.Player, finder string, m board.Move) {
	log.Debug().
		Str("ai", name).
		Str("player", p.String()).
		Str("finder", finder).
		Str("move", m.String()).
		Msg("move chosen")
}
