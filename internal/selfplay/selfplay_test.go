package selfplay

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/storage"
)

func TestPlayGame(t *testing.T) {
	b, err := PlayGame(context.Background(), 3, 3, ai.Stupid{}, ai.Random{})
	if err != nil {
		t.Fatal(err)
	}
	if !b.GameOver() {
		t.Fatal("Game should be over")
	}
	if b.Score(board.Player1)+b.Score(board.Player2) != 9 {
		t.Errorf("Scores do not add up: %d + %d", b.Score(board.Player1), b.Score(board.Player2))
	}
	if b.Label(board.Player1) != ai.StupidName {
		t.Errorf("Unexpected label %q", b.Label(board.Player1))
	}
}

func TestPlayGameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PlayGame(ctx, 3, 3, ai.Random{}, ai.Random{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRun(t *testing.T) {
	store, err := storage.NewMemoryStorage()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sum, err := Run(context.Background(), Options{
		Width: 3, Height: 3,
		Player1: ai.ClusterName, Player2: ai.RandomName,
		Games: 6, Parallel: 3,
		Store: store,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Games != 6 {
		t.Errorf("Expected 6 games, got %d", sum.Games)
	}
	if got := sum.Wins[ai.ClusterName] + sum.Wins[ai.RandomName] + sum.Draws; got != 6 {
		t.Errorf("Results do not add up to 6: %+v", sum)
	}
	if sum.Cells[ai.ClusterName]+sum.Cells[ai.RandomName] != 54 {
		t.Errorf("Expected 54 cells in total, got %+v", sum.Cells)
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 6 || stats.Games[ai.ClusterName] != 6 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	// starting sides alternate
	if stats.Player1Wins+stats.Player2Wins+stats.Draws != 6 {
		t.Errorf("Unexpected outcome totals %+v", stats)
	}
}

func TestRunUnknownStrategy(t *testing.T) {
	if _, err := Run(context.Background(), Options{Player1: "DeepAI", Player2: ai.RandomName, Games: 1}); !errors.Is(err, ai.ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}
