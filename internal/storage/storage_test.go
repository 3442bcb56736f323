package storage

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hailam/dotsplay/internal/board"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewMemoryStorage()
	if err != nil {
		t.Fatalf("NewMemoryStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func playedBoard(t *testing.T) *board.Board {
	t.Helper()
	b := board.NewBoard(3, 3)
	b.SetLabel(board.Player2, "BetterAI")
	for _, m := range []board.Move{
		board.NewMove(0, 0, board.Vertical, board.Player1, board.HumanLabel),
		board.NewMove(0, 0, board.Horizontal, board.Player2, "BetterAI"),
		board.NewMove(1, 1, board.Vertical, board.Player2, "BetterAI"),
	} {
		if _, err := b.ApplyMove(m); err != nil {
			t.Fatalf("ApplyMove(%s): %v", m, err)
		}
	}
	if err := b.UndoOneMove(); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSaveLoadGame(t *testing.T) {
	s := newTestStorage(t)
	b := playedBoard(t)

	if err := s.SaveGame("first", b); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	got, err := s.LoadGame("first")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if got.ContentHash() != b.ContentHash() {
		t.Errorf("Loaded board differs:\n%s\nwant\n%s", got, b)
	}
	if got.HistoryPointer() != 2 || len(got.History()) != 3 {
		t.Errorf("Expected pointer 2 of 3 moves, got %d of %d", got.HistoryPointer(), len(got.History()))
	}
	if got.Label(board.Player2) != "BetterAI" {
		t.Errorf("Expected player 2 label BetterAI, got %q", got.Label(board.Player2))
	}
	if err := got.RedoOneMove(); err != nil {
		t.Errorf("RedoOneMove after load: %v", err)
	}
}

func TestLoadMissingGame(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.LoadGame("nope"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
	if err := s.DeleteGame("nope"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
	if err := s.SaveGame(" ", board.NewBoard(3, 3)); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
}

func TestListDeleteGames(t *testing.T) {
	s := newTestStorage(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := s.SaveGame(name, board.NewBoard(3, 3)); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"a", "b", "c"}) {
		t.Errorf("ListGames = %v", names)
	}

	if err := s.DeleteGame("b"); err != nil {
		t.Fatal(err)
	}
	names, _ = s.ListGames()
	if !slices.Equal(names, []string{"a", "c"}) {
		t.Errorf("ListGames after delete = %v", names)
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStorage(t)
	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Width != board.DefaultSize || prefs.Player1 != board.HumanLabel {
		t.Errorf("Unexpected defaults %+v", prefs)
	}

	prefs.Player2 = "TreeAI"
	prefs.MaxMoves = 30
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.Player2 != "TreeAI" || got.MaxMoves != 30 {
		t.Errorf("Preferences not persisted: %+v", got)
	}
}

func TestRecordMatch(t *testing.T) {
	s := newTestStorage(t)
	results := []MatchResult{
		{Player1: "TreeAI", Player2: "RandomAI", Outcome: board.Player1Wins, Score1: 6, Score2: 3, Duration: time.Second},
		{Player1: "RandomAI", Player2: "TreeAI", Outcome: board.Player2Wins, Score1: 2, Score2: 7, Duration: time.Second},
		{Player1: "TreeAI", Player2: "RandomAI", Outcome: board.Draw, Score1: 2, Score2: 2, Duration: time.Second},
	}

	var wg sync.WaitGroup
	for _, r := range results {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.RecordMatch(r); err != nil {
				t.Errorf("RecordMatch: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 3 || stats.Player1Wins != 1 || stats.Player2Wins != 1 || stats.Draws != 1 {
		t.Errorf("Unexpected totals %+v", stats)
	}
	if stats.Wins["TreeAI"] != 2 || stats.Games["TreeAI"] != 3 {
		t.Errorf("Unexpected TreeAI stats: %d wins of %d", stats.Wins["TreeAI"], stats.Games["TreeAI"])
	}
	if stats.CellsWon["TreeAI"] != 15 {
		t.Errorf("Expected 15 cells for TreeAI, got %d", stats.CellsWon["TreeAI"])
	}
	if stats.TotalPlayTime != 3*time.Second {
		t.Errorf("Expected 3s play time, got %v", stats.TotalPlayTime)
	}
	if rate := stats.WinRate("RandomAI"); rate != 0 {
		t.Errorf("Expected 0%% for RandomAI, got %.2f%%", rate)
	}
	if rate := NewMatchStats().WinRate("TreeAI"); rate != 0 {
		t.Errorf("Expected 0 win rate on empty stats, got %.2f", rate)
	}
}

func TestResultOf(t *testing.T) {
	b := board.NewBoard(1, 2)
	b.SetLabel(board.Player1, "TreeAI")
	if _, err := b.ApplyMove(board.NewMove(0, 0, board.Horizontal, board.Player1, "TreeAI")); err != nil {
		t.Fatal(err)
	}
	r := ResultOf(b, time.Minute)
	if r.Outcome != board.Player1Wins || r.Score1 != 2 || r.Player1 != "TreeAI" || r.Player2 != board.HumanLabel {
		t.Errorf("Unexpected result %+v", r)
	}
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if err := s.SaveGame("kept", playedBoard(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewStorage(dir)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	if _, err := s.LoadGame("kept"); err != nil {
		t.Errorf("LoadGame after reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}

func TestDatabaseDir(t *testing.T) {
	dataDir := t.TempDir()
	dir, err := GetDatabaseDir(dataDir)
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if want := filepath.Join(dataDir, "db"); dir != want {
		t.Errorf("Expected %s, got %s", want, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Database directory was not created: %v", err)
	}
}
