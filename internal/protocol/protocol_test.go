package protocol

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/storage"
)

// run feeds the commands to a session and returns its output lines.
func run(t *testing.T, s *Session, commands ...string) []string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(commands, "\n") + "\n")
	if err := s.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func contains(lines []string, prefix string) (string, bool) {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return l, true
		}
	}
	return "", false
}

func TestHello(t *testing.T) {
	lines := run(t, New(Options{}), "dab", "isready", "quit")
	if lines[0] != "id name DotsPlay" {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if _, ok := contains(lines, "option name Player1 type combo default Human"); !ok {
		t.Errorf("Missing Player1 option in %q", lines)
	}
	if _, ok := contains(lines, "dabok"); !ok {
		t.Error("Missing dabok")
	}
	if lines[len(lines)-1] != "readyok" {
		t.Errorf("Expected readyok last, got %q", lines[len(lines)-1])
	}
}

func TestPositionAndMoves(t *testing.T) {
	s := New(Options{})
	lines := run(t, s,
		"position 3 3 moves 0,0,v 0,0,h",
		"move 1,1,v",
		"move 9,9,v",
		"undo",
	)
	b := s.Board()
	if b.Width() != 3 || b.Height() != 3 {
		t.Fatalf("Expected a 3x3 board, got %dx%d", b.Width(), b.Height())
	}
	if b.Cell(0, 0).Owner != board.Player2 {
		t.Errorf("Expected player 2 to own (0,0), got %s", b.Cell(0, 0).Owner)
	}
	if b.HistoryPointer() != 2 || len(b.History()) != 3 {
		t.Errorf("Expected pointer 2 of 3, got %d of %d", b.HistoryPointer(), len(b.History()))
	}
	if _, ok := contains(lines, "info string invalid move 9,9,v"); !ok {
		t.Errorf("Expected an invalid move report, got %q", lines)
	}

	run(t, s, "redo")
	if b := s.Board(); b.HistoryPointer() != 3 {
		t.Errorf("Expected redo to restore pointer 3, got %d", b.HistoryPointer())
	}
}

func TestPositionRejectsBadSize(t *testing.T) {
	s := New(Options{Width: 4, Height: 4})
	lines := run(t, s, "position 2 9", "newgame x 3")
	if s.Board().Width() != 4 {
		t.Errorf("Board should be unchanged, got width %d", s.Board().Width())
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "info string invalid size") {
		t.Errorf("Expected two size errors, got %q", lines)
	}
}

func TestGo(t *testing.T) {
	s := New(Options{Player1: "StupidAI"})
	lines := run(t, s, "newgame 3 3", "go", "quit")
	if l, ok := contains(lines, "bestmove "); !ok || l != "bestmove 0,0,v" {
		t.Errorf("Expected bestmove 0,0,v, got %q", lines)
	}
	if s.Board().MovesMade() != 0 {
		t.Error("go must not change the board")
	}
}

func TestGoTree(t *testing.T) {
	s := New(Options{})
	lines := run(t, s, "position 3 3 moves 1,1,v 1,1,h", "go", "stop")
	l, ok := contains(lines, "bestmove ")
	if !ok {
		t.Fatalf("Missing bestmove in %q", lines)
	}
	if l == "bestmove none" {
		return
	}
	m, err := board.ParseMove(strings.TrimPrefix(l, "bestmove "))
	if err != nil {
		t.Fatal(err)
	}
	m.Player = s.Board().CurrentPlayer()
	m.Source = s.Board().Label(m.Player)
	if !s.Board().IsMoveValid(m) {
		t.Errorf("bestmove %s is not valid", m)
	}
}

func TestSetOption(t *testing.T) {
	s := New(Options{})
	lines := run(t, s,
		"setoption name Player1 value Nobody",
		"setoption name Player2 value RandomAI",
		"setoption name MaxMoves value -3",
		"setoption name Colour value red",
	)
	want := []string{
		`info string unknown player "Nobody"`,
		`info string invalid MaxMoves "-3"`,
		`info string unknown option "Colour"`,
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("Got %q, want %q", lines, want)
	}
	if s.Board().Label(board.Player2) != "RandomAI" {
		t.Errorf("Expected player 2 label RandomAI, got %q", s.Board().Label(board.Player2))
	}
}

func TestGoFinished(t *testing.T) {
	s := New(Options{Width: 3, Height: 3})
	b := s.Board()
	for !b.GameOver() {
		if _, err := b.ApplyMove(b.ValidMoves()[0]); err != nil {
			t.Fatal(err)
		}
	}
	lines := run(t, s, "go")
	if lines[0] != "bestmove none" {
		t.Errorf("Expected bestmove none on a finished game, got %q", lines)
	}
}

func TestSaveLoad(t *testing.T) {
	store, err := storage.NewMemoryStorage()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := New(Options{Store: store})
	run(t, s, "position 4 4 moves 0,0,v 1,2,h", "setoption name Player2 value ClusterAI", "save my game")
	hash := s.Board().ContentHash()

	other := New(Options{Store: store})
	lines := run(t, other, "load my game", "hash")
	if lines[len(lines)-1] != "hash "+hash {
		t.Errorf("Expected hash %s after load, got %q", hash, lines)
	}
	if other.Board().Label(board.Player2) != "ClusterAI" {
		t.Errorf("Label not restored: %q", other.Board().Label(board.Player2))
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Player2 != "ClusterAI" || prefs.Width != 4 {
		t.Errorf("Preferences not saved: %+v", prefs)
	}

	lines = run(t, other, "load missing")
	if !strings.HasPrefix(lines[0], "info string load failed") {
		t.Errorf("Expected load failure, got %q", lines)
	}
}

func TestNoStore(t *testing.T) {
	lines := run(t, New(Options{}), "save x", "load x", "bogus")
	want := []string{
		"info string no storage configured",
		"info string no storage configured",
		"info string unknown command bogus",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("Got %q, want %q", lines, want)
	}
}

func TestDisplayAndPerft(t *testing.T) {
	lines := run(t, New(Options{}), "position 3 3", "d", "perft 1")
	if _, ok := contains(lines, "Hash: "); !ok {
		t.Errorf("Missing hash in display %q", lines)
	}
	if _, ok := contains(lines, "Nodes: 12"); !ok {
		t.Errorf("Expected 12 nodes at depth 1, got %q", lines)
	}
}

func TestPerftRejectsBadDepth(t *testing.T) {
	for _, depth := range []string{"-1", "x"} {
		t.Run(depth, func(t *testing.T) {
			lines := run(t, New(Options{}), "position 4 4", "perft "+depth, "isready")
			if _, ok := contains(lines, "info string invalid depth \""+depth+"\""); !ok {
				t.Errorf("Expected invalid depth reply, got %q", lines)
			}
			if _, ok := contains(lines, "Nodes: "); ok {
				t.Errorf("Perft ran with depth %s: %q", depth, lines)
			}
			if _, ok := contains(lines, "readyok"); !ok {
				t.Errorf("Session stopped answering: %q", lines)
			}
		})
	}
}
