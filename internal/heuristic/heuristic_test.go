package heuristic

import (
	"errors"
	"testing"

	"github.com/hailam/dotsplay/internal/board"
)

func play(t *testing.T, b *board.Board, x, y int, o board.Orientation) {
	t.Helper()
	p := b.CurrentPlayer()
	if _, err := b.ApplyMove(board.NewMove(x, y, o, p, b.Label(p))); err != nil {
		t.Fatalf("ApplyMove(%d,%d,%s): %v", x, y, o, err)
	}
}

// threeSided returns a 4x4 board where (1,1) misses only its right edge
// and player 2 is to move.
func threeSided(t *testing.T) *board.Board {
	t.Helper()
	b := board.NewBoard(4, 4)
	play(t, b, 1, 0, board.Horizontal)
	play(t, b, 1, 1, board.Horizontal)
	play(t, b, 0, 1, board.Vertical)
	return b
}

func TestSurroundingCounts(t *testing.T) {
	b := threeSided(t)
	c := SurroundingCounts(b)
	if len(c) != 4 || len(c[0]) != 4 {
		t.Fatalf("Expected 4x4 counts, got %dx%d", len(c), len(c[0]))
	}
	if c[1][1] != 3 {
		t.Errorf("Expected (1,1) to have 3, got %d", c[1][1])
	}
	if c[0][0] != 2 || c[1][0] != 2 || c[2][2] != 0 {
		t.Errorf("Unexpected counts: (0,0)=%d (1,0)=%d (2,2)=%d", c[0][0], c[1][0], c[2][2])
	}
}

func TestCaptureMove(t *testing.T) {
	b := threeSided(t)
	m, ok := CaptureMove(b, board.Player2, "SimpleAI")
	if !ok {
		t.Fatal("Expected a capture move")
	}
	want := board.NewMove(1, 1, board.Vertical, board.Player2, "SimpleAI")
	if m != want {
		t.Errorf("CaptureMove = %+v, want %+v", m, want)
	}

	if _, ok := CaptureMove(board.NewBoard(4, 4), board.Player1, ""); ok {
		t.Error("Empty board should have no capture move")
	}
}

func TestCaptureMoveSideOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup [][3]int // x, y, orientation
		want  board.Move
	}{
		{
			"missing left",
			[][3]int{{1, 0, 1}, {1, 1, 1}, {1, 1, 0}},
			board.NewMove(0, 1, board.Vertical, board.NoPlayer, ""),
		},
		{
			"missing top",
			[][3]int{{0, 1, 0}, {1, 1, 1}, {1, 1, 0}},
			board.NewMove(1, 0, board.Horizontal, board.NoPlayer, ""),
		},
		{
			"missing bottom",
			[][3]int{{0, 1, 0}, {1, 0, 1}, {1, 1, 0}},
			board.NewMove(1, 1, board.Horizontal, board.NoPlayer, ""),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := board.NewBoard(4, 4)
			for _, s := range tt.setup {
				play(t, b, s[0], s[1], board.Orientation(s[2]))
			}
			m, ok := CaptureMove(b, board.NoPlayer, "")
			if !ok || !m.SameEdge(tt.want) {
				t.Errorf("CaptureMove = %s (%v), want %s", m, ok, tt.want)
			}
		})
	}
}

func TestSafeMovesEmptyBoard(t *testing.T) {
	b := board.NewBoard(4, 4)
	counts := SurroundingCounts(b)
	set := SafeMoves(b, counts, Corner, board.Player1, "BetterAI")

	// Every edge except the eight touching a corner cell.
	if got := len(set.Safe); got != b.TotalEdges()-8 {
		t.Errorf("Expected %d safe moves, got %d", b.TotalEdges()-8, got)
	}
	if len(set.Good) != 0 {
		t.Errorf("Empty board has no corners to build on, got %d good moves", len(set.Good))
	}
	for _, m := range set.Safe {
		if err := b.Validate(m, false); err != nil {
			t.Errorf("Safe move %s is not playable: %v", m, err)
		}
		if m.Player != board.Player1 || m.Source != "BetterAI" {
			t.Errorf("Move %s carries player %s source %q", m, m.Player, m.Source)
		}
	}

	near := SafeMoves(b, counts, Neighbour, board.Player1, "NormalAI")
	if len(near.Good) == 0 {
		t.Error("Border edges should count as neighbours")
	}
}

func TestSafeMovesCorner(t *testing.T) {
	b := board.NewBoard(5, 5)
	play(t, b, 2, 2, board.Horizontal)
	set := SafeMoves(b, SurroundingCounts(b), Corner, board.Player2, "")

	want := map[board.Move]int{
		board.NewMove(2, 2, board.Vertical, board.Player2, ""): 1,
		board.NewMove(1, 2, board.Vertical, board.Player2, ""): 1,
		board.NewMove(2, 3, board.Vertical, board.Player2, ""): 1,
		board.NewMove(1, 3, board.Vertical, board.Player2, ""): 1,
	}
	got := map[board.Move]int{}
	for _, m := range set.Good {
		got[m]++
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d good moves, got %v", len(want), set.Good)
	}
	for m, n := range want {
		if got[m] != n {
			t.Errorf("Good move %s listed %d times, want %d", m, got[m], n)
		}
	}
}

func TestSafeMovesExcludesGifts(t *testing.T) {
	b := threeSided(t)
	set := SafeMoves(b, SurroundingCounts(b), Corner, board.Player2, "")
	for _, m := range set.Safe {
		nb := b.Clone()
		if _, err := nb.ApplyMoveWith(m, board.ApplyOptions{IgnoreTurn: true}); err != nil {
			t.Fatal(err)
		}
		for x := 0; x < nb.Width(); x++ {
			for y := 0; y < nb.Height(); y++ {
				if b.CountSurroundingEdges(x, y) < 3 && nb.CountSurroundingEdges(x, y) >= 3 {
					t.Errorf("Safe move %s leaves (%d,%d) capturable", m, x, y)
				}
			}
		}
	}
}

func TestSacrificeMoves(t *testing.T) {
	b := board.NewBoard(4, 4)
	moves := SacrificeMoves(b, SurroundingCounts(b), board.Player1, "")

	want := []board.Move{
		board.NewMove(0, 0, board.Vertical, board.Player1, ""),
		board.NewMove(0, 0, board.Horizontal, board.Player1, ""),
		board.NewMove(0, 3, board.Vertical, board.Player1, ""),
		board.NewMove(0, 2, board.Horizontal, board.Player1, ""),
		board.NewMove(2, 0, board.Vertical, board.Player1, ""),
		board.NewMove(3, 0, board.Horizontal, board.Player1, ""),
		board.NewMove(2, 3, board.Vertical, board.Player1, ""),
		board.NewMove(3, 2, board.Horizontal, board.Player1, ""),
	}
	if len(moves) != len(want) {
		t.Fatalf("Expected %d moves, got %d: %v", len(want), len(moves), moves)
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("Move %d = %s, want %s", i, moves[i], want[i])
		}
	}
}

func TestSacrificeMovesCorridor(t *testing.T) {
	// (1,1) closed left and right: a corridor cell.
	b := board.NewBoard(3, 3)
	play(t, b, 0, 1, board.Vertical)
	play(t, b, 1, 1, board.Vertical)
	counts := SurroundingCounts(b)

	found := map[board.Move]bool{}
	for _, m := range SacrificeMoves(b, counts, board.NoPlayer, "") {
		found[m] = true
	}
	for _, m := range []board.Move{
		board.NewMove(1, 0, board.Horizontal, board.NoPlayer, ""),
		board.NewMove(1, 1, board.Horizontal, board.NoPlayer, ""),
	} {
		if counts[1][0] < 2 && counts[1][2] < 2 && !found[m] {
			t.Errorf("Expected corridor sacrifice %s", m)
		}
	}
}

func TestFirstAndRandomMove(t *testing.T) {
	b := board.NewBoard(3, 3)
	m, err := FirstMove(b, board.Player1, "StupidAI")
	if err != nil {
		t.Fatal(err)
	}
	if want := board.NewMove(0, 0, board.Vertical, board.Player1, "StupidAI"); m != want {
		t.Errorf("FirstMove = %+v, want %+v", m, want)
	}

	for i := 0; i < 20; i++ {
		m, err := RandomMove(b, board.Player1, "RandomAI")
		if err != nil {
			t.Fatal(err)
		}
		if !b.IsMoveValid(board.NewMove(m.X, m.Y, m.Orientation, board.Player1, board.HumanLabel)) {
			t.Errorf("RandomMove returned unplayable %s", m)
		}
	}

	full := board.NewBoard(2, 1)
	play(t, full, 0, 0, board.Vertical)
	if _, err := FirstMove(full, board.Player1, ""); !errors.Is(err, board.ErrNoMovesAvailable) {
		t.Errorf("FirstMove on a full board: expected ErrNoMovesAvailable, got %v", err)
	}
	if _, err := RandomMove(full, board.Player1, ""); !errors.Is(err, board.ErrNoMovesAvailable) {
		t.Errorf("RandomMove on a full board: expected ErrNoMovesAvailable, got %v", err)
	}
}
