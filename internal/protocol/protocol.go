// Package protocol implements the line-oriented engine protocol used by
// external front ends and terminal play.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/engine"
	"github.com/hailam/dotsplay/internal/storage"
)

// Options configures a new session.
type Options struct {
	Width    int
	Height   int
	Player1  string // strategy name or board.HumanLabel
	Player2  string
	MaxMoves int
	// Store persists saved games and preferences. Nil disables save and load.
	Store *storage.Storage
}

// Session holds the state of one protocol conversation.
type Session struct {
	opts  Options
	board *board.Board

	out   io.Writer
	outMu sync.Mutex

	strategies map[string]ai.Strategy

	// Search state
	searching  bool
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a session with a fresh board.
func New(opts Options) *Session {
	if opts.Width == 0 {
		opts.Width = board.DefaultSize
	}
	if opts.Height == 0 {
		opts.Height = board.DefaultSize
	}
	if opts.Player1 == "" {
		opts.Player1 = board.HumanLabel
	}
	if opts.Player2 == "" {
		opts.Player2 = board.HumanLabel
	}
	if opts.MaxMoves <= 0 {
		opts.MaxMoves = engine.DefaultMaxMoves
	}
	s := &Session{opts: opts, strategies: make(map[string]ai.Strategy)}
	s.newBoard(opts.Width, opts.Height)
	return s
}

// Board returns the current board. It must not be modified while a search
// is running.
func (s *Session) Board() *board.Board { return s.board }

// Run reads commands from r until quit or end of input and writes replies
// to w.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = w
	defer s.handleStop()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

		switch cmd {
		case "dab":
			s.handleHello()
		case "isready":
			s.send("readyok")
		case "newgame":
			s.handleStop()
			s.handleNewGame(args)
		case "position":
			s.handleStop()
			s.handlePosition(args)
		case "move":
			s.handleStop()
			s.handleMove(args)
		case "undo":
			s.handleStop()
			if err := s.board.UndoOneMove(); err != nil {
				s.info("cannot undo: %v", err)
			}
		case "redo":
			s.handleStop()
			if err := s.board.RedoOneMove(); err != nil {
				s.info("cannot redo: %v", err)
			}
		case "setoption":
			s.handleStop()
			s.handleSetOption(args)
		case "go":
			s.handleStop()
			s.handleGo(ctx)
		case "stop":
			s.handleStop()
		case "d":
			s.handleStop()
			s.handleDisplay()
		case "hash":
			s.send("hash %s", s.board.ContentHash())
		case "save":
			s.handleSave(args)
		case "load":
			s.handleStop()
			s.handleLoad(args)
		case "perft":
			s.handleStop()
			s.handlePerft(args)
		case "quit":
			return nil
		default:
			s.info("unknown command %s", cmd)
		}
	}
	return scanner.Err()
}

func (s *Session) send(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Session) info(format string, args ...any) {
	s.send("info string "+format, args...)
}

// handleHello responds to the "dab" command.
func (s *Session) handleHello() {
	s.send("id name DotsPlay")
	s.send("id author DotsPlay Team")
	s.send("")
	strategies := strings.Join(append([]string{board.HumanLabel}, ai.Names()...), " var ")
	s.send("option name Player1 type combo default %s var %s", s.opts.Player1, strategies)
	s.send("option name Player2 type combo default %s var %s", s.opts.Player2, strategies)
	s.send("option name MaxMoves type spin default %d min 1 max %d", s.opts.MaxMoves, 2*board.MaxSize*board.MaxSize)
	s.send("dabok")
}

func (s *Session) newBoard(w, h int) {
	s.board = board.NewBoard(w, h)
	s.board.SetLabel(board.Player1, s.opts.Player1)
	s.board.SetLabel(board.Player2, s.opts.Player2)
}

// parseSize reads "<w> <h>" from args.
func parseSize(args []string) (int, int, error) {
	if len(args) < 2 {
		return 0, 0, errors.New("expected width and height")
	}
	w, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	if w < board.MinSize || w > board.MaxSize || h < board.MinSize || h > board.MaxSize {
		return 0, 0, fmt.Errorf("size %dx%d outside %d..%d", w, h, board.MinSize, board.MaxSize)
	}
	return w, h, nil
}

// handleNewGame starts a new game.
// Formats:
//   - newgame
//   - newgame <w> <h>
func (s *Session) handleNewGame(args []string) {
	w, h := s.board.Width(), s.board.Height()
	if len(args) > 0 {
		var err error
		if w, h, err = parseSize(args); err != nil {
			s.info("invalid size: %v", err)
			return
		}
	}
	s.newBoard(w, h)
}

// handlePosition sets up a position.
// Formats:
//   - position <w> <h>
//   - position <w> <h> moves 1,0,v 0,0,h
func (s *Session) handlePosition(args []string) {
	w, h, err := parseSize(args)
	if err != nil {
		s.info("invalid size: %v", err)
		return
	}
	s.newBoard(w, h)

	for i, arg := range args {
		if arg != "moves" {
			continue
		}
		for _, ms := range args[i+1:] {
			if err := s.play(ms); err != nil {
				s.info("invalid move %s: %v", ms, err)
				return
			}
		}
		break
	}
}

// play applies a move written x,y,o for the player to move.
func (s *Session) play(ms string) error {
	m, err := board.ParseMove(ms)
	if err != nil {
		return err
	}
	m.Player = s.board.CurrentPlayer()
	m.Source = s.board.Label(m.Player)
	_, err = s.board.ApplyMove(m)
	return err
}

func (s *Session) handleMove(args []string) {
	if len(args) == 0 {
		s.info("move needs an argument")
		return
	}
	if err := s.play(args[0]); err != nil {
		s.info("invalid move %s: %v", args[0], err)
		return
	}
	if s.board.GameOver() {
		s.info("game over: %s %d-%d", s.board.Winner(), s.board.Score(board.Player1), s.board.Score(board.Player2))
	}
}

// strategy returns the strategy playing for p. A human side is advised by
// the tree search.
func (s *Session) strategy(p board.Player) (ai.Strategy, error) {
	name := s.board.Label(p)
	if name == board.HumanLabel {
		name = ai.TreeName
	}
	if st, ok := s.strategies[name]; ok {
		return st, nil
	}
	st, err := ai.New(name, ai.Options{MaxMoves: s.opts.MaxMoves, OnInfo: s.sendInfo})
	if err != nil {
		return nil, err
	}
	s.strategies[name] = st
	return st, nil
}

// handleGo starts a move search for the player to move.
func (s *Session) handleGo(ctx context.Context) {
	if s.board.GameOver() {
		s.send("bestmove none")
		return
	}

	p := s.board.CurrentPlayer()
	st, err := s.strategy(p)
	if err != nil {
		s.info("%v", err)
		s.send("bestmove none")
		return
	}

	// the search works on its own copy, labelled for the strategy
	b := s.board.Clone()
	b.SetLabel(p, st.Name())

	ctx, cancel := context.WithCancel(ctx)
	s.searching = true
	s.cancel = cancel
	s.searchDone = make(chan struct{})

	go func() {
		defer close(s.searchDone)
		defer cancel()

		m, err := st.NextMove(ctx, b, p)
		switch {
		case err == nil:
		case errors.Is(err, engine.ErrSearchCancelled) && m.Player != board.NoPlayer:
			s.info("search stopped, playing best move so far")
		default:
			s.info("%s: %v", st.Name(), err)
			s.send("bestmove none")
			return
		}
		s.send("bestmove %s", m)
	}()
}

// sendInfo outputs search progress.
func (s *Session) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		"score " + strings.ReplaceAll(engine.ScoreToString(info.Score), " ", ""),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts,
		fmt.Sprintf("currmovenumber %d/%d", info.Examined, info.Total),
		"pv "+info.Move.String())

	s.send("info %s", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (s *Session) handleStop() {
	if s.searching {
		s.cancel()
		<-s.searchDone
		s.searching = false
	}
}

// handleSetOption processes "setoption" commands.
// Format: setoption name <name> value <value>
func (s *Session) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "player1", "player2":
		if !ai.IsKnown(value) {
			s.info("unknown player %q", value)
			return
		}
		p := board.Player1
		if strings.ToLower(name) == "player2" {
			p = board.Player2
			s.opts.Player2 = value
		} else {
			s.opts.Player1 = value
		}
		s.board.SetLabel(p, value)
	case "maxmoves":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			s.info("invalid MaxMoves %q", value)
			return
		}
		s.opts.MaxMoves = n
		// rebuilt with the new ceiling on next use
		delete(s.strategies, ai.TreeName)
	default:
		s.info("unknown option %q", name)
		return
	}
	s.savePreferences()
}

func (s *Session) savePreferences() {
	if s.opts.Store == nil {
		return
	}
	prefs := &storage.Preferences{
		Width:    s.board.Width(),
		Height:   s.board.Height(),
		Player1:  s.opts.Player1,
		Player2:  s.opts.Player2,
		MaxMoves: s.opts.MaxMoves,
	}
	if err := s.opts.Store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("saving preferences")
	}
}

// handleDisplay prints the board and game state.
func (s *Session) handleDisplay() {
	b := s.board
	s.send("%s", strings.TrimRight(b.String(), "\n"))
	if m, ok := b.LastMove(); ok {
		s.send("Last move: %s by %s", m, m.Player)
	}
	s.send("Moves: %d made, %d remaining, history %d/%d",
		b.MovesMade(), b.RemainingMoves(), b.HistoryPointer(), len(b.History()))
	s.send("Hash: %s", b.ContentHash())
}

func (s *Session) handleSave(args []string) {
	if s.opts.Store == nil {
		s.info("no storage configured")
		return
	}
	if len(args) == 0 {
		s.info("save needs a name")
		return
	}
	name := strings.Join(args, " ")
	if err := s.opts.Store.SaveGame(name, s.board); err != nil {
		s.info("save failed: %v", err)
		return
	}
	s.info("saved %s", name)
}

func (s *Session) handleLoad(args []string) {
	if s.opts.Store == nil {
		s.info("no storage configured")
		return
	}
	if len(args) == 0 {
		s.info("load needs a name")
		return
	}
	name := strings.Join(args, " ")
	b, err := s.opts.Store.LoadGame(name)
	if err != nil {
		s.info("load failed: %v", err)
		return
	}
	s.board = b
	s.opts.Player1, s.opts.Player2 = b.Label(board.Player1), b.Label(board.Player2)
	s.info("loaded %s", name)
}

// handlePerft runs a perft test.
func (s *Session) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 0 {
			s.info("invalid depth %q", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := engine.NewEngine(engine.Options{}).Perft(s.board, depth)
	elapsed := time.Since(start)

	s.send("Nodes: %d", nodes)
	s.send("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		s.send("NPS: %.0f", nps)
	}
}
