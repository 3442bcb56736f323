package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/dotsplay/internal/board"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	prefixGame     = "game/"
)

var (
	// ErrGameNotFound is returned when no game is saved under a name.
	ErrGameNotFound = errors.New("saved game not found")
	// ErrInvalidName is returned for empty game names.
	ErrInvalidName = errors.New("invalid game name")
)

// Preferences stores the last used game settings.
type Preferences struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	MaxMoves   int       `json:"max_moves"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Width:      board.DefaultSize,
		Height:     board.DefaultSize,
		Player1:    board.HumanLabel,
		Player2:    board.HumanLabel,
		LastPlayed: time.Now(),
	}
}

// MatchStats aggregates finished games.
type MatchStats struct {
	GamesPlayed   int            `json:"games_played"`
	Player1Wins   int            `json:"player1_wins"`
	Player2Wins   int            `json:"player2_wins"`
	Draws         int            `json:"draws"`
	Games         map[string]int `json:"games_by_label"`
	Wins          map[string]int `json:"wins_by_label"`
	CellsWon      map[string]int `json:"cells_by_label"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewMatchStats returns empty statistics.
func NewMatchStats() *MatchStats {
	return &MatchStats{
		Games:    make(map[string]int),
		Wins:     make(map[string]int),
		CellsWon: make(map[string]int),
	}
}

// MatchResult describes a finished game.
type MatchResult struct {
	Player1  string // label of player 1
	Player2  string
	Outcome  board.Outcome
	Score1   int
	Score2   int
	Duration time.Duration
}

// ResultOf returns the result of the finished game on b.
func ResultOf(b *board.Board, d time.Duration) MatchResult {
	return MatchResult{
		Player1:  b.Label(board.Player1),
		Player2:  b.Label(board.Player2),
		Outcome:  b.Winner(),
		Score1:   b.Score(board.Player1),
		Score2:   b.Score(board.Player2),
		Duration: d,
	}
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database below dataDir, or below the platform data
// directory when dataDir is empty.
func NewStorage(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbDir, err)
	}
	return &Storage{db: db}, nil
}

// NewMemoryStorage opens a database that lives only in memory.
func NewMemoryStorage() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v and reports whether it was found.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SaveGame stores the record of b under name, replacing any earlier save.
func (s *Storage) SaveGame(name string, b *board.Board) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return s.put(prefixGame+name, b.Record())
}

// LoadGame rebuilds the game saved under name.
func (s *Storage) LoadGame(name string) (*board.Board, error) {
	var rec board.Record
	found, err := s.get(prefixGame+name, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, name)
	}
	b, err := board.FromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	return b, nil
}

// ListGames returns the names of all saved games in key order.
func (s *Storage) ListGames() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefixGame))
		}
		return nil
	})
	return names, err
}

// DeleteGame removes the game saved under name.
func (s *Storage) DeleteGame(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixGame + name)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrGameNotFound, name)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// SavePreferences saves preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// LoadStats loads match statistics, returns empty stats if not found.
func (s *Storage) LoadStats() (*MatchStats, error) {
	stats := NewMatchStats()
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordMatch adds a finished game to the statistics. Concurrent callers
// are serialised by retrying on transaction conflicts.
func (s *Storage) RecordMatch(result MatchResult) error {
	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			stats := NewMatchStats()
			item, err := txn.Get([]byte(keyStats))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, stats) }); err != nil {
					return err
				}
			}

			stats.add(result)
			data, err := json.Marshal(stats)
			if err != nil {
				return err
			}
			return txn.Set([]byte(keyStats), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

func (s *MatchStats) add(r MatchResult) {
	s.GamesPlayed++
	s.TotalPlayTime += r.Duration
	s.Games[r.Player1]++
	s.Games[r.Player2]++
	s.CellsWon[r.Player1] += r.Score1
	s.CellsWon[r.Player2] += r.Score2

	switch r.Outcome {
	case board.Player1Wins:
		s.Player1Wins++
		s.Wins[r.Player1]++
	case board.Player2Wins:
		s.Player2Wins++
		s.Wins[r.Player2]++
	case board.Draw:
		s.Draws++
	}
}

// WinRate returns the win rate of label as a percentage (0-100).
func (s *MatchStats) WinRate(label string) float64 {
	if s.Games[label] == 0 {
		return 0
	}
	return float64(s.Wins[label]) / float64(s.Games[label]) * 100
}
