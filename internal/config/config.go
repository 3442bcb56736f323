// Package config loads the settings shared by the dotsplay commands.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/board"
	"github.com/hailam/dotsplay/internal/engine"
)

// EnvPrefix prefixes the environment overrides, e.g. DOTSPLAY_WIDTH.
const EnvPrefix = "DOTSPLAY_"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds the game, engine and service settings.
type Config struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Player1    string        `json:"player1"`
	Player2    string        `json:"player2"`
	MaxMoves   int           `json:"max_moves"`
	AIInterval time.Duration `json:"ai_interval"`
	LogLevel   string        `json:"log_level"`
	LogFile    string        `json:"log_file"`
	LogPretty  bool          `json:"log_pretty"`
	DataDir    string        `json:"data_dir"`
	ListenAddr string        `json:"listen_addr"`
	GameName   string        `json:"game_name"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Width:      5,
		Height:     7,
		Player1:    board.HumanLabel,
		Player2:    ai.TreeName,
		MaxMoves:   engine.DefaultMaxMoves,
		AIInterval: 0,
		LogLevel:   "info",
		LogPretty:  true,
		ListenAddr: ":2345",
		GameName:   "Network Game",
	}
}

// Load reads a JSON file over the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DOTSPLAY_* environment variables.
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"WIDTH":     &c.Width,
		"HEIGHT":    &c.Height,
		"MAX_MOVES": &c.MaxMoves,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"PLAYER1":     &c.Player1,
		"PLAYER2":     &c.Player2,
		"LOG_LEVEL":   &c.LogLevel,
		"LOG_FILE":    &c.LogFile,
		"DATA_DIR":    &c.DataDir,
		"LISTEN_ADDR": &c.ListenAddr,
		"GAME_NAME":   &c.GameName,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "AI_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sAI_INTERVAL: %w", EnvPrefix, err)
		}
		c.AIInterval = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_PRETTY: %w", EnvPrefix, err)
		}
		c.LogPretty = b
	}
	return nil
}

// Validate checks ranges and player names.
func (c *Config) Validate() error {
	if c.Width < board.MinSize || c.Width > board.MaxSize {
		return fmt.Errorf("%w: width %d outside %d..%d", ErrInvalid, c.Width, board.MinSize, board.MaxSize)
	}
	if c.Height < board.MinSize || c.Height > board.MaxSize {
		return fmt.Errorf("%w: height %d outside %d..%d", ErrInvalid, c.Height, board.MinSize, board.MaxSize)
	}
	for i, p := range []string{c.Player1, c.Player2} {
		if !ai.IsKnown(p) {
			return fmt.Errorf("%w: player%d %q is not Human or one of %v", ErrInvalid, i+1, p, ai.Names())
		}
	}
	if c.MaxMoves < 1 {
		return fmt.Errorf("%w: max_moves must be positive, got %d", ErrInvalid, c.MaxMoves)
	}
	if c.AIInterval < 0 {
		return fmt.Errorf("%w: negative ai_interval", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
