package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/config"
	"github.com/hailam/dotsplay/internal/logging"
	"github.com/hailam/dotsplay/internal/selfplay"
	"github.com/hailam/dotsplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	player1    = flag.String("p1", "", "first strategy, overrides the config")
	player2    = flag.String("p2", "", "second strategy, overrides the config")
	games      = flag.Int("games", 10, "number of games")
	parallel   = flag.Int("parallel", runtime.NumCPU(), "games played at once")
	record     = flag.Bool("record", true, "record results in the statistics database")
	logLevel   = flag.String("loglevel", "", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal().Err(err).Msg("reading environment")
	}
	if *player1 != "" {
		cfg.Player1 = *player1
	}
	if *player2 != "" {
		cfg.Player2 = *player2
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile})
	if err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	defer closeLog()

	opts := selfplay.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Player1:  cfg.Player1,
		Player2:  cfg.Player2,
		Games:    *games,
		Parallel: *parallel,
		MaxMoves: cfg.MaxMoves,
	}
	if *record {
		store, err := storage.NewStorage(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("opening storage")
		}
		defer store.Close()
		opts.Store = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := selfplay.Run(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("match aborted")
	}

	fmt.Printf("%d games on %dx%d, %d draws\n", sum.Games, cfg.Width, cfg.Height, sum.Draws)
	names := make([]string, 0, len(sum.Cells))
	for name := range sum.Cells {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-10s %3d wins %5d cells\n", name, sum.Wins[name], sum.Cells[name])
	}
}
