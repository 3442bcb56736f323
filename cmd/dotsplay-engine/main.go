package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/config"
	"github.com/hailam/dotsplay/internal/logging"
	"github.com/hailam/dotsplay/internal/protocol"
	"github.com/hailam/dotsplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	logLevel   = flag.String("loglevel", "", "log level (debug, info, warn, error)")
	logFile    = flag.String("logfile", "", "also write logs to this file")
	noStore    = flag.Bool("nostore", false, "disable saved games and preferences")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
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
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// stdout carries the protocol, so logs always go to stderr
	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile, Writer: os.Stderr})
	if err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	defer closeLog()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	opts := protocol.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Player1:  cfg.Player1,
		Player2:  cfg.Player2,
		MaxMoves: cfg.MaxMoves,
	}
	if !*noStore {
		store, err := storage.NewStorage(cfg.DataDir)
		if err != nil {
			log.Warn().Err(err).Msg("storage unavailable, save and load disabled")
		} else {
			defer store.Close()
			opts.Store = store
			if prefs, err := store.LoadPreferences(); err == nil && *configPath == "" {
				opts.Player1, opts.Player2 = prefs.Player1, prefs.Player2
				if prefs.MaxMoves > 0 {
					opts.MaxMoves = prefs.MaxMoves
				}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := protocol.New(opts)
	if err := session.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}
