package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/config"
	"github.com/hailam/dotsplay/internal/logging"
	"github.com/hailam/dotsplay/internal/netplay"
	"github.com/hailam/dotsplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	addr       = flag.String("addr", "", "listen address, overrides the config")
	logLevel   = flag.String("loglevel", "", "log level (debug, info, warn, error)")
	logFile    = flag.String("logfile", "", "also write logs to this file")
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
	if *addr != "" {
		cfg.ListenAddr = *addr
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

	closeLog, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile})
	if err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	defer closeLog()

	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("opening storage")
	}
	defer store.Close()

	hub := netplay.NewHub(netplay.HubOptions{
		GameName:   cfg.GameName,
		Width:      cfg.Width,
		Height:     cfg.Height,
		MaxMoves:   cfg.MaxMoves,
		AIInterval: cfg.AIInterval,
		Store:      store,
	})
	defer hub.Close()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: hub.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		server.Close()
	}
}
