package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/hailam/dotsplay/internal/ai"
	"github.com/hailam/dotsplay/internal/engine"
	"github.com/hailam/dotsplay/internal/logging"
	"github.com/hailam/dotsplay/internal/netplay"
)

var (
	url      = flag.String("url", "ws://127.0.0.1:2345/ws/", "room websocket URL")
	player   = flag.String("ai", ai.NormalName, "strategy to play with")
	maxMoves = flag.Int("maxmoves", engine.DefaultMaxMoves, "TreeAI search ceiling")
	logLevel = flag.String("loglevel", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	closeLog, err := logging.Setup(logging.Options{Level: *logLevel, Pretty: true})
	if err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	defer closeLog()

	st, err := ai.New(*player, ai.Options{MaxMoves: *maxMoves})
	if err != nil {
		log.Fatal().Err(err).Strs("available", ai.Names()).Msg("choosing strategy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	peer, err := netplay.Dial(ctx, *url, st)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting")
	}
	peer.OnState = func(s netplay.GameStateMsg) {
		log.Info().
			Int("seat", s.ForPlayer).
			Int("to_move", s.CurrentPlayer).
			Int("score1", s.WinCounter1).
			Int("score2", s.WinCounter2).
			Msg("game state")
	}

	final, err := peer.Play(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("playing")
	}
	log.Info().Int("winner", final.Winner).Int("score1", final.WinCounter1).Int("score2", final.WinCounter2).Msg("game over")
}
