package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordclash/internal/commentary"
	"wordclash/internal/config"
	"wordclash/internal/httpserver"
	"wordclash/internal/registry"
	"wordclash/internal/store"
	"wordclash/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	targets, allowed := words.Stats()
	log.Info().Int("targets", targets).Int("allowed", allowed).Msg("word lists loaded")

	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite store")
		}
		defer s.Close()
		st = s
	default:
		s, err := store.NewFileStore(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open file store")
		}
		st = s
	}

	gen := commentary.New(commentary.Config{
		Enabled:   cfg.Commentary.Enabled,
		AIEnabled: cfg.Commentary.AIEnabled,
		AIChance:  cfg.Commentary.AIChance,
		APIKey:    cfg.Commentary.APIKey,
		Model:     cfg.Commentary.Model,
		BaseURL:   cfg.Commentary.BaseURL,
	})

	reg, err := registry.New(context.Background(), st, registry.Options{
		DisconnectGrace: cfg.Rooms.DisconnectGrace,
		IdleEviction:    cfg.Rooms.IdleEviction,
		SweepInterval:   cfg.Rooms.SweepInterval,
		Commentary:      gen,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start room registry")
	}

	srv := httpserver.New(reg, cfg.ClientOrigin)
	log.Info().Int("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("starting wordclash server")
	if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
