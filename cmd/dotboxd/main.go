// Package main provides the dotboxd binary: a TCP server hosting
// multiplayer dots-and-boxes games over a line-delimited JSON protocol.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/dotboxd/dotboxd/internal/config"
	"github.com/dotboxd/dotboxd/internal/observability"
	"github.com/dotboxd/dotboxd/internal/room"
	"github.com/dotboxd/dotboxd/internal/server"
	"github.com/dotboxd/dotboxd/internal/session"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	flag.Parse()

	ctx := context.Background()

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	} else {
		cfg = config.Default()
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry := room.NewRegistry(cfg.Game.MaxRooms, cfg.Game.MaxGridDim)
	hub := session.NewHub()
	handler := session.NewHandler(registry, hub, cfg.Game, logger)
	acceptor := server.NewAcceptor(cfg.Server, handler, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("acceptor", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("dotboxd initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("max_clients", cfg.Server.MaxClients),
		zap.Int("max_rooms", cfg.Game.MaxRooms),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
