package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-relay/internal/api"
	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/database"
	"whatsapp-relay/internal/dispatch"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/internal/media"
	"whatsapp-relay/internal/recipient"
	"whatsapp-relay/internal/session"
	"whatsapp-relay/internal/wa"
	"whatsapp-relay/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	db, err := database.Init(cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("database init failed")
	}

	hub := ws.NewHub(lg)
	go hub.Run()

	client := wa.NewBridge(cfg.BridgeURL, cfg.BridgeToken, lg)
	gate := session.NewGate(lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Run(ctx)
	go relayEvents(gate, hub, client.Events())

	dispatcher := dispatch.New(client, dispatch.Config{
		MaxTextLength: cfg.MaxTextLength,
		Delay:         cfg.SendDelay,
		Concurrency:   cfg.SendConcurrency,
	}, lg)
	parser := recipient.NewParser(cfg.CountryCode)
	resolver := media.NewResolver()

	router := api.NewRouter(cfg, lg, gate, parser, dispatcher, resolver, hub, db)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	go func() {
		lg.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-gate.Done():
		// The session cannot recover without re-pairing; shut down and let
		// the supervisor restart the process.
		lg.Error().Err(gate.Fatal()).Msg("session is unusable, shutting down")
		shutdown(srv, lg)
		os.Exit(1)
	case <-sigCtx.Done():
		lg.Info().Msg("shutdown signal received")
		shutdown(srv, lg)
	}
}

func shutdown(srv *http.Server, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Warn().Err(err).Msg("graceful shutdown failed")
	}
}

// relayEvents feeds bridge lifecycle events into the session gate and
// republishes them to the pairing UI.
func relayEvents(gate *session.Gate, hub *ws.Hub, events <-chan wa.Event) {
	for ev := range events {
		gate.Apply(ev)
		switch ev.Type {
		case wa.EventQR:
			hub.NotifyQR(ev.QR)
		default:
			hub.NotifySession(string(gate.State()), gate.Info())
		}
	}
}
