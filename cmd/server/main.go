package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"room-chat/internal/auth"
	"room-chat/internal/config"
	"room-chat/internal/database"
	"room-chat/internal/handlers"
	"room-chat/internal/presence"
	"room-chat/internal/services"
	"room-chat/internal/websocket"
	"room-chat/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Presence journal is optional
	var (
		recorder   websocket.PresenceRecorder = presence.Discard{}
		presenceDB database.PresenceRepository
		journal    *presence.Journal
	)
	if cfg.Database.URL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare database: %v", err)
		}
		journal = presence.NewJournal(db, cfg.Database.PresenceBuffer)
		recorder = journal
		presenceDB = db
	} else {
		logger.Info("DATABASE_URL not set; presence journal disabled")
	}

	hub := websocket.NewHub(recorder)
	origins := handlers.NewOriginPolicy(cfg.Server.AllowedOrigins)

	router := handlers.Router{
		WebSocket: handlers.NewWebSocketHandlers(hub, cfg.WebSocket, origins),
		Health:    handlers.Health(hub),
		Origins:   origins,
	}
	if cfg.AdminEnabled() {
		router.Auth = handlers.NewAuthHandlers(auth.NewService(cfg))
		router.Rooms = handlers.NewRoomHandlers(services.NewRoomService(hub, presenceDB))
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})
	if journal != nil {
		g.Go(func() error {
			// Stop only after the hub has emitted its last record.
			journalCtx, cancel := context.WithCancel(context.Background())
			go func() {
				<-hub.Done()
				cancel()
			}()
			return journal.Run(journalCtx)
		})
	}
	g.Go(func() error {
		logger.Info("Server listening at http://0.0.0.0%s", cfg.Server.Port)
		router.PrintEndpoints(cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
