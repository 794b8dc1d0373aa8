package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/config"
	"github.com/tmaziere/taskboard/internal/housekeeping"
	"github.com/tmaziere/taskboard/internal/logger"
	"github.com/tmaziere/taskboard/internal/services"
	"github.com/tmaziere/taskboard/internal/session"
	"github.com/tmaziere/taskboard/internal/store"
	"github.com/tmaziere/taskboard/internal/web"
	"github.com/tmaziere/taskboard/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up the store. State is volatile by default: the memory backend
	// and the sqlite :memory: DSN both discard everything on restart.
	st, err := store.Open(cfg.StoreBackend, cfg.StoreDSN)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer st.Close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(st)
	authService := services.NewAuthService(st, eventService)
	taskService := services.NewTaskService(st, hub, eventService)

	// Set up and run the background housekeeper
	retention := time.Duration(cfg.EventRetentionDays) * 24 * time.Hour
	housekeeper, err := housekeeping.New(st, cfg.HousekeepingSchedule, retention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up housekeeper")
	}
	go housekeeper.Run()

	// Set up the session manager and router
	sessions := session.NewJWTManager(cfg.SessionSecret, 24*time.Hour, cfg.SessionSecure)
	router := web.NewRouter(sessions, st, hub, authService, taskService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	housekeeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
