package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/rferrer/steady/internal/config"
	"github.com/rferrer/steady/internal/server"
	"github.com/rferrer/steady/internal/service"
	"github.com/rferrer/steady/internal/storage/sqlite"
	"github.com/rferrer/steady/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	// Initialize SQLite storage (runs migrations)
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	recorder := service.NewEventRecorder(store)
	handler := server.NewHandler(
		service.NewRoomService(store, recorder),
		service.NewLedgerService(store, recorder),
		service.NewFocusService(store, recorder),
		service.NewSuggestService(store),
	)
	router := server.NewRouter(handler, server.RouterOptions{
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
