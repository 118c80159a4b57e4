package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/logging"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

func main() {
	// 1. Načtení konfigurace a logger (JSON v kontejneru, barevný text lokálně)
	cfg := LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	logger.Info("Startuji Bins API", "port", cfg.HTTPPort, "status_window", cfg.StatusWindow)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Připojení k Postgresu
	db, err := store.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3. Připojení k Valkey (live stav zařízení)
	rdb, err := livecache.Connect(ctx, cfg.ValkeyAddr)
	if err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k Valkey", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	live := livecache.New(rdb, cfg.LiveTTL)

	// 4. Wiring: Store -> Recorder -> Service -> API
	recorder := ingest.NewRecorder(db, live, logger)
	svc := NewService(db, live, recorder, cfg)
	api := NewAPIHandler(svc, logger, cfg)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	// Jednoduchý healthcheck pro Docker
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if cfg.StaticDir != "" {
		mux.Handle("GET /", SPAHandler(cfg.StaticDir))
		logger.Info("Servíruji frontend", "dir", cfg.StaticDir)
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           RequestLogger(logger, CorsMiddleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 5. Server běží v goroutine, main čeká na signál
	go func() {
		logger.Info("HTTP server naslouchá", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server spadl", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Ukončuji Bins API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Chyba při ukončování serveru", "error", err)
	}
}
