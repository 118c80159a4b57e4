package main

import (
	"net/http"
	"os"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/logging"
)

func main() {
	// 1. Načtení Konfigurace a Loggeru
	cfg := LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	logger.Info("Startuji Web Dashboard", "port", cfg.HTTPPort, "api_url", cfg.APIURL)

	// 2. Inicializace komponent (Dependency Injection)
	client := NewAPIClient(cfg.APIURL)

	// Pokud handler vrátí chybu (rozbitá šablona), ukončíme program.
	handler, err := NewWebHandler(client, logger, cfg.StatusWindow)
	if err != nil {
		logger.Error("Kritická chyba: Nepodařilo se načíst HTML šablony", "error", err)
		os.Exit(1)
	}

	// 3. Nastavení Routování (ServeMux)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	// Healthcheck endpoint pro Docker
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// 4. Spuštění HTTP serveru
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	logger.Info("Web server naslouchá", "address", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		logger.Error("Server nečekaně spadl", "error", err)
		os.Exit(1)
	}
}
