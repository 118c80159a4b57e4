package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/ingest"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/livecache"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/logging"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/mqttlog"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/store"
)

const serviceName = "telemetry-ingestor"

func main() {
	cfg := LoadConfig()

	// MQTT klienta děláme DŘÍVE než logger, protože logger do MQTT zapisuje.
	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTTBroker).SetClientID(cfg.MQTTClientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		// Fallback: Pokud nejde MQTT, logujeme jen na stdout a končíme
		slog.Error("Fatal MQTT Error", "err", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	// --- SETUP LOGGERU ---
	// MultiWriter: Píše do obou (Stdout + MQTT topic logs/telemetry-ingestor)
	multi := io.MultiWriter(os.Stdout, mqttlog.NewWriter(client, serviceName))
	logger := logging.New(multi, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Spouštím službu Telemetry Ingestor", "broker", cfg.MQTTBroker)
	go startHealthServer(cfg.HTTPPort, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres (zdroj pravdy) a Valkey (poslední stav)
	db, err := store.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := livecache.Connect(ctx, cfg.ValkeyAddr)
	if err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k Valkey", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Metadata: první, blokující načtení. Musíme mít data, než začneme poslouchat MQTT.
	meta := NewMetadataService(db, logger)
	if err := meta.Load(ctx); err != nil {
		logger.Error("Kritická chyba: Nepodařilo se načíst metadata zařízení", "error", err)
		os.Exit(1)
	}
	go meta.StartAutoRefresh(ctx, cfg.MetadataRefresh)

	recorder := ingest.NewRecorder(db, livecache.New(rdb, cfg.LiveTTL), logger)
	processor := NewProcessor(meta, recorder, cfg)

	// --- HLAVNÍ HANDLER ZPRACOVÁNÍ ZPRÁV ---
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		// Timeout, aby DB operace nevisela věčně a neblokovala paho.
		msgCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		id, err := processor.Process(msgCtx, msg.Topic(), msg.Payload())
		if err != nil {
			// NEUKONČUJEME službu, jen zahodíme tuto jednu zprávu.
			logger.Warn("Zpráva odmítnuta", "topic", msg.Topic(), "důvod", err)
			return
		}
		logger.Debug("Zpráva uložena", "topic", msg.Topic(), "id", id)
	}

	for _, topic := range []string{cfg.MeasurementsTopic, cfg.ActuatorEventsTopic} {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			logger.Error("Subscribe selhal", "topic", topic, "error", token.Error())
			os.Exit(1)
		}
		logger.Info("Poslouchám na topicu", "topic", topic)
	}

	// Graceful Shutdown: čekáme na SIGINT (Ctrl+C) nebo SIGTERM (Docker stop).
	<-ctx.Done()
	logger.Info("Ukončuji službu...")
}

// startHealthServer spustí jednoduchý HTTP endpoint.
func startHealthServer(port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	logger.Info("Health server běží", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("Health server spadl", "error", err)
	}
}
