package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/logging"
	"github.com/DEUO27/smart-bin-dashboard-code/internal/mqttlog"
)

const serviceName = "bin-simulator"

// publisher je část mqtt.Client, kterou simulátor potřebuje.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

func main() {
	cfg := LoadConfig()

	// 1. Konfigurace MQTT Klienta (před loggerem, logujeme i do MQTT)
	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTTBroker).SetClientID(cfg.MQTTClientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("Selhalo připojení k MQTT", "error", token.Error())
		os.Exit(1) // Bez MQTT nemá smysl běžet
	}
	defer client.Disconnect(250)

	// 2. Logger: stdout + logs/bin-simulator
	logger := logging.New(io.MultiWriter(os.Stdout, mqttlog.NewWriter(client, serviceName)), cfg.LogFormat, cfg.LogLevel)
	logger.Info("Startuji Bin Simulator", "interval", cfg.Interval, "sensors", cfg.SensorIDs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := NewSimulator(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), cfg.BinHeightCM, cfg.BinMaxWeightKG)

	// 3. Časovače: měření košů a heartbeat brány
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	heartbeat := time.NewTicker(cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	// Okamžité odeslání při startu, nečekáme na první tik.
	publishReadings(sim, client, cfg, time.Now(), logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Přijat signál ukončení, vypínám...")
			return

		case now := <-ticker.C:
			publishReadings(sim, client, cfg, now, logger)

		case <-heartbeat.C:
			// Měření CPU trvá ~1s, proto v goroutině, aby nezdrželo měření košů.
			go func() {
				stats := CollectStats(ctx, logger)
				logger.Info("Heartbeat brány", stats.LogAttrs()...)
			}()
		}
	}
}

// publishReadings pošle jedno měření za každý senzor. Když koš dosáhne svozu,
// pošle i událost otevření víka.
func publishReadings(sim *Simulator, pub publisher, cfg Config, now time.Time, logger *slog.Logger) {
	for _, sensorID := range cfg.SensorIDs {
		in, emptied := sim.Next(sensorID, now)
		if err := publishJSON(pub, cfg.MeasurementsTopic, in); err != nil {
			logger.Error("Chyba při publikaci měření", "sensor_id", sensorID, "error", err)
			continue
		}
		logger.Debug("Měření odesláno", "sensor_id", sensorID, "fill", *in.FillPercentage)

		if emptied && cfg.ActuatorID > 0 {
			if err := publishJSON(pub, cfg.ActuatorEventsTopic, LidEvent(cfg.ActuatorID, now)); err != nil {
				logger.Error("Chyba při publikaci události", "actuator_id", cfg.ActuatorID, "error", err)
				continue
			}
			logger.Info("Simulovaný svoz", "sensor_id", sensorID, "actuator_id", cfg.ActuatorID)
		}
	}
}

func publishJSON(pub publisher, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// QoS 0, Retained = false. Čekáme jen na lokální odeslání.
	token := pub.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout publikace do %s", topic)
	}
	return token.Error()
}
