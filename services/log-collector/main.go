package main

import (
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/DEUO27/smart-bin-dashboard-code/internal/logging"
)

func main() {
	// 1. Vlastní logger jen na stdout (do MQTT by se logy zacyklily)
	cfg := LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	logger.Info("Startuji Log Collector", "dir", cfg.LogDir)

	// 2. Příprava adresáře pro logy
	collector, err := NewCollector(cfg.LogDir)
	if err != nil {
		logger.Error("Nelze vytvořit adresář pro logy", "error", err)
		os.Exit(1)
	}

	// 3. MQTT Handler: spustí se pro KAŽDOU logovací zprávu z jakékoliv služby.
	messageHandler := func(_ mqtt.Client, msg mqtt.Message) {
		service, err := collector.Handle(msg.Topic(), msg.Payload())
		if err != nil {
			logger.Warn("Logovací zprávu nelze uložit", "topic", msg.Topic(), "service", service, "error", err)
		}
	}

	// 4. Připojení k MQTT
	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTTBroker).SetClientID(cfg.MQTTClientID)
	opts.SetDefaultPublishHandler(messageHandler)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("MQTT Connection failed", "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	// 5. Subscribe
	if token := client.Subscribe(cfg.LogTopic, 0, nil); token.Wait() && token.Error() != nil {
		logger.Error("Subscribe failed", "error", token.Error())
		os.Exit(1)
	}
	logger.Info("Poslouchám logy", "topic", cfg.LogTopic)

	// 6. Wait loop
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Ukončuji Log Collector")
}
