package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MQTTBroker   string
	MQTTClientID string

	MeasurementsTopic   string
	ActuatorEventsTopic string

	// SensorIDs: senzory, za které simulátor posílá měření (např. "1,2").
	SensorIDs []int64
	// ActuatorID: motor víka, který "otevře" koš při svozu. 0 = žádné události.
	ActuatorID int64

	// Fyzické rozměry koše pro výpočet vzdálenosti a hmotnosti.
	BinHeightCM    float64
	BinMaxWeightKG float64

	// Interval měření (např. "30s") a heartbeat brány (např. "1m")
	Interval          time.Duration
	HeartbeatInterval time.Duration

	LogLevel  string
	LogFormat string
}

func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://mosquitto:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "bin-simulator"),

		MeasurementsTopic:   getEnv("MEASUREMENTS_TOPIC", "ecobins/measurements"),
		ActuatorEventsTopic: getEnv("ACTUATOR_EVENTS_TOPIC", "ecobins/actuator-events"),

		SensorIDs:  parseIDs(getEnv("SENSOR_IDS", "1")),
		ActuatorID: getEnvInt64("ACTUATOR_ID", 1),

		// Hodnoty ukázkového koše "Bote Principal"
		BinHeightCM:    getEnvFloat("BIN_HEIGHT_CM", 120.5),
		BinMaxWeightKG: getEnvFloat("BIN_MAX_WEIGHT_KG", 50.0),

		Interval:          getEnvDuration("SIMULATE_INTERVAL", 30*time.Second),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", 60*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func getEnvInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseIDs: "1, 2,x" -> [1 2], neplatné položky se přeskočí.
func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
