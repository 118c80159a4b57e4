package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config drží veškeré nastavení, které aplikace potřebuje k běhu.
// Oddělení konfigurace od kódu (Code vs Config) je základem 12-Factor App metodiky.
type Config struct {
	// HTTPPort: Port, na kterém bude naslouchat webový server.
	HTTPPort string

	// APIURL: Adresa Bins API.
	// Dashboard se nepřipojuje k databázi přímo, zobrazuje jen data z API.
	// Příklad v Docker síti: "http://bins-api:3000"
	APIURL string

	// StatusWindow: okno pro štítek Activo/Inactivo, musí sedět s Bins API.
	StatusWindow time.Duration

	LogLevel  string
	LogFormat string
}

// LoadConfig načte konfiguraci z ENV (lokálně i ze souboru .env).
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		HTTPPort:     getEnv("HTTP_PORT", "8081"),
		APIURL:       getEnv("API_URL", "http://bins-api:3000"),
		StatusWindow: getEnvDuration("STATUS_WINDOW", 5*time.Minute),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}
}

// getEnv vrátí fallback, pokud proměnná neexistuje (os.Getenv by vrátil prázdný string).
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
