// Package config loads process configuration from the environment, with a
// local .env file picked up for development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port      string
	DBPath    string
	RateLimit float64 // requests per second per IP; 0 disables
	RateBurst int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment. Missing keys fall back to
// development defaults; a .env file in the working directory is honored.
func Load() Config {
	_ = godotenv.Load() // absent .env is fine

	rateLimit, _ := strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "20"), 64)
	rateBurst, _ := strconv.Atoi(getenv("RATE_LIMIT_BURST", "40"))

	return Config{
		Port:      getenv("PORT", "8080"),
		DBPath:    getenv("DB_PATH", "./data/steady.db"),
		RateLimit: rateLimit,
		RateBurst: rateBurst,
	}
}
