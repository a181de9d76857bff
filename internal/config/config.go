package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DatabaseDSN   string
	JWTSecret     string
	RefreshSecret string
	KafkaAddress  string
	ESURL         string
	ESUser        string
	ESPassword    string
	ESIndex       string
	StripeKey     string
	LogLevel      string
}

// Load reads .env when present and falls back to the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Addr:          getenv("ADDR", ":8080"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		JWTSecret:     getenv("JWT_SECRET", "dev-access-secret"),
		RefreshSecret: getenv("REFRESH_SECRET", "dev-refresh-secret"),
		KafkaAddress:  os.Getenv("KAFKA_ADDRESS"),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		ESIndex:       getenv("ES_INDEX", "product"),
		StripeKey:     os.Getenv("STRIPE_SECRET_KEY"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
