package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	GRPCAddr    string
	HTTPAddr    string
	DBPath      string
	SeedOnStart bool
	ProductSKU  string
	// Formato de moneda
	Locale   string
	Currency string
	// Sesiones
	SessionTTL      time.Duration
	SessionCapacity int
	// Eventos (RABBITMQ_URL vacío = deshabilitado)
	RabbitURL    string
	ExchangeName string
	CORSOrigins  []string
}

const ShutdownGrace = 10 * time.Second

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadConfig reads a .env file when present and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	return Config{
		GRPCAddr:    getenv("PURCHASE_GRPC_ADDR", ":50061"),
		HTTPAddr:    getenv("PURCHASE_HTTP_ADDR", ":8091"),
		DBPath:      getenv("PURCHASE_DB_PATH", "purchase.db"),
		SeedOnStart: getenv("PURCHASE_SEED", "true") == "true",
		ProductSKU:  getenv("PURCHASE_PRODUCT_SKU", DefaultProductSKU),

		Locale:   getenv("CURRENCY_LOCALE", "es-CL"),
		Currency: getenv("CURRENCY_CODE", "CLP"),

		SessionTTL:      durationEnv("SESSION_TTL", 30*time.Minute),
		SessionCapacity: intEnv("SESSION_CAPACITY", 10000),

		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		ExchangeName: getenv("EVENTS_EXCHANGE", "desafio.events"),
		CORSOrigins:  splitList(getenv("CORS_ORIGINS", "*")),
	}
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
