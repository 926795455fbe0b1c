// README: Config loader with env defaults for HTTP, DB, Redis, pricing, and
// external services.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type PricingConfig struct {
	BaseCents      int64
	PerKmCents     int64
	PerMinuteCents int64
	MinimumCents   int64
	AvgSpeedKmh    float64
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// DSN empty selects the in-process stores (local runs, tests).
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Maps struct {
		APIKey string
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	Stripe struct {
		APIKey string
	}
	Pricing PricingConfig
	Log     struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("CABCAB_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("CABCAB_DB_DSN")
	cfg.Redis.Addr = os.Getenv("CABCAB_REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("CABCAB_REDIS_PASSWORD")
	cfg.Redis.DB = envOrDefaultInt("CABCAB_REDIS_DB", 0)
	cfg.Auth.JWTSecret = envOrDefault("CABCAB_JWT_SECRET", "dev-secret")
	cfg.Auth.TokenTTL = time.Duration(envOrDefaultInt("CABCAB_TOKEN_TTL_MINUTES", 24*60)) * time.Minute
	cfg.Maps.APIKey = os.Getenv("CABCAB_MAPS_API_KEY")
	cfg.Kafka.Brokers = splitList(os.Getenv("CABCAB_KAFKA_BROKERS"))
	cfg.Kafka.Topic = envOrDefault("CABCAB_KAFKA_TOPIC", "cabcab.ride-events")
	cfg.Stripe.APIKey = os.Getenv("CABCAB_STRIPE_API_KEY")
	cfg.Pricing.BaseCents = envOrDefaultInt64("CABCAB_FARE_BASE_CENTS", 250)
	cfg.Pricing.PerKmCents = envOrDefaultInt64("CABCAB_FARE_PER_KM_CENTS", 125)
	cfg.Pricing.PerMinuteCents = envOrDefaultInt64("CABCAB_FARE_PER_MINUTE_CENTS", 35)
	cfg.Pricing.MinimumCents = envOrDefaultInt64("CABCAB_FARE_MINIMUM_CENTS", 500)
	cfg.Pricing.AvgSpeedKmh = envOrDefaultFloat("CABCAB_FARE_AVG_SPEED_KMH", 30.0)
	cfg.Log.Level = envOrDefault("CABCAB_LOG_LEVEL", "info")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
