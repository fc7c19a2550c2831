package app

import (
	"time"

	"github.com/kochimetro/induction-engine/internal/platform/envutil"
)

// Config holds every environment-derived setting the engine needs at
// startup.
type Config struct {
	HTTPAddress string

	JWTSecretKey string

	RedisURL string

	ExternalOptimizerURL     string
	ExternalOptimizerTimeout time.Duration
	ExternalOptimizerRateHz  float64

	LogMode string
}

// LoadConfig reads configuration from the process environment, falling
// back to development-friendly defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddress: envutil.String("HTTP_BIND", ":8080"),

		JWTSecretKey: envutil.String("JWT_SECRET", "dev-secret-change-me"),

		RedisURL: envutil.String("REDIS_URL", ""),

		ExternalOptimizerURL:     envutil.String("EXTERNAL_OPTIMIZER_URL", ""),
		ExternalOptimizerTimeout: envutil.Millis("OPTIMIZER_TIMEOUT_MS", 60000),
		ExternalOptimizerRateHz:  float64(envutil.Int("OPTIMIZER_RATE_LIMIT_PER_SEC", 5)),

		LogMode: envutil.String("LOG_MODE", "development"),
	}
}
