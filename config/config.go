package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	CORSOrigins   []string
	CookieSecure  bool
	LogLevel      zerolog.Level
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found; using system environment")
	}

	cfg := Config{
		Port:          normalizePort(os.Getenv("PORT")),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "fresh"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:      zerolog.InfoLevel,
	}

	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		cfg.CookieSecure = v
	}
	if err := checkSecret(&cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		cfg.LogLevel = lvl
	}
	return cfg
}

const devJWTSecret = "your_secret_key"

var errMissingSecret = errors.New("JWT_SECRET must be set when COOKIE_SECURE is true")

// checkSecret refuses to run a secure deployment without JWT_SECRET. Local
// setups fall back to a development secret with a warning.
func checkSecret(cfg *Config) error {
	if cfg.JWTSecret != "" {
		return nil
	}
	if cfg.CookieSecure {
		return errMissingSecret
	}
	log.Warn().Msg("JWT_SECRET not set; using an insecure development secret")
	cfg.JWTSecret = devJWTSecret
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func normalizePort(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
