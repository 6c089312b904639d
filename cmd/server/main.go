package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ywahab/salahtrack/internal/auth"
	"github.com/ywahab/salahtrack/internal/cache"
	"github.com/ywahab/salahtrack/internal/routes"
	"github.com/ywahab/salahtrack/internal/storage/sqlite"
	"github.com/ywahab/salahtrack/pkg/logging"
)

const (
	tokenDuration = 24 * time.Hour

	// evaluatorInterval is how often the achievement sweep runs. The
	// award itself is weekly; frequent sweeps just retry idempotently.
	evaluatorInterval = 6 * time.Hour
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring non-numeric env value", "key", key, "value", value)
	}
	return fallback
}

func main() {
	logging.Setup()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	dbPath := getEnv("DB_PATH", "./data/salahtrack.db")
	port := getEnv("PORT", "8080")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	progressCache := cache.New(
		os.Getenv("REDIS_ADDR"),
		os.Getenv("REDIS_PASSWORD"),
		getEnvInt("REDIS_DB", 0),
	)
	if progressCache != nil {
		slog.Info("Progress cache enabled", "redis", os.Getenv("REDIS_ADDR"))
	}

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	r, achievements := routes.Setup(routes.Deps{
		Store:              store,
		Cache:              progressCache,
		JWTManager:         jwtManager,
		Authenticator:      authenticator,
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	achievements.StartScheduler(ctx, evaluatorInterval)

	addr := ":" + port
	slog.Info("Server starting", "address", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
