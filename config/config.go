package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	BotToken string

	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string
	RedisDB   int

	// OwnerID is the bootstrap identity upserted at startup with
	// admin rank and a Premium membership.
	OwnerID string

	// ModeratedChatID is the group where zero-credit free members get
	// swept out. LogChannelID receives one line per removed member.
	ModeratedChatID int64
	LogChannelID    int64

	// CommandPrefixes are the first characters the gate recognizes as
	// a command. Anything else is ignored outright.
	CommandPrefixes string

	// SweepIntervalSec drives the background expiration sweeper.
	// 0 disables it; the gate still sweeps on every message.
	SweepIntervalSec int

	HealthAddr string
}

// Load reads the environment (a .env file is honored when present) and
// fails when credentials are missing. A bot without a token or a store
// cannot do anything useful, so there is no partial start.
func Load() (*Config, error) {
	// No .env is fine on real deployments; envs come from the platform.
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DB", "creditguard"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:       getEnv("REDIS_PASSWORD", ""),
		OwnerID:         os.Getenv("OWNER_ID"),
		CommandPrefixes: getEnv("COMMAND_PREFIXES", "/!.$#"),
		HealthAddr:      ":" + getEnv("PORT", "8080"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}
	if cfg.OwnerID == "" {
		return nil, fmt.Errorf("OWNER_ID is not set")
	}

	var err error
	if cfg.ModeratedChatID, err = envInt64("MODERATED_CHAT_ID"); err != nil {
		return nil, err
	}
	if cfg.LogChannelID, err = envInt64("LOG_CHANNEL_ID"); err != nil {
		return nil, err
	}

	if v := getEnv("REDIS_DB", "0"); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}
	if v := getEnv("SWEEP_INTERVAL_SEC", "0"); v != "" {
		if cfg.SweepIntervalSec, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL_SEC: %w", err)
		}
	}

	return cfg, nil
}

func envInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is not set", key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
