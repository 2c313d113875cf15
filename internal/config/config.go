package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string
	Env       string
	SecretKey string // signs the session cookie
	OpenAIKey string

	// Storage
	DataDir  string // one JSON file per conversation
	RedisURL string // optional, enables rate limiting

	// Knowledge base
	KnowledgeDir   string // directory holding memories.md and personality.md
	EmbeddingsFile string // optional pre-computed embeddings for retrieval

	// Models
	ChatModel      string // answers the user
	ComposerModel  string // summarizes the knowledge base
	ComposeTimeout time.Duration

	// DummyMode swaps the real completion client for a scripted one.
	DummyMode bool

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		DataDir:        getEnv("DATA_DIR", "./data/conversations"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KnowledgeDir:   getEnv("KNOWLEDGE_DIR", "./res"),
		EmbeddingsFile: os.Getenv("EMBEDDINGS_FILE"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4"),
		ComposerModel:  getEnv("COMPOSER_MODEL", "gpt-3.5-turbo"),
		ComposeTimeout: getEnvSeconds("COMPOSE_TIMEOUT_SECONDS", 20),
		DummyMode:      getEnv("DUMMY_MODE", "false") == "true",
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require the session secret and an API key
	// (unless running the scripted responder).
	if cfg.Env == "production" {
		if cfg.SecretKey == "" {
			panic("SECRET_KEY is required in production")
		}
		if cfg.OpenAIKey == "" && !cfg.DummyMode {
			panic("OPENAI_API_KEY is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(defaultValue) * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return time.Duration(defaultValue) * time.Second
	}
	return time.Duration(n) * time.Second
}
