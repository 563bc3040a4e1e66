package config

import (
	"log"
	"os"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port             string
	Env              string
	DatabaseURL      string
	RedisURL         string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIStubMode   bool
	ExpoPushURL      string
	ReminderInterval time.Duration
	LogLevel         string
	LogFormat        string
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "4000"),
		Env:              getEnvWithDefault("ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnvWithDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnvWithDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIStubMode:   os.Getenv("OPENAI_STUB_MODE") == "true",
		ExpoPushURL:      getEnvWithDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		ReminderInterval: getDurationWithDefault("REMINDER_INTERVAL", time.Minute),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvWithDefault("LOG_FORMAT", "text"),
	}

	// Without an API key the AI client can only run in stub mode
	if cfg.OpenAIAPIKey == "" && !cfg.OpenAIStubMode {
		log.Println("WARNING: OPENAI_API_KEY not set, AI client will use fallback templates only")
		cfg.OpenAIStubMode = true
	}

	return cfg
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid %s value %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
