package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	LogLevel  string
	LogFormat string

	// LLM collaborator (chat-completion endpoint)
	LLMAPIURL    string
	LLMAPIKey    string
	LLMModel     string
	LLMMaxTokens int

	// Outbound WhatsApp relay
	RelayURL      string
	RelaySecret   string
	RelayStubMode bool

	// Shared secret guarding the /jobs trigger endpoints
	JobSecret string

	// AES-256 key (base64) for provider token storage
	TokenEncryptionKey string

	// Directory holding shipped template pack manifests
	TemplatePackDir string

	// Cron expressions for the periodic jobs, evaluated in SchedulerTimezone
	SuggestionCron    string
	DispatchCron      string
	SchedulerTimezone string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present (development convenience).
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnvWithDefault("ENV", "development"),
		Port:        getEnvWithDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		LLMAPIURL:    getEnvWithDefault("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMModel:     getEnvWithDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens: getEnvIntWithDefault("LLM_MAX_TOKENS", 600),

		RelayURL:      os.Getenv("RELAY_URL"),
		RelaySecret:   os.Getenv("RELAY_SECRET"),
		RelayStubMode: getEnvBool("RELAY_STUB_MODE"),

		JobSecret: os.Getenv("JOB_SECRET"),

		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		TemplatePackDir: getEnvWithDefault("TEMPLATE_PACK_DIR", "templatepacks"),

		SuggestionCron:    getEnvWithDefault("SUGGESTION_CRON", "*/15 * * * *"),
		DispatchCron:      getEnvWithDefault("DISPATCH_CRON", "* * * * *"),
		SchedulerTimezone: getEnvWithDefault("SCHEDULER_TZ", "UTC"),
	}

	// Warn if the trigger endpoints are unguarded (fine for local development)
	if cfg.JobSecret == "" {
		log.Println("WARNING: JOB_SECRET is empty; /jobs endpoints will accept unauthenticated requests")
	}

	return cfg
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
