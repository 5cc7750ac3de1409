package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported backend and provider identifiers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"

	LibraryBackendFile     = "file"
	LibraryBackendPostgres = "postgres"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	LogLevel      string
	Port          string
	DefaultLocale string

	DesignProvider   string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	OpenAIBaseURL    string
	AITimeout        time.Duration

	LibraryBackend string
	LibraryDir     string
	DatabaseURL    string

	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration

	MaxImageBytes      int
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	RateLimitPerMin    int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		Port:               getEnv("PORT", "8080"),
		DefaultLocale:      strings.ToLower(getEnv("DEFAULT_LOCALE", "de")),
		DesignProvider:     strings.ToLower(getEnv("DESIGN_PROVIDER", ProviderGemini)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AITimeout:          time.Second * time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 90)),
		LibraryBackend:     strings.ToLower(getEnv("LIBRARY_BACKEND", LibraryBackendFile)),
		LibraryDir:         getEnv("LIBRARY_DIR", "./data"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SessionBackend:     strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		RedisURL:           os.Getenv("REDIS_URL"),
		SessionTTL:         time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		MaxImageBytes:      getEnvInt("MAX_IMAGE_BYTES", 8<<20),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DesignProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when DESIGN_PROVIDER=%s", ProviderGemini)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when DESIGN_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderStatic:
	default:
		return fmt.Errorf("unsupported DESIGN_PROVIDER %q", c.DesignProvider)
	}

	switch c.LibraryBackend {
	case LibraryBackendFile:
		if strings.TrimSpace(c.LibraryDir) == "" {
			return fmt.Errorf("LIBRARY_DIR is required when LIBRARY_BACKEND=%s", LibraryBackendFile)
		}
	case LibraryBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when LIBRARY_BACKEND=%s", LibraryBackendPostgres)
		}
	default:
		return fmt.Errorf("unsupported LIBRARY_BACKEND %q", c.LibraryBackend)
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=%s", SessionBackendRedis)
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
