package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. It is public and only fit for development.
const DefaultJWTSecret = "legal-oracle-dev-secret"

type Config struct {
	ServerPort           string
	DatabaseURL          string
	RedisURL             string
	GeminiAPIKey         string
	GeminiModel          string
	CourtListenerAPIRoot string
	CourtListenerToken   string
	DatasetsServerURL    string
	CaselawCorpusPath    string
	JWTSecret            string
	SkipJWTVerify        string
	CacheTTLHours        string
	LLMCacheSize         string
	LogLevel             string
	LogFormat            string
	CORSOrigins          string
	RateLimitPerMinute   string
}

// SimplifiedRateLimitConfig holds inbound and outbound rate limiting configuration
type SimplifiedRateLimitConfig struct {
	RequestsPerMinute       int           `json:"requests_per_minute"`
	SearchRequestsPerMinute int           `json:"search_requests_per_minute"`
	PolitenessDelay         time.Duration `json:"politeness_delay"`
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() *SimplifiedRateLimitConfig {
	return &SimplifiedRateLimitConfig{
		RequestsPerMinute:       60,
		SearchRequestsPerMinute: 30,
		PolitenessDelay:         500 * time.Millisecond, // between CourtListener calls
	}
}

// SimplifiedCacheConfig holds simplified cache configuration
type SimplifiedCacheConfig struct {
	DefaultTTL     time.Duration `json:"default_ttl"`
	MaxSize        int           `json:"max_size"`
	SearchTTL      time.Duration `json:"search_ttl"`
	SearchMaxSize  int           `json:"search_max_size"`
	DatasetTTL     time.Duration `json:"dataset_ttl"`
	DatasetMaxSize int           `json:"dataset_max_size"`
	SessionTTL     time.Duration `json:"session_ttl"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *SimplifiedCacheConfig {
	return &SimplifiedCacheConfig{
		DefaultTTL:     24 * time.Hour,
		MaxSize:        500,
		SearchTTL:      10 * time.Minute,
		SearchMaxSize:  128,
		DatasetTTL:     24 * time.Hour,
		DatasetMaxSize: 256,
		SessionTTL:     30 * 24 * time.Hour,
	}
}

// GetCacheTTL returns the cache TTL from environment or default
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTLHours == "" {
		return 24 * time.Hour
	}

	hours, err := strconv.Atoi(c.CacheTTLHours)
	if err != nil || hours <= 0 {
		logrus.Warnf("Invalid CACHE_TTL_HOURS value: %s, using default 24 hours", c.CacheTTLHours)
		return 24 * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

// GetLLMCacheSize returns the capacity of the generated response cache
func (c *Config) GetLLMCacheSize() int {
	size, err := strconv.Atoi(c.LLMCacheSize)
	if err != nil || size <= 0 {
		logrus.Warnf("Invalid LLM_CACHE_SIZE value: %s, using default 500", c.LLMCacheSize)
		return 500
	}
	return size
}

// GetRateLimitPerMinute returns the default per-client request budget
func (c *Config) GetRateLimitPerMinute() int {
	limit, err := strconv.Atoi(c.RateLimitPerMinute)
	if err != nil || limit <= 0 {
		return DefaultRateLimitConfig().RequestsPerMinute
	}
	return limit
}

// ShouldSkipJWTVerify reports whether requests without a valid bearer token are served as the
// anonymous caller instead of rejected. A valid token is honoured either way.
func (c *Config) ShouldSkipJWTVerify() bool {
	skip, err := strconv.ParseBool(c.SkipJWTVerify)
	if err != nil {
		return true
	}
	return skip
}

// UsesDefaultJWTSecret reports whether tokens are signed with the public development secret
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// WarnInsecureDefaults logs the settings that must not reach production unchanged
func (c *Config) WarnInsecureDefaults() {
	if c.UsesDefaultJWTSecret() {
		logrus.WithField("component", "Config").Warn("JWT_SECRET is not set, tokens are signed with the public development secret and can be forged")
	}
}

// HasGeminiKey reports whether live generation is configured
func (c *Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the global logrus logger
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		CourtListenerAPIRoot: getEnv("COURTLISTENER_API_ROOT", "https://www.courtlistener.com/api/rest/v4/"),
		CourtListenerToken:   getEnv("COURTLISTENER_TOKEN", ""),
		DatasetsServerURL:    getEnv("DATASETS_SERVER_URL", "https://datasets-server.huggingface.co"),
		CaselawCorpusPath:    getEnv("CASELAW_CORPUS_PATH", ""),
		JWTSecret:            getEnv("JWT_SECRET", DefaultJWTSecret),
		SkipJWTVerify:        getEnv("SKIP_JWT_VERIFY", "true"),
		CacheTTLHours:        getEnv("CACHE_TTL_HOURS", "24"),
		LLMCacheSize:         getEnv("LLM_CACHE_SIZE", "500"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		CORSOrigins:          getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMinute:   getEnv("RATE_LIMIT_PER_MINUTE", "60"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
