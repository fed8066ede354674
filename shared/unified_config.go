package shared

import (
	"time"

	"github.com/sirupsen/logrus"
)

// UnifiedConfiguration holds tuning parameters shared by the services
type UnifiedConfiguration struct {
	CourtListener UpstreamConfig `json:"court_listener"`
	Datasets      UpstreamConfig `json:"datasets"`
	LLM           LLMConfig      `json:"llm"`
	Database      DatabaseConfig `json:"database"`
}

// UpstreamConfig holds configuration for an outbound HTTP API
type UpstreamConfig struct {
	BaseURL            string        `json:"base_url"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	RequestRateLimit   time.Duration `json:"rate_limit"`
	MaxRetryAttempts   int           `json:"max_retries"`
	UserAgent          string        `json:"user_agent"`
}

// LLMConfig holds generation configuration
type LLMConfig struct {
	Model          string        `json:"model"`
	RequestTimeout time.Duration `json:"request_timeout"`
	MaxFailureRate float64       `json:"max_failure_rate"`
	MinSamples     int64         `json:"min_samples"`
	CoolDown       time.Duration `json:"cool_down"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

const defaultUserAgent = "legal-oracle-backend/1.0"

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		CourtListener: UpstreamConfig{
			BaseURL:            "https://www.courtlistener.com/api/rest/v4/",
			HTTPRequestTimeout: 30 * time.Second,
			RequestRateLimit:   500 * time.Millisecond,
			MaxRetryAttempts:   1,
			UserAgent:          defaultUserAgent,
		},
		Datasets: UpstreamConfig{
			BaseURL:            "https://datasets-server.huggingface.co",
			HTTPRequestTimeout: 30 * time.Second,
			RequestRateLimit:   250 * time.Millisecond,
			MaxRetryAttempts:   0,
			UserAgent:          defaultUserAgent,
		},
		LLM: LLMConfig{
			Model:          "gemini-1.5-flash",
			RequestTimeout: 30 * time.Second,
			MaxFailureRate: 0.5,
			MinSamples:     10,
			CoolDown:       30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	applyUpstreamDefaults(&c.CourtListener, defaults.CourtListener, "CourtListener", logger)
	applyUpstreamDefaults(&c.Datasets, defaults.Datasets, "Datasets", logger)

	if c.LLM.Model == "" {
		c.LLM.Model = defaults.LLM.Model
		logger.Debug("Applied default LLM.Model")
	}
	if c.LLM.RequestTimeout <= 0 {
		c.LLM.RequestTimeout = defaults.LLM.RequestTimeout
		logger.Debug("Applied default LLM.RequestTimeout")
	}
	if c.LLM.MinSamples <= 0 {
		c.LLM.MinSamples = defaults.LLM.MinSamples
		logger.Debug("Applied default LLM.MinSamples")
	}
	if c.LLM.CoolDown <= 0 {
		c.LLM.CoolDown = defaults.LLM.CoolDown
		logger.Debug("Applied default LLM.CoolDown")
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
		logger.Debug("Applied default Database.MaxOpenConns")
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
		logger.Debug("Applied default Database.MaxIdleConns")
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
		logger.Debug("Applied default Database.ConnMaxLifetime")
	}
	if c.Database.PingTimeout <= 0 {
		c.Database.PingTimeout = defaults.Database.PingTimeout
		logger.Debug("Applied default Database.PingTimeout")
	}
}

func applyUpstreamDefaults(cfg *UpstreamConfig, defaults UpstreamConfig, name string, logger *logrus.Entry) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
		logger.Debugf("Applied default %s.BaseURL", name)
	}
	if cfg.HTTPRequestTimeout <= 0 {
		cfg.HTTPRequestTimeout = defaults.HTTPRequestTimeout
		logger.Debugf("Applied default %s.HTTPRequestTimeout", name)
	}
	if cfg.RequestRateLimit <= 0 {
		cfg.RequestRateLimit = defaults.RequestRateLimit
		logger.Debugf("Applied default %s.RequestRateLimit", name)
	}
	if cfg.MaxRetryAttempts < 0 {
		cfg.MaxRetryAttempts = defaults.MaxRetryAttempts
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
}
