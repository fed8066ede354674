package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestGetCacheTTL(t *testing.T) {
	cfg := &Config{CacheTTLHours: "6"}
	assert.Equal(t, 6*time.Hour, cfg.GetCacheTTL())

	cfg.CacheTTLHours = "not-a-number"
	assert.Equal(t, 24*time.Hour, cfg.GetCacheTTL())

	cfg.CacheTTLHours = ""
	assert.Equal(t, 24*time.Hour, cfg.GetCacheTTL())
}

func TestGetLLMCacheSize(t *testing.T) {
	assert.Equal(t, 42, (&Config{LLMCacheSize: "42"}).GetLLMCacheSize())
	assert.Equal(t, 500, (&Config{LLMCacheSize: "-1"}).GetLLMCacheSize())
}

func TestShouldSkipJWTVerifyDefaultsToTrue(t *testing.T) {
	assert.True(t, (&Config{}).ShouldSkipJWTVerify())
	assert.True(t, (&Config{SkipJWTVerify: "true"}).ShouldSkipJWTVerify())
	assert.False(t, (&Config{SkipJWTVerify: "false"}).ShouldSkipJWTVerify())
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("COURTLISTENER_API_ROOT", "http://localhost/api/")

	cfg := LoadConfig()

	assert.Equal(t, "9999", cfg.ServerPort)
	assert.False(t, cfg.HasGeminiKey())
	assert.Equal(t, "http://localhost/api/", cfg.CourtListenerAPIRoot)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
}

func TestDefaultCacheConfigKeepsDatasetsForADay(t *testing.T) {
	cacheConfig := DefaultCacheConfig()
	assert.Equal(t, 24*time.Hour, cacheConfig.DatasetTTL)
	assert.Equal(t, 256, cacheConfig.DatasetMaxSize)
	assert.Equal(t, 10*time.Minute, cacheConfig.SearchTTL)
}

func TestWarnInsecureDefaults(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	cfg := &Config{JWTSecret: DefaultJWTSecret}
	assert.True(t, cfg.UsesDefaultJWTSecret())

	cfg.WarnInsecureDefaults()
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Contains(t, hook.LastEntry().Message, "JWT_SECRET")
	}

	hook.Reset()
	cfg.JWTSecret = "a-real-secret"
	assert.False(t, cfg.UsesDefaultJWTSecret())
	cfg.WarnInsecureDefaults()
	assert.Empty(t, hook.AllEntries())
}
