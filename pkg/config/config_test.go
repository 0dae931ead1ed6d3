package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "CORS_ORIGINS", "DETECTOR_URL", "DETECTOR_API_KEY",
		"DETECTOR_AUTH_SCHEME", "DETECTOR_TIMEOUT_SECONDS", "DETECTOR_BREAKER_ENABLED",
		"SECRETS_PROVIDER", "OTEL_EXPORTER_OTLP_ENDPOINT", "SENTRY_DSN", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load("truthlens-api")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "truthlens-api", cfg.Server.ServiceName)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins())

	assert.Equal(t, DefaultDetectorURL, cfg.Detector.URL)
	assert.Equal(t, "Key", cfg.Detector.AuthScheme)
	assert.Equal(t, 10*time.Second, cfg.Detector.Timeout)
	assert.Empty(t, cfg.Detector.APIKey)

	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
	assert.Empty(t, cfg.Secrets.Provider)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Empty(t, cfg.Sentry.DSN)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "chrome-extension://abc, https://truthlens.app ,")
	t.Setenv("DETECTOR_URL", "https://detector.internal/v1/check")
	t.Setenv("DETECTOR_API_KEY", "k-123")
	t.Setenv("DETECTOR_AUTH_SCHEME", "Bearer")
	t.Setenv("DETECTOR_TIMEOUT_SECONDS", "3")
	t.Setenv("DETECTOR_BREAKER_ENABLED", "false")
	t.Setenv("SECRETS_PROVIDER", "vault")

	cfg, err := Load("truthlens-api")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, []string{"chrome-extension://abc", "https://truthlens.app"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, "https://detector.internal/v1/check", cfg.Detector.URL)
	assert.Equal(t, "k-123", cfg.Detector.APIKey)
	assert.Equal(t, "Bearer", cfg.Detector.AuthScheme)
	assert.Equal(t, 3*time.Second, cfg.Detector.Timeout)
	assert.False(t, cfg.Breaker.Enabled)
	assert.Equal(t, "vault", cfg.Secrets.Provider)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("DETECTOR_TIMEOUT_SECONDS", "0")

	cfg, err := Load("truthlens-api")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "DETECTOR_TIMEOUT_SECONDS")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{MaxBodyBytes: 1024},
		Detector: DetectorConfig{URL: DefaultDetectorURL, Timeout: time.Second},
	}
	assert.NoError(t, valid.Validate())

	noURL := valid
	noURL.Detector.URL = "   "
	assert.Error(t, noURL.Validate())

	noBody := valid
	noBody.Server.MaxBodyBytes = 0
	assert.Error(t, noBody.Validate())
}

func TestGetEnvHelpers_InvalidValuesUseDefaults(t *testing.T) {
	t.Setenv("TL_TEST_INT", "abc")
	t.Setenv("TL_TEST_BOOL", "maybe")
	t.Setenv("TL_TEST_FLOAT", "x")
	t.Setenv("TL_TEST_DURATION", "1.5")

	assert.Equal(t, 7, getEnvAsInt("TL_TEST_INT", 7))
	assert.True(t, getEnvAsBool("TL_TEST_BOOL", true))
	assert.Equal(t, 0.25, getEnvAsFloat("TL_TEST_FLOAT", 0.25))
	assert.Equal(t, 2*time.Second, getEnvAsDuration("TL_TEST_DURATION", 2*time.Second))
}
