package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDetectorURL is the Sapling AI-text detection endpoint.
const DefaultDetectorURL = "https://api.sapling.ai/api/v1/aidetect"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Detector DetectorConfig
	Breaker  BreakerConfig
	Secrets  SecretsConfig
	Tracing  TracingConfig
	Sentry   SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	Version      string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
	MaxBodyBytes int64
}

// DetectorConfig holds the external AI-text detector settings
type DetectorConfig struct {
	URL        string
	APIKey     string
	APIKeyRef  string // secret reference resolved at startup when APIKey is empty
	AuthScheme string
	Timeout    time.Duration
	HealthURL  string // optional readiness probe target
}

// BreakerConfig tunes the circuit breaker in front of the detector
type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	IntervalSeconds  int
	TimeoutSeconds   int
}

// SecretsConfig selects and configures the secrets backend
type SecretsConfig struct {
	Provider        string
	CacheTTLSeconds int
	AuditEnabled    bool

	VaultAddress   string
	VaultToken     string
	VaultNamespace string
	VaultMountPath string

	AWSRegion          string
	AWSProfile         string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	GCPProjectID       string
	GCPCredentialsFile string

	KubernetesBasePath string
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			Version:      getEnv("SERVICE_VERSION", "1.0.0"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
			MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 1<<20)),
		},
		Detector: DetectorConfig{
			URL:        getEnv("DETECTOR_URL", DefaultDetectorURL),
			APIKey:     getEnv("DETECTOR_API_KEY", ""),
			APIKeyRef:  getEnv("DETECTOR_API_KEY_REF", ""),
			AuthScheme: getEnv("DETECTOR_AUTH_SCHEME", "Key"),
			Timeout:    getEnvAsDuration("DETECTOR_TIMEOUT_SECONDS", 10*time.Second),
		},
		Breaker: BreakerConfig{
			Enabled:          getEnvAsBool("DETECTOR_BREAKER_ENABLED", true),
			FailureThreshold: getEnvAsInt("DETECTOR_BREAKER_FAILURES", 5),
			IntervalSeconds:  getEnvAsInt("DETECTOR_BREAKER_INTERVAL_SECONDS", 60),
			TimeoutSeconds:   getEnvAsInt("DETECTOR_BREAKER_TIMEOUT_SECONDS", 30),
		},
		Secrets: SecretsConfig{
			Provider:           getEnv("SECRETS_PROVIDER", ""),
			CacheTTLSeconds:    getEnvAsInt("SECRETS_CACHE_TTL_SECONDS", 300),
			AuditEnabled:       getEnvAsBool("SECRETS_AUDIT_ENABLED", false),
			VaultAddress:       getEnv("VAULT_ADDR", ""),
			VaultToken:         getEnv("VAULT_TOKEN", ""),
			VaultNamespace:     getEnv("VAULT_NAMESPACE", ""),
			VaultMountPath:     getEnv("VAULT_MOUNT_PATH", "secret"),
			AWSRegion:          getEnv("AWS_REGION", ""),
			AWSProfile:         getEnv("AWS_PROFILE", ""),
			AWSEndpoint:        getEnv("AWS_SECRETS_ENDPOINT", ""),
			AWSAccessKeyID:     getEnv("SECRETS_AWS_ACCESS_KEY_ID", ""),
			AWSSecretAccessKey: getEnv("SECRETS_AWS_SECRET_ACCESS_KEY", ""),
			GCPProjectID:       getEnv("GCP_PROJECT_ID", ""),
			GCPCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			KubernetesBasePath: getEnv("K8S_SECRETS_PATH", "/var/run/secrets"),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvAsFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			TracesSampleRate: getEnvAsFloat("SENTRY_TRACES_SAMPLE_RATE", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Detector.URL) == "" {
		return errors.New("config: DETECTOR_URL must not be empty")
	}
	if c.Detector.Timeout <= 0 {
		return errors.New("config: DETECTOR_TIMEOUT_SECONDS must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("config: MAX_BODY_BYTES must be positive")
	}
	return nil
}

// AllowedOrigins splits CORSOrigins into a trimmed list
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration reads a whole number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	return defaultValue
}
