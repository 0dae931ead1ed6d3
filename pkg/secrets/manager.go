package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/truthlens/truthlens-api/pkg/config"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.uber.org/zap"
)

// ProviderType enumerates supported secret backends.
type ProviderType string

const (
	ProviderNone       ProviderType = ""
	ProviderVault      ProviderType = "vault"
	ProviderAWS        ProviderType = "aws"
	ProviderGCP        ProviderType = "gcp"
	ProviderKubernetes ProviderType = "kubernetes"
)

// SecretType classifies a secret for audit logs.
type SecretType string

const (
	SecretDetectorAPIKey SecretType = "detector_api_key"
	SecretCustom         SecretType = "custom"
)

var (
	// ErrProviderNotConfigured is returned when no provider is configured.
	ErrProviderNotConfigured = errors.New("secrets: provider not configured")
	// ErrInvalidReference indicates an invalid or empty reference string.
	ErrInvalidReference = errors.New("secrets: invalid reference")
	// ErrKeyNotFound is returned when a requested key does not exist in the secret payload.
	ErrKeyNotFound = errors.New("secrets: key not found")
)

// Metadata carries what the backend reports about a secret version.
type Metadata struct {
	Version     string
	CreatedAt   time.Time
	RetrievedAt time.Time
}

// Secret is a resolved secret payload.
type Secret struct {
	Data     map[string]string
	Metadata Metadata
}

// Value returns a non-empty entry from the payload.
func (s Secret) Value(key string) (string, bool) {
	val, ok := s.Data[key]
	return val, ok && val != ""
}

// Config is the runtime configuration of a Manager.
type Config struct {
	Provider     ProviderType
	CacheTTL     time.Duration
	AuditEnabled bool
	Vault        VaultConfig
	AWS          AWSConfig
	GCP          GCPConfig
	Kubernetes   KubernetesConfig
}

// ConfigFromEnv maps the service configuration onto a Manager Config.
func ConfigFromEnv(cfg config.SecretsConfig) Config {
	return Config{
		Provider:     ProviderType(cfg.Provider),
		CacheTTL:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
		AuditEnabled: cfg.AuditEnabled,
		Vault: VaultConfig{
			Address:   cfg.VaultAddress,
			Token:     cfg.VaultToken,
			Namespace: cfg.VaultNamespace,
			MountPath: cfg.VaultMountPath,
		},
		AWS: AWSConfig{
			Region:          cfg.AWSRegion,
			Profile:         cfg.AWSProfile,
			Endpoint:        cfg.AWSEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
		GCP: GCPConfig{
			ProjectID:       cfg.GCPProjectID,
			CredentialsFile: cfg.GCPCredentialsFile,
		},
		Kubernetes: KubernetesConfig{
			BasePath: cfg.KubernetesBasePath,
		},
	}
}

// Manager resolves secrets from one backend with a TTL cache.
type Manager interface {
	GetSecret(ctx context.Context, ref Reference) (Secret, error)
	GetString(ctx context.Context, ref Reference) (string, error)
	Close() error
}

type provider interface {
	Name() ProviderType
	Fetch(ctx context.Context, ref Reference) (Secret, error)
	Close() error
}

type manager struct {
	provider     provider
	cacheTTL     time.Duration
	auditEnabled bool

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	secret    Secret
	expiresAt time.Time
}

// NewManager creates a Manager for the configured provider.
func NewManager(ctx context.Context, cfg Config) (Manager, error) {
	var (
		prov provider
		err  error
	)

	switch cfg.Provider {
	case ProviderNone:
		return nil, ErrProviderNotConfigured
	case ProviderVault:
		prov, err = newVaultProvider(cfg.Vault)
	case ProviderAWS:
		prov, err = newAWSProvider(ctx, cfg.AWS)
	case ProviderGCP:
		prov, err = newGCPProvider(ctx, cfg.GCP)
	case ProviderKubernetes:
		prov, err = newKubernetesProvider(cfg.Kubernetes)
	default:
		err = fmt.Errorf("secrets: unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newManager(prov, cfg), nil
}

func newManager(prov provider, cfg Config) *manager {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &manager{
		provider:     prov,
		cacheTTL:     ttl,
		auditEnabled: cfg.AuditEnabled,
		cache:        make(map[string]cachedSecret),
	}
}

func (m *manager) Close() error {
	return m.provider.Close()
}

// GetSecret resolves the full payload for ref, serving from cache when fresh.
func (m *manager) GetSecret(ctx context.Context, ref Reference) (Secret, error) {
	if ref.Path == "" {
		return Secret{}, ErrInvalidReference
	}
	if ref.Provider != ProviderNone && ref.Provider != m.provider.Name() {
		return Secret{}, fmt.Errorf("secrets: reference provider %q does not match manager provider %q", ref.Provider, m.provider.Name())
	}

	key := ref.CacheKey()
	m.mu.RLock()
	entry, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return cloneSecret(entry.secret), nil
	}

	secret, err := m.provider.Fetch(ctx, ref)
	if err != nil {
		m.audit(ref, Metadata{}, err)
		return Secret{}, err
	}
	secret.Metadata.RetrievedAt = time.Now().UTC()

	m.mu.Lock()
	m.cache[key] = cachedSecret{secret: cloneSecret(secret), expiresAt: time.Now().Add(m.cacheTTL)}
	m.mu.Unlock()

	m.audit(ref, secret.Metadata, nil)
	return secret, nil
}

// GetString returns the entry ref.Key of the referenced secret.
func (m *manager) GetString(ctx context.Context, ref Reference) (string, error) {
	if ref.Key == "" {
		return "", fmt.Errorf("%w: empty key in reference %q", ErrKeyNotFound, ref.Name)
	}

	secret, err := m.GetSecret(ctx, ref)
	if err != nil {
		return "", err
	}

	if value, ok := secret.Value(ref.Key); ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref.Key)
}

func (m *manager) audit(ref Reference, metadata Metadata, err error) {
	if !m.auditEnabled {
		return
	}

	fields := []zap.Field{
		zap.String("secret_name", ref.Name),
		zap.String("secret_path", ref.Path),
		zap.String("secret_type", string(ref.Type)),
		zap.String("provider", string(m.provider.Name())),
	}
	if metadata.Version != "" {
		fields = append(fields, zap.String("version", metadata.Version))
	}

	if err != nil {
		logger.Warn("secret fetch failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("secret fetched", fields...)
}

func cloneSecret(src Secret) Secret {
	dst := Secret{
		Data:     make(map[string]string, len(src.Data)),
		Metadata: src.Metadata,
	}
	for k, v := range src.Data {
		dst.Data[k] = v
	}
	return dst
}
