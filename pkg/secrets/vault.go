package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultConfig configures the HashiCorp Vault KV v2 provider.
type VaultConfig struct {
	Address   string
	Token     string
	Namespace string
	MountPath string
}

type vaultProvider struct {
	client       *vault.Client
	defaultMount string
}

func newVaultProvider(cfg VaultConfig) (provider, error) {
	if cfg.Address == "" || cfg.Token == "" {
		return nil, fmt.Errorf("secrets: vault provider requires address and token")
	}

	clientCfg := vault.DefaultConfig()
	clientCfg.Address = cfg.Address

	client, err := vault.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mount := strings.Trim(cfg.MountPath, "/")
	if mount == "" {
		mount = "secret"
	}
	return &vaultProvider{client: client, defaultMount: mount}, nil
}

func (v *vaultProvider) Name() ProviderType { return ProviderVault }

func (v *vaultProvider) Close() error { return nil }

func (v *vaultProvider) Fetch(ctx context.Context, ref Reference) (Secret, error) {
	mount := v.defaultMount
	if ref.Mount != "" {
		mount = ref.Mount
	}
	path := strings.TrimPrefix(ref.Path, "data/")

	kv := v.client.KVv2(mount)

	var (
		secret *vault.KVSecret
		err    error
	)
	if ref.Version != "" {
		version, convErr := strconv.Atoi(ref.Version)
		if convErr != nil {
			return Secret{}, fmt.Errorf("secrets: invalid vault version %q: %w", ref.Version, convErr)
		}
		secret, err = kv.GetVersion(ctx, path, version)
	} else {
		secret, err = kv.Get(ctx, path)
	}
	if err != nil {
		var respErr *vault.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return Secret{}, fmt.Errorf("secrets: vault path %s not found", ref.Path)
		}
		return Secret{}, fmt.Errorf("secrets: vault fetch failed for %s: %w", ref.Path, err)
	}

	data := make(map[string]string, len(secret.Data))
	for k, raw := range secret.Data {
		data[k] = fmt.Sprint(raw)
	}

	meta := Metadata{}
	if secret.VersionMetadata != nil {
		meta.Version = strconv.Itoa(secret.VersionMetadata.Version)
		meta.CreatedAt = secret.VersionMetadata.CreatedTime
	}
	return Secret{Data: data, Metadata: meta}, nil
}
