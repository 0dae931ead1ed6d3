package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KubernetesConfig configures the provider that reads secrets mounted as files.
type KubernetesConfig struct {
	BasePath string
}

type kubernetesProvider struct {
	basePath string
}

func newKubernetesProvider(cfg KubernetesConfig) (provider, error) {
	base := cfg.BasePath
	if base == "" {
		base = "/var/run/secrets"
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("secrets: kubernetes secrets base %s not accessible: %w", base, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets: kubernetes secrets base %s is not a directory", base)
	}
	return &kubernetesProvider{basePath: base}, nil
}

func (k *kubernetesProvider) Name() ProviderType { return ProviderKubernetes }

func (k *kubernetesProvider) Close() error { return nil }

// Fetch reads a single file, keyed by its base name, or every regular file of
// a directory, keyed by file name. Hidden entries (the ..data symlinks of a
// mounted Secret) are skipped.
func (k *kubernetesProvider) Fetch(ctx context.Context, ref Reference) (Secret, error) {
	target := filepath.Join(k.basePath, filepath.Clean("/"+ref.Path))
	info, err := os.Stat(target)
	if err != nil {
		return Secret{}, fmt.Errorf("secrets: kubernetes path %s not found: %w", target, err)
	}

	if !info.IsDir() {
		content, err := os.ReadFile(target)
		if err != nil {
			return Secret{}, err
		}
		return Secret{Data: map[string]string{filepath.Base(target): strings.TrimSpace(string(content))}}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return Secret{}, err
	}

	data := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(target, entry.Name()))
		if err != nil {
			return Secret{}, err
		}
		data[entry.Name()] = strings.TrimSpace(string(content))
	}
	return Secret{Data: data}, nil
}
