package secrets

import (
	"context"
	"fmt"
)

// DefaultAPIKeyField is read when a reference has no #key selector.
const DefaultAPIKeyField = "api_key"

// ResolveAPIKey returns direct when set. Otherwise it resolves ref through m.
// An empty direct and ref yields "" with no error: the detector then runs
// unauthenticated and reports the upstream's rejection per call.
func ResolveAPIKey(ctx context.Context, m Manager, direct, ref string) (string, error) {
	if direct != "" || ref == "" {
		return direct, nil
	}
	if m == nil {
		return "", fmt.Errorf("secrets: reference %q given but no provider configured: %w", ref, ErrProviderNotConfigured)
	}

	parsed, err := ParseReference("detector_api_key", SecretDetectorAPIKey, ref)
	if err != nil {
		return "", err
	}
	if parsed.Key == "" {
		parsed.Key = DefaultAPIKeyField
	}

	return m.GetString(ctx, parsed)
}
