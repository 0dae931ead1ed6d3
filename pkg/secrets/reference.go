package secrets

import "strings"

// Reference locates one secret in a backend.
//
// Syntax: [provider://][mount::]path[@version][#key]
//
//	aws://truthlens/detector#api_key
//	vault://kv::truthlens/detector@3#api_key
//	kubernetes://detector/api_key
type Reference struct {
	Name     string
	Type     SecretType
	Provider ProviderType
	Mount    string
	Path     string
	Version  string
	Key      string
}

// CacheKey identifies the fetched payload; the key selector is not part of it
// so several keys of one secret share a cache entry.
func (r Reference) CacheKey() string {
	var sb strings.Builder
	sb.WriteString(string(r.Provider))
	sb.WriteString("|")
	if r.Mount != "" {
		sb.WriteString(r.Mount)
		sb.WriteString("::")
	}
	sb.WriteString(r.Path)
	if r.Version != "" {
		sb.WriteString("@")
		sb.WriteString(r.Version)
	}
	return sb.String()
}

// ParseReference parses raw into a Reference named name.
func ParseReference(name string, secretType SecretType, raw string) (Reference, error) {
	ref := Reference{Name: name, Type: secretType}

	rest := strings.TrimSpace(raw)
	if rest == "" {
		return ref, ErrInvalidReference
	}

	if scheme, after, ok := strings.Cut(rest, "://"); ok && scheme != "" {
		ref.Provider = ProviderType(strings.ToLower(scheme))
		rest = after
	}
	if before, key, ok := strings.Cut(rest, "#"); ok {
		ref.Key = strings.TrimSpace(key)
		rest = before
	}
	if before, version, ok := strings.Cut(rest, "@"); ok {
		ref.Version = strings.TrimSpace(version)
		rest = before
	}
	if mount, path, ok := strings.Cut(rest, "::"); ok {
		ref.Mount = strings.Trim(strings.TrimSpace(mount), "/")
		rest = path
	}

	ref.Path = strings.Trim(strings.TrimSpace(rest), "/")
	if ref.Path == "" {
		return ref, ErrInvalidReference
	}
	return ref, nil
}
