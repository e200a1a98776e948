package config

import (
	"path/filepath"
	"strings"
)

// Sanitize returns a normalized copy of cfg: enumerations lower-cased,
// surrounding whitespace trimmed and paths cleaned. The original is not
// modified.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	sanitized.Server.Addr = strings.TrimSpace(sanitized.Server.Addr)

	sanitized.Storage.Backend = normalize(sanitized.Storage.Backend)
	sanitized.Storage.Format = normalize(sanitized.Storage.Format)
	sanitized.Storage.Path = cleanPath(sanitized.Storage.Path)

	sanitized.Metrics.Addr = strings.TrimSpace(sanitized.Metrics.Addr)

	sanitized.Log.Level = normalize(sanitized.Log.Level)
	sanitized.Log.Format = normalize(sanitized.Log.Format)
	sanitized.Log.File = cleanPath(sanitized.Log.File)

	return &sanitized
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
