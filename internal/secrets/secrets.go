// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads transport credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Recognised keys: mqtt-password, http-api-key, clickhouse-password.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Known secret keys.
const (
	MQTTPassword       = "mqtt-password"
	HTTPAPIKey         = "http-api-key"
	ClickHousePassword = "clickhouse-password"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("could not read secret", "key", entry.Name(), "err", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[entry.Name()] = value
		}
	}
	return s, nil
}

// Or returns explicit when it is set, otherwise the stored value for key.
// Explicit configuration always wins over the secrets directory.
func (s Secrets) Or(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order, for logging without
// exposing values.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
