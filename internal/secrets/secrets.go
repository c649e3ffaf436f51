// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: openalex-email, semantic-scholar-api-key, ncbi-api-key.
// Each can be overridden by an environment variable (see EnvName), which is
// how values from a .env file reach the engine.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Known secret keys.
const (
	OpenAlexEmail         = "openalex-email"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	NCBIAPIKey            = "ncbi-api-key"
)

// Keys lists the secrets WithEnv looks up in the environment.
var Keys = []string{OpenAlexEmail, SemanticScholarAPIKey, NCBIAPIKey}

// EnvName returns the environment variable that overrides key, e.g.
// CURRICULUM_ENGINE_NCBI_API_KEY for ncbi-api-key.
func EnvName(key string) string {
	return "CURRICULUM_ENGINE_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// WithEnv returns a copy of loaded in which every known key set in the
// environment takes the environment value.
func WithEnv(loaded map[string]string) map[string]string {
	out := make(map[string]string, len(loaded)+len(Keys))
	for k, v := range loaded {
		out[k] = v
	}
	for _, k := range Keys {
		if v := strings.TrimSpace(os.Getenv(EnvName(k))); v != "" {
			out[k] = v
		}
	}
	return out
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
