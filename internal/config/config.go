// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the curriculum-engine JSON configuration, applies
// defaults and environment overrides, validates it, resolves storage paths
// against the working directory, and creates the storage directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "curriculum-engine.json"

// EnvPrefix prefixes environment overrides, e.g.
// CURRICULUM_ENGINE_RATELIMIT_REQUESTSPERDOMAINPERMINUTE=30.
const EnvPrefix = "CURRICULUM_ENGINE"

const defaultUserAgent = "curriculum-engine/0.1 (+https://github.com/pdiddy/curriculum-engine)"

func setDefaults(v *viper.Viper) {
	v.SetDefault("allowedDomains", []string{})
	v.SetDefault("blockedDomains", []string{})
	v.SetDefault("doNotIngestPatternsPath", "config/do-not-ingest.txt")
	v.SetDefault("maxDownloadSizeMb", 50)
	v.SetDefault("userAgent", defaultUserAgent)
	v.SetDefault("rateLimit.requestsPerDomainPerMinute", 30)
	v.SetDefault("discovery.minScore", 6.0)
	v.SetDefault("discovery.maxResults", 20)
	v.SetDefault("discovery.contactEmail", "")
	v.SetDefault("discovery.seedConcurrency", 4)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.databasePath", "data/curriculum.db")
	v.SetDefault("storage.rawHtmlDir", "data/raw/html")
	v.SetDefault("storage.rawPdfDir", "data/raw/pdf")
	v.SetDefault("storage.extractedTextDir", "data/extracted")
	v.SetDefault("storage.discoveryDir", "data/discovery")
	v.SetDefault("storage.blueprintDir", "data/blueprints")
	v.SetDefault("storage.complianceLogPath", "data/do-not-ingest.log")
	v.SetDefault("http.timeoutSeconds", 60)
	v.SetDefault("blueprint.templatesPath", "")
}

// Load reads the JSON config at path. A missing file is not an error when
// path is DefaultPath; defaults and environment overrides apply either way.
func Load(path string) (*types.Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if !missing || path != DefaultPath {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	ResolvePaths(&cfg, cwd)

	if err := EnsureDirs(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared on the config structs.
func Validate(cfg *types.Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolvePaths makes every relative path in cfg absolute against base.
func ResolvePaths(cfg *types.Config, base string) {
	for _, p := range []*string{
		&cfg.DoNotIngestPatternsPath,
		&cfg.Storage.DatabasePath,
		&cfg.Storage.RawHTMLDir,
		&cfg.Storage.RawPDFDir,
		&cfg.Storage.ExtractedTextDir,
		&cfg.Storage.DiscoveryDir,
		&cfg.Storage.BlueprintDir,
		&cfg.Storage.ComplianceLogPath,
		&cfg.Blueprint.TemplatesPath,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// EnsureDirs creates the storage directories and the parent directories of
// the database and compliance log.
func EnsureDirs(cfg *types.Config) error {
	for _, dir := range []string{
		cfg.Storage.RawHTMLDir,
		cfg.Storage.RawPDFDir,
		cfg.Storage.ExtractedTextDir,
		cfg.Storage.DiscoveryDir,
		cfg.Storage.BlueprintDir,
		filepath.Dir(cfg.Storage.DatabasePath),
		filepath.Dir(cfg.Storage.ComplianceLogPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
