package types

// Config is the engine configuration, loaded from curriculum-engine.json.
// Keys are camelCase in the file; environment overrides use the
// CURRICULUM_ENGINE_ prefix with dots replaced by underscores.
type Config struct {
	// AllowedDomains, when non-empty, restricts ingestion to these hosts
	// and their subdomains.
	AllowedDomains []string `json:"allowedDomains" mapstructure:"allowedDomains"`

	// BlockedDomains are always rejected, including subdomains.
	BlockedDomains []string `json:"blockedDomains" mapstructure:"blockedDomains"`

	// DoNotIngestPatternsPath names a newline-delimited file of URL
	// substrings that must never be ingested.
	DoNotIngestPatternsPath string `json:"doNotIngestPatternsPath" mapstructure:"doNotIngestPatternsPath"`

	// MaxDownloadSizeMB caps the size of a fetched body in MiB.
	MaxDownloadSizeMB int `json:"maxDownloadSizeMb" mapstructure:"maxDownloadSizeMb" validate:"gt=0"`

	UserAgent string `json:"userAgent" mapstructure:"userAgent" validate:"required"`

	RateLimit RateLimitConfig `json:"rateLimit" mapstructure:"rateLimit"`
	Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	HTTP      HTTPConfig      `json:"http" mapstructure:"http"`
	Blueprint BlueprintConfig `json:"blueprint" mapstructure:"blueprint"`
}

// RateLimitConfig controls per-host request spacing.
type RateLimitConfig struct {
	RequestsPerDomainPerMinute int `json:"requestsPerDomainPerMinute" mapstructure:"requestsPerDomainPerMinute" validate:"gt=0"`
}

// DiscoveryConfig holds discovery and seeding settings.
type DiscoveryConfig struct {
	// MinScore is the cutoff for seeding ingestion from discovery results.
	MinScore float64 `json:"minScore" mapstructure:"minScore" validate:"gte=0,lte=10"`

	// MaxResults is the default ranked-list length (default 20).
	MaxResults int `json:"maxResults" mapstructure:"maxResults" validate:"gt=0"`

	// ContactEmail is sent to OpenAlex as mailto for the polite pool.
	ContactEmail string `json:"contactEmail,omitempty" mapstructure:"contactEmail" validate:"omitempty,email"`

	// SeedConcurrency bounds concurrent ingests when seeding (default 4).
	SeedConcurrency int `json:"seedConcurrency" mapstructure:"seedConcurrency" validate:"gt=0"`
}

// StorageConfig locates the database and on-disk artifacts.
type StorageConfig struct {
	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver string `json:"driver" mapstructure:"driver" validate:"oneof=sqlite sqlite3"`

	DatabasePath      string `json:"databasePath" mapstructure:"databasePath" validate:"required"`
	RawHTMLDir        string `json:"rawHtmlDir" mapstructure:"rawHtmlDir" validate:"required"`
	RawPDFDir         string `json:"rawPdfDir" mapstructure:"rawPdfDir" validate:"required"`
	ExtractedTextDir  string `json:"extractedTextDir" mapstructure:"extractedTextDir" validate:"required"`
	DiscoveryDir      string `json:"discoveryDir" mapstructure:"discoveryDir" validate:"required"`
	BlueprintDir      string `json:"blueprintDir" mapstructure:"blueprintDir" validate:"required"`
	ComplianceLogPath string `json:"complianceLogPath" mapstructure:"complianceLogPath" validate:"required"`
}

// HTTPConfig holds shared HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds" validate:"gt=0"`
}

// BlueprintConfig holds blueprint generation settings.
type BlueprintConfig struct {
	// TemplatesPath optionally names a TOML file of extra course templates.
	TemplatesPath string `json:"templatesPath,omitempty" mapstructure:"templatesPath"`
}
