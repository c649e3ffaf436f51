// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DiscoveryRequest asks the discovery adapters for candidates on a subject.
type DiscoveryRequest struct {
	Subject        string   `json:"subject" yaml:"subject"`
	Level          string   `json:"level" yaml:"level"`
	TargetOutcomes []string `json:"targetOutcomes,omitempty" yaml:"target_outcomes,omitempty"`

	// MaxResults caps the ranked list. Zero uses the configured default.
	MaxResults int `json:"maxResults,omitempty" yaml:"max_results,omitempty"`
}

// DiscoveredResource is a scored candidate returned by discovery. It has not
// been fetched or compliance-checked yet.
type DiscoveredResource struct {
	URL          string `json:"url" yaml:"url"`
	Title        string `json:"title" yaml:"title"`
	Author       string `json:"author" yaml:"author"`
	Institution  string `json:"institution" yaml:"institution"`
	Year         int    `json:"year,omitempty" yaml:"year,omitempty"`
	ResourceType string `json:"resourceType" yaml:"resource_type"`

	License LicenseType  `json:"license" yaml:"license"`
	Access  AccessStatus `json:"access" yaml:"access"`

	RelevanceRationale string   `json:"relevanceRationale" yaml:"relevance_rationale"`
	QualitySignals     []string `json:"qualitySignals" yaml:"quality_signals"`

	// Score is a 0..10 composite, rounded to two decimals.
	Score float64 `json:"score" yaml:"score"`

	// Source names the adapter that produced the candidate.
	Source string `json:"source" yaml:"source"`
}
