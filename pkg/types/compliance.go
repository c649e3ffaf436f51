// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AccessStatus describes whether content can be read without restriction.
type AccessStatus string

const (
	AccessOpen      AccessStatus = "open"
	AccessPaywall   AccessStatus = "paywall"
	AccessForbidden AccessStatus = "forbidden"
)

// LicenseType is the coarse license family detected in license text.
type LicenseType string

const (
	LicenseCCBY         LicenseType = "CC-BY"
	LicenseCCBYSA       LicenseType = "CC-BY-SA"
	LicenseCCBYNC       LicenseType = "CC-BY-NC"
	LicenseCC0          LicenseType = "CC0"
	LicensePublicDomain LicenseType = "Public-Domain"
	LicenseProprietary  LicenseType = "Proprietary"
	LicenseUnknown      LicenseType = "Unknown"
)

// ComplianceDecision is the outcome of a URL or content compliance check.
// LicenseGuess is empty for URL-level rejections, which never look at content.
type ComplianceDecision struct {
	Allowed      bool         `json:"allowed" yaml:"allowed"`
	Access       AccessStatus `json:"access" yaml:"access"`
	Flags        []string     `json:"flags" yaml:"flags"`
	LicenseGuess LicenseType  `json:"licenseGuess,omitempty" yaml:"license_guess,omitempty"`
}
