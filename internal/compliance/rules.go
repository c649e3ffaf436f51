// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compliance

import (
	"regexp"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// LicenseRule pairs a detection pattern with the license it identifies.
type LicenseRule struct {
	Pattern *regexp.Regexp
	License types.LicenseType
}

// licenseRules is evaluated first-match-wins. More specific families come
// before the ones they contain (CC BY-SA before CC BY), and the generic
// proprietary wording comes last.
var licenseRules = []LicenseRule{
	{regexp.MustCompile(`(?i)\bcc[\s-]?by[\s-]?sa\b|attribution[\s-]+share[\s-]?alike|creativecommons\.org/licenses/by-sa/`), types.LicenseCCBYSA},
	{regexp.MustCompile(`(?i)\bcc[\s-]?by[\s-]?nc\b|attribution[\s-]+non[\s-]?commercial|creativecommons\.org/licenses/by-nc`), types.LicenseCCBYNC},
	{regexp.MustCompile(`(?i)\bcc[\s-]?by\b|creative\s+commons\s+attribution|creativecommons\.org/licenses/by/`), types.LicenseCCBY},
	{regexp.MustCompile(`(?i)\bcc0\b|cc\s+zero|creativecommons\.org/publicdomain/zero`), types.LicenseCC0},
	{regexp.MustCompile(`(?i)public[\s-]+domain`), types.LicensePublicDomain},
	{regexp.MustCompile(`(?i)terms\s+of\s+(use|service)|all\s+rights\s+reserved`), types.LicenseProprietary},
}

// paywallSignals mark content that requires payment or a subscription.
var paywallSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subscribe\s+(now\s+)?to\s+(read|continue|access|unlock)`),
	regexp.MustCompile(`(?i)subscription\s+required`),
	regexp.MustCompile(`(?i)\bpaywall`),
	regexp.MustCompile(`(?i)purchase\s+(this\s+)?(article|chapter|book|access)`),
	regexp.MustCompile(`(?i)buy\s+(this\s+)?(article|chapter|book|course)`),
	regexp.MustCompile(`(?i)(sign|log)\s+in\s+to\s+(read|continue|access|view)`),
	regexp.MustCompile(`(?i)members[\s-]+only`),
}

// forbiddenSignals mark content whose reuse is explicitly prohibited or that
// is plainly infringing.
var forbiddenSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)do\s+not\s+(copy|distribute|reproduce|redistribute)`),
	regexp.MustCompile(`(?i)unauthori[sz]ed\s+(copying|reproduction|distribution|use)`),
	regexp.MustCompile(`(?i)(may|must)\s+not\s+be\s+(copied|reproduced|redistributed)`),
	regexp.MustCompile(`(?i)\bpirated?\b|\btorrent\b|\bwarez\b`),
	regexp.MustCompile(`(?i)access\s+denied`),
}

// ClassifyLicense returns the first license family whose pattern matches
// text, or LicenseUnknown.
func ClassifyLicense(text string) types.LicenseType {
	for _, rule := range licenseRules {
		if rule.Pattern.MatchString(text) {
			return rule.License
		}
	}
	return types.LicenseUnknown
}

// DetectAccess classifies text as open, paywalled or forbidden. Forbidden
// signals are checked after paywall signals and win when both match.
func DetectAccess(text string) (types.AccessStatus, []string) {
	access := types.AccessOpen
	var flags []string
	if matchesAny(paywallSignals, text) {
		access = types.AccessPaywall
		flags = append(flags, FlagPaywallSignal)
	}
	if matchesAny(forbiddenSignals, text) {
		access = types.AccessForbidden
		flags = append(flags, FlagForbiddenSignal)
	}
	return access, flags
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
