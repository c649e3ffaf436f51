// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compliance decides whether a URL or fetched content may be
// ingested. URL eligibility checks domains and do-not-ingest patterns;
// content eligibility detects paywalls, prohibitions, and the license.
package compliance

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// Flags attached to compliance decisions.
const (
	FlagInvalidURL          = "invalid-url"
	FlagBlockedDomain       = "blocked-domain"
	FlagNotAllowlisted      = "domain-not-allowlisted"
	FlagDoNotIngestPattern  = "do-not-ingest-pattern"
	FlagPaywallSignal       = "paywall-signal"
	FlagForbiddenSignal     = "forbidden-signal"
	FlagLicenseManualReview = "license-unknown-manual-review"
)

// BodySampleLen is how much of the body joins the license text when
// evaluating content.
const BodySampleLen = 2000

// Policy holds the domain lists and do-not-ingest patterns.
type Policy struct {
	allowed  []string
	blocked  []string
	patterns []string
}

// NewPolicy builds a policy. Domains are compared lowercase.
func NewPolicy(allowedDomains, blockedDomains, patterns []string) *Policy {
	return &Policy{
		allowed:  lowerAll(allowedDomains),
		blocked:  lowerAll(blockedDomains),
		patterns: patterns,
	}
}

// CheckURLEligibility rejects blocked domains, hosts outside a non-empty
// allow-list, and URLs containing a do-not-ingest pattern.
func (p *Policy) CheckURLEligibility(rawURL string) types.ComplianceDecision {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return reject(FlagInvalidURL)
	}
	host := strings.ToLower(u.Hostname())

	for _, d := range p.blocked {
		if domainMatches(host, d) {
			return reject(FlagBlockedDomain)
		}
	}

	if len(p.allowed) > 0 {
		ok := false
		for _, d := range p.allowed {
			if domainMatches(host, d) {
				ok = true
				break
			}
		}
		if !ok {
			return reject(FlagNotAllowlisted)
		}
	}

	for _, pat := range p.patterns {
		if strings.Contains(rawURL, pat) {
			return reject(FlagDoNotIngestPattern)
		}
	}

	return types.ComplianceDecision{Allowed: true, Access: types.AccessOpen, Flags: []string{}}
}

// EvaluateContentCompliance classifies access and license over the license
// text plus the first BodySampleLen characters of body. Only open content is
// allowed; an unknown license is flagged for review without blocking.
func (p *Policy) EvaluateContentCompliance(licenseText, body string) types.ComplianceDecision {
	return EvaluateContent(licenseText, body)
}

// EvaluateContent is the I/O-free content check behind
// Policy.EvaluateContentCompliance.
func EvaluateContent(licenseText, body string) types.ComplianceDecision {
	sample := licenseText + "\n" + textutil.Truncate(body, BodySampleLen)

	access, flags := DetectAccess(sample)
	license := ClassifyLicense(sample)
	if license == types.LicenseUnknown {
		flags = append(flags, FlagLicenseManualReview)
	}
	if flags == nil {
		flags = []string{}
	}
	return types.ComplianceDecision{
		Allowed:      access == types.AccessOpen,
		Access:       access,
		Flags:        flags,
		LicenseGuess: license,
	}
}

// LoadDoNotIngestPatterns reads one pattern per line. Text after '#' is a
// comment; blank lines are ignored. A missing file yields no patterns.
func LoadDoNotIngestPatterns(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening do-not-ingest patterns %s: %w", path, err)
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			patterns = append(patterns, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading do-not-ingest patterns %s: %w", path, err)
	}
	return patterns, nil
}

func reject(flag string) types.ComplianceDecision {
	return types.ComplianceDecision{Allowed: false, Access: types.AccessForbidden, Flags: []string{flag}}
}

// domainMatches reports whether host is domain or one of its subdomains.
func domainMatches(host, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
