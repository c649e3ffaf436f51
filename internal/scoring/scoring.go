// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring ranks discovered candidates with a deterministic
// weighted sum over institution, resource type, license, subject keyword
// overlap, and level fit, plus a flat boost for priority hosts.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// Component weights. They sum to 1 so the weighted part stays in 0..10.
const (
	weightInstitution = 0.30
	weightType        = 0.25
	weightLicense     = 0.20
	weightKeywords    = 0.15
	weightLevel       = 0.10
)

const (
	defaultInstitutionScore = 5.0
	defaultTypeScore        = 5.0
	defaultLicenseScore     = 3.0
	levelFitScore           = 9.0
	levelNeutralScore       = 5.0
	maxKeywordScore         = 10.0
)

var institutionScores = map[string]float64{
	"mit opencourseware":              9.5,
	"openstax":                        9,
	"open yale courses":               9,
	"stanford engineering everywhere": 9,
	"khan academy":                    8.5,
	"libretexts":                      8.5,
	"open textbook library":           8.5,
	"pubmed central":                  8,
	"europe pmc":                      8,
	"arxiv":                           7,
	"openalex":                        7,
	"semantic scholar":                7,
}

var typeScores = map[string]float64{
	"textbook":      9,
	"course":        8.5,
	"lecture-notes": 8,
	"problem-set":   7.5,
	"video-lecture": 7,
	"paper":         6,
	"article":       5.5,
}

var licenseScores = map[types.LicenseType]float64{
	types.LicenseCC0:          10,
	types.LicensePublicDomain: 10,
	types.LicenseCCBY:         9,
	types.LicenseCCBYSA:       8,
	types.LicenseCCBYNC:       6,
	types.LicenseProprietary:  1,
}

// levelRule rewards candidates whose title or type suggests the requested
// level. Rules are tried in order; the first whose level pattern matches
// the request decides.
type levelRule struct {
	level   *regexp.Regexp
	rewards *regexp.Regexp
}

var levelRules = []levelRule{
	{
		level:   regexp.MustCompile(`high[\s-]?school|intro|beginner|k-?12`),
		rewards: regexp.MustCompile(`intro|beginner|basics|fundamentals|essentials|high school|prep`),
	},
	{
		level:   regexp.MustCompile(`undergrad|college|bachelor`),
		rewards: regexp.MustCompile(`intro|fundamentals|principles|\b1\d\d\b|volume 1|textbook|course`),
	},
	{
		level:   regexp.MustCompile(`grad|advanced|master|phd|doctoral`),
		rewards: regexp.MustCompile(`advanced|graduate|theory|research|seminar|topics`),
	},
}

// Result is the score and its explanation for one candidate.
type Result struct {
	Score          float64
	QualitySignals []string
	Rationale      string
}

// Score computes the relevance and quality score of c for req.
func Score(c types.DiscoveredResource, req types.DiscoveryRequest) Result {
	inst := lookup(institutionScores, strings.ToLower(strings.TrimSpace(c.Institution)), defaultInstitutionScore)
	typ := lookup(typeScores, strings.ToLower(strings.TrimSpace(c.ResourceType)), defaultTypeScore)
	lic, ok := licenseScores[c.License]
	if !ok {
		lic = defaultLicenseScore
	}

	matched := MatchedTerms(req.Subject, c.Title+" "+c.Author+" "+c.Institution)
	keywords := math.Min(float64(matched)*2, maxKeywordScore)

	level, levelFit := LevelFit(req.Level, c.Title+" "+c.ResourceType)
	boost := DomainBoost(c.URL)

	raw := inst*weightInstitution +
		typ*weightType +
		lic*weightLicense +
		keywords*weightKeywords +
		level*weightLevel +
		boost

	var signals []string
	if inst > defaultInstitutionScore {
		signals = append(signals, "reputable-institution")
	}
	if lic >= licenseScores[types.LicenseCCBYNC] {
		signals = append(signals, "open-license")
	}
	if c.Access == types.AccessOpen {
		signals = append(signals, "open-access")
	}
	if levelFit {
		signals = append(signals, "level-fit")
	}
	switch boost {
	case tier1Boost:
		signals = append(signals, "tier-1-domain")
	case scholarlyBoost:
		signals = append(signals, "scholarly-index")
	}
	if signals == nil {
		signals = []string{}
	}

	return Result{
		Score:          Round2(raw),
		QualitySignals: signals,
		Rationale: fmt.Sprintf("Matched %d subject term(s); institution %s; type %s; license %s",
			matched, orUnknown(c.Institution), orUnknown(c.ResourceType), orUnknown(string(c.License))),
	}
}

// Apply scores c in place and returns it.
func Apply(c types.DiscoveredResource, req types.DiscoveryRequest) types.DiscoveredResource {
	r := Score(c, req)
	c.Score = r.Score
	c.QualitySignals = r.QualitySignals
	c.RelevanceRationale = r.Rationale
	return c
}

// MatchedTerms counts subject terms found as substrings of text,
// case-insensitively.
func MatchedTerms(subject, text string) int {
	text = strings.ToLower(text)
	n := 0
	for _, term := range textutil.SubjectTerms(subject) {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// LevelFit returns the level component for text at the requested level
// and whether it counted as a fit.
func LevelFit(level, text string) (float64, bool) {
	level = strings.ToLower(level)
	text = strings.ToLower(text)
	for _, rule := range levelRules {
		if !rule.level.MatchString(level) {
			continue
		}
		if rule.rewards.MatchString(text) {
			return levelFitScore, true
		}
		return levelNeutralScore, false
	}
	return levelNeutralScore, false
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func lookup(table map[string]float64, key string, def float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
