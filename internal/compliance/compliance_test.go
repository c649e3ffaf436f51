// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compliance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

func TestClassifyLicense(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.LicenseType
	}{
		{"cc by", "Licensed under CC BY 4.0", types.LicenseCCBY},
		{"cc by url", "https://creativecommons.org/licenses/by/4.0/", types.LicenseCCBY},
		{"cc by-sa", "This work is CC BY-SA 3.0", types.LicenseCCBYSA},
		{"sharealike words", "Creative Commons Attribution-ShareAlike 4.0 International", types.LicenseCCBYSA},
		{"nc sa", "Creative Commons Attribution-NonCommercial-ShareAlike", types.LicenseCCBYNC},
		{"cc by-nc", "CC BY-NC 4.0", types.LicenseCCBYNC},
		{"cc0", "Released under CC0", types.LicenseCC0},
		{"public domain", "This text is in the public domain.", types.LicensePublicDomain},
		{"terms", "Use subject to our Terms of Use.", types.LicenseProprietary},
		{"all rights", "© 2024 Example Press. All rights reserved.", types.LicenseProprietary},
		{"nothing", "Lecture notes on limits.", types.LicenseUnknown},
		{"precedence", "CC BY-SA 4.0. Logo: all rights reserved.", types.LicenseCCBYSA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLicense(tt.text))
		})
	}
}

func TestDetectAccess(t *testing.T) {
	access, flags := DetectAccess("Free textbook for everyone.")
	assert.Equal(t, types.AccessOpen, access)
	assert.Empty(t, flags)

	access, flags = DetectAccess("Subscribe to read the full chapter.")
	assert.Equal(t, types.AccessPaywall, access)
	assert.Equal(t, []string{FlagPaywallSignal}, flags)

	access, flags = DetectAccess("Subscription required. Do not distribute.")
	assert.Equal(t, types.AccessForbidden, access, "forbidden wins over paywall")
	assert.Equal(t, []string{FlagPaywallSignal, FlagForbiddenSignal}, flags)
}

func TestCheckURLEligibility_AllowList(t *testing.T) {
	p := NewPolicy([]string{"edu.org"}, nil, nil)

	d := p.CheckURLEligibility("https://sub.edu.org/course/1")
	assert.True(t, d.Allowed)
	assert.Equal(t, types.AccessOpen, d.Access)

	d = p.CheckURLEligibility("https://edu.org/x")
	assert.True(t, d.Allowed)

	d = p.CheckURLEligibility("https://other.org/course")
	assert.False(t, d.Allowed)
	assert.Equal(t, types.AccessForbidden, d.Access)
	assert.Equal(t, []string{FlagNotAllowlisted}, d.Flags)
	assert.Empty(t, d.LicenseGuess)

	d = p.CheckURLEligibility("https://notedu.org/x")
	assert.False(t, d.Allowed, "suffix match respects label boundary")
}

func TestCheckURLEligibility_BlockedAndPatterns(t *testing.T) {
	p := NewPolicy(nil, []string{"paywalled.example"}, []string{"/login", "utm_source=spam"})

	d := p.CheckURLEligibility("https://cdn.paywalled.example/a")
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{FlagBlockedDomain}, d.Flags)

	d = p.CheckURLEligibility("https://openstax.org/login?next=/books")
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{FlagDoNotIngestPattern}, d.Flags)

	d = p.CheckURLEligibility("https://openstax.org/books/calculus-volume-1")
	assert.True(t, d.Allowed)

	d = p.CheckURLEligibility("::not a url")
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{FlagInvalidURL}, d.Flags)
}

func TestEvaluateContentCompliance(t *testing.T) {
	p := NewPolicy(nil, nil, nil)

	d := p.EvaluateContentCompliance("Licensed under CC BY 4.0", "Limits describe the behavior of functions.")
	assert.True(t, d.Allowed)
	assert.Equal(t, types.LicenseCCBY, d.LicenseGuess)
	assert.Empty(t, d.Flags)

	d = p.EvaluateContentCompliance("", "An introduction to derivatives.")
	assert.True(t, d.Allowed, "unknown license does not block")
	assert.Equal(t, types.LicenseUnknown, d.LicenseGuess)
	assert.Equal(t, []string{FlagLicenseManualReview}, d.Flags)

	d = p.EvaluateContentCompliance("All rights reserved", "Subscribe to continue reading this article.")
	assert.False(t, d.Allowed)
	assert.Equal(t, types.AccessPaywall, d.Access)
}

func TestEvaluateContent_OnlySamplesBodyPrefix(t *testing.T) {
	body := strings.Repeat("free content ", 400) + " subscription required"
	d := EvaluateContent("CC BY", body)
	assert.True(t, d.Allowed, "signals past the sample window are ignored")
}

func TestLoadDoNotIngestPatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.txt")
	content := "# header comment\n/login\n\n  utm_source=spam  # trailing comment\n#only comment\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadDoNotIngestPatterns(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/login", "utm_source=spam"}, got)

	got, err = LoadDoNotIngestPatterns(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "do-not-ingest.log")
	l := NewLog(path)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, l.Append("https://paywalled.example/a", "URL blocked by compliance", []string{FlagBlockedDomain}))
	require.NoError(t, l.Append("https://x.org/b", "Content blocked by compliance", []string{FlagPaywallSignal, FlagLicenseManualReview}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-03-01T12:00:00Z\thttps://paywalled.example/a\tURL blocked by compliance\tblocked-domain", lines[0])
	assert.Contains(t, lines[1], "paywall-signal,license-unknown-manual-review")
}
