// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds small string helpers shared by the pipeline stages:
// content hashing, slugs, and whitespace normalization.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ChecksumPrefixLen is the number of text characters that contribute to a
// resource checksum.
const ChecksumPrefixLen = 20000

// SHA256Hex returns the hex-encoded SHA-256 of the concatenated parts.
func SHA256Hex(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum is the content identity of an ingested resource.
func Checksum(url, title, text string) string {
	return SHA256Hex(url, title, Truncate(text, ChecksumPrefixLen))
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Slug lowercases s and collapses every run of non-alphanumeric characters
// into a single hyphen.
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// NormalizeWhitespace collapses horizontal whitespace, trims each line and
// keeps at most one blank line between paragraphs.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SubjectTerms splits a subject into lowercase words longer than two
// characters.
func SubjectTerms(subject string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(f)) <= 2 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// Dedup returns values with duplicates removed, preserving first occurrence.
func Dedup(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SplitCSV splits a comma-separated flag value, trimming blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
