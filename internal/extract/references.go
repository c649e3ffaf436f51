// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

var (
	// refHeadingRe matches a references heading line, optionally numbered
	// or in Markdown form: "References", "7 Bibliography", "## Works Cited".
	refHeadingRe = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\d+\.?\s+)?(references|bibliography|works\s+cited|further\s+reading)\s*$`)

	// refEntryRe matches numbered entries like "[1] Authors. Title." or
	// "1. Authors. Title.".
	refEntryRe = regexp.MustCompile(`^(?:\[\d+\]|\d+\.)\s+(.+)$`)
)

// ParseReferences returns the entries under the last references heading in
// text. Numbered entries are preferred; otherwise each non-empty line is an
// entry. At most 50 entries are returned.
func ParseReferences(text string) []string {
	section := findReferencesSection(text)
	if len(section) == 0 {
		return []string{}
	}

	var numbered, plain []string
	for _, line := range section {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := refEntryRe.FindStringSubmatch(line); m != nil {
			numbered = append(numbered, strings.TrimSpace(m[1]))
			continue
		}
		plain = append(plain, line)
	}

	refs := plain
	if len(numbered) > 0 {
		refs = numbered
	}
	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}
	return refs
}

// findReferencesSection returns the lines after the last references heading.
// Back matter comes last, so the last heading wins over a table of contents
// entry with the same name.
func findReferencesSection(text string) []string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if refHeadingRe.MatchString(strings.TrimSpace(line)) {
			start = i + 1
		}
	}
	if start < 0 || start >= len(lines) {
		return nil
	}
	return lines[start:]
}
