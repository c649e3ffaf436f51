package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Calculus I", "calculus-i"},
		{"  openstax.org ", "openstax-org"},
		{"Linear   Algebra -- Intro!", "linear-algebra-intro"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a := Checksum("https://openstax.org/books/calculus", "Calculus", "limits and continuity")
	b := Checksum("https://openstax.org/books/calculus", "Calculus", "limits and continuity")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c := Checksum("https://openstax.org/books/calculus", "Calculus", "limits and derivatives")
	assert.NotEqual(t, a, c)
}

func TestChecksum_IgnoresTextBeyondPrefix(t *testing.T) {
	prefix := strings.Repeat("x", ChecksumPrefixLen)
	a := Checksum("u", "t", prefix+"tail one")
	b := Checksum("u", "t", prefix+"tail two")
	assert.Equal(t, a, b)
}

func TestTruncate_RuneSafe(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "  Title \t here\r\n\n\n\nBody   text\n   \nmore  "
	assert.Equal(t, "Title here\n\nBody text\n\nmore", NormalizeWhitespace(in))
}

func TestSubjectTerms(t *testing.T) {
	assert.Equal(t, []string{"calculus"}, SubjectTerms("Calculus I"))
	assert.Equal(t, []string{"intro", "organic", "chemistry"}, SubjectTerms("Intro to Organic Chemistry, organic"))
	assert.Empty(t, SubjectTerms("AI"))
}

func TestDedupAndSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedup([]string{"a", "", "b", "a"}))
	assert.Equal(t, []string{"limits", "derivatives"}, SplitCSV(" limits, ,derivatives "))
	assert.Nil(t, SplitCSV(""))
}
