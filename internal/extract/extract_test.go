// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calculusPage = `<!DOCTYPE html>
<html>
<head>
  <title>Calculus Volume 1 | OpenStax</title>
  <meta property="og:title" content="Calculus Volume 1">
  <meta property="og:site_name" content="OpenStax">
  <meta name="author" content="Gilbert Strang">
  <link rel="license" href="https://creativecommons.org/licenses/by/4.0/">
</head>
<body>
  <header><nav><a href="/subjects">Subjects</a></nav></header>
  <main>
    <h1>Calculus Volume 1</h1>
    <p>Calculus is designed for the typical two- or three-semester general calculus course.</p>
    <p>The text incorporates many innovative features to enhance student learning, including limits,
       continuity, derivatives and the fundamental theorem.</p>
    <p>See also <a href="https://ocw.mit.edu/courses/18-01/">MIT 18.01</a> and
       <a href="https://ocw.mit.edu/courses/18-01">the same course</a> and <a href="/internal">internal</a>.</p>
  </main>
  <footer>This book is licensed under a Creative Commons Attribution 4.0 International License.</footer>
</body>
</html>`

func TestHTML_MainContentAndMetadata(t *testing.T) {
	ex, err := HTML([]byte(calculusPage), "https://openstax.org/details/books/calculus-volume-1")
	require.NoError(t, err)

	assert.Equal(t, KindHTML, ex.Kind)
	assert.Equal(t, "Calculus Volume 1", ex.Title)
	assert.Equal(t, "Gilbert Strang", ex.Byline)
	assert.Equal(t, "OpenStax", ex.SiteName)
	assert.Contains(t, ex.Text, "fundamental theorem")
	assert.NotContains(t, ex.Text, "Subjects", "navigation is stripped")
	assert.Contains(t, ex.Text, "course.\n\nThe text", "paragraphs stay separate")

	assert.Contains(t, ex.LicenseText, "creativecommons.org/licenses/by/4.0")
	assert.Contains(t, ex.LicenseText, "Creative Commons Attribution 4.0")

	assert.Equal(t, []string{"https://ocw.mit.edu/courses/18-01"}, ex.References)
}

func TestHTML_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"og title", `<html><head><meta property="og:title" content="OG Title"><title>Doc Title</title></head><body><p>x</p></body></html>`, "OG Title"},
		{"document title", `<html><head><title> Doc   Title </title></head><body><p>x</p></body></html>`, "Doc Title"},
		{"untitled", `<html><body><p>x</p></body></html>`, UntitledTitle},
		{"citation meta", `<html><head><meta name="citation_title" content="Paper Title"><title>Site</title></head><body></body></html>`, "Paper Title"},
		{"h1 in article header", `<html><head><title>Series | Open Notes</title></head><body><article><header><h1>Series and Sequences</h1></header><p>x</p></article></body></html>`, "Series and Sequences"},
		{"h1 in page header", `<html><head><meta property="og:title" content="Limits | Open Notes"></head><body><header><h1>Limits</h1></header><p>x</p></body></html>`, "Limits"},
		{"article h1 beats site header", `<html><body><header><h1>Open Notes</h1></header><main><h1>Derivatives</h1><p>x</p></main></body></html>`, "Derivatives"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := HTML([]byte(tt.html), "https://example.org/a")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ex.Title)
		})
	}
}

func TestHTML_SiteNameFallsBackToHost(t *testing.T) {
	ex, err := HTML([]byte(`<html><body><p>hello</p></body></html>`), "https://www.LibreTexts.org/x")
	require.NoError(t, err)
	assert.Equal(t, "libretexts.org", ex.SiteName)
}

func TestHTML_ParagraphScoringWithoutSemanticTags(t *testing.T) {
	long := strings.Repeat("Derivatives measure instantaneous rates of change. ", 10)
	page := `<html><body>
		<div class="menu"><p>Home</p><p>About</p></div>
		<div class="lesson"><p>` + long + `</p><p>` + long + `</p></div>
	</body></html>`
	ex, err := HTML([]byte(page), "https://example.edu/lesson")
	require.NoError(t, err)
	assert.Contains(t, ex.Text, "instantaneous rates")
	assert.NotContains(t, ex.Text, "About")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("application/pdf", "https://x.org/a", nil))
	assert.True(t, IsPDF("application/octet-stream", "https://x.org/notes.PDF", nil))
	assert.True(t, IsPDF("", "https://x.org/a", []byte("%PDF-1.7\n...")))
	assert.False(t, IsPDF("text/html", "https://x.org/a", []byte("<html>")))
}

func TestPDF_InvalidInputIsError(t *testing.T) {
	_, err := PDF([]byte("definitely not a pdf"), "https://x.org/file.pdf")
	assert.Error(t, err)
}

func TestPDFTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		url  string
		want string
	}{
		{"first line", "\n\nIntroduction to Limits\nBody", "https://x.org/a.pdf", "Introduction to Limits"},
		{"too short", "ab\nIntroduction", "https://x.org/notes/limits-intro.pdf", "limits-intro.pdf"},
		{"too long", strings.Repeat("w", 160), "https://x.org/dir/Lecture%2001.pdf", "Lecture 01.pdf"},
		{"no path", "", "https://x.org/", UntitledTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pdfTitle(tt.text, tt.url))
		})
	}
}

func TestParseReferences(t *testing.T) {
	text := `Contents
References
1 Limits
...
7 References
[1] Smith, J. Limits and continuity. Journal of Calculus, 2019.
[2] Jones, A. Derivatives revisited. 2020.
`
	refs := ParseReferences(text)
	assert.Equal(t, []string{
		"Smith, J. Limits and continuity. Journal of Calculus, 2019.",
		"Jones, A. Derivatives revisited. 2020.",
	}, refs)
}

func TestParseReferences_PlainLinesAndNone(t *testing.T) {
	refs := ParseReferences("Body\n## Further Reading\nStewart, Calculus\n\nApostol, Calculus Vol 1\n")
	assert.Equal(t, []string{"Stewart, Calculus", "Apostol, Calculus Vol 1"}, refs)

	assert.Empty(t, ParseReferences("no back matter here"))
}
