// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
	"github.com/pdiddy/curriculum-engine/internal/textutil"
)

// maxReferences caps the outbound links kept per document.
const maxReferences = 50

// minContentLen is the text length a content selector must reach before it
// is trusted over paragraph scoring.
const minContentLen = 200

var noiseSelector = strings.Join([]string{
	"nav", "footer", "header", "script", "style", "noscript", "aside", "form",
	"iframe", "svg", "template",
	".ad", ".ads", ".advertisement", ".sidebar", ".cookie-banner", ".popup",
	".breadcrumb", ".share", ".social", "[role=navigation]", "[aria-hidden=true]",
}, ", ")

var contentSelectors = []string{
	"main",
	"article",
	"[role=main]",
	"#content",
	".content",
	"#main-content",
	".main-content",
	"#bodyContent",
	".book-content",
	".course-content",
}

var licenseWordRe = regexp.MustCompile(`(?i)licen[cs]e|creative\s+commons|rights\s+reserved|public\s+domain|terms\s+of\s+(use|service)|cc[\s-]?by|cc0`)

// HTML runs readability-style main-content extraction over raw.
func HTML(raw []byte, pageURL string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	ex := &Extraction{Kind: KindHTML}

	// Metadata and license notices live in the head and footer, so read
	// them before noise removal strips the footer.
	ex.LicenseText = licenseSample(doc)
	ogTitle := metaContent(doc, `meta[property="og:title"]`, `meta[name="twitter:title"]`)
	docTitle := doc.Find("title").First().Text()
	citationTitle := metaContent(doc, `meta[name="citation_title"]`, `meta[name="dc.title"]`, `meta[name="DC.title"]`)
	ex.Byline = firstNonEmpty(
		metaContent(doc, `meta[name="author"]`, `meta[name="citation_author"]`, `meta[name="dc.creator"]`, `meta[name="DC.creator"]`),
		doc.Find(`[rel="author"]`).First().Text(),
		doc.Find(".byline, .author").First().Text(),
		metaContent(doc, `meta[property="article:author"]`),
	)
	ex.SiteName = firstNonEmpty(
		metaContent(doc, `meta[property="og:site_name"]`, `meta[name="application-name"]`),
		httputil.NormalizeHost(pageURL),
	)

	// Headings often sit in a <header>, which noise removal drops.
	articleH1 := doc.Find(`main h1, article h1, [role="main"] h1`).First().Text()
	pageH1 := doc.Find("h1").First().Text()

	doc.Find(noiseSelector).Remove()
	content := mainContent(doc)

	readTitle := firstNonEmpty(
		citationTitle,
		articleH1,
		content.Find("h1").First().Text(),
		doc.Find("h1").First().Text(),
		pageH1,
	)
	ex.Title = collapse(firstNonEmpty(readTitle, ogTitle, docTitle, UntitledTitle))
	ex.Byline = collapse(ex.Byline)
	ex.Text = textutil.NormalizeWhitespace(blockText(content))
	ex.References = outboundLinks(content, pageURL)
	return ex, nil
}

// mainContent picks the first content selector with enough text, then the
// div or section carrying the most paragraph text, then body.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 && runeLen(strings.TrimSpace(s.Text())) >= minContentLen {
			return s
		}
	}

	var best *goquery.Selection
	bestScore := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		score := 0
		s.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			score += runeLen(strings.TrimSpace(p.Text()))
		})
		if score > bestScore {
			best, bestScore = s, score
		}
	})
	if best != nil && bestScore >= minContentLen {
		return best
	}
	return doc.Find("body")
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "pre": true, "blockquote": true, "figure": true,
	"figcaption": true, "br": true, "hr": true,
}

// blockText concatenates text nodes, breaking lines at block elements so
// paragraphs do not run together.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// licenseSample gathers license statements from rel=license links, rights
// metadata, and licence-bearing footer text.
func licenseSample(doc *goquery.Document) string {
	var parts []string
	doc.Find(`a[rel~="license"], link[rel~="license"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			parts = append(parts, href)
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	doc.Find(strings.Join([]string{
		`meta[name="dc.rights"]`, `meta[name="DC.rights"]`, `meta[name="dcterms.license"]`,
		`meta[name="DCTERMS.license"]`, `meta[name="license"]`, `meta[name="copyright"]`,
		`meta[property="og:license"]`,
	}, ", ")).Each(func(_ int, s *goquery.Selection) {
		if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
			parts = append(parts, strings.TrimSpace(c))
		}
	})
	doc.Find("footer, .license, #license, .copyright, .footer").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); licenseWordRe.MatchString(t) {
			parts = append(parts, textutil.Truncate(t, 500))
		}
	})
	return strings.Join(textutil.Dedup(parts), "\n")
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if c, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(c) != "" {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

// outboundLinks returns absolute links to other hosts, deduplicated by URL
// without trailing slash.
func outboundLinks(sel *goquery.Selection, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	pageHost := httputil.NormalizeHost(pageURL)

	seen := make(map[string]bool)
	refs := []string{}
	sel.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return true
		}
		u.Fragment = ""
		abs := httputil.NormalizeURL(u.String())
		if httputil.NormalizeHost(abs) == pageHost || seen[abs] {
			return true
		}
		seen[abs] = true
		refs = append(refs, abs)
		return len(refs) < maxReferences
	})
	return refs
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
