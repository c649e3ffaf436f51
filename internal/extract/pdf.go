// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
)

// PDF extracts plain text and page count from raw. The title is the first
// non-empty line when it is 4 to 159 characters long, otherwise the last
// segment of sourceURL's path.
func PDF(raw []byte, sourceURL string) (ex *Extraction, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			ex, err = nil, fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	pages := r.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	text := textutil.NormalizeWhitespace(b.String())
	return &Extraction{
		Kind:        KindPDF,
		Title:       pdfTitle(text, sourceURL),
		Text:        text,
		LicenseText: pdfLicenseLines(text),
		PageCount:   pages,
		References:  ParseReferences(text),
	}, nil
}

func pdfTitle(text, sourceURL string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := runeLen(line); n >= 4 && n <= 159 {
			return line
		}
		break
	}
	return firstNonEmpty(titleFromURL(sourceURL), UntitledTitle)
}

// pdfLicenseLines returns lines mentioning a license, which usually sit on
// the copyright page near the front.
func pdfLicenseLines(text string) string {
	var out []string
	for _, line := range strings.Split(textutil.Truncate(text, 20000), "\n") {
		if licenseWordRe.MatchString(line) {
			out = append(out, strings.TrimSpace(line))
			if len(out) == 5 {
				break
			}
		}
	}
	return strings.Join(out, "\n")
}
