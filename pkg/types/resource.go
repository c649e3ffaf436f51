// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CurationStatus tracks where a stored resource sits in the review workflow.
type CurationStatus string

const (
	CurationAutomated CurationStatus = "automated-discovery"
	CurationReviewed  CurationStatus = "reviewed"
	CurationRejected  CurationStatus = "rejected"
)

// Valid reports whether s is one of the known curation states.
func (s CurationStatus) Valid() bool {
	switch s {
	case CurationAutomated, CurationReviewed, CurationRejected:
		return true
	}
	return false
}

// Provenance records where a resource came from and why it was admitted.
type Provenance struct {
	SourceURL       string   `json:"sourceUrl" yaml:"source_url"`
	RetrievalDate   string   `json:"retrievalDate" yaml:"retrieval_date"`
	LicenseNotes    string   `json:"licenseNotes" yaml:"license_notes"`
	CitationSnippet string   `json:"citationSnippet" yaml:"citation_snippet"`
	ComplianceFlags []string `json:"complianceFlags" yaml:"compliance_flags"`
}

// Resource is an ingested, compliance-cleared piece of educational content.
// Identity is the content checksum: the same URL with materially different
// content produces a different checksum.
type Resource struct {
	// ID is derived from the source host and a checksum prefix
	// (e.g. "openstax-org-3fa4c1d09b2e").
	ID string `json:"id" yaml:"id"`

	Title       string   `json:"title" yaml:"title"`
	Creators    []string `json:"creators" yaml:"creators"`
	Institution string   `json:"institution" yaml:"institution"`
	URL         string   `json:"url" yaml:"url"`

	// Type is a coarse resource kind: textbook, course, paper, document, web-page.
	Type string `json:"type" yaml:"type"`

	License LicenseType  `json:"license" yaml:"license"`
	Access  AccessStatus `json:"access" yaml:"access"`

	TopicTags []string `json:"topicTags" yaml:"topic_tags"`
	Level     string   `json:"level" yaml:"level"`

	// ExtractedTextPath points at the normalized plain text on disk.
	ExtractedTextPath string `json:"extractedTextPath" yaml:"extracted_text_path"`

	// PDFPath is set only when the source was a PDF.
	PDFPath string `json:"pdfPath,omitempty" yaml:"pdf_path,omitempty"`

	References  []string `json:"references" yaml:"references"`
	RetrievedAt string   `json:"retrievedAt" yaml:"retrieved_at"`

	// Checksum is sha256(url + title + first 20,000 characters of text).
	Checksum string `json:"checksum" yaml:"checksum"`

	CurationStatus CurationStatus `json:"curationStatus" yaml:"curation_status"`
	ReviewedBy     string         `json:"reviewedBy,omitempty" yaml:"reviewed_by,omitempty"`
	ReviewedAt     string         `json:"reviewedAt,omitempty" yaml:"reviewed_at,omitempty"`
	ReviewNotes    string         `json:"reviewNotes,omitempty" yaml:"review_notes,omitempty"`

	Provenance Provenance `json:"provenance" yaml:"provenance"`
}
