// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
)

// knownHosts maps OER and scholarly hosts to the institution they publish
// under. Subdomains match their parent entry.
var knownHosts = []struct {
	domain      string
	institution string
}{
	{"openstax.org", "OpenStax"},
	{"ocw.mit.edu", "MIT OpenCourseWare"},
	{"khanacademy.org", "Khan Academy"},
	{"libretexts.org", "LibreTexts"},
	{"open.umn.edu", "Open Textbook Library"},
	{"oyc.yale.edu", "Open Yale Courses"},
	{"see.stanford.edu", "Stanford Engineering Everywhere"},
	{"arxiv.org", "arXiv"},
	{"openalex.org", "OpenAlex"},
	{"semanticscholar.org", "Semantic Scholar"},
	{"ncbi.nlm.nih.gov", "PubMed Central"},
	{"europepmc.org", "Europe PMC"},
}

// tier1Hosts are curated OER publishers that receive the larger boost.
var tier1Hosts = []string{
	"openstax.org",
	"ocw.mit.edu",
	"khanacademy.org",
	"libretexts.org",
	"open.umn.edu",
	"oyc.yale.edu",
	"see.stanford.edu",
}

// scholarlyHosts are open scholarly indexes that receive the smaller boost.
var scholarlyHosts = []string{
	"arxiv.org",
	"openalex.org",
	"semanticscholar.org",
	"ncbi.nlm.nih.gov",
	"europepmc.org",
	"doi.org",
}

const (
	tier1Boost     = 0.6
	scholarlyBoost = 0.35
)

// InstitutionForHost returns the institution name for a known host, or ""
// when the host is not recognized. host may be a bare hostname or a URL.
func InstitutionForHost(host string) string {
	h := normalize(host)
	for _, k := range knownHosts {
		if hostMatches(h, k.domain) {
			return k.institution
		}
	}
	return ""
}

// DomainBoost returns the flat priority boost for rawURL's host.
func DomainBoost(rawURL string) float64 {
	h := normalize(rawURL)
	if h == "" {
		return 0
	}
	for _, d := range tier1Hosts {
		if hostMatches(h, d) {
			return tier1Boost
		}
	}
	for _, d := range scholarlyHosts {
		if hostMatches(h, d) {
			return scholarlyBoost
		}
	}
	return 0
}

// IsScholarlyHost reports whether rawURL is on an open scholarly index.
func IsScholarlyHost(rawURL string) bool {
	h := normalize(rawURL)
	for _, d := range scholarlyHosts {
		if hostMatches(h, d) {
			return true
		}
	}
	return false
}

func normalize(hostOrURL string) string {
	s := strings.TrimSpace(hostOrURL)
	if strings.Contains(s, "://") {
		return httputil.NormalizeHost(s)
	}
	s = strings.ToLower(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
