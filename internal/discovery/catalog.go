// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// CatalogEntry is one curated resource in a static catalog. Keywords widen
// subject matching beyond the title.
type CatalogEntry struct {
	URL          string
	Title        string
	Author       string
	Institution  string
	Year         int
	ResourceType string
	License      types.LicenseType
	Keywords     []string
}

// Catalog is an adapter over a fixed list of curated entries.
type Catalog struct {
	name    string
	entries []CatalogEntry
}

// NewCatalog returns a catalog adapter named name.
func NewCatalog(name string, entries []CatalogEntry) *Catalog {
	return &Catalog{name: name, entries: entries}
}

// Name returns the adapter identifier.
func (c *Catalog) Name() string { return c.name }

// Applies is true for every subject; filtering happens in Discover.
func (c *Catalog) Applies(string) bool { return true }

// Discover returns entries whose title or keywords contain a subject term.
func (c *Catalog) Discover(_ context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	return filterCatalog(c.entries, req.Subject, c.name), nil
}

func filterCatalog(entries []CatalogEntry, subject, source string) []types.DiscoveredResource {
	var out []types.DiscoveredResource
	for _, e := range entries {
		if !matchesSubject(subject, e.Title+" "+strings.Join(e.Keywords, " ")) {
			continue
		}
		out = append(out, types.DiscoveredResource{
			URL:          e.URL,
			Title:        e.Title,
			Author:       e.Author,
			Institution:  e.Institution,
			Year:         e.Year,
			ResourceType: e.ResourceType,
			License:      e.License,
			Access:       types.AccessOpen,
			Source:       source,
		})
	}
	return out
}

func subjectTerms(subject string) []string {
	terms := textutil.SubjectTerms(subject)
	if len(terms) == 0 {
		if s := strings.ToLower(strings.TrimSpace(subject)); s != "" {
			terms = []string{s}
		}
	}
	return terms
}

var mitOCWCatalog = []CatalogEntry{
	{
		URL:          "https://ocw.mit.edu/courses/18-01sc-single-variable-calculus-fall-2010/",
		Title:        "Single Variable Calculus",
		Author:       "David Jerison",
		Institution:  "MIT OpenCourseWare",
		Year:         2010,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"calculus", "derivatives", "integrals", "mathematics"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/18-02sc-multivariable-calculus-fall-2010/",
		Title:        "Multivariable Calculus",
		Author:       "Denis Auroux",
		Institution:  "MIT OpenCourseWare",
		Year:         2010,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"calculus", "vectors", "mathematics"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/18-06-linear-algebra-spring-2010/",
		Title:        "Linear Algebra",
		Author:       "Gilbert Strang",
		Institution:  "MIT OpenCourseWare",
		Year:         2010,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"matrices", "vectors", "mathematics"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/18-05-introduction-to-probability-and-statistics-spring-2022/",
		Title:        "Introduction to Probability and Statistics",
		Author:       "Jeremy Orloff",
		Institution:  "MIT OpenCourseWare",
		Year:         2022,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"probability", "statistics", "mathematics"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/8-01sc-classical-mechanics-fall-2016/",
		Title:        "Classical Mechanics",
		Author:       "Deepto Chakrabarty",
		Institution:  "MIT OpenCourseWare",
		Year:         2016,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"physics", "mechanics", "newton"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/6-0001-introduction-to-computer-science-and-programming-in-python-fall-2016/",
		Title:        "Introduction to Computer Science and Programming in Python",
		Author:       "Ana Bell",
		Institution:  "MIT OpenCourseWare",
		Year:         2016,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"programming", "python", "computer science"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/7-016-introductory-biology-fall-2018/",
		Title:        "Introductory Biology",
		Author:       "Barbara Imperiali",
		Institution:  "MIT OpenCourseWare",
		Year:         2018,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"biology", "molecular", "cell"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/5-111sc-principles-of-chemical-science-fall-2014/",
		Title:        "Principles of Chemical Science",
		Author:       "Catherine Drennan",
		Institution:  "MIT OpenCourseWare",
		Year:         2014,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"chemistry", "chemical"},
	},
	{
		URL:          "https://ocw.mit.edu/courses/14-01-principles-of-microeconomics-fall-2018/",
		Title:        "Principles of Microeconomics",
		Author:       "Jonathan Gruber",
		Institution:  "MIT OpenCourseWare",
		Year:         2018,
		ResourceType: "course",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"economics", "markets"},
	},
}

var openTextbookCatalog = []CatalogEntry{
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/active-calculus",
		Title:        "Active Calculus",
		Author:       "Matthew Boelkins",
		Institution:  "Open Textbook Library",
		Year:         2018,
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"calculus", "mathematics"},
	},
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/apex-calculus",
		Title:        "APEX Calculus",
		Author:       "Gregory Hartman",
		Institution:  "Open Textbook Library",
		Year:         2015,
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"calculus", "mathematics"},
	},
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/a-first-course-in-linear-algebra-2017",
		Title:        "A First Course in Linear Algebra",
		Author:       "Ken Kuttler",
		Institution:  "Open Textbook Library",
		Year:         2017,
		ResourceType: "textbook",
		License:      types.LicenseCCBY,
		Keywords:     []string{"linear algebra", "matrices", "mathematics"},
	},
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/openintro-statistics",
		Title:        "OpenIntro Statistics",
		Author:       "David Diez",
		Institution:  "Open Textbook Library",
		Year:         2019,
		ResourceType: "textbook",
		License:      types.LicenseCCBYSA,
		Keywords:     []string{"statistics", "probability", "data"},
	},
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/introduction-to-psychology",
		Title:        "Introduction to Psychology",
		Author:       "Charles Stangor",
		Institution:  "Open Textbook Library",
		Year:         2014,
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"psychology", "behavior"},
	},
	{
		URL:          "https://open.umn.edu/opentextbooks/textbooks/think-python-how-to-think-like-a-computer-scientist",
		Title:        "Think Python: How to Think Like a Computer Scientist",
		Author:       "Allen B. Downey",
		Institution:  "Open Textbook Library",
		Year:         2015,
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"programming", "python", "computer science"},
	},
}

var libreTextsCatalog = []CatalogEntry{
	{
		URL:          "https://math.libretexts.org/Bookshelves/Calculus/Calculus_(OpenStax)",
		Title:        "Calculus (OpenStax)",
		Author:       "Gilbert Strang",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"calculus", "mathematics"},
	},
	{
		URL:          "https://math.libretexts.org/Bookshelves/Linear_Algebra",
		Title:        "Linear Algebra Bookshelf",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"linear algebra", "matrices"},
	},
	{
		URL:          "https://chem.libretexts.org/Bookshelves/General_Chemistry",
		Title:        "General Chemistry",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"chemistry", "chemical"},
	},
	{
		URL:          "https://bio.libretexts.org/Bookshelves/Introductory_and_General_Biology",
		Title:        "Introductory and General Biology",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBYNC,
		Keywords:     []string{"biology", "cell", "genetics"},
	},
	{
		URL:          "https://phys.libretexts.org/Bookshelves/University_Physics",
		Title:        "University Physics",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBY,
		Keywords:     []string{"physics", "mechanics"},
	},
	{
		URL:          "https://stats.libretexts.org/Bookshelves/Introductory_Statistics",
		Title:        "Introductory Statistics",
		Institution:  "LibreTexts",
		ResourceType: "textbook",
		License:      types.LicenseCCBY,
		Keywords:     []string{"statistics", "probability"},
	},
}

// openStaxFallback is served when the OpenStax CMS cannot be reached.
var openStaxFallback = []CatalogEntry{
	openStaxBook("calculus-volume-1", "Calculus Volume 1", "calculus", "derivatives", "limits"),
	openStaxBook("calculus-volume-2", "Calculus Volume 2", "calculus", "integration", "series"),
	openStaxBook("calculus-volume-3", "Calculus Volume 3", "calculus", "multivariable", "vectors"),
	openStaxBook("precalculus-2e", "Precalculus 2e", "algebra", "trigonometry", "functions"),
	openStaxBook("introductory-statistics-2e", "Introductory Statistics 2e", "statistics", "probability"),
	openStaxBook("college-physics-2e", "College Physics 2e", "physics", "mechanics"),
	openStaxBook("chemistry-2e", "Chemistry 2e", "chemistry", "chemical"),
	openStaxBook("biology-2e", "Biology 2e", "biology", "cell", "genetics"),
	openStaxBook("anatomy-and-physiology-2e", "Anatomy and Physiology 2e", "anatomy", "physiology", "health"),
	openStaxBook("microbiology", "Microbiology", "biology", "microbes", "disease"),
	openStaxBook("psychology-2e", "Psychology 2e", "psychology", "behavior"),
	openStaxBook("principles-economics-3e", "Principles of Economics 3e", "economics", "markets"),
}

func openStaxBook(slug, title string, keywords ...string) CatalogEntry {
	return CatalogEntry{
		URL:          openStaxBookURL(slug),
		Title:        title,
		Institution:  "OpenStax",
		ResourceType: "textbook",
		License:      types.LicenseCCBY,
		Keywords:     keywords,
	}
}
