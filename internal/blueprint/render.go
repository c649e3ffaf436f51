// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blueprint

import (
	"fmt"
	"strings"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// RenderMarkdown renders bp as a Markdown document: title, prerequisites,
// outcomes, then one section per module.
func RenderMarkdown(bp *types.CourseBlueprint) string {
	var b strings.Builder

	title := bp.Subject
	if bp.Level != "" {
		title += " (" + bp.Level + ")"
	}
	fmt.Fprintf(&b, "# Course Blueprint: %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s in %s mode.\n\n", bp.GeneratedAt, bp.Mode)

	b.WriteString("## Prerequisites\n\n")
	writeList(&b, bp.Prerequisites)

	b.WriteString("## Outcomes\n\n")
	writeList(&b, bp.Outcomes)

	sources := make(map[string]types.SourceRef)
	for _, m := range bp.Modules {
		for _, l := range m.Lessons {
			for _, s := range l.SourceMap {
				sources[s.ResourceID] = s
			}
		}
	}

	for i, m := range bp.Modules {
		fmt.Fprintf(&b, "## Module %d: %s\n\n", i+1, m.Title)
		if len(m.Prerequisites) > 0 {
			fmt.Fprintf(&b, "Requires: %s\n\n", strings.Join(m.Prerequisites, ", "))
		}

		b.WriteString("### Objectives\n\n")
		writeList(&b, m.Objectives)

		b.WriteString("### Lessons\n\n")
		for _, l := range m.Lessons {
			fmt.Fprintf(&b, "#### %s (%s)\n\n", l.Title, l.LessonID)
			writeList(&b, l.Objectives)
			if len(l.PracticeSpecs) > 0 {
				b.WriteString("Practice:\n\n")
				writeList(&b, l.PracticeSpecs)
			}
			if len(l.MasteryCheckSpecs) > 0 {
				b.WriteString("Mastery check:\n\n")
				writeList(&b, l.MasteryCheckSpecs)
			}
		}

		b.WriteString("### Resources\n\n")
		if len(m.CitationResourceIDs) == 0 {
			b.WriteString("None.\n\n")
		}
		for _, id := range m.CitationResourceIDs {
			if s, ok := sources[id]; ok {
				fmt.Fprintf(&b, "- [%s](%s) (%s, `%s`)\n", s.Title, s.URL, s.License, id)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", id)
			}
		}
		if len(m.CitationResourceIDs) > 0 {
			b.WriteString("\n")
		}

		b.WriteString("### Project Specs\n\n")
		writeList(&b, m.ProjectSpecs)
	}
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
