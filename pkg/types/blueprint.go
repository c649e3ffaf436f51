// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenerationMode selects how lesson content is produced.
type GenerationMode string

const (
	// ModeManual builds outlines from templates and stored resources.
	ModeManual GenerationMode = "manual"

	// ModeBYOKey is reserved for bring-your-own-key generation and is not
	// implemented.
	ModeBYOKey GenerationMode = "byo-key"
)

// SourceRef ties a lesson back to a stored resource.
type SourceRef struct {
	ResourceID string      `json:"resourceId" yaml:"resource_id"`
	Title      string      `json:"title" yaml:"title"`
	URL        string      `json:"url" yaml:"url"`
	License    LicenseType `json:"license" yaml:"license"`
}

// LessonSpec is one lesson within a module.
type LessonSpec struct {
	LessonID               string      `json:"lessonId" yaml:"lesson_id"`
	Title                  string      `json:"title" yaml:"title"`
	Objectives             []string    `json:"objectives" yaml:"objectives"`
	RecommendedResourceIDs []string    `json:"recommendedResourceIds" yaml:"recommended_resource_ids"`
	PracticeSpecs          []string    `json:"practiceSpecs" yaml:"practice_specs"`
	MasteryCheckSpecs      []string    `json:"masteryCheckSpecs" yaml:"mastery_check_specs"`
	SourceMap              []SourceRef `json:"sourceMap" yaml:"source_map"`
}

// ModuleSpec is one module of a course blueprint.
type ModuleSpec struct {
	ModuleID            string       `json:"moduleId" yaml:"module_id"`
	Title               string       `json:"title" yaml:"title"`
	Prerequisites       []string     `json:"prerequisites" yaml:"prerequisites"`
	Objectives          []string     `json:"objectives" yaml:"objectives"`
	Lessons             []LessonSpec `json:"lessons" yaml:"lessons"`
	ProjectSpecs        []string     `json:"projectSpecs" yaml:"project_specs"`
	CitationResourceIDs []string     `json:"citationResourceIds" yaml:"citation_resource_ids"`
}

// CourseBlueprint is a generated course outline. It is recomputed wholesale
// on each build.
type CourseBlueprint struct {
	ID            string         `json:"id" yaml:"id"`
	Subject       string         `json:"subject" yaml:"subject"`
	Level         string         `json:"level" yaml:"level"`
	Outcomes      []string       `json:"outcomes" yaml:"outcomes"`
	Prerequisites []string       `json:"prerequisites" yaml:"prerequisites"`
	Modules       []ModuleSpec   `json:"modules" yaml:"modules"`
	ResourceIDs   []string       `json:"resourceIds" yaml:"resource_ids"`
	GeneratedAt   string         `json:"generatedAt" yaml:"generated_at"`
	Mode          GenerationMode `json:"mode" yaml:"mode"`
}
