// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blueprint

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

const (
	jsonFile     = "course_blueprint.json"
	markdownFile = "COURSE_BLUEPRINT.md"
)

//go:embed schema/course_blueprint.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Artifacts are the files written for one blueprint.
type Artifacts struct {
	Dir          string `json:"dir"`
	JSONPath     string `json:"jsonPath"`
	MarkdownPath string `json:"markdownPath"`
}

// Validate checks bp against the embedded blueprint schema.
func Validate(bp *types.CourseBlueprint) error {
	data, err := json.Marshal(bp)
	if err != nil {
		return fmt.Errorf("encoding blueprint: %w", err)
	}
	return validateJSON(data)
}

func validateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("loading blueprint schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating blueprint: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("blueprint does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Write validates bp and writes it as indented JSON and as Markdown under
// <dir>/<slug(subject)>/. Existing files are overwritten.
func (g *Generator) Write(bp *types.CourseBlueprint) (*Artifacts, error) {
	data, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding blueprint: %w", err)
	}
	if err := validateJSON(data); err != nil {
		return nil, err
	}

	slug := textutil.Slug(bp.Subject)
	if slug == "" {
		slug = "untitled"
	}
	dir := filepath.Join(g.dir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blueprint directory: %w", err)
	}

	a := &Artifacts{
		Dir:          dir,
		JSONPath:     filepath.Join(dir, jsonFile),
		MarkdownPath: filepath.Join(dir, markdownFile),
	}
	if err := os.WriteFile(a.JSONPath, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", jsonFile, err)
	}
	if err := os.WriteFile(a.MarkdownPath, []byte(RenderMarkdown(bp)), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", markdownFile, err)
	}
	return a, nil
}
