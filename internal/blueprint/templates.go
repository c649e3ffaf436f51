// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blueprint

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ModulesPerCourse is the fixed module count of every template.
const ModulesPerCourse = 4

// ModuleTemplate describes one module before resources are attached.
type ModuleTemplate struct {
	Title      string   `toml:"title"`
	Keywords   []string `toml:"keywords"`
	Objectives []string `toml:"objectives"`
	Projects   []string `toml:"projects"`
}

// Template is a named set of four modules. Match terms select a template
// by substring of the lowercased subject.
type Template struct {
	Name          string           `toml:"name"`
	Match         []string         `toml:"match"`
	Prerequisites []string         `toml:"prerequisites"`
	Outcomes      []string         `toml:"outcomes"`
	Modules       []ModuleTemplate `toml:"modules"`
}

type templateFile struct {
	Templates []Template `toml:"template"`
}

// LoadTemplates reads extra templates from a TOML file of [[template]]
// tables. An empty path yields none.
func LoadTemplates(path string) ([]Template, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	var f templateFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing templates %s: %w", path, err)
	}
	for i, t := range f.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: name is required", i+1)
		}
		if len(t.Match) == 0 {
			return nil, fmt.Errorf("template %q: at least one match term is required", t.Name)
		}
		if len(t.Modules) != ModulesPerCourse {
			return nil, fmt.Errorf("template %q: has %d modules, want %d", t.Name, len(t.Modules), ModulesPerCourse)
		}
		for j, m := range t.Modules {
			if m.Title == "" || len(m.Objectives) == 0 {
				return nil, fmt.Errorf("template %q module %d: title and objectives are required", t.Name, j+1)
			}
		}
	}
	return f.Templates, nil
}

// selectTemplate prefers custom templates, then the calculus template,
// then the generic one.
func selectTemplate(custom []Template, subject string) Template {
	s := strings.ToLower(subject)
	for _, t := range custom {
		for _, m := range t.Match {
			if m = strings.ToLower(strings.TrimSpace(m)); m != "" && strings.Contains(s, m) {
				return t
			}
		}
	}
	if strings.Contains(s, "calculus") {
		return calculusTemplate()
	}
	return genericTemplate(subject)
}

func calculusTemplate() Template {
	return Template{
		Name:          "calculus",
		Match:         []string{"calculus"},
		Prerequisites: []string{"Algebra", "Trigonometry", "Functions and their graphs"},
		Outcomes: []string{
			"Evaluate limits and reason about continuity",
			"Compute derivatives and interpret them as rates of change",
			"Apply derivatives to optimization and curve sketching",
			"Evaluate definite and indefinite integrals",
		},
		Modules: []ModuleTemplate{
			{
				Title:    "Limits and Continuity",
				Keywords: []string{"limit", "continuity", "precalculus", "function"},
				Objectives: []string{
					"Estimate limits from graphs and tables",
					"Evaluate limits algebraically, including one-sided limits",
					"Determine where a function is continuous",
					"Use the squeeze theorem on trigonometric limits",
				},
				Projects: []string{"Investigate a piecewise model and document where it fails to be continuous"},
			},
			{
				Title:    "Derivatives",
				Keywords: []string{"derivative", "differentiation", "rate of change", "tangent"},
				Objectives: []string{
					"Define the derivative as a limit of difference quotients",
					"Apply the power, product, quotient, and chain rules",
					"Differentiate trigonometric, exponential, and logarithmic functions",
					"Use implicit differentiation",
				},
				Projects: []string{"Build a rate-of-change report from a real data set"},
			},
			{
				Title:    "Applications of Derivatives",
				Keywords: []string{"optimization", "related rates", "extrema", "application"},
				Objectives: []string{
					"Solve related-rates problems",
					"Locate and classify extrema",
					"Sketch curves using first and second derivatives",
					"Solve applied optimization problems",
				},
				Projects: []string{"Optimize a design problem and justify the result with derivative tests"},
			},
			{
				Title:    "Integrals",
				Keywords: []string{"integral", "integration", "antiderivative", "riemann"},
				Objectives: []string{
					"Approximate area with Riemann sums",
					"State and apply the fundamental theorem of calculus",
					"Evaluate integrals by substitution",
					"Compute net change and average value",
				},
				Projects: []string{"Model accumulated change for a physical process using integrals"},
			},
		},
	}
}

func genericTemplate(subject string) Template {
	name := strings.TrimSpace(subject)
	return Template{
		Name:          "generic",
		Prerequisites: []string{"Reading comprehension at the course level", "Basic quantitative reasoning"},
		Outcomes: []string{
			fmt.Sprintf("Explain the foundational ideas of %s", name),
			fmt.Sprintf("Apply core methods of %s to structured problems", name),
			fmt.Sprintf("Complete an applied project in %s", name),
		},
		Modules: []ModuleTemplate{
			{
				Title:    fmt.Sprintf("Foundations of %s", name),
				Keywords: []string{"introduction", "fundamentals", "foundations"},
				Objectives: []string{
					fmt.Sprintf("Define the central vocabulary of %s", name),
					fmt.Sprintf("Describe the scope and history of %s", name),
				},
				Projects: []string{fmt.Sprintf("Write a short primer introducing %s to a newcomer", name)},
			},
			{
				Title:    fmt.Sprintf("Core Concepts of %s", name),
				Keywords: []string{"concepts", "principles", "theory"},
				Objectives: []string{
					fmt.Sprintf("Explain the core principles of %s", name),
					"Connect the principles with representative examples",
				},
				Projects: []string{"Produce a concept map linking the module's principles"},
			},
			{
				Title:    fmt.Sprintf("Guided Practice in %s", name),
				Keywords: []string{"practice", "exercises", "problems", "examples"},
				Objectives: []string{
					"Work structured problems with guidance",
					"Check solutions against worked examples",
				},
				Projects: []string{"Assemble a problem set with annotated solutions"},
			},
			{
				Title:    fmt.Sprintf("Applied Work in %s", name),
				Keywords: []string{"application", "applied", "project", "case study"},
				Objectives: []string{
					fmt.Sprintf("Apply %s methods to an open-ended problem", name),
					"Communicate results with citations to sources",
				},
				Projects: []string{fmt.Sprintf("Complete a capstone project applying %s", name)},
			},
		},
	}
}
