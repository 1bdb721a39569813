// Package templates renders Refinery's markdown outputs: the generated
// text prompt for a valid record and the reviewer-facing validation
// report. Templates are embedded so the binary is self-contained.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/promptsmith/refinery/internal/record"
	"github.com/promptsmith/refinery/internal/validation"
)

//go:embed *.md.tmpl
var templateFS embed.FS

// Template identifies one of the embedded templates.
type Template string

const (
	// RefinedPrompt is the human-readable prompt generated from a valid
	// Structured Record, suitable for handing to a downstream AI system.
	RefinedPrompt Template = "refined_prompt"

	// ValidationReport is the markdown rendering of a validation Report.
	ValidationReport Template = "validation_report"
)

// Renderer renders a named template with its data. Tools depend on this
// interface, not on the concrete implementation.
type Renderer interface {
	Render(t Template, data any) (string, error)
}

type renderer struct {
	templates *template.Template
}

// NewRenderer parses all embedded templates. It fails only if a template
// is malformed, which is a build defect rather than a runtime condition.
func NewRenderer() (Renderer, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	t, err := template.New("refinery").Funcs(funcs).ParseFS(templateFS, "*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates: %w", err)
	}
	return &renderer{templates: t}, nil
}

// Render executes the named template with the given data.
func (r *renderer) Render(t Template, data any) (string, error) {
	var sb strings.Builder
	name := string(t) + ".md.tmpl"
	if err := r.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t, err)
	}
	return sb.String(), nil
}

// --- RefinedPrompt data ---

// RefinedPromptData feeds the refined_prompt template. Requirements are
// pre-grouped by status so the template stays declarative.
type RefinedPromptData struct {
	Intent       record.Intent
	Confirmed    []record.Requirement
	Inferred     []record.Requirement
	Missing      []record.Requirement
	Constraints  []record.Constraint
	Deliverables []string
	Conflicts    []record.Conflict
	Assumptions  []record.Assumption
}

// NewRefinedPromptData groups a record's requirements by status and
// carries the remaining sections through unchanged.
func NewRefinedPromptData(rec record.Record) RefinedPromptData {
	data := RefinedPromptData{
		Intent:       rec.Intent,
		Constraints:  rec.Constraints,
		Deliverables: rec.Deliverables,
		Conflicts:    rec.Conflicts,
		Assumptions:  rec.Assumptions,
	}
	for _, req := range rec.Requirements {
		switch req.Status {
		case record.StatusConfirmed:
			data.Confirmed = append(data.Confirmed, req)
		case record.StatusInferred:
			data.Inferred = append(data.Inferred, req)
		default:
			data.Missing = append(data.Missing, req)
		}
	}
	return data
}

// --- ValidationReport data ---

// BreakdownRow is one category line of the rendered report.
type BreakdownRow struct {
	Category     string
	Score        string
	Contribution string
}

// ValidationReportData feeds the validation_report template.
type ValidationReportData struct {
	IsValid          bool
	Score            string
	RejectionReasons []string
	Breakdown        []BreakdownRow
}

// NewValidationReportData flattens a Report into display strings, with
// breakdown rows in the engine's canonical category order and the
// aggregate score rounded to two decimals for reporting.
func NewValidationReportData(rep validation.Report) ValidationReportData {
	data := ValidationReportData{
		IsValid:          rep.IsValid,
		Score:            fmt.Sprintf("%.2f", rep.RoundedScore()),
		RejectionReasons: rep.RejectionReasons,
	}
	for _, category := range validation.Categories() {
		cs := rep.Breakdown[category]
		data.Breakdown = append(data.Breakdown, BreakdownRow{
			Category:     category,
			Score:        fmt.Sprintf("%.2f", cs.Score),
			Contribution: fmt.Sprintf("%.4f", cs.Contribution),
		})
	}
	return data
}
